// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package mastership tells which cluster node is responsible for a device.
package mastership

import (
	"context"

	"github.com/tochemey/gossipstore/device"
)

// Role is the part a node plays for a device.
type Role int

const (
	// RoleNone means the node has no relationship with the device.
	RoleNone Role = iota
	// RoleStandby means another node is master.
	RoleStandby
	// RoleMaster means the node accepts writes for the device.
	RoleMaster
)

// String returns the role name
func (r Role) String() string {
	switch r {
	case RoleMaster:
		return "MASTER"
	case RoleStandby:
		return "STANDBY"
	default:
		return "NONE"
	}
}

// Term is a mastership era. Number grows every time the master changes.
type Term struct {
	Master string
	Number uint64
}

// Service resolves device mastership.
type Service interface {
	// MasterFor returns the master node of the device, if any.
	MasterFor(ctx context.Context, id device.ID) (string, bool)
	// Term returns the current mastership term of the device, if any.
	Term(ctx context.Context, id device.ID) (Term, bool)
	// LocalRole returns the role of the local node for the device.
	LocalRole(ctx context.Context, id device.ID) Role
	// RequestRoleFor asks for mastership of a device that has no master and returns the resulting role.
	RequestRoleFor(ctx context.Context, id device.ID) (Role, error)
	// Relinquish gives up the local mastership of the device.
	Relinquish(ctx context.Context, id device.ID) error
}

// Membership lists the nodes mastership can be assigned to.
type Membership interface {
	LocalNode() string
	Peers() []string
}
