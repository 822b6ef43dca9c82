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

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMastership is returned by the logical clock when the local node is not the
	// current master of the device it is asked to stamp.
	ErrNoMastership = errors.New("local node is not the master of the device")

	// ErrStoreNotStarted is returned when an operation is attempted on a store that is not running.
	ErrStoreNotStarted = errors.New("device store is not started")

	// ErrTransportNotStarted is returned when sending through a transport that is not running.
	ErrTransportNotStarted = errors.New("cluster transport is not started")

	// ErrPeerNotFound is returned when unicasting to a node that is not a cluster member.
	ErrPeerNotFound = errors.New("peer not found")

	// ErrDeviceNotFound is returned when a device is unknown to the store.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrInvalidEnvelope is returned when a gossip envelope cannot be decoded or is missing fields.
	ErrInvalidEnvelope = errors.New("invalid gossip envelope")

	// ErrUnknownTopic is returned when a frame targets a topic nobody subscribed to.
	ErrUnknownTopic = errors.New("unknown topic")

	// ErrTombstoneStoreClosed is returned when the tombstone store is used after Close.
	ErrTombstoneStoreClosed = errors.New("tombstone store is closed")

	// ErrInvalidConfig is returned when a configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// InvariantError reports internal state that prior logic guaranteed could not happen.
// It is raised with panic and must never be recovered into normal control flow.
type InvariantError struct {
	message string
}

// NewInvariantError creates an InvariantError
func NewInvariantError(format string, args ...any) *InvariantError {
	return &InvariantError{message: fmt.Sprintf(format, args...)}
}

// Error implements the standard error interface
func (e *InvariantError) Error() string {
	return "invariant violation: " + e.message
}
