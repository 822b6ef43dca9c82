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

package mastership

import (
	"context"
	"sync"

	"github.com/tochemey/gossipstore/device"
)

// Static is an in-process mastership registry with explicit assignments.
// One registry is shared by every node living in the process and each node
// talks to it through the Service returned by Service.
type Static struct {
	mu    sync.RWMutex
	terms map[device.ID]Term
}

// NewStatic creates an empty registry
func NewStatic() *Static {
	return &Static{terms: make(map[device.ID]Term)}
}

// SetMaster assigns the device master and starts a new term when the master changes.
func (s *Static) SetMaster(id device.ID, node string) Term {
	s.mu.Lock()
	defer s.mu.Unlock()
	term := s.terms[id]
	if term.Master != node || term.Number == 0 {
		term = Term{Master: node, Number: term.Number + 1}
		s.terms[id] = term
	}
	return term
}

// Clear drops the device master. The term number is kept so the next master gets a newer term.
func (s *Static) Clear(id device.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if term, ok := s.terms[id]; ok {
		s.terms[id] = Term{Number: term.Number}
	}
}

// Service returns the view of the registry for the given node
func (s *Static) Service(node string) Service {
	return &staticService{registry: s, node: node}
}

func (s *Static) term(id device.ID) (Term, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	term, ok := s.terms[id]
	if !ok || term.Master == "" {
		return Term{}, false
	}
	return term, true
}

type staticService struct {
	registry *Static
	node     string
}

var _ Service = (*staticService)(nil)

func (x *staticService) MasterFor(_ context.Context, id device.ID) (string, bool) {
	term, ok := x.registry.term(id)
	return term.Master, ok
}

func (x *staticService) Term(_ context.Context, id device.ID) (Term, bool) {
	return x.registry.term(id)
}

func (x *staticService) LocalRole(_ context.Context, id device.ID) Role {
	term, ok := x.registry.term(id)
	switch {
	case !ok:
		return RoleNone
	case term.Master == x.node:
		return RoleMaster
	default:
		return RoleStandby
	}
}

func (x *staticService) RequestRoleFor(ctx context.Context, id device.ID) (Role, error) {
	x.registry.mu.Lock()
	term := x.registry.terms[id]
	if term.Master == "" {
		x.registry.terms[id] = Term{Master: x.node, Number: term.Number + 1}
	}
	x.registry.mu.Unlock()
	return x.LocalRole(ctx, id), nil
}

func (x *staticService) Relinquish(_ context.Context, id device.ID) error {
	x.registry.mu.Lock()
	defer x.registry.mu.Unlock()
	if term, ok := x.registry.terms[id]; ok && term.Master == x.node {
		x.registry.terms[id] = Term{Number: term.Number}
	}
	return nil
}
