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
	"time"

	"github.com/zeebo/xxh3"

	"github.com/tochemey/gossipstore/device"
)

// Ring assigns every device to the member with the highest rendezvous score.
// Nodes sharing the same membership view agree on the master without talking.
// The term number moves to the wall clock in milliseconds, or to the previous
// number plus one when that is larger, whenever the computed master changes.
type Ring struct {
	membership Membership
	now        func() time.Time

	mu    sync.Mutex
	terms map[device.ID]Term
}

var _ Service = (*Ring)(nil)

// NewRing creates a Ring over the given membership
func NewRing(membership Membership) *Ring {
	return &Ring{
		membership: membership,
		now:        time.Now,
		terms:      make(map[device.ID]Term),
	}
}

// MasterFor implements Service.
func (r *Ring) MasterFor(_ context.Context, id device.ID) (string, bool) {
	return r.master(id)
}

// Term implements Service.
func (r *Ring) Term(_ context.Context, id device.ID) (Term, bool) {
	master, ok := r.master(id)
	if !ok {
		return Term{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	term := r.terms[id]
	if term.Master != master {
		term = Term{
			Master: master,
			Number: max(term.Number+1, uint64(r.now().UnixMilli())),
		}
		r.terms[id] = term
	}
	return term, true
}

// LocalRole implements Service.
func (r *Ring) LocalRole(_ context.Context, id device.ID) Role {
	master, ok := r.master(id)
	switch {
	case !ok:
		return RoleNone
	case master == r.membership.LocalNode():
		return RoleMaster
	default:
		return RoleStandby
	}
}

// RequestRoleFor implements Service. The ring always has a master while the
// local node is up, so this only reports the local role.
func (r *Ring) RequestRoleFor(ctx context.Context, id device.ID) (Role, error) {
	return r.LocalRole(ctx, id), nil
}

// Relinquish implements Service. Ring mastership follows membership and cannot be given up.
func (r *Ring) Relinquish(context.Context, device.ID) error {
	return nil
}

func (r *Ring) master(id device.ID) (string, bool) {
	local := r.membership.LocalNode()
	if local == "" {
		return "", false
	}

	best := local
	bestScore := score(local, id)
	for _, peer := range r.membership.Peers() {
		if s := score(peer, id); s > bestScore || (s == bestScore && peer < best) {
			best, bestScore = peer, s
		}
	}
	return best, true
}

func score(node string, id device.ID) uint64 {
	return xxh3.HashString(node + "/" + string(id))
}
