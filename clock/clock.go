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

package clock

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/atomic"

	"github.com/tochemey/gossipstore/device"
	"github.com/tochemey/gossipstore/errors"
	"github.com/tochemey/gossipstore/mastership"
)

// Clock issues timestamps for devices.
type Clock interface {
	// Timestamp returns a new timestamp for the device. It fails with
	// errors.ErrNoMastership when the local node is not the device master.
	Timestamp(ctx context.Context, id device.ID) (Timestamp, error)
}

// MastershipClock stamps with the current mastership term and a hybrid
// sequence that never goes backwards on this node, even across terms.
type MastershipClock struct {
	localNode  string
	mastership mastership.Service
	last       *atomic.Uint64
	now        func() time.Time
}

// enforce compilation error
var _ Clock = (*MastershipClock)(nil)

// NewMastershipClock creates a clock for the given local node
func NewMastershipClock(localNode string, service mastership.Service) *MastershipClock {
	return &MastershipClock{
		localNode:  localNode,
		mastership: service,
		last:       atomic.NewUint64(0),
		now:        time.Now,
	}
}

// Timestamp implements Clock.
func (c *MastershipClock) Timestamp(ctx context.Context, id device.ID) (Timestamp, error) {
	term, ok := c.mastership.Term(ctx, id)
	if !ok || term.Master != c.localNode {
		return Timestamp{}, fmt.Errorf("timestamp device=%s: %w", id, errors.ErrNoMastership)
	}
	return Timestamp{Term: term.Number, Sequence: c.next()}, nil
}

func (c *MastershipClock) next() uint64 {
	wall := uint64(c.now().UnixNano())
	for {
		last := c.last.Load()
		next := max(last+1, wall)
		if c.last.CompareAndSwap(last, next) {
			return next
		}
	}
}
