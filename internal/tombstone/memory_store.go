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

package tombstone

import (
	"context"
	"sync"

	"go.uber.org/atomic"

	"github.com/tochemey/gossipstore/clock"
	"github.com/tochemey/gossipstore/device"
	"github.com/tochemey/gossipstore/errors"
)

// MemoryStore keeps tombstones in memory. They do not survive a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[device.ID]clock.Timestamp
	closed *atomic.Bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:   make(map[device.ID]clock.Timestamp),
		closed: atomic.NewBool(false),
	}
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, id device.ID, ts clock.Timestamp) error {
	if err := s.ensureOpen(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.data[id]; !ok || ts.IsNewerThan(current) {
		s.data[id] = ts
	}
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id device.ID) (clock.Timestamp, bool, error) {
	if err := s.ensureOpen(ctx); err != nil {
		return clock.Timestamp{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	ts, ok := s.data[id]
	return ts, ok, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, id device.ID) error {
	if err := s.ensureOpen(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.data, id)
	s.mu.Unlock()
	return nil
}

// Range implements Store.
func (s *MemoryStore) Range(ctx context.Context, f func(device.ID, clock.Timestamp)) error {
	if err := s.ensureOpen(ctx); err != nil {
		return err
	}

	s.mu.RLock()
	snapshot := make(map[device.ID]clock.Timestamp, len(s.data))
	for id, ts := range s.data {
		snapshot[id] = ts
	}
	s.mu.RUnlock()

	for id, ts := range snapshot {
		f(id, ts)
	}
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.mu.Lock()
	clear(s.data)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ensureOpen(ctx context.Context) error {
	if s.closed.Load() {
		return errors.ErrTombstoneStoreClosed
	}
	return contextErr(ctx)
}
