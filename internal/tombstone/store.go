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

// Package tombstone persists device removal timestamps so that a removed device
// stays removed across restarts.
package tombstone

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/tochemey/gossipstore/clock"
	"github.com/tochemey/gossipstore/device"
)

const encodedSize = 16

// Store keeps the newest removal timestamp of every removed device.
type Store interface {
	// Put records the tombstone unless a newer one is already stored.
	Put(ctx context.Context, id device.ID, ts clock.Timestamp) error
	// Get returns the tombstone of the device, if any.
	Get(ctx context.Context, id device.ID) (clock.Timestamp, bool, error)
	// Delete forgets the tombstone of the device.
	Delete(ctx context.Context, id device.ID) error
	// Range calls f for every stored tombstone.
	Range(ctx context.Context, f func(device.ID, clock.Timestamp)) error
	// Close releases the store resources.
	Close() error
}

func encode(ts clock.Timestamp) []byte {
	out := make([]byte, encodedSize)
	binary.BigEndian.PutUint64(out[:8], ts.Term)
	binary.BigEndian.PutUint64(out[8:], ts.Sequence)
	return out
}

func decode(raw []byte) (clock.Timestamp, error) {
	if len(raw) != encodedSize {
		return clock.Timestamp{}, fmt.Errorf("tombstone: invalid encoded timestamp size %d", len(raw))
	}
	return clock.Timestamp{
		Term:     binary.BigEndian.Uint64(raw[:8]),
		Sequence: binary.BigEndian.Uint64(raw[8:]),
	}, nil
}

func contextErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
