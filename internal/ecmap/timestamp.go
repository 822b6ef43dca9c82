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

package ecmap

import (
	"cmp"
	"time"

	"go.uber.org/atomic"
)

// Timestamp orders writes to a single key. Later writes win.
type Timestamp struct {
	UnixNano int64  `cbor:"1,keyasint"`
	Sequence uint64 `cbor:"2,keyasint"`
}

// Compare returns -1, 0 or +1 depending on whether t is older than, equal to or newer than other.
func (t Timestamp) Compare(other Timestamp) int {
	if c := cmp.Compare(t.UnixNano, other.UnixNano); c != 0 {
		return c
	}
	return cmp.Compare(t.Sequence, other.Sequence)
}

// IsNewerThan reports whether t is strictly newer than other
func (t Timestamp) IsNewerThan(other Timestamp) bool {
	return t.Compare(other) > 0
}

// TimestampFunc stamps a write of value under key.
type TimestampFunc[K comparable, V any] func(key K, value V) Timestamp

// WallClock stamps writes with the wall clock, breaking ties with a local sequence.
func WallClock[K comparable, V any]() TimestampFunc[K, V] {
	sequence := atomic.NewUint64(0)
	return func(K, V) Timestamp {
		return Timestamp{UnixNano: time.Now().UnixNano(), Sequence: sequence.Inc()}
	}
}
