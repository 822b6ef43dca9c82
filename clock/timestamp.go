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

// Package clock provides the logical timestamps used to order device and port descriptions.
package clock

import (
	"cmp"
	"fmt"
)

// Timestamp orders contributions for a single device. Term is the mastership
// term of the node that issued it, Sequence grows within the term.
type Timestamp struct {
	Term     uint64 `cbor:"1,keyasint"`
	Sequence uint64 `cbor:"2,keyasint"`
}

// Compare returns -1, 0 or +1 depending on whether t is older than, equal to or newer than other.
func (t Timestamp) Compare(other Timestamp) int {
	if c := cmp.Compare(t.Term, other.Term); c != 0 {
		return c
	}
	return cmp.Compare(t.Sequence, other.Sequence)
}

// IsNewerThan reports whether t is strictly newer than other
func (t Timestamp) IsNewerThan(other Timestamp) bool {
	return t.Compare(other) > 0
}

// IsZero reports whether the timestamp was never issued
func (t Timestamp) IsZero() bool {
	return t.Term == 0 && t.Sequence == 0
}

// String returns term.sequence
func (t Timestamp) String() string {
	return fmt.Sprintf("%d.%d", t.Term, t.Sequence)
}

// Max returns the newest of the given timestamps
func Max(timestamps ...Timestamp) Timestamp {
	var newest Timestamp
	for _, ts := range timestamps {
		if ts.IsNewerThan(newest) {
			newest = ts
		}
	}
	return newest
}

// Timestamped pairs a value with the timestamp it was issued at.
type Timestamped[T any] struct {
	Value     T         `cbor:"1,keyasint"`
	Timestamp Timestamp `cbor:"2,keyasint"`
}

// NewTimestamped creates a Timestamped value
func NewTimestamped[T any](value T, ts Timestamp) Timestamped[T] {
	return Timestamped[T]{Value: value, Timestamp: ts}
}

// IsNewerThan reports whether t was issued strictly after other
func (t Timestamped[T]) IsNewerThan(other Timestamp) bool {
	return t.Timestamp.IsNewerThan(other)
}
