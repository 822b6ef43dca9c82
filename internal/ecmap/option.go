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
	"time"

	"github.com/tochemey/gossipstore/codec"
	"github.com/tochemey/gossipstore/log"
)

// Option configures a Map
type Option[K comparable, V any] func(m *Map[K, V])

// WithCodec sets the codec used to encode updates
func WithCodec[K comparable, V any](codec codec.Codec) Option[K, V] {
	return func(m *Map[K, V]) {
		m.codec = codec
	}
}

// WithLogger sets the logger
func WithLogger[K comparable, V any](logger log.Logger) Option[K, V] {
	return func(m *Map[K, V]) {
		m.logger = logger
	}
}

// WithTimestampFunc sets how entries are stamped on Put and Remove
func WithTimestampFunc[K comparable, V any](fn TimestampFunc[K, V]) Option[K, V] {
	return func(m *Map[K, V]) {
		m.timestamp = fn
	}
}

// WithTombstonesDisabled makes Remove forget the entry instead of keeping a tombstone.
// A removed entry may then come back through anti-entropy.
func WithTombstonesDisabled[K comparable, V any]() Option[K, V] {
	return func(m *Map[K, V]) {
		m.tombstones = false
	}
}

// WithAntiEntropyPeriod sets how often the full map is pushed to a random peer
func WithAntiEntropyPeriod[K comparable, V any](period time.Duration) Option[K, V] {
	return func(m *Map[K, V]) {
		m.antiEntropyPeriod = period
	}
}

// WithEventBuffer sets the capacity of every subscription channel
func WithEventBuffer[K comparable, V any](size int) Option[K, V] {
	return func(m *Map[K, V]) {
		m.eventBuffer = size
	}
}
