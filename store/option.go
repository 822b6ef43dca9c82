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

package store

import (
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/gossipstore/clock"
	"github.com/tochemey/gossipstore/codec"
	"github.com/tochemey/gossipstore/internal/tombstone"
	"github.com/tochemey/gossipstore/log"
)

// Option is the interface that applies a Store option.
type Option interface {
	// Apply sets the Option value of a Store.
	Apply(store *Store)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(store *Store)

// Apply applies the option
func (f OptionFunc) Apply(store *Store) {
	f(store)
}

// WithLogger sets the store logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(store *Store) {
		store.logger = logger
	})
}

// WithCodec sets the codec used for every gossip envelope
func WithCodec(codec codec.Codec) Option {
	return OptionFunc(func(store *Store) {
		store.codec = codec
	})
}

// WithClock overrides the logical clock. By default the store stamps
// contributions with a mastership clock bound to the local node.
func WithClock(clock clock.Clock) Option {
	return OptionFunc(func(store *Store) {
		store.clock = clock
	})
}

// WithDelegate sets the sink receiving every event, local or remote
func WithDelegate(delegate Delegate) Option {
	return OptionFunc(func(store *Store) {
		store.delegate = delegate
	})
}

// WithTombstoneStore sets where removal tombstones are persisted.
// The store does not close it.
func WithTombstoneStore(tombstones tombstone.Store) Option {
	return OptionFunc(func(store *Store) {
		store.tombstones = tombstones
	})
}

// WithMeterProvider sets the OpenTelemetry meter provider.
// The global provider is used otherwise.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return OptionFunc(func(store *Store) {
		store.meterProvider = provider
	})
}

// WithAntiEntropyInitialDelay sets the delay before the first advertisement
func WithAntiEntropyInitialDelay(delay time.Duration) Option {
	return OptionFunc(func(store *Store) {
		store.antiEntropyInitialDelay = delay
	})
}

// WithAntiEntropyPeriod sets the interval between two advertisements
func WithAntiEntropyPeriod(period time.Duration) Option {
	return OptionFunc(func(store *Store) {
		store.antiEntropyPeriod = period
	})
}

// WithStatsAntiEntropyPeriod sets the anti-entropy period of the port statistics maps
func WithStatsAntiEntropyPeriod(period time.Duration) Option {
	return OptionFunc(func(store *Store) {
		store.statsAntiEntropyPeriod = period
	})
}

// WithShutdownTimeout sets how long Stop waits for in-flight work
func WithShutdownTimeout(timeout time.Duration) Option {
	return OptionFunc(func(store *Store) {
		store.shutdownTimeout = timeout
	})
}

// WithWorkers sets the number of goroutines applying gossip messages.
// Messages for the same device always run on the same goroutine.
func WithWorkers(workers int) Option {
	return OptionFunc(func(store *Store) {
		store.workers = workers
	})
}
