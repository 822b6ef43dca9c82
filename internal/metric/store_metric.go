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

package metric

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/tochemey/gossipstore"

// StoreMetric groups the OpenTelemetry instruments of the device store.
//
// Instruments:
//   - gossipstore.store.applied       (Int64Counter) accepted contributions, by source
//   - gossipstore.store.stale         (Int64Counter) rejected stale or duplicate contributions
//   - gossipstore.store.events        (Int64Counter) events delivered to the delegate, by type
//   - gossipstore.gossip.failures     (Int64Counter) failed sends, by topic
//   - gossipstore.antientropy.rounds  (Int64Counter) advertisements sent
//   - gossipstore.antientropy.pushes  (Int64Counter) fragments pushed while repairing peers
type StoreMetric struct {
	applied          metric.Int64Counter
	stale            metric.Int64Counter
	events           metric.Int64Counter
	gossipFailures   metric.Int64Counter
	antiEntropyRound metric.Int64Counter
	antiEntropyPush  metric.Int64Counter
}

// NewStoreMetric creates the store instruments from the given provider.
// A nil provider falls back to the global otel provider.
func NewStoreMetric(provider metric.MeterProvider) (*StoreMetric, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}

	meter := provider.Meter(instrumentationName)
	var (
		instruments StoreMetric
		err         error
	)

	if instruments.applied, err = meter.Int64Counter(
		"gossipstore.store.applied",
		metric.WithDescription("Total number of accepted device and port contributions"),
	); err != nil {
		return nil, err
	}

	if instruments.stale, err = meter.Int64Counter(
		"gossipstore.store.stale",
		metric.WithDescription("Total number of stale or duplicate contributions dropped"),
	); err != nil {
		return nil, err
	}

	if instruments.events, err = meter.Int64Counter(
		"gossipstore.store.events",
		metric.WithDescription("Total number of events delivered to the delegate"),
	); err != nil {
		return nil, err
	}

	if instruments.gossipFailures, err = meter.Int64Counter(
		"gossipstore.gossip.failures",
		metric.WithDescription("Total number of gossip messages that could not be sent"),
	); err != nil {
		return nil, err
	}

	if instruments.antiEntropyRound, err = meter.Int64Counter(
		"gossipstore.antientropy.rounds",
		metric.WithDescription("Total number of anti-entropy advertisements sent"),
	); err != nil {
		return nil, err
	}

	if instruments.antiEntropyPush, err = meter.Int64Counter(
		"gossipstore.antientropy.pushes",
		metric.WithDescription("Total number of fragments pushed to repair a peer"),
	); err != nil {
		return nil, err
	}

	return &instruments, nil
}

// Applied counts an accepted contribution coming from source (local, gossip or antientropy).
func (x *StoreMetric) Applied(ctx context.Context, source string) {
	x.applied.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

// Stale counts a dropped contribution
func (x *StoreMetric) Stale(ctx context.Context, source string) {
	x.stale.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

// Event counts a delivered event
func (x *StoreMetric) Event(ctx context.Context, eventType string) {
	x.events.Add(ctx, 1, metric.WithAttributes(attribute.String("type", eventType)))
}

// GossipFailure counts a failed send
func (x *StoreMetric) GossipFailure(ctx context.Context, topic string) {
	x.gossipFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("topic", topic)))
}

// AntiEntropyRound counts an advertisement sent to a peer
func (x *StoreMetric) AntiEntropyRound(ctx context.Context) {
	x.antiEntropyRound.Add(ctx, 1)
}

// AntiEntropyPush counts fragments pushed to a peer
func (x *StoreMetric) AntiEntropyPush(ctx context.Context, count int) {
	if count > 0 {
		x.antiEntropyPush.Add(ctx, int64(count))
	}
}
