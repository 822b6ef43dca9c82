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

// Package store implements the device store: a replicated view of devices and
// ports reported by several providers, composed identically on every node.
//
// Writes are accepted only on the node mastering the device, stamped with the
// mastership clock, applied locally and broadcast to the peers. Peers apply the
// same contribution through the same path, so replaying or reordering messages
// converges to the same view. A periodic anti-entropy exchange repairs replicas
// that missed messages.
package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/tochemey/gossipstore/clock"
	"github.com/tochemey/gossipstore/cluster"
	"github.com/tochemey/gossipstore/codec"
	"github.com/tochemey/gossipstore/device"
	gerrors "github.com/tochemey/gossipstore/errors"
	"github.com/tochemey/gossipstore/internal/ecmap"
	"github.com/tochemey/gossipstore/internal/metric"
	"github.com/tochemey/gossipstore/internal/ticker"
	"github.com/tochemey/gossipstore/internal/tombstone"
	"github.com/tochemey/gossipstore/internal/validation"
	"github.com/tochemey/gossipstore/internal/workerpool"
	"github.com/tochemey/gossipstore/internal/xsync"
	"github.com/tochemey/gossipstore/log"
	"github.com/tochemey/gossipstore/mastership"
)

const (
	// DefaultAntiEntropyInitialDelay is the delay before the first advertisement
	DefaultAntiEntropyInitialDelay = 5 * time.Second
	// DefaultAntiEntropyPeriod is the interval between two advertisements
	DefaultAntiEntropyPeriod = 5 * time.Second
	// DefaultShutdownTimeout bounds the wait for in-flight work on Stop
	DefaultShutdownTimeout = 5 * time.Second

	defaultWorkers = 8

	sourceLocal       = "local"
	sourceGossip      = "gossip"
	sourceAntiEntropy = "antientropy"
)

// Store is the gossip-replicated device store.
type Store struct {
	transport  cluster.Transport
	mastership mastership.Service
	localNode  string

	codec         codec.Codec
	clock         clock.Clock
	delegate      Delegate
	tombstones    tombstone.Store
	logger        log.Logger
	meterProvider otelmetric.MeterProvider
	metric        *metric.StoreMetric

	antiEntropyInitialDelay time.Duration
	antiEntropyPeriod       time.Duration
	statsAntiEntropyPeriod  time.Duration
	shutdownTimeout         time.Duration
	workers                 int

	entries   *xsync.Map[device.ID, *entry]
	available mapset.Set[device.ID]

	portStats      *ecmap.Map[device.ID, portStatistics]
	portDeltaStats *ecmap.Map[device.ID, portStatistics]
	cancelStats    func()

	lifecycle sync.Mutex
	pool      *workerpool.WorkerPool
	ticker    *ticker.Ticker
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	started   *atomic.Bool
}

// New creates a device store on top of the given transport and mastership service.
func New(transport cluster.Transport, service mastership.Service, opts ...Option) (*Store, error) {
	if err := validation.New(validation.FailFast()).
		AddAssertion(transport != nil, "transport is required").
		AddAssertion(service != nil, "mastership service is required").
		Validate(); err != nil {
		return nil, errors.Join(gerrors.ErrInvalidConfig, err)
	}

	x := &Store{
		transport:               transport,
		mastership:              service,
		localNode:               transport.LocalNode(),
		codec:                   codec.NewCBOR(),
		tombstones:              tombstone.NewMemoryStore(),
		logger:                  log.DiscardLogger,
		antiEntropyInitialDelay: DefaultAntiEntropyInitialDelay,
		antiEntropyPeriod:       DefaultAntiEntropyPeriod,
		statsAntiEntropyPeriod:  DefaultAntiEntropyPeriod,
		shutdownTimeout:         DefaultShutdownTimeout,
		workers:                 defaultWorkers,
		entries:                 xsync.NewMap[device.ID, *entry](),
		available:               mapset.NewSet[device.ID](),
		started:                 atomic.NewBool(false),
	}

	for _, opt := range opts {
		opt.Apply(x)
	}

	if err := validation.New().
		AddAssertion(x.codec != nil, "codec is required").
		AddAssertion(x.tombstones != nil, "tombstone store is required").
		AddAssertion(x.logger != nil, "logger is required").
		AddAssertion(x.antiEntropyInitialDelay >= 0, "anti-entropy initial delay must not be negative").
		AddAssertion(x.antiEntropyPeriod > 0, "anti-entropy period must be positive").
		AddAssertion(x.statsAntiEntropyPeriod > 0, "statistics anti-entropy period must be positive").
		AddAssertion(x.shutdownTimeout > 0, "shutdown timeout must be positive").
		AddAssertion(x.workers > 0, "workers must be positive").
		Validate(); err != nil {
		return nil, errors.Join(gerrors.ErrInvalidConfig, err)
	}

	if x.clock == nil {
		x.clock = clock.NewMastershipClock(x.localNode, service)
	}

	storeMetric, err := metric.NewStoreMetric(x.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create store metrics: %w", err)
	}
	x.metric = storeMetric

	x.portStats = x.newStatisticsMap("port-stats")
	x.portDeltaStats = x.newStatisticsMap("port-stats-delta")
	return x, nil
}

// Start subscribes to the gossip topics, reloads the persisted tombstones and
// starts the anti-entropy loop.
func (x *Store) Start(ctx context.Context) error {
	x.lifecycle.Lock()
	defer x.lifecycle.Unlock()
	if x.started.Load() {
		return nil
	}

	if err := x.tombstones.Range(ctx, func(id device.ID, ts clock.Timestamp) {
		e := x.entry(id)
		e.mu.Lock()
		e.removed, e.hasRemoved = ts, true
		e.mu.Unlock()
	}); err != nil {
		return fmt.Errorf("failed to load tombstones: %w", err)
	}

	if err := multierr.Combine(x.portStats.Start(ctx), x.portDeltaStats.Start(ctx)); err != nil {
		return fmt.Errorf("failed to start port statistics: %w", err)
	}

	x.ctx, x.cancel = context.WithCancel(context.Background())
	x.pool = workerpool.New(workerpool.WithNumShards(x.workers))
	x.pool.Start()

	events, cancelStats := x.portStats.Subscribe()
	x.cancelStats = cancelStats
	x.wg.Add(1)
	go x.watchPortStatistics(events)

	x.subscribe()

	x.ticker = ticker.New(x.antiEntropyInitialDelay, x.antiEntropyPeriod)
	x.ticker.Start()
	x.wg.Add(1)
	go x.antiEntropyLoop()

	x.started.Store(true)
	x.logger.Infof("%s: device store started", x.localNode)
	return nil
}

// Stop unsubscribes from the gossip topics, stops the anti-entropy loop and
// waits for in-flight work up to the shutdown timeout.
func (x *Store) Stop(ctx context.Context) error {
	x.lifecycle.Lock()
	defer x.lifecycle.Unlock()
	if !x.started.Swap(false) {
		return nil
	}

	x.unsubscribe()
	x.cancel()
	x.ticker.Stop()
	x.cancelStats()

	ctx, cancel := context.WithTimeout(ctx, x.shutdownTimeout)
	defer cancel()

	var err error
	done := make(chan struct{})
	go func() {
		x.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		x.logger.Errorf("%s: background loops did not stop within %s", x.localNode, x.shutdownTimeout)
		err = multierr.Append(err, ctx.Err())
	}

	if poolErr := x.pool.Stop(ctx); poolErr != nil {
		x.logger.Errorf("%s: gossip workers did not stop within %s", x.localNode, x.shutdownTimeout)
		err = multierr.Append(err, poolErr)
	}

	err = multierr.Combine(err, x.portStats.Destroy(ctx), x.portDeltaStats.Destroy(ctx))
	x.logger.Infof("%s: device store stopped", x.localNode)
	return err
}

// Running reports whether the store is started
func (x *Store) Running() bool {
	return x.started.Load()
}

// CreateOrUpdateDevice records the description reported by provider.
// It returns nil without error when the local node is not the device master or
// the description changes nothing.
func (x *Store) CreateOrUpdateDevice(ctx context.Context, provider device.ProviderID, id device.ID, desc device.Description) (*device.Event, error) {
	if !x.started.Load() {
		return nil, gerrors.ErrStoreNotStarted
	}

	ts, ok, err := x.timestamp(ctx, id)
	if !ok {
		return nil, err
	}

	desc.Annotations = desc.Annotations.Copy()
	e := x.entry(id)
	e.mu.Lock()
	result := x.applyDevice(e, provider, clock.NewTimestamped(desc, ts))
	var merged clock.Timestamped[device.Description]
	if result.accepted {
		merged = e.providers[provider].device
	}
	e.mu.Unlock()

	x.complete(ctx, sourceLocal, result)
	if result.accepted {
		x.broadcast(ctx, topicDeviceUpdate, &deviceUpdate{
			Sender:      x.localNode,
			Provider:    provider,
			Device:      id,
			Description: merged,
		})
	}
	return result.event, nil
}

// UpdatePorts records the complete list of ports reported by provider.
// Ports missing from the list are withdrawn for that provider.
func (x *Store) UpdatePorts(ctx context.Context, provider device.ProviderID, id device.ID, descs []device.PortDescription) ([]*device.Event, error) {
	if !x.started.Load() {
		return nil, gerrors.ErrStoreNotStarted
	}

	e, err := x.lookup(id, provider)
	if err != nil {
		return nil, err
	}

	ts, ok, err := x.timestamp(ctx, id)
	if !ok {
		return nil, err
	}

	batch := make([]device.PortDescription, len(descs))
	for i, desc := range descs {
		desc.Annotations = desc.Annotations.Copy()
		batch[i] = desc
	}

	e.mu.Lock()
	result := x.applyPorts(e, provider, clock.NewTimestamped(batch, ts))
	var merged []device.PortDescription
	if result.accepted {
		if descriptions, ok := e.providers[provider]; ok {
			merged = make([]device.PortDescription, 0, len(batch))
			for _, desc := range batch {
				if stored, ok := descriptions.port(desc.Number); ok {
					merged = append(merged, stored.Value)
				}
			}
		}
	}
	e.mu.Unlock()

	x.complete(ctx, sourceLocal, result)
	if result.accepted {
		x.broadcast(ctx, topicPortUpdate, &portsUpdate{
			Sender:       x.localNode,
			Provider:     provider,
			Device:       id,
			Descriptions: clock.NewTimestamped(merged, ts),
		})
	}
	return result.events, nil
}

// UpdatePortStatus records the description of a single port reported by provider.
// A description flagged Removed withdraws the port.
func (x *Store) UpdatePortStatus(ctx context.Context, provider device.ProviderID, id device.ID, desc device.PortDescription) (*device.Event, error) {
	if !x.started.Load() {
		return nil, gerrors.ErrStoreNotStarted
	}

	e, err := x.lookup(id, provider)
	if err != nil {
		return nil, err
	}

	ts, ok, err := x.timestamp(ctx, id)
	if !ok {
		return nil, err
	}

	desc.Annotations = desc.Annotations.Copy()
	e.mu.Lock()
	result := x.applyPortStatus(e, provider, clock.NewTimestamped(desc, ts))
	var merged clock.Timestamped[device.PortDescription]
	if result.accepted {
		merged, _ = e.providers[provider].port(desc.Number)
	}
	e.mu.Unlock()

	x.complete(ctx, sourceLocal, result)
	if result.accepted {
		x.broadcast(ctx, topicPortStatusUpdate, &portStatusUpdate{
			Sender:      x.localNode,
			Provider:    provider,
			Device:      id,
			Description: merged,
		})
	}
	return result.event, nil
}

// MarkOffline marks the device unavailable and tells the peers
func (x *Store) MarkOffline(ctx context.Context, id device.ID) (*device.Event, error) {
	if !x.started.Load() {
		return nil, gerrors.ErrStoreNotStarted
	}

	ts, ok, err := x.timestamp(ctx, id)
	if !ok {
		return nil, err
	}

	e := x.entry(id)
	e.mu.Lock()
	result := x.applyOffline(e, ts)
	e.mu.Unlock()

	x.complete(ctx, sourceLocal, result)
	if result.accepted {
		x.broadcast(ctx, topicDeviceOffline, &deviceOffline{
			Sender:    x.localNode,
			Device:    id,
			Timestamp: ts,
		})
	}
	return result.event, nil
}

// MarkOnline marks the device available on the local node only.
// Peers learn about it from the next device update.
func (x *Store) MarkOnline(ctx context.Context, id device.ID) (*device.Event, error) {
	if !x.started.Load() {
		return nil, gerrors.ErrStoreNotStarted
	}

	e, ok := x.entries.Get(id)
	if !ok || e.view.Load() == nil {
		return nil, fmt.Errorf("device=%s: %w", id, gerrors.ErrDeviceNotFound)
	}

	ts, ok, err := x.timestamp(ctx, id)
	if !ok {
		return nil, err
	}

	var result outcome
	e.mu.Lock()
	if view := e.view.Load(); view != nil && !e.isRemoved(ts) && x.markOnline(e, ts) {
		result.accepted = true
		result.main(device.NewEvent(device.DeviceAvailabilityChanged, view))
	}
	e.mu.Unlock()

	x.complete(ctx, sourceLocal, result)
	return result.event, nil
}

// RemoveDevice removes the device from the cluster. A node that is not the
// device master forwards the request to the master and returns nil: the
// removal event is produced once the master has processed it.
func (x *Store) RemoveDevice(ctx context.Context, id device.ID) (*device.Event, error) {
	if !x.started.Load() {
		return nil, gerrors.ErrStoreNotStarted
	}

	master, ok := x.mastership.MasterFor(ctx, id)
	relinquish := false
	if !ok {
		x.logger.Debugf("%s: temporarily requesting mastership of device=%s to remove it", x.localNode, id)
		role, err := x.mastership.RequestRoleFor(ctx, id)
		if err != nil {
			x.logger.Warnf("%s: failed to request mastership of device=%s: %v", x.localNode, id, err)
			return nil, nil
		}
		if role == mastership.RoleMaster {
			master, relinquish = x.localNode, true
		} else {
			master, _ = x.mastership.MasterFor(ctx, id)
		}
	}

	if master != x.localNode {
		x.forwardRemoval(ctx, master, id)
		return nil, nil
	}

	if relinquish {
		defer func() {
			if err := x.mastership.Relinquish(ctx, id); err != nil {
				x.logger.Warnf("%s: failed to relinquish mastership of device=%s: %v", x.localNode, id, err)
			}
		}()
	}

	ts, ok, err := x.timestamp(ctx, id)
	if !ok {
		return nil, err
	}

	e := x.entry(id)
	e.mu.Lock()
	result := x.applyRemove(ctx, e, ts)
	e.mu.Unlock()

	x.complete(ctx, sourceLocal, result)
	if result.accepted {
		x.broadcast(ctx, topicDeviceRemoved, &deviceRemoved{
			Sender:    x.localNode,
			Device:    id,
			Timestamp: ts,
		})
	}
	return result.event, nil
}

// Device returns the composed device, or nil when unknown
func (x *Store) Device(id device.ID) *device.Device {
	if e, ok := x.entries.Get(id); ok {
		return e.view.Load()
	}
	return nil
}

// Devices returns every known device ordered by id
func (x *Store) Devices() []*device.Device {
	return x.devices(func(device.ID) bool { return true })
}

// AvailableDevices returns the available devices ordered by id
func (x *Store) AvailableDevices() []*device.Device {
	return x.devices(func(id device.ID) bool { return x.available.Contains(id) })
}

// DeviceCount returns the number of known devices
func (x *Store) DeviceCount() int {
	return len(x.Devices())
}

// AvailableDeviceCount returns the number of available devices
func (x *Store) AvailableDeviceCount() int {
	return len(x.AvailableDevices())
}

// IsAvailable reports whether the device is available
func (x *Store) IsAvailable(id device.ID) bool {
	return x.available.Contains(id)
}

// Ports returns the composed ports of the device ordered by number
func (x *Store) Ports(id device.ID) []*device.Port {
	e, ok := x.entries.Get(id)
	if !ok {
		return nil
	}
	ports := e.portList()
	slices.SortFunc(ports, func(a, b *device.Port) int {
		return cmp.Compare(a.Number, b.Number)
	})
	return ports
}

// Port returns a composed port, or nil when unknown
func (x *Store) Port(id device.ID, number device.PortNumber) *device.Port {
	if e, ok := x.entries.Get(id); ok {
		return e.port(number)
	}
	return nil
}

// PortDescriptions returns the port descriptions reported by provider for the device
func (x *Store) PortDescriptions(provider device.ProviderID, id device.ID) []device.PortDescription {
	e, ok := x.entries.Get(id)
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	descs, ok := e.providers[provider]
	if !ok {
		return nil
	}

	out := make([]device.PortDescription, 0, len(descs.ports))
	for _, desc := range descs.ports {
		out = append(out, desc.Value)
	}
	slices.SortFunc(out, func(a, b device.PortDescription) int {
		return cmp.Compare(a.Number, b.Number)
	})
	return out
}

// PortDescription returns the description of one port reported by provider
func (x *Store) PortDescription(provider device.ProviderID, id device.ID, number device.PortNumber) (device.PortDescription, bool) {
	e, ok := x.entries.Get(id)
	if !ok {
		return device.PortDescription{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	descs, ok := e.providers[provider]
	if !ok {
		return device.PortDescription{}, false
	}
	desc, ok := descs.port(number)
	return desc.Value, ok
}

func (x *Store) devices(filter func(device.ID) bool) []*device.Device {
	out := make([]*device.Device, 0, x.entries.Len())
	x.entries.Range(func(id device.ID, e *entry) {
		if view := e.view.Load(); view != nil && filter(id) {
			out = append(out, view)
		}
	})
	slices.SortFunc(out, func(a, b *device.Device) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return out
}

func (x *Store) entry(id device.ID) *entry {
	return x.entries.GetOrCreate(id, func() *entry { return newEntry(id) })
}

// lookup returns the entry of a known device the provider already described
func (x *Store) lookup(id device.ID, provider device.ProviderID) (*entry, error) {
	e, ok := x.entries.Get(id)
	if !ok || e.view.Load() == nil {
		return nil, fmt.Errorf("device=%s: %w", id, gerrors.ErrDeviceNotFound)
	}

	e.mu.Lock()
	_, described := e.providers[provider]
	e.mu.Unlock()
	if !described {
		return nil, fmt.Errorf("device=%s provider=%s: %w", id, provider, gerrors.ErrDeviceNotFound)
	}
	return e, nil
}

// timestamp stamps a local contribution. A missing mastership is not an error
// for the caller: the contribution is dropped and reported again by the provider
// once mastership settles.
func (x *Store) timestamp(ctx context.Context, id device.ID) (clock.Timestamp, bool, error) {
	ts, err := x.clock.Timestamp(ctx, id)
	switch {
	case err == nil:
		return ts, true, nil
	case errors.Is(err, gerrors.ErrNoMastership):
		x.logger.Infof("%s: timestamp not available for device=%s, contribution dropped", x.localNode, id)
		return ts, false, nil
	default:
		return ts, false, err
	}
}

// complete records the outcome metrics and hands the events to the delegate.
// It must be called without holding any entry lock.
func (x *Store) complete(ctx context.Context, source string, result outcome) {
	if result.accepted {
		x.metric.Applied(ctx, source)
	} else {
		x.metric.Stale(ctx, source)
	}
	x.deliver(ctx, result.events...)
}

func (x *Store) deliver(ctx context.Context, events ...*device.Event) {
	for _, event := range events {
		x.metric.Event(ctx, event.Type.String())
		if x.delegate != nil {
			x.delegate.Notify(event)
		}
	}
}
