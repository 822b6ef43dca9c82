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

// Package ecmap implements an eventually consistent map replicated over the
// cluster transport. Writes are applied locally, broadcast to every peer and
// repaired by periodically pushing the whole map to a random peer. Conflicts
// resolve to the newest timestamp.
package ecmap

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/tochemey/gossipstore/cluster"
	"github.com/tochemey/gossipstore/codec"
	"github.com/tochemey/gossipstore/internal/ticker"
	"github.com/tochemey/gossipstore/log"
)

const (
	defaultAntiEntropyPeriod = 5 * time.Second
	defaultEventBuffer       = 1024
)

// EventType tells what happened to a key
type EventType int

const (
	// Put means the key holds a new value
	Put EventType = iota
	// Remove means the key was removed
	Remove
)

// Event describes a change applied to the map, whether local or remote.
type Event[K comparable, V any] struct {
	Type  EventType
	Key   K
	Value V
}

type item[V any] struct {
	value     V
	timestamp Timestamp
	tombstone bool
}

type wireEntry[K comparable, V any] struct {
	Key       K         `cbor:"1,keyasint"`
	Value     V         `cbor:"2,keyasint"`
	Timestamp Timestamp `cbor:"3,keyasint"`
	Tombstone bool      `cbor:"4,keyasint"`
}

type wireMessage[K comparable, V any] struct {
	Entries []wireEntry[K, V] `cbor:"1,keyasint"`
}

// Map is an eventually consistent map. K and V must be encodable by the codec.
type Map[K comparable, V any] struct {
	name      string
	transport cluster.Transport
	codec     codec.Codec
	logger    log.Logger
	timestamp TimestampFunc[K, V]

	tombstones        bool
	antiEntropyPeriod time.Duration
	eventBuffer       int

	mu    sync.RWMutex
	items map[K]*item[V]

	subsMu      sync.RWMutex
	subscribers map[uuid.UUID]chan *Event[K, V]

	ticker  *ticker.Ticker
	stopCh  chan struct{}
	wg      sync.WaitGroup
	started *atomic.Bool
}

// New creates a Map named name. Maps sharing a name on different nodes replicate each other.
func New[K comparable, V any](name string, transport cluster.Transport, opts ...Option[K, V]) *Map[K, V] {
	m := &Map[K, V]{
		name:              name,
		transport:         transport,
		codec:             codec.NewCBOR(),
		logger:            log.DiscardLogger,
		timestamp:         WallClock[K, V](),
		tombstones:        true,
		antiEntropyPeriod: defaultAntiEntropyPeriod,
		eventBuffer:       defaultEventBuffer,
		items:             make(map[K]*item[V]),
		subscribers:       make(map[uuid.UUID]chan *Event[K, V]),
		started:           atomic.NewBool(false),
	}

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start subscribes the map to its topics and starts the anti-entropy loop.
func (m *Map[K, V]) Start(context.Context) error {
	if m.started.Swap(true) {
		return nil
	}

	m.transport.Subscribe(m.updateTopic(), m.handleMessage)
	m.transport.Subscribe(m.antiEntropyTopic(), m.handleMessage)

	m.stopCh = make(chan struct{})
	m.ticker = ticker.New(m.antiEntropyPeriod, m.antiEntropyPeriod)
	m.ticker.Start()
	m.wg.Add(1)
	go m.antiEntropyLoop()
	return nil
}

// Destroy stops replication, closes every subscription and clears the local copy.
func (m *Map[K, V]) Destroy(context.Context) error {
	if !m.started.Swap(false) {
		return nil
	}

	m.transport.Unsubscribe(m.updateTopic())
	m.transport.Unsubscribe(m.antiEntropyTopic())
	close(m.stopCh)
	m.ticker.Stop()
	m.wg.Wait()

	m.subsMu.Lock()
	for id, ch := range m.subscribers {
		close(ch)
		delete(m.subscribers, id)
	}
	m.subsMu.Unlock()

	m.mu.Lock()
	clear(m.items)
	m.mu.Unlock()
	return nil
}

// Get returns the value stored under key
func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[key]
	if !ok || it.tombstone {
		var zero V
		return zero, false
	}
	return it.value, true
}

// Put stores the value locally and replicates it
func (m *Map[K, V]) Put(ctx context.Context, key K, value V) error {
	entry := wireEntry[K, V]{Key: key, Value: value, Timestamp: m.timestamp(key, value)}
	if m.apply(entry) {
		m.publish(&Event[K, V]{Type: Put, Key: key, Value: value})
	}
	return m.broadcast(ctx, entry)
}

// Remove deletes the key locally and replicates the removal
func (m *Map[K, V]) Remove(ctx context.Context, key K) error {
	var zero V
	entry := wireEntry[K, V]{Key: key, Timestamp: m.timestamp(key, zero), Tombstone: true}
	if m.apply(entry) {
		m.publish(&Event[K, V]{Type: Remove, Key: key})
	}
	return m.broadcast(ctx, entry)
}

// Entries returns a copy of the live entries
func (m *Map[K, V]) Entries() map[K]V {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[K]V, len(m.items))
	for key, it := range m.items {
		if !it.tombstone {
			out[key] = it.value
		}
	}
	return out
}

// Keys returns the live keys
func (m *Map[K, V]) Keys() []K {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]K, 0, len(m.items))
	for key, it := range m.items {
		if !it.tombstone {
			keys = append(keys, key)
		}
	}
	return keys
}

// Len returns the number of live entries
func (m *Map[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, it := range m.items {
		if !it.tombstone {
			count++
		}
	}
	return count
}

// Subscribe returns a channel receiving every applied change and a function
// cancelling the subscription. Events are dropped when the channel is full.
func (m *Map[K, V]) Subscribe() (<-chan *Event[K, V], func()) {
	id := uuid.New()
	ch := make(chan *Event[K, V], m.eventBuffer)

	m.subsMu.Lock()
	m.subscribers[id] = ch
	m.subsMu.Unlock()

	cancel := func() {
		m.subsMu.Lock()
		defer m.subsMu.Unlock()
		if sub, ok := m.subscribers[id]; ok {
			close(sub)
			delete(m.subscribers, id)
		}
	}
	return ch, cancel
}

// apply stores the entry when it is newer than the local one and reports whether it did.
func (m *Map[K, V]) apply(entry wireEntry[K, V]) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.items[entry.Key]
	if ok && !entry.Timestamp.IsNewerThan(current.timestamp) {
		return false
	}

	if entry.Tombstone {
		if !ok || current.tombstone {
			if m.tombstones {
				m.items[entry.Key] = &item[V]{timestamp: entry.Timestamp, tombstone: true}
			}
			return false
		}
		if m.tombstones {
			m.items[entry.Key] = &item[V]{timestamp: entry.Timestamp, tombstone: true}
		} else {
			delete(m.items, entry.Key)
		}
		return true
	}

	m.items[entry.Key] = &item[V]{value: entry.Value, timestamp: entry.Timestamp}
	return true
}

func (m *Map[K, V]) publish(event *Event[K, V]) {
	m.subsMu.RLock()
	defer m.subsMu.RUnlock()
	for _, ch := range m.subscribers {
		select {
		case ch <- event:
		default:
			m.logger.Warnf("ecmap=%s subscriber is full, event dropped", m.name)
		}
	}
}

func (m *Map[K, V]) broadcast(ctx context.Context, entries ...wireEntry[K, V]) error {
	payload, err := m.codec.Encode(&wireMessage[K, V]{Entries: entries})
	if err != nil {
		return fmt.Errorf("ecmap=%s: %w", m.name, err)
	}

	if err := m.transport.Broadcast(ctx, m.updateTopic(), payload); err != nil {
		m.logger.Warnf("ecmap=%s failed to broadcast update: %v", m.name, err)
	}
	return nil
}

func (m *Map[K, V]) handleMessage(sender string, payload []byte) {
	message := new(wireMessage[K, V])
	if err := m.codec.Decode(payload, message); err != nil {
		m.logger.Warnf("ecmap=%s dropped undecodable message from %s: %v", m.name, sender, err)
		return
	}

	for _, entry := range message.Entries {
		if !m.apply(entry) {
			continue
		}
		if entry.Tombstone {
			m.publish(&Event[K, V]{Type: Remove, Key: entry.Key})
			continue
		}
		m.publish(&Event[K, V]{Type: Put, Key: entry.Key, Value: entry.Value})
	}
}

func (m *Map[K, V]) antiEntropyLoop() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			return
		case <-m.ticker.Ticks:
			m.pushSnapshot()
		}
	}
}

// pushSnapshot sends every entry, tombstones included, to one random peer.
func (m *Map[K, V]) pushSnapshot() {
	peers := m.transport.Peers()
	if len(peers) == 0 {
		return
	}
	peer := peers[rand.IntN(len(peers))]

	m.mu.RLock()
	entries := make([]wireEntry[K, V], 0, len(m.items))
	for key, it := range m.items {
		entries = append(entries, wireEntry[K, V]{Key: key, Value: it.value, Timestamp: it.timestamp, Tombstone: it.tombstone})
	}
	m.mu.RUnlock()

	if len(entries) == 0 {
		return
	}

	payload, err := m.codec.Encode(&wireMessage[K, V]{Entries: entries})
	if err != nil {
		m.logger.Errorf("ecmap=%s failed to encode snapshot: %v", m.name, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.antiEntropyPeriod)
	defer cancel()
	if err := m.transport.Unicast(ctx, peer, m.antiEntropyTopic(), payload); err != nil {
		m.logger.Warnf("ecmap=%s failed to push snapshot to %s: %v", m.name, peer, err)
	}
}

func (m *Map[K, V]) updateTopic() string {
	return "ecmap/" + m.name + "/update"
}

func (m *Map[K, V]) antiEntropyTopic() string {
	return "ecmap/" + m.name + "/antientropy"
}
