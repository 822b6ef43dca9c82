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

package cluster

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/tochemey/gossipstore/errors"
)

// Filter decides whether a message may travel from one node to another.
// Returning false silently drops the message, the way a lossy network would.
type Filter func(from, to, topic string) bool

// Hub is an in-process network connecting HubTransport instances.
// Delivery is synchronous: the receiving handler runs on the sender goroutine.
type Hub struct {
	mu     sync.RWMutex
	nodes  map[string]*HubTransport
	filter Filter
}

// NewHub creates an empty Hub
func NewHub() *Hub {
	return &Hub{nodes: make(map[string]*HubTransport)}
}

// Join attaches a new node to the hub. The returned transport must be started before use.
func (h *Hub) Join(node string) *HubTransport {
	h.mu.Lock()
	defer h.mu.Unlock()
	transport := &HubTransport{
		hub:      h,
		node:     node,
		started:  atomic.NewBool(false),
		handlers: make(map[string]Handler),
	}
	h.nodes[node] = transport
	return transport
}

// SetFilter installs the message filter. A nil filter lets everything through.
func (h *Hub) SetFilter(filter Filter) {
	h.mu.Lock()
	h.filter = filter
	h.mu.Unlock()
}

func (h *Hub) members(except string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members := make([]string, 0, len(h.nodes))
	for node, transport := range h.nodes {
		if node != except && transport.started.Load() {
			members = append(members, node)
		}
	}
	slices.Sort(members)
	return members
}

func (h *Hub) deliver(from, to, topic string, payload []byte) error {
	h.mu.RLock()
	target, ok := h.nodes[to]
	filter := h.filter
	h.mu.RUnlock()

	if !ok || !target.started.Load() {
		return fmt.Errorf("node=%s: %w", to, errors.ErrPeerNotFound)
	}

	if filter != nil && !filter(from, to, topic) {
		return nil
	}

	target.mu.RLock()
	handler, ok := target.handlers[topic]
	target.mu.RUnlock()
	if !ok {
		return nil
	}

	handler(from, slices.Clone(payload))
	return nil
}

// HubTransport is the Transport of one node attached to a Hub.
type HubTransport struct {
	hub     *Hub
	node    string
	started *atomic.Bool

	mu       sync.RWMutex
	handlers map[string]Handler
}

// enforce compilation error
var _ Transport = (*HubTransport)(nil)

// Start implements Transport.
func (x *HubTransport) Start(context.Context) error {
	x.started.Store(true)
	return nil
}

// Stop implements Transport.
func (x *HubTransport) Stop(context.Context) error {
	x.started.Store(false)
	return nil
}

// LocalNode implements Transport.
func (x *HubTransport) LocalNode() string {
	return x.node
}

// Peers implements Transport.
func (x *HubTransport) Peers() []string {
	if !x.started.Load() {
		return nil
	}
	return x.hub.members(x.node)
}

// Unicast implements Transport.
func (x *HubTransport) Unicast(ctx context.Context, to, topic string, payload []byte) error {
	if !x.started.Load() {
		return errors.ErrTransportNotStarted
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return x.hub.deliver(x.node, to, topic, payload)
}

// Broadcast implements Transport.
func (x *HubTransport) Broadcast(ctx context.Context, topic string, payload []byte) error {
	if !x.started.Load() {
		return errors.ErrTransportNotStarted
	}

	var err error
	for _, peer := range x.hub.members(x.node) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return multierr.Append(err, ctxErr)
		}
		err = multierr.Append(err, x.hub.deliver(x.node, peer, topic, payload))
	}
	return err
}

// Subscribe implements Transport.
func (x *HubTransport) Subscribe(topic string, handler Handler) {
	x.mu.Lock()
	x.handlers[topic] = handler
	x.mu.Unlock()
}

// Unsubscribe implements Transport.
func (x *HubTransport) Unsubscribe(topic string) {
	x.mu.Lock()
	delete(x.handlers, topic)
	x.mu.Unlock()
}
