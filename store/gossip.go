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
	"context"

	"github.com/tochemey/gossipstore/cluster"
	"github.com/tochemey/gossipstore/device"
	"github.com/tochemey/gossipstore/mastership"
)

func (x *Store) subscribe() {
	x.transport.Subscribe(topicDeviceUpdate, handler(x, topicDeviceUpdate, x.handleDeviceUpdate))
	x.transport.Subscribe(topicDeviceOffline, handler(x, topicDeviceOffline, x.handleDeviceOffline))
	x.transport.Subscribe(topicDeviceRemoved, handler(x, topicDeviceRemoved, x.handleDeviceRemoved))
	x.transport.Subscribe(topicDeviceRemoveRequest, handler(x, topicDeviceRemoveRequest, x.handleRemoveRequest))
	x.transport.Subscribe(topicPortUpdate, handler(x, topicPortUpdate, x.handlePortsUpdate))
	x.transport.Subscribe(topicPortStatusUpdate, handler(x, topicPortStatusUpdate, x.handlePortStatusUpdate))
	x.transport.Subscribe(topicDeviceAdvertisement, handler(x, topicDeviceAdvertisement, x.handleAdvertisement))
}

func (x *Store) unsubscribe() {
	for _, topic := range topics {
		x.transport.Unsubscribe(topic)
	}
}

// handler decodes the envelope on the transport goroutine and hands it to the
// worker owning its key.
func handler[T any, E interface {
	*T
	envelope
}](x *Store, topic string, apply func(E)) cluster.Handler {
	return func(sender string, payload []byte) {
		message := E(new(T))
		if err := x.codec.Decode(payload, message); err != nil {
			x.logger.Warnf("%s: dropped undecodable %s message from %s: %v", x.localNode, topic, sender, err)
			return
		}

		if err := message.validate(); err != nil {
			x.logger.Warnf("%s: dropped %s message from %s: %v", x.localNode, topic, sender, err)
			return
		}

		if err := x.pool.SubmitWork(message.key(), func() { apply(message) }); err != nil {
			x.logger.Debugf("%s: dropped %s message from %s: %v", x.localNode, topic, sender, err)
		}
	}
}

func (x *Store) handleDeviceUpdate(message *deviceUpdate) {
	e := x.entry(message.Device)
	e.mu.Lock()
	result := x.applyDevice(e, message.Provider, message.Description)
	result.merge(x.applyBatch(e, message.Provider, message.Batch))
	e.mu.Unlock()
	x.complete(x.ctx, sourceGossip, result)
}

func (x *Store) handleDeviceOffline(message *deviceOffline) {
	e := x.entry(message.Device)
	e.mu.Lock()
	result := x.applyOffline(e, message.Timestamp)
	e.mu.Unlock()
	x.complete(x.ctx, sourceGossip, result)
}

func (x *Store) handleDeviceRemoved(message *deviceRemoved) {
	e := x.entry(message.Device)
	e.mu.Lock()
	result := x.applyRemove(x.ctx, e, message.Timestamp)
	e.mu.Unlock()
	x.complete(x.ctx, sourceGossip, result)
}

// handleRemoveRequest processes a removal forwarded by a node that is not the
// device master. The request is dropped when mastership moved in between.
func (x *Store) handleRemoveRequest(message *deviceRemoveRequest) {
	if role := x.mastership.LocalRole(x.ctx, message.Device); role != mastership.RoleMaster {
		x.logger.Debugf("%s: ignoring removal of device=%s forwarded by %s, local role is %s",
			x.localNode, message.Device, message.Sender, role)
		return
	}

	if _, err := x.RemoveDevice(x.ctx, message.Device); err != nil {
		x.logger.Warnf("%s: failed to remove device=%s on behalf of %s: %v", x.localNode, message.Device, message.Sender, err)
	}
}

// handlePortsUpdate ignores ports of devices not known yet. Anti-entropy brings them later.
func (x *Store) handlePortsUpdate(message *portsUpdate) {
	e, ok := x.entries.Get(message.Device)
	if !ok || e.view.Load() == nil {
		x.logger.Debugf("%s: device=%s not found yet, ports update ignored", x.localNode, message.Device)
		return
	}

	e.mu.Lock()
	result := x.applyPorts(e, message.Provider, message.Descriptions)
	e.mu.Unlock()
	x.complete(x.ctx, sourceGossip, result)
}

func (x *Store) handlePortStatusUpdate(message *portStatusUpdate) {
	e, ok := x.entries.Get(message.Device)
	if !ok || e.view.Load() == nil {
		x.logger.Debugf("%s: device=%s not found yet, port status ignored", x.localNode, message.Device)
		return
	}

	e.mu.Lock()
	result := x.applyPortStatus(e, message.Provider, message.Description)
	e.mu.Unlock()
	x.complete(x.ctx, sourceGossip, result)
}

// broadcast sends the envelope to every peer. Failures are logged and left to anti-entropy.
func (x *Store) broadcast(ctx context.Context, topic string, message envelope) {
	payload, err := x.codec.Encode(message)
	if err != nil {
		x.logger.Errorf("%s: failed to encode %s message: %v", x.localNode, topic, err)
		return
	}

	if err := x.transport.Broadcast(ctx, topic, payload); err != nil {
		x.metric.GossipFailure(ctx, topic)
		x.logger.Warnf("%s: failed to broadcast %s message: %v", x.localNode, topic, err)
	}
}

// unicast sends the envelope to one peer. Failures are logged and left to anti-entropy.
func (x *Store) unicast(ctx context.Context, to, topic string, message envelope) bool {
	payload, err := x.codec.Encode(message)
	if err != nil {
		x.logger.Errorf("%s: failed to encode %s message: %v", x.localNode, topic, err)
		return false
	}

	if err := x.transport.Unicast(ctx, to, topic, payload); err != nil {
		x.metric.GossipFailure(ctx, topic)
		x.logger.Warnf("%s: failed to send %s message to %s: %v", x.localNode, topic, to, err)
		return false
	}
	return true
}

func (x *Store) forwardRemoval(ctx context.Context, master string, id device.ID) {
	if master == "" {
		x.logger.Warnf("%s: device=%s has no master, removal dropped", x.localNode, id)
		return
	}

	x.logger.Debugf("%s: %s masters device=%s, forwarding removal", x.localNode, master, id)
	x.unicast(ctx, master, topicDeviceRemoveRequest, &deviceRemoveRequest{Sender: x.localNode, Device: id})
}
