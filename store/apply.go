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

	"github.com/tochemey/gossipstore/clock"
	"github.com/tochemey/gossipstore/device"
)

// outcome is the result of applying a contribution under the entry lock.
// accepted tells whether the contribution was stored, which is what decides
// gossiping. events are delivered to the delegate once the lock is released and
// event is the one handed back to a local caller.
type outcome struct {
	accepted bool
	event    *device.Event
	events   []*device.Event
}

func (o *outcome) main(event *device.Event) {
	if o.event == nil {
		o.event = event
	}
	o.events = append(o.events, event)
}

func (o *outcome) emit(event *device.Event) {
	o.events = append(o.events, event)
}

func (o *outcome) merge(other outcome) {
	o.accepted = o.accepted || other.accepted
	o.events = append(o.events, other.events...)
}

// applyDevice stores a provider device description and recomposes the device.
//
// A device first seen with DefaultAvailable unset is registered but stays
// unavailable. Ancillary providers never change availability and only produce
// an update when annotations change.
func (x *Store) applyDevice(e *entry, provider device.ProviderID, desc clock.Timestamped[device.Description]) outcome {
	if e.isRemoved(desc.Timestamp) {
		return outcome{}
	}

	descs, ok := e.providers[provider]
	if ok && !desc.IsNewerThan(descs.device.Timestamp) {
		return outcome{}
	}

	if !ok {
		descs = newDeviceDescriptions()
		e.providers[provider] = descs
	}

	descs.putDevice(desc)
	previous := e.view.Load()
	composed := composeDevice(e.id, e.providers)
	e.view.Store(composed)

	result := outcome{accepted: true}
	if previous == nil {
		result.main(device.NewEvent(device.DeviceAdded, composed))
		if desc.Value.DefaultAvailable && !provider.Ancillary {
			x.markOnline(e, desc.Timestamp)
		}
		return result
	}

	annotationsChanged := !previous.Annotations.Equal(composed.Annotations)
	propertiesChanged := !previous.PropertiesEqual(composed)
	if annotationsChanged || (!provider.Ancillary && propertiesChanged) {
		result.main(device.NewEvent(device.DeviceUpdated, composed))
	}

	if !provider.Ancillary && desc.Value.DefaultAvailable && x.markOnline(e, desc.Timestamp) {
		result.emit(device.NewEvent(device.DeviceAvailabilityChanged, composed))
	}
	return result
}

// applyPorts stores a batch of port descriptions sharing one timestamp.
// Ports the provider described before the batch and left out of it are dropped.
// A batch older than the last one accepted from the provider is dropped as a whole.
func (x *Store) applyPorts(e *entry, provider device.ProviderID, batch clock.Timestamped[[]device.PortDescription]) outcome {
	view := e.view.Load()
	if view == nil || e.isRemoved(batch.Timestamp) {
		return outcome{}
	}

	descs, ok := e.providers[provider]
	if !ok {
		x.logger.Warnf("%s: device=%s has no description from provider=%s, ports dropped", x.localNode, e.id, provider)
		return outcome{}
	}

	if descs.batch.IsNewerThan(batch.Timestamp) {
		return outcome{}
	}

	result := outcome{accepted: true}
	ports := e.clonePorts()
	for _, portDesc := range batch.Value {
		number := portDesc.Number
		if existing, ok := descs.port(number); ok && existing.IsNewerThan(batch.Timestamp) {
			continue
		}

		descs.putPort(clock.NewTimestamped(portDesc, batch.Timestamp))
		if event := refreshPort(e, view, ports, number); event != nil {
			result.main(event)
		}
	}

	for _, number := range descs.advanceBatch(batch.Timestamp) {
		if event := refreshPort(e, view, ports, number); event != nil {
			result.main(event)
		}
	}

	e.publishPorts(ports)
	return result
}

// applyBatch moves the batch timestamp of the provider forward when a peer
// accepted a newer port list, dropping the ports left out of it.
func (x *Store) applyBatch(e *entry, provider device.ProviderID, ts clock.Timestamp) outcome {
	view := e.view.Load()
	descs, ok := e.providers[provider]
	if view == nil || !ok || e.isRemoved(ts) || !ts.IsNewerThan(descs.batch) {
		return outcome{}
	}

	result := outcome{accepted: true}
	ports := e.clonePorts()
	for _, number := range descs.advanceBatch(ts) {
		if event := refreshPort(e, view, ports, number); event != nil {
			result.main(event)
		}
	}
	e.publishPorts(ports)
	return result
}

// applyPortStatus stores a single port description. The description is only
// accepted when strictly newer than the one held for that provider, or than the
// last batch when the provider never described the port.
func (x *Store) applyPortStatus(e *entry, provider device.ProviderID, desc clock.Timestamped[device.PortDescription]) outcome {
	view := e.view.Load()
	if view == nil || e.isRemoved(desc.Timestamp) {
		return outcome{}
	}

	descs, ok := e.providers[provider]
	if !ok {
		x.logger.Warnf("%s: device=%s has no description from provider=%s, port status dropped", x.localNode, e.id, provider)
		return outcome{}
	}

	number := desc.Value.Number
	existing, known := descs.port(number)
	switch {
	case known && !desc.IsNewerThan(existing.Timestamp):
		return outcome{}
	case !known && descs.batch.IsNewerThan(desc.Timestamp):
		return outcome{}
	}

	descs.putPort(desc)
	result := outcome{accepted: true}

	ports := e.clonePorts()
	if event := refreshPort(e, view, ports, number); event != nil {
		result.main(event)
	}
	e.publishPorts(ports)
	return result
}

// refreshPort recomposes one port into ports and returns the resulting event, if any.
// The port stays in the view as long as one provider still describes it.
func refreshPort(e *entry, view *device.Device, ports portViews, number device.PortNumber) *device.Event {
	previous, exists := ports[number]
	if !portExists(number, e.providers) {
		if !exists {
			return nil
		}
		delete(ports, number)
		return device.NewPortEvent(device.PortRemoved, view, previous)
	}

	composed := composePort(e.id, number, e.providers)
	switch {
	case !exists:
		ports[number] = composed
		return device.NewPortEvent(device.PortAdded, view, composed)
	case !previous.Equal(composed):
		ports[number] = composed
		return device.NewPortEvent(device.PortUpdated, view, composed)
	default:
		return nil
	}
}

// applyOffline records an offline mark, see markOffline
func (x *Store) applyOffline(e *entry, ts clock.Timestamp) outcome {
	if e.isRemoved(ts) {
		return outcome{}
	}
	return x.markOffline(e, ts)
}

// applyRemove accepts a removal newer than anything the primary provider
// reported. It persists the tombstone, drops the ports and descriptions and marks
// the device offline. A removal of a device without descriptions only moves
// the tombstone forward.
func (x *Store) applyRemove(ctx context.Context, e *entry, ts clock.Timestamp) outcome {
	primary, ok := e.primary()
	switch {
	case ok && !ts.IsNewerThan(primary.latestTimestamp()):
		return outcome{}
	case !ok && e.isRemoved(ts):
		return outcome{}
	}

	e.removed, e.hasRemoved = ts, true
	if err := x.tombstones.Put(ctx, e.id, ts); err != nil {
		x.logger.Errorf("%s: failed to persist tombstone of device=%s: %v", x.localNode, e.id, err)
	}

	result := outcome{accepted: true}
	if !ok {
		return result
	}

	previous := e.view.Load()
	e.publishPorts(portViews{})
	x.markOffline(e, ts)
	x.available.Remove(e.id)
	for _, descs := range e.providers {
		descs.clear()
	}
	clear(e.providers)
	e.view.Store(nil)

	if previous != nil {
		result.main(device.NewEvent(device.DeviceRemoved, previous))
	}
	return result
}
