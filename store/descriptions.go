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
	"github.com/tochemey/gossipstore/clock"
	"github.com/tochemey/gossipstore/device"
)

// deviceDescriptions holds the latest contribution of one provider for one device.
// It is guarded by the owning entry lock.
//
// batch is the timestamp of the newest complete port list. Every port description
// held is at least that recent, older ones were left out of that list.
type deviceDescriptions struct {
	device clock.Timestamped[device.Description]
	ports  map[device.PortNumber]clock.Timestamped[device.PortDescription]
	batch  clock.Timestamp
}

func newDeviceDescriptions() *deviceDescriptions {
	return &deviceDescriptions{
		ports: make(map[device.PortNumber]clock.Timestamped[device.PortDescription]),
	}
}

// putDevice stores the description, keeping the annotations of the previous one
// underneath the new ones.
func (d *deviceDescriptions) putDevice(desc clock.Timestamped[device.Description]) {
	merged := desc.Value
	merged.Annotations = device.Union(d.device.Value.Annotations, desc.Value.Annotations)
	d.device = clock.NewTimestamped(merged, desc.Timestamp)
}

// putPort stores the port description the same way putDevice does
func (d *deviceDescriptions) putPort(desc clock.Timestamped[device.PortDescription]) {
	merged := desc.Value
	if previous, ok := d.ports[desc.Value.Number]; ok {
		merged.Annotations = device.Union(previous.Value.Annotations, desc.Value.Annotations)
	} else {
		merged.Annotations = desc.Value.Annotations.Copy()
	}
	d.ports[desc.Value.Number] = clock.NewTimestamped(merged, desc.Timestamp)
}

// advanceBatch moves the batch timestamp forward to ts and drops every port
// description older than it. It returns the dropped port numbers.
func (d *deviceDescriptions) advanceBatch(ts clock.Timestamp) []device.PortNumber {
	if !ts.IsNewerThan(d.batch) {
		return nil
	}

	d.batch = ts
	var dropped []device.PortNumber
	for number, desc := range d.ports {
		if ts.IsNewerThan(desc.Timestamp) {
			delete(d.ports, number)
			dropped = append(dropped, number)
		}
	}
	return dropped
}

// livePort returns the port description unless the provider withdrew the port
func (d *deviceDescriptions) livePort(number device.PortNumber) (clock.Timestamped[device.PortDescription], bool) {
	desc, ok := d.ports[number]
	if !ok || desc.Value.Removed {
		return clock.Timestamped[device.PortDescription]{}, false
	}
	return desc, true
}

func (d *deviceDescriptions) port(number device.PortNumber) (clock.Timestamped[device.PortDescription], bool) {
	desc, ok := d.ports[number]
	return desc, ok
}

// latestTimestamp returns the newest timestamp across the device and its ports
func (d *deviceDescriptions) latestTimestamp() clock.Timestamp {
	latest := clock.Max(d.device.Timestamp, d.batch)
	for _, desc := range d.ports {
		if desc.IsNewerThan(latest) {
			latest = desc.Timestamp
		}
	}
	return latest
}

func (d *deviceDescriptions) clear() {
	d.device = clock.Timestamped[device.Description]{}
	d.batch = clock.Timestamp{}
	clear(d.ports)
}
