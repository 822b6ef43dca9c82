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
	"maps"
	"sync"

	"go.uber.org/atomic"

	"github.com/tochemey/gossipstore/clock"
	"github.com/tochemey/gossipstore/device"
)

type portViews map[device.PortNumber]*device.Port

// entry is the arena slot of a device. Every field but the published views is
// guarded by mu. Views are replaced, never mutated, so readers skip the lock.
type entry struct {
	id device.ID
	mu sync.Mutex

	providers map[device.ProviderID]*deviceDescriptions

	offline    clock.Timestamp
	hasOffline bool
	removed    clock.Timestamp
	hasRemoved bool

	view  atomic.Pointer[device.Device]
	ports atomic.Pointer[portViews]
}

func newEntry(id device.ID) *entry {
	e := &entry{
		id:        id,
		providers: make(map[device.ProviderID]*deviceDescriptions),
	}
	e.ports.Store(&portViews{})
	return e
}

// primary returns the descriptions of the primary provider
func (e *entry) primary() (*deviceDescriptions, bool) {
	id, ok := primaryProvider(e.providers)
	if !ok {
		return nil, false
	}
	return e.providers[id], true
}

// isRemoved reports whether a tombstone at least as recent as ts exists
func (e *entry) isRemoved(ts clock.Timestamp) bool {
	return e.hasRemoved && e.removed.Compare(ts) >= 0
}

// latestTimestamp returns the newest timestamp known for the device, offline mark included
func (e *entry) latestTimestamp() clock.Timestamp {
	var latest clock.Timestamp
	if e.hasOffline {
		latest = e.offline
	}
	for _, descs := range e.providers {
		latest = clock.Max(latest, descs.latestTimestamp())
	}
	return latest
}

// clonePorts returns a private copy of the published ports, ready to be mutated and published
func (e *entry) clonePorts() portViews {
	return maps.Clone(*e.ports.Load())
}

func (e *entry) publishPorts(ports portViews) {
	e.ports.Store(&ports)
}

func (e *entry) port(number device.PortNumber) *device.Port {
	return (*e.ports.Load())[number]
}

func (e *entry) portList() []*device.Port {
	ports := *e.ports.Load()
	out := make([]*device.Port, 0, len(ports))
	for _, port := range ports {
		out = append(out, port)
	}
	return out
}
