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

// markOnline adds the device to the availability set unless an offline mark
// newer than or equal to ts exists. It reports whether availability flipped.
// Callers hold the entry lock.
func (x *Store) markOnline(e *entry, ts clock.Timestamp) bool {
	if e.hasOffline && e.offline.Compare(ts) >= 0 {
		return false
	}
	e.hasOffline = false
	e.offline = clock.Timestamp{}
	return x.available.Add(e.id)
}

// markOffline records an offline mark when ts is newer than anything the primary
// provider reported, so a node that lost mastership cannot flap the device.
// Callers hold the entry lock.
func (x *Store) markOffline(e *entry, ts clock.Timestamp) outcome {
	primary, ok := e.primary()
	if !ok || !ts.IsNewerThan(primary.latestTimestamp()) {
		return outcome{}
	}

	e.offline, e.hasOffline = ts, true
	result := outcome{accepted: true}
	if !x.available.Contains(e.id) {
		return result
	}

	x.available.Remove(e.id)
	if view := e.view.Load(); view != nil {
		result.main(device.NewEvent(device.DeviceAvailabilityChanged, view))
	}
	return result
}
