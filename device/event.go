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

package device

import "time"

// EventType tells what changed in the composed view.
type EventType int

const (
	DeviceAdded EventType = iota
	DeviceUpdated
	DeviceRemoved
	DeviceAvailabilityChanged
	PortAdded
	PortUpdated
	PortRemoved
	PortStatsUpdated
)

// String returns the event type name
func (t EventType) String() string {
	switch t {
	case DeviceAdded:
		return "DEVICE_ADDED"
	case DeviceUpdated:
		return "DEVICE_UPDATED"
	case DeviceRemoved:
		return "DEVICE_REMOVED"
	case DeviceAvailabilityChanged:
		return "DEVICE_AVAILABILITY_CHANGED"
	case PortAdded:
		return "PORT_ADDED"
	case PortUpdated:
		return "PORT_UPDATED"
	case PortRemoved:
		return "PORT_REMOVED"
	case PortStatsUpdated:
		return "PORT_STATS_UPDATED"
	default:
		return "UNKNOWN"
	}
}

// Event is emitted whenever the composed view of a device or port changes.
// Port is nil for device-level events.
type Event struct {
	Type   EventType
	Device *Device
	Port   *Port
	Time   time.Time
}

// NewEvent creates a device-level event
func NewEvent(eventType EventType, device *Device) *Event {
	return &Event{Type: eventType, Device: device, Time: time.Now()}
}

// NewPortEvent creates a port-level event
func NewPortEvent(eventType EventType, device *Device, port *Port) *Event {
	return &Event{Type: eventType, Device: device, Port: port, Time: time.Now()}
}
