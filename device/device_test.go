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

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotations(t *testing.T) {
	t.Run("With later overlays winning", func(t *testing.T) {
		base := Annotations{"owner": "ops", "rack": "r1"}
		merged := Union(base, Annotations{"rack": "r2"}, Annotations{"rack": "r3", "zone": "z"})
		assert.Equal(t, Annotations{"owner": "ops", "rack": "r3", "zone": "z"}, merged)
		// inputs are untouched
		assert.Equal(t, "r1", base["rack"])
	})

	t.Run("With empty inputs", func(t *testing.T) {
		assert.Nil(t, Union(nil, Annotations{}))
		assert.True(t, Annotations(nil).Equal(Annotations{}))
		assert.Nil(t, Annotations(nil).Copy())
	})
}

func TestProviderIDOrdering(t *testing.T) {
	ids := []ProviderID{
		NewAncillaryProviderID("of", "b"),
		NewProviderID("snmp", "a"),
		NewProviderID("of", "b"),
		NewProviderID("of", "a"),
	}
	slices.SortFunc(ids, ProviderID.Compare)

	require.Equal(t, []ProviderID{
		NewProviderID("of", "a"),
		NewProviderID("of", "b"),
		NewAncillaryProviderID("of", "b"),
		NewProviderID("snmp", "a"),
	}, ids)
	assert.Equal(t, "of:a", ids[0].String())
}

func TestDeviceEquality(t *testing.T) {
	provider := NewProviderID("of", "p")
	device := &Device{ID: "of:0001", ProviderID: provider, Type: Switch, SWVersion: "1.0", Annotations: Annotations{"k": "v"}}
	same := &Device{ID: "of:0001", ProviderID: provider, Type: Switch, SWVersion: "1.0", Annotations: Annotations{"k": "v"}}
	annotated := &Device{ID: "of:0001", ProviderID: provider, Type: Switch, SWVersion: "1.0", Annotations: Annotations{"k": "w"}}

	assert.True(t, device.Equal(same))
	assert.False(t, device.Equal(annotated))
	assert.True(t, device.PropertiesEqual(annotated))
	assert.False(t, device.Equal(nil))
	assert.True(t, (*Device)(nil).Equal(nil))
}

func TestDelta(t *testing.T) {
	t.Run("With nanoseconds wrapping", func(t *testing.T) {
		previous := PortStatistics{Port: 1, PacketsReceived: 100, DurationSec: 10, DurationNano: 900000000}
		current := PortStatistics{Port: 1, PacketsReceived: 160, DurationSec: 11, DurationNano: 100000000}

		delta := Delta(previous, current)
		assert.EqualValues(t, 0, delta.DurationSec)
		assert.EqualValues(t, 200000000, delta.DurationNano)
		assert.EqualValues(t, 60, delta.PacketsReceived)
		assert.Equal(t, PortNumber(1), delta.Port)
	})

	t.Run("With nanoseconds increasing", func(t *testing.T) {
		previous := PortStatistics{DurationSec: 10, DurationNano: 100}
		current := PortStatistics{DurationSec: 12, DurationNano: 300, BytesSent: 10}

		delta := Delta(previous, current)
		assert.EqualValues(t, 2, delta.DurationSec)
		assert.EqualValues(t, 200, delta.DurationNano)
		assert.EqualValues(t, 10, delta.BytesSent)
	})
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "DEVICE_AVAILABILITY_CHANGED", DeviceAvailabilityChanged.String())
	assert.Equal(t, "PORT_STATS_UPDATED", PortStatsUpdated.String())
	assert.Equal(t, "UNKNOWN", EventType(99).String())

	event := NewPortEvent(PortAdded, &Device{ID: "of:0001"}, &Port{Number: 3})
	assert.Equal(t, PortNumber(3), event.Port.Number)
	assert.False(t, event.Time.IsZero())
}
