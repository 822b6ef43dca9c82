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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/gossipstore/clock"
	"github.com/tochemey/gossipstore/device"
)

func describe(providers map[device.ProviderID]*deviceDescriptions, provider device.ProviderID, desc device.Description, ts clock.Timestamp) {
	descs, ok := providers[provider]
	if !ok {
		descs = newDeviceDescriptions()
		providers[provider] = descs
	}
	descs.putDevice(clock.NewTimestamped(desc, ts))
}

func describePort(providers map[device.ProviderID]*deviceDescriptions, provider device.ProviderID, desc device.PortDescription, ts clock.Timestamp) {
	providers[provider].putPort(clock.NewTimestamped(desc, ts))
}

func TestPrimaryProvider(t *testing.T) {
	t.Run("With no provider", func(t *testing.T) {
		_, ok := primaryProvider(map[device.ProviderID]*deviceDescriptions{})
		assert.False(t, ok)
	})
	t.Run("With several primary providers the lowest wins", func(t *testing.T) {
		providers := map[device.ProviderID]*deviceDescriptions{
			secondaryProvider: newDeviceDescriptions(),
			openflowProvider:  newDeviceDescriptions(),
			ancillaryProvider: newDeviceDescriptions(),
		}
		primary, ok := primaryProvider(providers)
		require.True(t, ok)
		assert.Equal(t, openflowProvider, primary)
	})
	t.Run("With ancillary providers only", func(t *testing.T) {
		other := device.NewAncillaryProviderID("lldp", "discovery")
		providers := map[device.ProviderID]*deviceDescriptions{
			ancillaryProvider: newDeviceDescriptions(),
			other:             newDeviceDescriptions(),
		}
		primary, ok := primaryProvider(providers)
		require.True(t, ok)
		assert.Equal(t, other, primary)
	})
}

func TestComposeDevice(t *testing.T) {
	t.Run("With an ancillary provider contributing annotations", func(t *testing.T) {
		providers := make(map[device.ProviderID]*deviceDescriptions)
		describe(providers, openflowProvider, switchDescription(device.Annotations{"name": "s1"}), stamp(1))

		ancillary := switchDescription(device.Annotations{"k": "v", "name": "ignored"})
		ancillary.Type = device.Router
		ancillary.Manufacturer = "other"
		describe(providers, ancillaryProvider, ancillary, stamp(2))

		composed := composeDevice("of:1", providers)
		assert.Equal(t, device.ID("of:1"), composed.ID)
		assert.Equal(t, openflowProvider, composed.ProviderID)
		assert.Equal(t, device.Switch, composed.Type)
		assert.Equal(t, "acme", composed.Manufacturer)
		assert.Equal(t, device.Annotations{"name": "ignored", "k": "v"}, composed.Annotations)
	})
	t.Run("With annotations merged in provider order", func(t *testing.T) {
		first := make(map[device.ProviderID]*deviceDescriptions)
		describe(first, secondaryProvider, switchDescription(device.Annotations{"a": "snmp"}), stamp(2))
		describe(first, openflowProvider, switchDescription(device.Annotations{"a": "of"}), stamp(1))

		second := make(map[device.ProviderID]*deviceDescriptions)
		describe(second, openflowProvider, switchDescription(device.Annotations{"a": "of"}), stamp(1))
		describe(second, secondaryProvider, switchDescription(device.Annotations{"a": "snmp"}), stamp(2))

		assert.True(t, composeDevice("of:1", first).Equal(composeDevice("of:1", second)))
	})
	t.Run("With no description", func(t *testing.T) {
		assert.Panics(t, func() {
			composeDevice("of:1", map[device.ProviderID]*deviceDescriptions{})
		})
	})
}

func TestComposePort(t *testing.T) {
	newProviders := func() map[device.ProviderID]*deviceDescriptions {
		providers := make(map[device.ProviderID]*deviceDescriptions)
		describe(providers, openflowProvider, switchDescription(nil), stamp(1))
		describe(providers, ancillaryProvider, switchDescription(nil), stamp(1))
		return providers
	}

	t.Run("With the primary description only", func(t *testing.T) {
		providers := newProviders()
		describePort(providers, openflowProvider, device.PortDescription{Number: 1, Enabled: true, Type: device.Copper, Speed: 1000}, stamp(2))

		port := composePort("of:1", 1, providers)
		assert.Equal(t, &device.Port{Device: "of:1", Number: 1, Enabled: true, Type: device.Copper, Speed: 1000}, port)
	})
	t.Run("With a newer secondary description", func(t *testing.T) {
		providers := newProviders()
		describePort(providers, openflowProvider, device.PortDescription{Number: 1, Enabled: true, Type: device.Copper, Speed: 1000}, stamp(2))
		describePort(providers, ancillaryProvider, device.PortDescription{
			Number:      1,
			Enabled:     false,
			Type:        device.Fiber,
			Speed:       10000,
			Annotations: device.Annotations{"k": "v"},
		}, stamp(3))

		port := composePort("of:1", 1, providers)
		assert.True(t, port.Enabled)
		assert.Equal(t, device.Fiber, port.Type)
		assert.EqualValues(t, 10000, port.Speed)
		assert.Equal(t, device.Annotations{"k": "v"}, port.Annotations)
	})
	t.Run("With an older secondary description", func(t *testing.T) {
		providers := newProviders()
		describePort(providers, openflowProvider, device.PortDescription{Number: 1, Enabled: true, Type: device.Copper, Speed: 1000}, stamp(3))
		describePort(providers, ancillaryProvider, device.PortDescription{
			Number:      1,
			Type:        device.Fiber,
			Speed:       10000,
			Annotations: device.Annotations{"k": "v"},
		}, stamp(2))

		port := composePort("of:1", 1, providers)
		assert.Equal(t, device.Copper, port.Type)
		assert.EqualValues(t, 1000, port.Speed)
		assert.Equal(t, device.Annotations{"k": "v"}, port.Annotations)
	})
	t.Run("With no primary description", func(t *testing.T) {
		providers := newProviders()
		describePort(providers, ancillaryProvider, device.PortDescription{Number: 1, Enabled: true, Type: device.Fiber, Speed: 100}, stamp(2))

		port := composePort("of:1", 1, providers)
		assert.False(t, port.Enabled)
		assert.Equal(t, device.Fiber, port.Type)
		assert.EqualValues(t, 100, port.Speed)
	})
	t.Run("With a withdrawn primary description", func(t *testing.T) {
		providers := newProviders()
		describePort(providers, openflowProvider, device.PortDescription{Number: 1, Enabled: true, Type: device.Copper, Speed: 1000, Removed: true}, stamp(3))
		assert.False(t, portExists(1, providers))

		describePort(providers, ancillaryProvider, device.PortDescription{Number: 1, Enabled: true, Type: device.Fiber, Speed: 100}, stamp(2))
		require.True(t, portExists(1, providers))
		port := composePort("of:1", 1, providers)
		assert.False(t, port.Enabled)
		assert.Equal(t, device.Fiber, port.Type)
	})
}

func TestDeviceDescriptions(t *testing.T) {
	t.Run("With annotations kept across updates", func(t *testing.T) {
		descs := newDeviceDescriptions()
		descs.putDevice(clock.NewTimestamped(switchDescription(device.Annotations{"a": "1", "b": "1"}), stamp(1)))
		descs.putDevice(clock.NewTimestamped(switchDescription(device.Annotations{"b": "2"}), stamp(2)))

		assert.Equal(t, device.Annotations{"a": "1", "b": "2"}, descs.device.Value.Annotations)
		assert.Equal(t, stamp(2), descs.device.Timestamp)
	})
	t.Run("With port annotations kept across updates", func(t *testing.T) {
		descs := newDeviceDescriptions()
		descs.putPort(clock.NewTimestamped(device.PortDescription{Number: 7, Annotations: device.Annotations{"a": "1"}}, stamp(1)))
		descs.putPort(clock.NewTimestamped(device.PortDescription{Number: 7, Enabled: true}, stamp(2)))

		desc, ok := descs.port(7)
		require.True(t, ok)
		assert.True(t, desc.Value.Enabled)
		assert.Equal(t, device.Annotations{"a": "1"}, desc.Value.Annotations)
	})
	t.Run("With the latest timestamp across device and ports", func(t *testing.T) {
		descs := newDeviceDescriptions()
		descs.putDevice(clock.NewTimestamped(switchDescription(nil), stamp(2)))
		descs.putPort(clock.NewTimestamped(device.PortDescription{Number: 1}, stamp(5)))
		descs.putPort(clock.NewTimestamped(device.PortDescription{Number: 2}, stamp(3)))
		assert.Equal(t, stamp(5), descs.latestTimestamp())

		descs.clear()
		assert.True(t, descs.latestTimestamp().IsZero())
		_, ok := descs.port(1)
		assert.False(t, ok)
	})
	t.Run("With a newer batch", func(t *testing.T) {
		descs := newDeviceDescriptions()
		descs.putDevice(clock.NewTimestamped(switchDescription(nil), stamp(1)))
		descs.putPort(clock.NewTimestamped(device.PortDescription{Number: 1}, stamp(2)))
		descs.putPort(clock.NewTimestamped(device.PortDescription{Number: 2}, stamp(4)))

		assert.Equal(t, []device.PortNumber{1}, descs.advanceBatch(stamp(3)))
		assert.Equal(t, stamp(3), descs.batch)
		_, ok := descs.port(1)
		assert.False(t, ok)
		_, ok = descs.port(2)
		assert.True(t, ok)

		assert.Empty(t, descs.advanceBatch(stamp(2)))
		assert.Equal(t, stamp(3), descs.batch)

		descs.clear()
		assert.Empty(t, descs.advanceBatch(stamp(6)))
		assert.Equal(t, stamp(6), descs.latestTimestamp())
	})
}
