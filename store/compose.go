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
	"slices"

	"github.com/tochemey/gossipstore/clock"
	"github.com/tochemey/gossipstore/device"
	gerrors "github.com/tochemey/gossipstore/errors"
)

// sortedProviders returns the provider ids ordered by device.ProviderID.Compare.
// Every node composes in that order, whatever the order contributions arrived in.
func sortedProviders(providers map[device.ProviderID]*deviceDescriptions) []device.ProviderID {
	ids := make([]device.ProviderID, 0, len(providers))
	for id := range providers {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, device.ProviderID.Compare)
	return ids
}

// primaryProvider picks the lowest non-ancillary provider, falling back to the
// lowest ancillary one when only ancillary providers contributed.
func primaryProvider(providers map[device.ProviderID]*deviceDescriptions) (device.ProviderID, bool) {
	var (
		fallback    device.ProviderID
		hasFallback bool
	)

	for _, id := range sortedProviders(providers) {
		if !id.Ancillary {
			return id, true
		}
		if !hasFallback {
			fallback, hasFallback = id, true
		}
	}
	return fallback, hasFallback
}

// composeDevice derives the device view. Structural fields come from the primary
// provider, annotations from everybody with the primary first.
func composeDevice(id device.ID, providers map[device.ProviderID]*deviceDescriptions) *device.Device {
	primary, ok := primaryProvider(providers)
	if !ok {
		panic(gerrors.NewInvariantError("no description to compose device=%s", id))
	}

	base := providers[primary].device.Value
	overlays := make([]device.Annotations, 0, len(providers))
	for _, provider := range sortedProviders(providers) {
		if provider != primary {
			overlays = append(overlays, providers[provider].device.Value.Annotations)
		}
	}

	return &device.Device{
		ID:           id,
		ProviderID:   primary,
		Type:         base.Type,
		Manufacturer: base.Manufacturer,
		HWVersion:    base.HWVersion,
		SWVersion:    base.SWVersion,
		SerialNumber: base.SerialNumber,
		ChassisID:    base.ChassisID,
		Annotations:  device.Union(base.Annotations, overlays...),
	}
}

// composePort derives the port view. Only the primary provider decides whether
// the port is enabled. Another provider overrides type and speed when its
// description is strictly newer than the current winner, and otherwise only adds
// its annotations. Withdrawn descriptions take no part.
func composePort(id device.ID, number device.PortNumber, providers map[device.ProviderID]*deviceDescriptions) *device.Port {
	primary, ok := primaryProvider(providers)
	if !ok {
		panic(gerrors.NewInvariantError("no description to compose port=%s/%s", id, number))
	}

	port := &device.Port{Device: id, Number: number}
	var (
		annotations device.Annotations
		newest      clock.Timestamp
		hasNewest   bool
	)

	if desc, ok := providers[primary].livePort(number); ok {
		port.Enabled = desc.Value.Enabled
		port.Type = desc.Value.Type
		port.Speed = desc.Value.Speed
		annotations = desc.Value.Annotations
		newest, hasNewest = desc.Timestamp, true
	}

	for _, provider := range sortedProviders(providers) {
		if provider == primary {
			continue
		}

		desc, ok := providers[provider].livePort(number)
		if !ok {
			continue
		}

		annotations = device.Union(annotations, desc.Value.Annotations)
		if !hasNewest || desc.IsNewerThan(newest) {
			port.Type = desc.Value.Type
			port.Speed = desc.Value.Speed
			newest, hasNewest = desc.Timestamp, true
		}
	}

	port.Annotations = annotations.Copy()
	return port
}

// portExists reports whether some provider describes the port without withdrawing it
func portExists(number device.PortNumber, providers map[device.ProviderID]*deviceDescriptions) bool {
	for _, descs := range providers {
		if _, ok := descs.livePort(number); ok {
			return true
		}
	}
	return false
}
