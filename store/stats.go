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
	"fmt"
	"slices"

	"github.com/tochemey/gossipstore/device"
	gerrors "github.com/tochemey/gossipstore/errors"
	"github.com/tochemey/gossipstore/internal/ecmap"
)

// portStatistics is the value of the statistics maps: the latest snapshot of every port
type portStatistics = map[device.PortNumber]device.PortStatistics

func (x *Store) newStatisticsMap(name string) *ecmap.Map[device.ID, portStatistics] {
	return ecmap.New[device.ID, portStatistics](name, x.transport,
		ecmap.WithCodec[device.ID, portStatistics](x.codec),
		ecmap.WithLogger[device.ID, portStatistics](x.logger),
		ecmap.WithAntiEntropyPeriod[device.ID, portStatistics](x.statsAntiEntropyPeriod),
		ecmap.WithTombstonesDisabled[device.ID, portStatistics]())
}

// UpdatePortStatistics records the latest counters of the device ports along with
// their difference to the previous snapshot. It always returns a nil event:
// PortStatsUpdated events are produced once the statistics map applied the
// write, whichever node issued it.
func (x *Store) UpdatePortStatistics(ctx context.Context, provider device.ProviderID, id device.ID, stats []device.PortStatistics) (*device.Event, error) {
	if !x.started.Load() {
		return nil, gerrors.ErrStoreNotStarted
	}

	previous, known := x.portStats.Get(id)
	current := make(portStatistics, len(stats))
	deltas := make(portStatistics, len(stats))
	for _, snapshot := range stats {
		current[snapshot.Port] = snapshot
		if !known {
			continue
		}
		if last, ok := previous[snapshot.Port]; ok {
			deltas[snapshot.Port] = device.Delta(last, snapshot)
			continue
		}
		deltas[snapshot.Port] = device.PortStatistics{Port: snapshot.Port}
	}

	x.logger.Debugf("%s: provider=%s reported statistics of %d ports on device=%s", x.localNode, provider, len(stats), id)
	if err := x.portDeltaStats.Put(ctx, id, deltas); err != nil {
		return nil, fmt.Errorf("failed to store delta statistics of device=%s: %w", id, err)
	}
	if err := x.portStats.Put(ctx, id, current); err != nil {
		return nil, fmt.Errorf("failed to store statistics of device=%s: %w", id, err)
	}
	return nil, nil
}

// PortStatistics returns the latest counters of every port of the device
func (x *Store) PortStatistics(id device.ID) []device.PortStatistics {
	return values(x.portStats, id)
}

// PortDeltaStatistics returns the difference between the two latest snapshots of every port of the device
func (x *Store) PortDeltaStatistics(id device.ID) []device.PortStatistics {
	return values(x.portDeltaStats, id)
}

// StatisticsForPort returns the latest counters of one port
func (x *Store) StatisticsForPort(id device.ID, number device.PortNumber) (device.PortStatistics, bool) {
	stats, _ := x.portStats.Get(id)
	snapshot, ok := stats[number]
	return snapshot, ok
}

// DeltaStatisticsForPort returns the difference between the two latest snapshots of one port
func (x *Store) DeltaStatisticsForPort(id device.ID, number device.PortNumber) (device.PortStatistics, bool) {
	stats, _ := x.portDeltaStats.Get(id)
	snapshot, ok := stats[number]
	return snapshot, ok
}

// watchPortStatistics turns statistics writes into PortStatsUpdated events for known devices
func (x *Store) watchPortStatistics(events <-chan *ecmap.Event[device.ID, portStatistics]) {
	defer x.wg.Done()
	for event := range events {
		if event.Type != ecmap.Put {
			continue
		}
		if view := x.Device(event.Key); view != nil {
			x.deliver(x.ctx, device.NewEvent(device.PortStatsUpdated, view))
		}
	}
}

func values(stats *ecmap.Map[device.ID, portStatistics], id device.ID) []device.PortStatistics {
	snapshot, ok := stats.Get(id)
	if !ok {
		return nil
	}

	out := make([]device.PortStatistics, 0, len(snapshot))
	for _, port := range sortedPorts(snapshot) {
		out = append(out, snapshot[port])
	}
	return out
}

func sortedPorts(stats portStatistics) []device.PortNumber {
	ports := make([]device.PortNumber, 0, len(stats))
	for port := range stats {
		ports = append(ports, port)
	}
	slices.Sort(ports)
	return ports
}
