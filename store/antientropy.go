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
	"math/rand/v2"

	"github.com/tochemey/gossipstore/clock"
	"github.com/tochemey/gossipstore/device"
)

// push is a repair message queued while entry locks are held and sent after.
type push struct {
	topic   string
	message envelope
}

func (x *Store) antiEntropyLoop() {
	defer x.wg.Done()
	for {
		select {
		case <-x.ctx.Done():
			return
		case <-x.ticker.Ticks:
			x.advertise(x.ctx)
		}
	}
}

// advertise sends the local advertisement to a random peer
func (x *Store) advertise(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	peers := x.transport.Peers()
	if len(peers) == 0 {
		x.logger.Debugf("%s: no peer to advertise to", x.localNode)
		return
	}
	peer := peers[rand.IntN(len(peers))]

	ad := x.advertisement(false)
	if ctx.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, x.antiEntropyPeriod)
	defer cancel()
	if x.unicast(ctx, peer, topicDeviceAdvertisement, ad) {
		x.metric.AntiEntropyRound(ctx)
	}
}

// advertisement fingerprints every fragment held locally
func (x *Store) advertisement(reply bool) *advertisement {
	ad := &advertisement{Sender: x.localNode, Reply: reply}
	x.entries.Range(func(id device.ID, e *entry) {
		e.mu.Lock()
		defer e.mu.Unlock()

		if e.hasOffline {
			ad.Offline = append(ad.Offline, deviceTimestamp{Device: id, Timestamp: e.offline})
		}
		if e.hasRemoved {
			ad.Removed = append(ad.Removed, deviceTimestamp{Device: id, Timestamp: e.removed})
		}

		for provider, descs := range e.providers {
			ad.Devices = append(ad.Devices, deviceFingerprint{
				Fragment:  deviceFragment{Device: id, Provider: provider},
				Timestamp: descs.device.Timestamp,
				Batch:     descs.batch,
			})
			for number, desc := range descs.ports {
				ad.Ports = append(ad.Ports, portFingerprint{
					Fragment:  portFragment{Device: id, Provider: provider, Port: number},
					Timestamp: desc.Timestamp,
				})
			}
		}
	})
	return ad
}

// handleAdvertisement compares the sender's fingerprints with the local state.
// Fragments the sender lacks or holds older are pushed to it with the regular
// gossip envelopes. When the sender holds fragments that are newer or unknown
// here, the local advertisement is sent back so the sender pushes them in turn.
func (x *Store) handleAdvertisement(ad *advertisement) {
	ctx := x.ctx
	remoteDevices := make(map[deviceFragment]deviceFingerprint, len(ad.Devices))
	for _, fingerprint := range ad.Devices {
		remoteDevices[fingerprint.Fragment] = fingerprint
	}
	remotePorts := make(map[portFragment]clock.Timestamp, len(ad.Ports))
	for _, fingerprint := range ad.Ports {
		remotePorts[fingerprint.Fragment] = fingerprint.Timestamp
	}
	remoteOffline := timestamps(ad.Offline)
	remoteRemoved := timestamps(ad.Removed)

	var (
		pushes []push
		result outcome
		needed int
	)

	x.entries.Range(func(id device.ID, e *entry) {
		e.mu.Lock()
		defer e.mu.Unlock()

		removedAt, removedRemotely := remoteRemoved[id]
		delete(remoteRemoved, id)
		if removedRemotely {
			result.merge(x.applyRemove(ctx, e, removedAt))
		}
		if e.hasRemoved && (!removedRemotely || e.removed.IsNewerThan(removedAt)) {
			pushes = append(pushes, push{topicDeviceRemoved, &deviceRemoved{Sender: x.localNode, Device: id, Timestamp: e.removed}})
		}

		var localLatest clock.Timestamp
		if e.hasOffline {
			localLatest = e.offline
		}

		for _, provider := range sortedProviders(e.providers) {
			descs := e.providers[provider]
			fragment := deviceFragment{Device: id, Provider: provider}
			remote, described := remoteDevices[fragment]
			delete(remoteDevices, fragment)
			var portPushes []push
			for number, desc := range descs.ports {
				fragment := portFragment{Device: id, Provider: provider, Port: number}
				remotePort, known := remotePorts[fragment]
				delete(remotePorts, fragment)
				switch {
				case known && remotePort.IsNewerThan(desc.Timestamp):
					needed++
				case known && remotePort == desc.Timestamp:
				case described && remote.Batch.IsNewerThan(desc.Timestamp):
					// the sender left the port out of a newer batch
				default:
					portPushes = append(portPushes, push{topicPortStatusUpdate, &portStatusUpdate{
						Sender:      x.localNode,
						Provider:    provider,
						Device:      id,
						Description: desc,
					}})
				}
			}

			if described && (remote.Timestamp.IsNewerThan(descs.device.Timestamp) || remote.Batch.IsNewerThan(descs.batch)) {
				needed++
			}

			// ports of an unknown device are ignored, and a batch timestamp
			// reaching the sender before the ports would drop them
			if !described || descs.device.IsNewerThan(remote.Timestamp) || descs.batch.IsNewerThan(remote.Batch) {
				update := push{topicDeviceUpdate, &deviceUpdate{
					Sender:      x.localNode,
					Provider:    provider,
					Device:      id,
					Description: descs.device,
					Batch:       descs.batch,
				}}
				if described {
					portPushes = append(portPushes, update)
				} else {
					portPushes = append([]push{update}, portPushes...)
				}
			}
			pushes = append(pushes, portPushes...)

			localLatest = clock.Max(localLatest, descs.latestTimestamp())
		}

		offlineAt, offlineRemotely := remoteOffline[id]
		delete(remoteOffline, id)
		if offlineRemotely && offlineAt.IsNewerThan(localLatest) {
			result.merge(x.applyOffline(e, offlineAt))
		}
		if e.hasOffline && !offlineRemotely {
			pushes = append(pushes, push{topicDeviceOffline, &deviceOffline{Sender: x.localNode, Device: id, Timestamp: e.offline}})
		}
	})

	// tombstones of devices never seen here
	for id, removedAt := range remoteRemoved {
		e := x.entry(id)
		e.mu.Lock()
		result.merge(x.applyRemove(ctx, e, removedAt))
		e.mu.Unlock()
	}

	for fragment, remote := range remoteDevices {
		if !x.removed(fragment.Device, remote.Timestamp) {
			needed++
		}
	}
	for fragment, remote := range remotePorts {
		if !x.dropped(fragment, remote) {
			needed++
		}
	}

	x.complete(ctx, sourceAntiEntropy, result)

	sent := 0
	for _, p := range pushes {
		if x.unicast(ctx, ad.Sender, p.topic, p.message) {
			sent++
		}
	}
	x.metric.AntiEntropyPush(ctx, sent)

	if needed == 0 || ad.Reply {
		return
	}

	x.logger.Debugf("%s: %d fragments behind %s, sending back advertisement", x.localNode, needed, ad.Sender)
	x.unicast(ctx, ad.Sender, topicDeviceAdvertisement, x.advertisement(true))
}

// removed reports whether a tombstone dominates ts for the device
func (x *Store) removed(id device.ID, ts clock.Timestamp) bool {
	e, ok := x.entries.Get(id)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isRemoved(ts)
}

// dropped reports whether a tombstone or a newer batch of the provider dominates
// the port description the sender holds
func (x *Store) dropped(fragment portFragment, ts clock.Timestamp) bool {
	e, ok := x.entries.Get(fragment.Device)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.isRemoved(ts) {
		return true
	}
	descs, ok := e.providers[fragment.Provider]
	return ok && descs.batch.Compare(ts) >= 0
}

func timestamps(entries []deviceTimestamp) map[device.ID]clock.Timestamp {
	out := make(map[device.ID]clock.Timestamp, len(entries))
	for _, stamp := range entries {
		out[stamp.Device] = stamp.Timestamp
	}
	return out
}
