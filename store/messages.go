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
	"fmt"

	"github.com/tochemey/gossipstore/clock"
	"github.com/tochemey/gossipstore/device"
	gerrors "github.com/tochemey/gossipstore/errors"
)

// gossip topics. The topic is the envelope tag: each one carries exactly one envelope type.
const (
	topicDeviceUpdate        = "device-update"
	topicDeviceOffline       = "device-offline"
	topicDeviceRemoved       = "device-removed"
	topicDeviceRemoveRequest = "device-remove-request"
	topicPortUpdate          = "port-update"
	topicPortStatusUpdate    = "port-status-update"
	topicDeviceAdvertisement = "device-advertisement"
)

var topics = []string{
	topicDeviceUpdate,
	topicDeviceOffline,
	topicDeviceRemoved,
	topicDeviceRemoveRequest,
	topicPortUpdate,
	topicPortStatusUpdate,
	topicDeviceAdvertisement,
}

// envelope is implemented by every gossip message
type envelope interface {
	// key routes the message to a worker. Messages sharing a key are applied in order.
	key() string
	validate() error
}

// deviceUpdate carries a device description. Anti-entropy also sets Batch, the
// timestamp of the provider's last complete port list.
type deviceUpdate struct {
	Sender      string                                `cbor:"1,keyasint"`
	Provider    device.ProviderID                     `cbor:"2,keyasint"`
	Device      device.ID                             `cbor:"3,keyasint"`
	Description clock.Timestamped[device.Description] `cbor:"4,keyasint"`
	Batch       clock.Timestamp                       `cbor:"5,keyasint"`
}

type deviceOffline struct {
	Sender    string          `cbor:"1,keyasint"`
	Device    device.ID       `cbor:"2,keyasint"`
	Timestamp clock.Timestamp `cbor:"3,keyasint"`
}

type deviceRemoved struct {
	Sender    string          `cbor:"1,keyasint"`
	Device    device.ID       `cbor:"2,keyasint"`
	Timestamp clock.Timestamp `cbor:"3,keyasint"`
}

type deviceRemoveRequest struct {
	Sender string    `cbor:"1,keyasint"`
	Device device.ID `cbor:"2,keyasint"`
}

type portsUpdate struct {
	Sender       string                                      `cbor:"1,keyasint"`
	Provider     device.ProviderID                           `cbor:"2,keyasint"`
	Device       device.ID                                   `cbor:"3,keyasint"`
	Descriptions clock.Timestamped[[]device.PortDescription] `cbor:"4,keyasint"`
}

type portStatusUpdate struct {
	Sender      string                                    `cbor:"1,keyasint"`
	Provider    device.ProviderID                         `cbor:"2,keyasint"`
	Device      device.ID                                 `cbor:"3,keyasint"`
	Description clock.Timestamped[device.PortDescription] `cbor:"4,keyasint"`
}

// deviceFragment identifies the device description of one provider
type deviceFragment struct {
	Device   device.ID         `cbor:"1,keyasint"`
	Provider device.ProviderID `cbor:"2,keyasint"`
}

// portFragment identifies the port description of one provider
type portFragment struct {
	Device   device.ID         `cbor:"1,keyasint"`
	Provider device.ProviderID `cbor:"2,keyasint"`
	Port     device.PortNumber `cbor:"3,keyasint"`
}

type deviceFingerprint struct {
	Fragment  deviceFragment  `cbor:"1,keyasint"`
	Timestamp clock.Timestamp `cbor:"2,keyasint"`
	Batch     clock.Timestamp `cbor:"3,keyasint"`
}

type portFingerprint struct {
	Fragment  portFragment    `cbor:"1,keyasint"`
	Timestamp clock.Timestamp `cbor:"2,keyasint"`
}

type deviceTimestamp struct {
	Device    device.ID       `cbor:"1,keyasint"`
	Timestamp clock.Timestamp `cbor:"2,keyasint"`
}

// advertisement summarizes everything a node holds as fragment timestamps.
// Reply is set on the advertisement sent back to a requester, and a reply is never answered.
type advertisement struct {
	Sender  string              `cbor:"1,keyasint"`
	Devices []deviceFingerprint `cbor:"2,keyasint"`
	Ports   []portFingerprint   `cbor:"3,keyasint"`
	Offline []deviceTimestamp   `cbor:"4,keyasint"`
	Removed []deviceTimestamp   `cbor:"5,keyasint"`
	Reply   bool                `cbor:"6,keyasint"`
}

// enforce compilation error
var (
	_ envelope = (*deviceUpdate)(nil)
	_ envelope = (*deviceOffline)(nil)
	_ envelope = (*deviceRemoved)(nil)
	_ envelope = (*deviceRemoveRequest)(nil)
	_ envelope = (*portsUpdate)(nil)
	_ envelope = (*portStatusUpdate)(nil)
	_ envelope = (*advertisement)(nil)
)

func (m *deviceUpdate) key() string        { return string(m.Device) }
func (m *deviceOffline) key() string       { return string(m.Device) }
func (m *deviceRemoved) key() string       { return string(m.Device) }
func (m *deviceRemoveRequest) key() string { return string(m.Device) }
func (m *portsUpdate) key() string         { return string(m.Device) }
func (m *portStatusUpdate) key() string    { return string(m.Device) }
func (m *advertisement) key() string       { return m.Sender }

func (m *deviceUpdate) validate() error {
	return validateDevice(m.Sender, m.Device)
}

func (m *deviceOffline) validate() error {
	return validateDevice(m.Sender, m.Device)
}

func (m *deviceRemoved) validate() error {
	return validateDevice(m.Sender, m.Device)
}

func (m *deviceRemoveRequest) validate() error {
	return validateDevice(m.Sender, m.Device)
}

func (m *portsUpdate) validate() error {
	return validateDevice(m.Sender, m.Device)
}

func (m *portStatusUpdate) validate() error {
	return validateDevice(m.Sender, m.Device)
}

func (m *advertisement) validate() error {
	if m.Sender == "" {
		return fmt.Errorf("advertisement without sender: %w", gerrors.ErrInvalidEnvelope)
	}
	return nil
}

func validateDevice(sender string, id device.ID) error {
	switch {
	case sender == "":
		return fmt.Errorf("envelope without sender: %w", gerrors.ErrInvalidEnvelope)
	case id == "":
		return fmt.Errorf("envelope without device: %w", gerrors.ErrInvalidEnvelope)
	default:
		return nil
	}
}
