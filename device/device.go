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

// Package device holds the inventory data model replicated by the store:
// identifiers, provider descriptions and the composed device and port views.
package device

// ID uniquely identifies a device across the cluster.
type ID string

// String returns the device identifier
func (id ID) String() string {
	return string(id)
}

// Type classifies a device.
type Type int

const (
	Switch Type = iota
	Router
	ROADM
	OTN
	Firewall
	Controller
	Server
	Virtual
	Other
)

// String returns the type name
func (t Type) String() string {
	switch t {
	case Switch:
		return "SWITCH"
	case Router:
		return "ROUTER"
	case ROADM:
		return "ROADM"
	case OTN:
		return "OTN"
	case Firewall:
		return "FIREWALL"
	case Controller:
		return "CONTROLLER"
	case Server:
		return "SERVER"
	case Virtual:
		return "VIRTUAL"
	default:
		return "OTHER"
	}
}

// Description is what a provider reports about a device.
// DefaultAvailable tells whether the device should be considered online as soon as it is known.
type Description struct {
	URI              string      `cbor:"1,keyasint"`
	Type             Type        `cbor:"2,keyasint"`
	Manufacturer     string      `cbor:"3,keyasint"`
	HWVersion        string      `cbor:"4,keyasint"`
	SWVersion        string      `cbor:"5,keyasint"`
	SerialNumber     string      `cbor:"6,keyasint"`
	ChassisID        string      `cbor:"7,keyasint"`
	DefaultAvailable bool        `cbor:"8,keyasint"`
	Annotations      Annotations `cbor:"9,keyasint,omitempty"`
}

// Device is the composed view of a device. It is read-only.
type Device struct {
	ID           ID
	ProviderID   ProviderID
	Type         Type
	Manufacturer string
	HWVersion    string
	SWVersion    string
	SerialNumber string
	ChassisID    string
	Annotations  Annotations
}

// Equal reports whether both devices carry the same fields.
func (d *Device) Equal(other *Device) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.ID == other.ID &&
		d.ProviderID == other.ProviderID &&
		d.Type == other.Type &&
		d.Manufacturer == other.Manufacturer &&
		d.HWVersion == other.HWVersion &&
		d.SWVersion == other.SWVersion &&
		d.SerialNumber == other.SerialNumber &&
		d.ChassisID == other.ChassisID &&
		d.Annotations.Equal(other.Annotations)
}

// PropertiesEqual reports whether both devices agree on everything but annotations.
func (d *Device) PropertiesEqual(other *Device) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.ProviderID == other.ProviderID &&
		d.Type == other.Type &&
		d.Manufacturer == other.Manufacturer &&
		d.HWVersion == other.HWVersion &&
		d.SWVersion == other.SWVersion &&
		d.SerialNumber == other.SerialNumber &&
		d.ChassisID == other.ChassisID
}
