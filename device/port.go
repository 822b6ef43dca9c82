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

import "strconv"

// PortNumber identifies a port within a device.
type PortNumber uint64

// String returns the decimal port number
func (n PortNumber) String() string {
	return strconv.FormatUint(uint64(n), 10)
}

// PortType classifies a port.
type PortType int

const (
	Copper PortType = iota
	Fiber
	Packet
	OCH
	ODUCLT
	OMS
	VirtualPort
)

// String returns the port type name
func (t PortType) String() string {
	switch t {
	case Copper:
		return "COPPER"
	case Fiber:
		return "FIBER"
	case Packet:
		return "PACKET"
	case OCH:
		return "OCH"
	case ODUCLT:
		return "ODUCLT"
	case OMS:
		return "OMS"
	default:
		return "VIRTUAL"
	}
}

// PortDescription is what a provider reports about a port.
// Removed marks the port as withdrawn by the provider.
type PortDescription struct {
	Number      PortNumber  `cbor:"1,keyasint"`
	Enabled     bool        `cbor:"2,keyasint"`
	Type        PortType    `cbor:"3,keyasint"`
	Speed       uint64      `cbor:"4,keyasint"`
	Removed     bool        `cbor:"5,keyasint"`
	Annotations Annotations `cbor:"6,keyasint,omitempty"`
}

// Port is the composed view of a port. It is read-only.
type Port struct {
	Device      ID
	Number      PortNumber
	Enabled     bool
	Type        PortType
	Speed       uint64
	Annotations Annotations
}

// Equal reports whether both ports carry the same fields.
func (p *Port) Equal(other *Port) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Device == other.Device &&
		p.Number == other.Number &&
		p.Enabled == other.Enabled &&
		p.Type == other.Type &&
		p.Speed == other.Speed &&
		p.Annotations.Equal(other.Annotations)
}
