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

const nanosPerSecond int64 = int64(time.Second)

// PortStatistics is a counter snapshot for one port.
// DurationSec and DurationNano tell how long the port has been alive.
type PortStatistics struct {
	Port             PortNumber `cbor:"1,keyasint"`
	PacketsReceived  int64      `cbor:"2,keyasint"`
	PacketsSent      int64      `cbor:"3,keyasint"`
	BytesReceived    int64      `cbor:"4,keyasint"`
	BytesSent        int64      `cbor:"5,keyasint"`
	PacketsRxDropped int64      `cbor:"6,keyasint"`
	PacketsTxDropped int64      `cbor:"7,keyasint"`
	PacketsRxErrors  int64      `cbor:"8,keyasint"`
	PacketsTxErrors  int64      `cbor:"9,keyasint"`
	DurationSec      int64      `cbor:"10,keyasint"`
	DurationNano     int64      `cbor:"11,keyasint"`
}

// Delta returns the difference between current and previous.
// The nanosecond part of the duration wraps every second, so a decrease
// borrows one second from the seconds part.
func Delta(previous, current PortStatistics) PortStatistics {
	deltaSec := current.DurationSec - previous.DurationSec
	deltaNano := current.DurationNano - previous.DurationNano
	if current.DurationNano < previous.DurationNano {
		deltaNano += nanosPerSecond
		deltaSec--
	}

	return PortStatistics{
		Port:             current.Port,
		PacketsReceived:  current.PacketsReceived - previous.PacketsReceived,
		PacketsSent:      current.PacketsSent - previous.PacketsSent,
		BytesReceived:    current.BytesReceived - previous.BytesReceived,
		BytesSent:        current.BytesSent - previous.BytesSent,
		PacketsRxDropped: current.PacketsRxDropped - previous.PacketsRxDropped,
		PacketsTxDropped: current.PacketsTxDropped - previous.PacketsTxDropped,
		PacketsRxErrors:  current.PacketsRxErrors - previous.PacketsRxErrors,
		PacketsTxErrors:  current.PacketsTxErrors - previous.PacketsTxErrors,
		DurationSec:      deltaSec,
		DurationNano:     deltaNano,
	}
}
