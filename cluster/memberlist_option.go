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

package cluster

import (
	"time"

	"github.com/tochemey/gossipstore/codec"
	"github.com/tochemey/gossipstore/log"
)

// MemberlistOption configures a MemberlistTransport
type MemberlistOption interface {
	Apply(transport *MemberlistTransport)
}

// MemberlistOptionFunc implements the MemberlistOption interface.
type MemberlistOptionFunc func(transport *MemberlistTransport)

// Apply applies the option
func (f MemberlistOptionFunc) Apply(transport *MemberlistTransport) {
	f(transport)
}

// WithLogger sets the transport logger
func WithLogger(logger log.Logger) MemberlistOption {
	return MemberlistOptionFunc(func(transport *MemberlistTransport) {
		transport.logger = logger
	})
}

// WithSeeds sets the host:port addresses contacted to join the cluster
func WithSeeds(seeds ...string) MemberlistOption {
	return MemberlistOptionFunc(func(transport *MemberlistTransport) {
		transport.seeds = seeds
	})
}

// WithCodec sets the codec used to frame messages
func WithCodec(codec codec.Codec) MemberlistOption {
	return MemberlistOptionFunc(func(transport *MemberlistTransport) {
		transport.codec = codec
	})
}

// WithAdvertiseAddr sets the address peers use to reach the node
func WithAdvertiseAddr(addr string) MemberlistOption {
	return MemberlistOptionFunc(func(transport *MemberlistTransport) {
		transport.advertiseAddr = addr
	})
}

// WithJoinRetry sets the maximum join attempts and the delay between them
func WithJoinRetry(attempts int, interval time.Duration) MemberlistOption {
	return MemberlistOptionFunc(func(transport *MemberlistTransport) {
		transport.maxJoinAttempts = attempts
		transport.joinRetryInterval = interval
	})
}

// WithJoinTimeout sets the overall join timeout
func WithJoinTimeout(timeout time.Duration) MemberlistOption {
	return MemberlistOptionFunc(func(transport *MemberlistTransport) {
		transport.joinTimeout = timeout
	})
}

// WithShutdownTimeout sets how long leaving the cluster may take
func WithShutdownTimeout(timeout time.Duration) MemberlistOption {
	return MemberlistOptionFunc(func(transport *MemberlistTransport) {
		transport.shutdownTimeout = timeout
	})
}
