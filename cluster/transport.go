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

// Package cluster carries topic-addressed messages between the nodes of the store cluster.
package cluster

import "context"

// Handler processes a message received on a topic. Handlers are called on the
// transport receive path and must hand heavy work to their own executor.
type Handler func(sender string, payload []byte)

// Transport is point-to-point and broadcast messaging between cluster members.
// Sends are fire-and-forget: a nil error only means the message left this node.
type Transport interface {
	// Start joins the cluster
	Start(ctx context.Context) error
	// Stop leaves the cluster
	Stop(ctx context.Context) error
	// LocalNode returns the local node identifier
	LocalNode() string
	// Peers returns the live members other than the local node
	Peers() []string
	// Unicast sends the payload to one member
	Unicast(ctx context.Context, to, topic string, payload []byte) error
	// Broadcast sends the payload to every peer
	Broadcast(ctx context.Context, topic string, payload []byte) error
	// Subscribe registers the handler of a topic, replacing any previous one
	Subscribe(topic string, handler Handler)
	// Unsubscribe removes the handler of a topic
	Unsubscribe(topic string)
}

// frame is the unit exchanged between nodes
type frame struct {
	Topic   string `cbor:"1,keyasint"`
	Sender  string `cbor:"2,keyasint"`
	Payload []byte `cbor:"3,keyasint"`
}
