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
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/hashicorp/memberlist"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/gossipstore/codec"
	"github.com/tochemey/gossipstore/errors"
	"github.com/tochemey/gossipstore/log"
)

// MemberlistTransport is a Transport over hashicorp/memberlist.
// Membership comes from memberlist gossip and messages travel over its reliable TCP channel.
// Node names are the store node identifiers.
type MemberlistTransport struct {
	name          string
	bindAddr      string
	bindPort      int
	advertiseAddr string
	seeds         []string

	maxJoinAttempts   int
	joinRetryInterval time.Duration
	joinTimeout       time.Duration
	shutdownTimeout   time.Duration

	logger log.Logger
	codec  codec.Codec

	mu         sync.RWMutex
	memberlist *memberlist.Memberlist
	handlers   map[string]Handler
	started    *atomic.Bool
}

// enforce compilation error
var (
	_ Transport           = (*MemberlistTransport)(nil)
	_ memberlist.Delegate = (*memberlistDelegate)(nil)
)

// NewMemberlistTransport creates a transport for the named node bound to bindAddr:bindPort
func NewMemberlistTransport(name, bindAddr string, bindPort int, opts ...MemberlistOption) *MemberlistTransport {
	transport := &MemberlistTransport{
		name:              name,
		bindAddr:          bindAddr,
		bindPort:          bindPort,
		maxJoinAttempts:   5,
		joinRetryInterval: time.Second,
		joinTimeout:       time.Minute,
		shutdownTimeout:   3 * time.Second,
		logger:            log.DiscardLogger,
		codec:             codec.NewCBOR(),
		handlers:          make(map[string]Handler),
		started:           atomic.NewBool(false),
	}

	for _, opt := range opts {
		opt.Apply(transport)
	}
	return transport
}

// Start implements Transport.
func (t *MemberlistTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started.Load() {
		return nil
	}

	advertiseAddr := t.advertiseAddr
	if advertiseAddr == "" {
		addr, err := advertiseIP(t.bindAddr)
		if err != nil {
			return err
		}
		advertiseAddr = addr
	}

	config := memberlist.DefaultLANConfig()
	config.Name = t.name
	config.BindAddr = t.bindAddr
	config.BindPort = t.bindPort
	config.AdvertiseAddr = advertiseAddr
	config.AdvertisePort = t.bindPort
	config.Delegate = &memberlistDelegate{transport: t}
	config.LogOutput = newLogWriter(t.logger)

	list, err := memberlist.Create(config)
	if err != nil {
		t.logger.Error(fmt.Errorf("%s failed to create memberlist: %w", t.name, err))
		return err
	}

	if err := t.join(ctx, list); err != nil {
		return multierr.Append(err, list.Shutdown())
	}

	t.memberlist = list
	t.started.Store(true)
	t.logger.Infof("%s transport successfully started on %s:%d", t.name, advertiseAddr, t.bindPort)
	return nil
}

// Stop implements Transport.
func (t *MemberlistTransport) Stop(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	// no-op when the transport has not started
	if !t.started.Load() {
		return nil
	}

	t.started.Store(false)
	if err := multierr.Combine(
		t.memberlist.Leave(t.shutdownTimeout),
		t.memberlist.Shutdown(),
	); err != nil {
		t.logger.Error(fmt.Errorf("%s failed to stop transport: %w", t.name, err))
		return err
	}

	t.logger.Infof("%s transport successfully stopped", t.name)
	return nil
}

// LocalNode implements Transport.
func (t *MemberlistTransport) LocalNode() string {
	return t.name
}

// Peers implements Transport.
func (t *MemberlistTransport) Peers() []string {
	members := t.members()
	peers := make([]string, 0, len(members))
	for _, member := range members {
		peers = append(peers, member.Name)
	}
	slices.Sort(peers)
	return peers
}

// Unicast implements Transport.
func (t *MemberlistTransport) Unicast(ctx context.Context, to, topic string, payload []byte) error {
	if !t.started.Load() {
		return errors.ErrTransportNotStarted
	}

	members := t.members()
	idx := slices.IndexFunc(members, func(member *memberlist.Node) bool { return member.Name == to })
	if idx < 0 {
		return fmt.Errorf("node=%s: %w", to, errors.ErrPeerNotFound)
	}

	bytea, err := t.codec.Encode(&frame{Topic: topic, Sender: t.name, Payload: payload})
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return t.list().SendReliable(members[idx], bytea)
}

// Broadcast implements Transport.
func (t *MemberlistTransport) Broadcast(ctx context.Context, topic string, payload []byte) error {
	if !t.started.Load() {
		return errors.ErrTransportNotStarted
	}

	bytea, err := t.codec.Encode(&frame{Topic: topic, Sender: t.name, Payload: payload})
	if err != nil {
		return err
	}

	list := t.list()
	members := t.members()
	errs := make([]error, len(members))
	eg, ctx := errgroup.WithContext(ctx)
	for i, member := range members {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			if err := list.SendReliable(member, bytea); err != nil {
				errs[i] = fmt.Errorf("node=%s: %w", member.Name, err)
			}
			return nil
		})
	}

	_ = eg.Wait()
	return multierr.Combine(errs...)
}

// Subscribe implements Transport.
func (t *MemberlistTransport) Subscribe(topic string, handler Handler) {
	t.mu.Lock()
	t.handlers[topic] = handler
	t.mu.Unlock()
}

// Unsubscribe implements Transport.
func (t *MemberlistTransport) Unsubscribe(topic string) {
	t.mu.Lock()
	delete(t.handlers, topic)
	t.mu.Unlock()
}

func (t *MemberlistTransport) join(ctx context.Context, list *memberlist.Memberlist) error {
	if len(t.seeds) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, t.joinTimeout)
	defer cancel()

	retrier := retry.NewRetrier(t.maxJoinAttempts, t.joinRetryInterval, t.joinRetryInterval)
	if err := retrier.RunContext(ctx, func(context.Context) error {
		_, err := list.Join(t.seeds)
		return err
	}); err != nil {
		t.logger.Error(fmt.Errorf("%s failed to join cluster: %w", t.name, err))
		return err
	}

	t.logger.Infof("%s successfully joined cluster: [%s]", t.name, strings.Join(t.seeds, ","))
	return nil
}

func (t *MemberlistTransport) list() *memberlist.Memberlist {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.memberlist
}

func (t *MemberlistTransport) members() []*memberlist.Node {
	list := t.list()
	if list == nil || !t.started.Load() {
		return nil
	}

	members := list.Members()
	out := make([]*memberlist.Node, 0, len(members))
	for _, member := range members {
		if member.Name != t.name {
			out = append(out, member)
		}
	}
	return out
}

func (t *MemberlistTransport) dispatch(bytea []byte) {
	message := new(frame)
	if err := t.codec.Decode(bytea, message); err != nil {
		t.logger.Warnf("%s dropped undecodable frame: %v", t.name, err)
		return
	}

	t.mu.RLock()
	handler, ok := t.handlers[message.Topic]
	t.mu.RUnlock()
	if !ok {
		t.logger.Debugf("%s dropped frame for topic=%s: %v", t.name, message.Topic, errors.ErrUnknownTopic)
		return
	}
	handler(message.Sender, message.Payload)
}

// memberlistDelegate receives user messages from memberlist.
// Node metadata and push/pull state are not used.
type memberlistDelegate struct {
	transport *MemberlistTransport
}

// NodeMeta implements memberlist.Delegate.
func (d *memberlistDelegate) NodeMeta(int) []byte {
	return nil
}

// NotifyMsg implements memberlist.Delegate. The byte slice may be reused by
// memberlist after the call returns, so it is copied before dispatch.
func (d *memberlistDelegate) NotifyMsg(bytea []byte) {
	d.transport.dispatch(slices.Clone(bytea))
}

// GetBroadcasts implements memberlist.Delegate.
func (d *memberlistDelegate) GetBroadcasts(int, int) [][]byte {
	return nil
}

// LocalState implements memberlist.Delegate.
func (d *memberlistDelegate) LocalState(bool) []byte {
	return nil
}

// MergeRemoteState implements memberlist.Delegate.
func (d *memberlistDelegate) MergeRemoteState([]byte, bool) {}
