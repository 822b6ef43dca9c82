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
	"bytes"
	"context"
	"fmt"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/go-dynaport"

	"github.com/tochemey/gossipstore/errors"
	"github.com/tochemey/gossipstore/log"
)

func TestMemberlistTransport(t *testing.T) {
	ctx := context.Background()
	ports := dynaport.Get(2)
	host := "127.0.0.1"

	node1 := NewMemberlistTransport("node-1", host, ports[0], WithLogger(log.DiscardLogger))
	node2 := NewMemberlistTransport("node-2", host, ports[1],
		WithLogger(log.DiscardLogger),
		WithSeeds(net.JoinHostPort(host, strconv.Itoa(ports[0]))),
		WithJoinRetry(3, 100*time.Millisecond),
		WithJoinTimeout(5*time.Second),
		WithShutdownTimeout(time.Second))

	rec1, rec2 := newRecorder(), newRecorder()
	node1.Subscribe("topic", rec1.handler)
	node2.Subscribe("topic", rec2.handler)

	require.ErrorIs(t, node1.Unicast(ctx, "node-2", "topic", nil), errors.ErrTransportNotStarted)

	require.NoError(t, node1.Start(ctx))
	require.NoError(t, node2.Start(ctx))
	t.Cleanup(func() {
		assert.NoError(t, node2.Stop(ctx))
		assert.NoError(t, node1.Stop(ctx))
	})

	require.Eventually(t, func() bool {
		return len(node1.Peers()) == 1 && len(node2.Peers()) == 1
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, []string{"node-2"}, node1.Peers())

	t.Run("With unicast", func(t *testing.T) {
		require.NoError(t, node1.Unicast(ctx, "node-2", "topic", []byte("hello")))
		require.Eventually(t, func() bool {
			return len(rec2.from("node-1")) == 1
		}, 5*time.Second, 50*time.Millisecond)
		assert.Equal(t, "hello", rec2.from("node-1")[0])
	})

	t.Run("With broadcast", func(t *testing.T) {
		require.NoError(t, node2.Broadcast(ctx, "topic", []byte("all")))
		require.Eventually(t, func() bool {
			return len(rec1.from("node-2")) == 1
		}, 5*time.Second, 50*time.Millisecond)
	})

	t.Run("With an unknown peer", func(t *testing.T) {
		err := node1.Unicast(ctx, "node-9", "topic", nil)
		require.ErrorIs(t, err, errors.ErrPeerNotFound)
	})
}

func TestLogWriter(t *testing.T) {
	buffer := new(bytes.Buffer)
	writer := newLogWriter(log.NewZap(log.DebugLevel, buffer))

	for _, level := range []string{"DEBUG", "INFO", "WARN", "ERR"} {
		line := fmt.Sprintf("2024/01/01 00:00:00 [%s] memberlist: message %s\n", level, level)
		n, err := writer.Write([]byte(line))
		require.NoError(t, err)
		assert.Equal(t, len(line), n)
	}
	_, _ = writer.Write([]byte("no level here"))

	output := buffer.String()
	assert.Contains(t, output, `"level":"debug"`)
	assert.Contains(t, output, "memberlist: message INFO")
	assert.Contains(t, output, `"level":"warn"`)
	assert.Contains(t, output, `"level":"error"`)
	assert.Contains(t, output, "no level here")
}

func TestAdvertiseIP(t *testing.T) {
	ip, err := advertiseIP("127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", ip)

	_, err = advertiseIP("not-an-ip")
	require.Error(t, err)
}
