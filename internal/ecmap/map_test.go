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

package ecmap

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tochemey/gossipstore/cluster"
)

func startNodes(t *testing.T, hub *cluster.Hub, opts ...Option[string, int]) (*Map[string, int], *Map[string, int], func()) {
	t.Helper()
	ctx := context.Background()

	transport1, transport2 := hub.Join("node-1"), hub.Join("node-2")
	require.NoError(t, transport1.Start(ctx))
	require.NoError(t, transport2.Start(ctx))

	map1 := New[string, int]("counters", transport1, opts...)
	map2 := New[string, int]("counters", transport2, opts...)
	require.NoError(t, map1.Start(ctx))
	require.NoError(t, map2.Start(ctx))

	return map1, map2, func() {
		assert.NoError(t, map1.Destroy(ctx))
		assert.NoError(t, map2.Destroy(ctx))
	}
}

func TestMap(t *testing.T) {
	ctx := context.Background()

	t.Run("With a put replicated to peers", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		map1, map2, stop := startNodes(t, cluster.NewHub(), WithAntiEntropyPeriod[string, int](time.Hour))
		defer stop()

		events, cancel := map2.Subscribe()
		defer cancel()

		require.NoError(t, map1.Put(ctx, "of:0001", 42))

		value, ok := map2.Get("of:0001")
		require.True(t, ok)
		assert.Equal(t, 42, value)
		assert.Equal(t, map[string]int{"of:0001": 42}, map2.Entries())
		assert.Equal(t, []string{"of:0001"}, map2.Keys())
		assert.Equal(t, 1, map2.Len())

		select {
		case event := <-events:
			assert.Equal(t, Put, event.Type)
			assert.Equal(t, "of:0001", event.Key)
			assert.Equal(t, 42, event.Value)
		case <-time.After(time.Second):
			t.Fatal("no event received")
		}

		require.NoError(t, map1.Remove(ctx, "of:0001"))
		_, ok = map2.Get("of:0001")
		assert.False(t, ok)
		assert.Zero(t, map2.Len())

		event := <-events
		assert.Equal(t, Remove, event.Type)
	})

	t.Run("With stale writes ignored", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		clockValue := Timestamp{UnixNano: 100}
		stamp := func(string, int) Timestamp { return clockValue }
		map1, map2, stop := startNodes(t, cluster.NewHub(),
			WithAntiEntropyPeriod[string, int](time.Hour),
			WithTimestampFunc[string, int](stamp))
		defer stop()

		require.NoError(t, map1.Put(ctx, "key", 1))
		// same timestamp, older or equal loses
		require.NoError(t, map2.Put(ctx, "key", 2))

		value, _ := map1.Get("key")
		assert.Equal(t, 1, value)
		value, _ = map2.Get("key")
		assert.Equal(t, 1, value)

		clockValue = Timestamp{UnixNano: 200}
		require.NoError(t, map2.Put(ctx, "key", 3))
		value, _ = map1.Get("key")
		assert.Equal(t, 3, value)
	})

	t.Run("With anti-entropy repairing a dropped update", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		hub := cluster.NewHub()
		hub.SetFilter(func(_, _, topic string) bool {
			return !strings.HasSuffix(topic, "/update")
		})

		map1, map2, stop := startNodes(t, hub, WithAntiEntropyPeriod[string, int](20*time.Millisecond))
		defer stop()
		require.NoError(t, map1.Put(ctx, "of:0001", 7))
		_, ok := map2.Get("of:0001")
		require.False(t, ok)

		require.Eventually(t, func() bool {
			value, ok := map2.Get("of:0001")
			return ok && value == 7
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("With tombstones disabled", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		map1, map2, stop := startNodes(t, cluster.NewHub(),
			WithAntiEntropyPeriod[string, int](time.Hour),
			WithTombstonesDisabled[string, int](),
			WithEventBuffer[string, int](1))
		defer stop()

		require.NoError(t, map1.Put(ctx, "key", 1))
		require.NoError(t, map1.Remove(ctx, "key"))
		assert.Empty(t, map1.items)
		assert.Empty(t, map2.items)
	})

	t.Run("With destroy closing subscriptions", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		transport := cluster.NewHub().Join("node-1")
		require.NoError(t, transport.Start(ctx))

		m := New[string, int]("single", transport)
		require.NoError(t, m.Start(ctx))
		require.NoError(t, m.Start(ctx))
		events, _ := m.Subscribe()
		require.NoError(t, m.Put(ctx, "key", 1))

		require.NoError(t, m.Destroy(ctx))
		require.NoError(t, m.Destroy(ctx))

		<-events
		_, open := <-events
		assert.False(t, open)
		assert.Zero(t, m.Len())
	})
}
