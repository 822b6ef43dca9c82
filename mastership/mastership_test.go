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

package mastership

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/gossipstore/device"
)

type fixedMembership struct {
	local string
	peers []string
}

func (m *fixedMembership) LocalNode() string { return m.local }
func (m *fixedMembership) Peers() []string   { return m.peers }

func TestStatic(t *testing.T) {
	ctx := context.Background()
	id := device.ID("of:0001")

	t.Run("With an explicit master", func(t *testing.T) {
		registry := NewStatic()
		term := registry.SetMaster(id, "node-1")
		assert.Equal(t, Term{Master: "node-1", Number: 1}, term)
		// same master keeps the term
		assert.Equal(t, term, registry.SetMaster(id, "node-1"))

		node1 := registry.Service("node-1")
		node2 := registry.Service("node-2")
		assert.Equal(t, RoleMaster, node1.LocalRole(ctx, id))
		assert.Equal(t, RoleStandby, node2.LocalRole(ctx, id))

		master, ok := node2.MasterFor(ctx, id)
		require.True(t, ok)
		assert.Equal(t, "node-1", master)
	})

	t.Run("With a relinquished device", func(t *testing.T) {
		registry := NewStatic()
		registry.SetMaster(id, "node-1")
		node1 := registry.Service("node-1")
		node2 := registry.Service("node-2")

		// only the master can relinquish
		require.NoError(t, node2.Relinquish(ctx, id))
		assert.Equal(t, RoleMaster, node1.LocalRole(ctx, id))

		require.NoError(t, node1.Relinquish(ctx, id))
		_, ok := node1.Term(ctx, id)
		assert.False(t, ok)
		assert.Equal(t, RoleNone, node2.LocalRole(ctx, id))

		role, err := node2.RequestRoleFor(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, RoleMaster, role)

		term, ok := node2.Term(ctx, id)
		require.True(t, ok)
		assert.Equal(t, Term{Master: "node-2", Number: 2}, term)

		// a mastered device is not taken over
		role, err = node1.RequestRoleFor(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, RoleStandby, role)
	})

	t.Run("With a cleared device", func(t *testing.T) {
		registry := NewStatic()
		registry.SetMaster(id, "node-1")
		registry.Clear(id)
		_, ok := registry.Service("node-1").MasterFor(ctx, id)
		assert.False(t, ok)
		assert.EqualValues(t, 2, registry.SetMaster(id, "node-1").Number)
	})
}

func TestRing(t *testing.T) {
	ctx := context.Background()
	nodes := []string{"node-1", "node-2", "node-3"}

	views := make([]*Ring, 0, len(nodes))
	for i, node := range nodes {
		peers := make([]string, 0, len(nodes)-1)
		peers = append(peers, nodes[:i]...)
		peers = append(peers, nodes[i+1:]...)
		views = append(views, NewRing(&fixedMembership{local: node, peers: peers}))
	}

	t.Run("With every node agreeing on masters", func(t *testing.T) {
		owned := make(map[string]int)
		for i := range 64 {
			id := device.ID(fmt.Sprintf("of:%04d", i))
			master, ok := views[0].MasterFor(ctx, id)
			require.True(t, ok)
			owned[master]++

			masters := 0
			for j, view := range views {
				other, _ := view.MasterFor(ctx, id)
				assert.Equal(t, master, other)
				if view.LocalRole(ctx, id) == RoleMaster {
					masters++
					assert.Equal(t, nodes[j], master)
				}
			}
			assert.Equal(t, 1, masters)
		}
		// every node gets a share
		assert.Len(t, owned, len(nodes))
	})

	t.Run("With a master change", func(t *testing.T) {
		membership := &fixedMembership{local: "node-1", peers: []string{"node-2"}}
		ring := NewRing(membership)
		ring.now = func() time.Time { return time.UnixMilli(10) }

		id := device.ID("of:0001")
		first, ok := ring.Term(ctx, id)
		require.True(t, ok)
		assert.EqualValues(t, 10, first.Number)

		again, _ := ring.Term(ctx, id)
		assert.Equal(t, first, again)

		// force the other node out so mastership has to move or stay
		membership.peers = nil
		after, _ := ring.Term(ctx, id)
		assert.Equal(t, "node-1", after.Master)
		if first.Master != "node-1" {
			assert.EqualValues(t, 11, after.Number)
		} else {
			assert.Equal(t, first, after)
		}
	})

	t.Run("Without a local node", func(t *testing.T) {
		ring := NewRing(&fixedMembership{})
		_, ok := ring.Term(ctx, "of:0001")
		assert.False(t, ok)
		assert.Equal(t, RoleNone, ring.LocalRole(ctx, "of:0001"))
		require.NoError(t, ring.Relinquish(ctx, "of:0001"))
	})
}
