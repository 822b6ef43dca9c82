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

package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/gossipstore/device"
	"github.com/tochemey/gossipstore/errors"
	"github.com/tochemey/gossipstore/mastership"
)

func TestTimestamp(t *testing.T) {
	older := Timestamp{Term: 1, Sequence: 100}
	newer := Timestamp{Term: 2, Sequence: 1}

	assert.True(t, newer.IsNewerThan(older))
	assert.False(t, older.IsNewerThan(newer))
	assert.False(t, older.IsNewerThan(older))
	assert.Equal(t, 0, older.Compare(Timestamp{Term: 1, Sequence: 100}))
	assert.Equal(t, -1, Timestamp{Term: 1, Sequence: 1}.Compare(older))
	assert.Equal(t, newer, Max(older, newer, Timestamp{}))
	assert.True(t, Timestamp{}.IsZero())
	assert.Equal(t, "2.1", newer.String())

	stamped := NewTimestamped("desc", older)
	assert.True(t, stamped.IsNewerThan(Timestamp{Term: 1, Sequence: 99}))
	assert.False(t, stamped.IsNewerThan(older))
}

func TestMastershipClock(t *testing.T) {
	ctx := context.Background()
	id := device.ID("of:0001")
	registry := mastership.NewStatic()
	registry.SetMaster(id, "node-1")

	t.Run("With local mastership", func(t *testing.T) {
		clk := NewMastershipClock("node-1", registry.Service("node-1"))
		// a frozen wall clock must not stall the sequence
		frozen := time.Unix(0, 10)
		clk.now = func() time.Time { return frozen }

		first, err := clk.Timestamp(ctx, id)
		require.NoError(t, err)
		second, err := clk.Timestamp(ctx, id)
		require.NoError(t, err)

		assert.EqualValues(t, 1, first.Term)
		assert.True(t, second.IsNewerThan(first))
	})

	t.Run("With a newer term", func(t *testing.T) {
		clk := NewMastershipClock("node-1", registry.Service("node-1"))
		before, err := clk.Timestamp(ctx, id)
		require.NoError(t, err)

		registry.SetMaster(id, "node-2")
		registry.SetMaster(id, "node-1")

		after, err := clk.Timestamp(ctx, id)
		require.NoError(t, err)
		assert.EqualValues(t, 3, after.Term)
		assert.True(t, after.IsNewerThan(before))
	})

	t.Run("Without mastership", func(t *testing.T) {
		clk := NewMastershipClock("node-2", registry.Service("node-2"))
		_, err := clk.Timestamp(ctx, id)
		require.ErrorIs(t, err, errors.ErrNoMastership)

		_, err = clk.Timestamp(ctx, "of:unknown")
		require.ErrorIs(t, err, errors.ErrNoMastership)
	})
}
