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

package tombstone

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/gossipstore/clock"
	"github.com/tochemey/gossipstore/device"
	"github.com/tochemey/gossipstore/errors"
)

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"boltdb": func(t *testing.T) Store {
			store, err := NewBoltStore(filepath.Join(t.TempDir(), "data", "tombstones.db"))
			require.NoError(t, err)
			return store
		},
	}

	for name, newStore := range stores {
		t.Run("With "+name+" store", func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)
			id := device.ID("of:0001")

			_, ok, err := store.Get(ctx, id)
			require.NoError(t, err)
			assert.False(t, ok)

			newer := clock.Timestamp{Term: 2, Sequence: 1}
			require.NoError(t, store.Put(ctx, id, newer))
			// an older tombstone never replaces a newer one
			require.NoError(t, store.Put(ctx, id, clock.Timestamp{Term: 1, Sequence: 9}))
			require.NoError(t, store.Put(ctx, "of:0002", clock.Timestamp{Term: 1, Sequence: 1}))

			ts, ok, err := store.Get(ctx, id)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, newer, ts)

			seen := make(map[device.ID]clock.Timestamp)
			require.NoError(t, store.Range(ctx, func(id device.ID, ts clock.Timestamp) { seen[id] = ts }))
			assert.Len(t, seen, 2)

			require.NoError(t, store.Delete(ctx, "of:0002"))
			_, ok, err = store.Get(ctx, "of:0002")
			require.NoError(t, err)
			assert.False(t, ok)

			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			require.ErrorIs(t, store.Put(cancelled, id, newer), context.Canceled)

			require.NoError(t, store.Close())
			require.NoError(t, store.Close())
			_, _, err = store.Get(ctx, id)
			require.ErrorIs(t, err, errors.ErrTombstoneStoreClosed)
		})
	}
}

func TestBoltStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tombstones.db")
	ts := clock.Timestamp{Term: 3, Sequence: 42}

	store, err := NewBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "of:0001", ts))
	require.NoError(t, store.Close())

	reopened, err := NewBoltStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	actual, ok, err := reopened.Get(ctx, "of:0001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ts, actual)
}

func TestDecode(t *testing.T) {
	_, err := decode([]byte{0x01})
	require.Error(t, err)
}
