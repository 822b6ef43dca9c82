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
	"fmt"
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"
	"go.uber.org/atomic"

	"github.com/tochemey/gossipstore/clock"
	"github.com/tochemey/gossipstore/device"
	"github.com/tochemey/gossipstore/errors"
)

const (
	boltFileMode   os.FileMode = 0o600
	boltBucketName             = "tombstones"
	boltTimeout                = 5 * time.Second
)

// BoltStore keeps tombstones in a bbolt database file.
// bbolt provides single-writer/multi-reader semantics, the store only guards its closed state.
type BoltStore struct {
	db     *bbolt.DB
	bucket []byte
	closed *atomic.Bool
}

var _ Store = (*BoltStore)(nil)

// NewBoltStore opens, or creates, the database at path. Parent directories are created as needed.
func NewBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("tombstone: creating directory: %w", err)
	}

	db, err := bbolt.Open(path, boltFileMode, &bbolt.Options{Timeout: boltTimeout, NoGrowSync: true})
	if err != nil {
		return nil, fmt.Errorf("tombstone: opening boltdb: %w", err)
	}

	bucket := []byte(boltBucketName)
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(bucket)
		return e
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("tombstone: initializing boltdb bucket: %w", err)
	}

	return &BoltStore{db: db, bucket: bucket, closed: atomic.NewBool(false)}, nil
}

// Put implements Store.
func (s *BoltStore) Put(ctx context.Context, id device.ID, ts clock.Timestamp) error {
	if err := s.ensureOpen(ctx); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(s.bucket)
		if raw := bucket.Get([]byte(id)); raw != nil {
			current, err := decode(raw)
			if err == nil && !ts.IsNewerThan(current) {
				return nil
			}
		}
		return bucket.Put([]byte(id), encode(ts))
	})
}

// Get implements Store.
func (s *BoltStore) Get(ctx context.Context, id device.ID) (clock.Timestamp, bool, error) {
	if err := s.ensureOpen(ctx); err != nil {
		return clock.Timestamp{}, false, err
	}

	var (
		ts    clock.Timestamp
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(s.bucket).Get([]byte(id))
		if raw == nil {
			return nil
		}
		decoded, err := decode(raw)
		if err != nil {
			return err
		}
		ts, found = decoded, true
		return nil
	})
	return ts, found, err
}

// Delete implements Store.
func (s *BoltStore) Delete(ctx context.Context, id device.ID) error {
	if err := s.ensureOpen(ctx); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(id))
	})
}

// Range implements Store.
func (s *BoltStore) Range(ctx context.Context, f func(device.ID, clock.Timestamp)) error {
	if err := s.ensureOpen(ctx); err != nil {
		return err
	}

	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(key, raw []byte) error {
			ts, err := decode(raw)
			if err != nil {
				return err
			}
			f(device.ID(key), ts)
			return nil
		})
	})
}

// Close implements Store. The database file is kept.
func (s *BoltStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *BoltStore) ensureOpen(ctx context.Context) error {
	if s.closed.Load() {
		return errors.ErrTombstoneStoreClosed
	}
	return contextErr(ctx)
}
