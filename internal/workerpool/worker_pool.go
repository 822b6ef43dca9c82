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

// Package workerpool runs tasks on a fixed set of goroutines. Tasks sharing a
// key land on the same shard and run in submission order.
package workerpool

import (
	"context"
	"errors"
	"sync"

	"github.com/zeebo/xxh3"
	"go.uber.org/atomic"
)

const (
	// Maximum number of shards supported by the worker pool
	maxShards = 128

	defaultQueueSize = 256
)

// ErrPoolNotRunning is returned when submitting work to a pool that is not started or already stopped.
var ErrPoolNotRunning = errors.New("worker pool is not running")

// WorkerPool executes submitted tasks on numShards goroutines with bounded queues.
type WorkerPool struct {
	numShards int
	queueSize int

	mutex   sync.RWMutex
	shards  []chan func()
	wg      sync.WaitGroup
	started *atomic.Bool
	stopped *atomic.Bool
}

// New creates a new worker pool with the given options.
func New(opts ...Option) *WorkerPool {
	wp := &WorkerPool{
		numShards: 1,
		queueSize: defaultQueueSize,
		started:   atomic.NewBool(false),
		stopped:   atomic.NewBool(false),
	}

	for _, opt := range opts {
		opt.Apply(wp)
	}

	wp.numShards = min(max(wp.numShards, 1), maxShards)
	wp.queueSize = max(wp.queueSize, 1)
	return wp
}

// Start spawns the shard workers. It's safe to call Start multiple times.
func (wp *WorkerPool) Start() {
	wp.mutex.Lock()
	defer wp.mutex.Unlock()
	if wp.started.Load() || wp.stopped.Load() {
		return
	}

	wp.shards = make([]chan func(), wp.numShards)
	for i := range wp.shards {
		shard := make(chan func(), wp.queueSize)
		wp.shards[i] = shard
		wp.wg.Add(1)
		go wp.doWork(shard)
	}
	wp.started.Store(true)
}

// SubmitWork queues the task on the shard owning key.
// It blocks while that shard queue is full.
func (wp *WorkerPool) SubmitWork(key string, work func()) error {
	wp.mutex.RLock()
	defer wp.mutex.RUnlock()
	if !wp.started.Load() || wp.stopped.Load() {
		return ErrPoolNotRunning
	}

	wp.shards[xxh3.HashString(key)%uint64(len(wp.shards))] <- work
	return nil
}

// Stop stops accepting work, lets queued tasks drain and waits for the workers
// until ctx is done.
func (wp *WorkerPool) Stop(ctx context.Context) error {
	wp.mutex.Lock()
	if !wp.started.Load() || wp.stopped.Load() {
		wp.mutex.Unlock()
		return nil
	}

	wp.stopped.Store(true)
	for _, shard := range wp.shards {
		close(shard)
	}
	wp.mutex.Unlock()

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether the pool accepts work
func (wp *WorkerPool) Running() bool {
	return wp.started.Load() && !wp.stopped.Load()
}

func (wp *WorkerPool) doWork(shard chan func()) {
	defer wp.wg.Done()
	for work := range shard {
		work()
	}
}
