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

package workerpool

// Option is the interface that applies a WorkerPool option.
type Option interface {
	// Apply sets the Option value of a WorkerPool.
	Apply(pool *WorkerPool)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(pool *WorkerPool)

// Apply applies the option
func (f OptionFunc) Apply(pool *WorkerPool) {
	f(pool)
}

// WithNumShards sets the number of shards, hence the number of worker goroutines
func WithNumShards(numShards int) Option {
	return OptionFunc(func(pool *WorkerPool) {
		pool.numShards = numShards
	})
}

// WithQueueSize sets the number of pending tasks each shard buffers before SubmitWork blocks
func WithQueueSize(size int) Option {
	return OptionFunc(func(pool *WorkerPool) {
		pool.queueSize = size
	})
}
