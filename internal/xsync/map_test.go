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

package xsync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestMap(t *testing.T) {
	t.Run("With GetOrCreate called concurrently", func(t *testing.T) {
		sm := NewMap[string, *int]()
		created := atomic.NewInt32(0)

		var wg sync.WaitGroup
		results := make([]*int, 32)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = sm.GetOrCreate("of:0001", func() *int {
					created.Inc()
					return new(int)
				})
			}()
		}
		wg.Wait()

		assert.EqualValues(t, 1, created.Load())
		for _, result := range results {
			assert.Same(t, results[0], result)
		}
	})

	t.Run("With the read operations", func(t *testing.T) {
		sm := NewMap[string, int]()
		_, ok := sm.Get("a")
		assert.False(t, ok)

		sm.GetOrCreate("a", func() int { return 1 })
		assert.Equal(t, 1, sm.GetOrCreate("a", func() int { return 2 }))
		sm.GetOrCreate("b", func() int { return 2 })

		val, ok := sm.Get("a")
		require.True(t, ok)
		assert.Equal(t, 1, val)
		assert.Equal(t, 2, sm.Len())

		// range tolerates writes from the callback
		seen := make(map[string]int)
		sm.Range(func(k string, v int) {
			seen[k] = v
			sm.GetOrCreate(k+k, func() int { return v * 10 })
		})
		assert.Equal(t, map[string]int{"a": 1, "b": 2}, seen)
		val, _ = sm.Get("bb")
		assert.Equal(t, 20, val)
		assert.Equal(t, 4, sm.Len())
	})
}
