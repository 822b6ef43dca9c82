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

package ticker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestTicker(t *testing.T) {
	t.Run("With initial delay and period", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tick := New(50*time.Millisecond, 20*time.Millisecond)
		started := time.Now()
		tick.Start()
		assert.True(t, tick.Ticking())

		first := <-tick.Ticks
		assert.GreaterOrEqual(t, first.Sub(started), 50*time.Millisecond)

		select {
		case <-tick.Ticks:
		case <-time.After(time.Second):
			t.Fatal("no periodic tick")
		}

		tick.Stop()
		assert.False(t, tick.Ticking())
		// stop is idempotent
		tick.Stop()
	})

	t.Run("With stop before the first tick", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tick := New(time.Hour, time.Hour)
		tick.Start()
		tick.Start()
		tick.Stop()

		select {
		case <-tick.Ticks:
			t.Fatal("unexpected tick")
		default:
		}
	})

	t.Run("With an invalid period", func(t *testing.T) {
		require.Panics(t, func() { New(0, 0) })
	})
}
