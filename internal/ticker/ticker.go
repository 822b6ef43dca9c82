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
	"sync"
	"time"
)

// Ticker delivers a first tick after an initial delay, then one tick per period.
// Ticks are dropped while the receiver is still busy with the previous one.
type Ticker struct {
	Ticks chan time.Time

	initialDelay time.Duration
	period       time.Duration

	mutex   sync.Mutex
	ticking bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a Ticker. It panics when the period is not positive.
func New(initialDelay, period time.Duration) *Ticker {
	if period <= 0 {
		panic("period must be greater than zero")
	}
	return &Ticker{
		Ticks:        make(chan time.Time, 1),
		initialDelay: max(initialDelay, 0),
		period:       period,
	}
}

// Start the ticker. Ticks are delivered on the ticker's
// channel until Stop is called
func (t *Ticker) Start() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if t.ticking {
		return
	}

	t.ticking = true
	t.stopCh = make(chan struct{})
	t.doneCh = make(chan struct{})
	go t.tickingLoop(t.stopCh, t.doneCh)
}

// Stop stops the ticker and waits for the ticking loop to exit.
// No tick is delivered after Stop returns.
func (t *Ticker) Stop() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if !t.ticking {
		return
	}

	t.ticking = false
	close(t.stopCh)
	<-t.doneCh

	// drain a pending tick
	select {
	case <-t.Ticks:
	default:
	}
}

// Ticking returns true when the ticker is ticking
func (t *Ticker) Ticking() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.ticking
}

func (t *Ticker) tickingLoop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	timer := time.NewTimer(t.initialDelay)
	defer timer.Stop()

	select {
	case tc := <-timer.C:
		t.deliver(tc)
	case <-stopCh:
		return
	}

	ticker := time.NewTicker(t.period)
	defer ticker.Stop()
	for {
		select {
		case tc := <-ticker.C:
			t.deliver(tc)
		case <-stopCh:
			return
		}
	}
}

func (t *Ticker) deliver(tc time.Time) {
	select {
	case t.Ticks <- tc:
	default:
	}
}
