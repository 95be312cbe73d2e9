package core

import (
	"sync"
	"testing"
	"time"
)

type fakeTicker struct {
	ch chan time.Time
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               {}

// fakeClock is a manually advanced clock. Each NewTicker call hands out
// a buffered channel the test feeds directly.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fakeClock) NewTicker(time.Duration) Ticker {
	t := &fakeTicker{ch: make(chan time.Time, 8)}
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

func (c *fakeClock) tickerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

// waitTicker waits for the n-th ticker to be created by a countdown run
// goroutine.
func waitTicker(t *testing.T, c *fakeClock, n int) *fakeTicker {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for c.tickerCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("ticker %d was never created", n)
		}
		time.Sleep(time.Millisecond)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickers[n-1]
}

// tick delivers one tick carrying the fake clock's current time.
func (c *fakeClock) tick(tk *fakeTicker) {
	tk.ch <- c.Now()
}

type powerCall struct {
	system  bool
	display bool
}

// fakePower records every keep-awake call.
type fakePower struct {
	mu    sync.Mutex
	calls []powerCall
	err   error
}

func (p *fakePower) set(system, display bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, powerCall{system: system, display: display})
	return p.err
}

func (p *fakePower) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func (p *fakePower) last() powerCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) == 0 {
		return powerCall{}
	}
	return p.calls[len(p.calls)-1]
}
