package core

import (
	"testing"
	"time"
)

func TestTimerSingleSlot(t *testing.T) {
	clock := newFakeClock()
	tm := NewTimer(clock)
	defer tm.Close()

	gen1 := tm.StartActiveFor(15 * time.Minute)
	gen2 := tm.StartInactiveFor(30 * time.Minute)

	if gen2 <= gen1 {
		t.Fatalf("expected generation to increase, got %d then %d", gen1, gen2)
	}
	if got := tm.Purpose(); got != PurposeInactiveFor {
		t.Fatalf("expected the new countdown to supersede, got purpose %q", got)
	}
	if r, ok := tm.Remaining(); !ok || r != 30*time.Minute {
		t.Fatalf("expected 30m remaining, got %v (ok=%v)", r, ok)
	}
}

func TestTimerStopIdempotent(t *testing.T) {
	clock := newFakeClock()
	tm := NewTimer(clock)
	defer tm.Close()

	tm.Stop()
	tm.Stop()

	if got := tm.Purpose(); got != PurposeNone {
		t.Fatalf("expected no countdown, got purpose %q", got)
	}
	if _, ok := tm.Remaining(); ok {
		t.Fatal("expected no remaining time")
	}
}

func TestTimerStopInvalidatesGeneration(t *testing.T) {
	clock := newFakeClock()
	tm := NewTimer(clock)
	defer tm.Close()

	gen := tm.StartActiveFor(15 * time.Minute)
	tm.Stop()

	if cur := tm.Generation(); cur == gen {
		t.Fatalf("expected Stop to bump the generation past %d", gen)
	}
}

func TestTimerTicksAndExpiresOnce(t *testing.T) {
	clock := newFakeClock()
	tm := NewTimer(clock)
	defer tm.Close()

	gen := tm.StartActiveFor(3 * time.Second)
	tk := waitTicker(t, clock, 1)

	// Remaining time is recomputed when the run goroutine consumes a
	// tick, so each tick must be drained before the clock advances
	// again.
	var expiries int
	for _, want := range []time.Duration{2 * time.Second, time.Second, 0} {
		clock.Advance(time.Second)
		clock.tick(tk)

		deadline := time.After(2 * time.Second)
		gotTick := false
		for !gotTick || (want == 0 && expiries == 0) {
			select {
			case ev := <-tm.Events():
				if ev.Generation != gen {
					t.Fatalf("unexpected generation %d, want %d", ev.Generation, gen)
				}
				switch ev.Kind {
				case TimerTick:
					if gotTick {
						t.Fatalf("duplicate tick for the same advance")
					}
					if ev.Remaining != want {
						t.Fatalf("tick remaining = %v, want %v", ev.Remaining, want)
					}
					gotTick = true
				case TimerExpired:
					if want != 0 {
						t.Fatalf("expiry with %v still remaining", want)
					}
					expiries++
					if ev.Purpose != PurposeActiveFor {
						t.Fatalf("expiry purpose = %q, want %q", ev.Purpose, PurposeActiveFor)
					}
				}
			case <-deadline:
				t.Fatalf("timed out waiting for events at %v remaining, %d expiries", want, expiries)
			}
		}
	}

	if expiries != 1 {
		t.Fatalf("expected exactly one expiry, got %d", expiries)
	}
	if got := tm.Purpose(); got != PurposeNone {
		t.Fatalf("expected purpose cleared after expiry, got %q", got)
	}

	// The run goroutine has returned; extra ticks must be inert.
	clock.Advance(time.Second)
	clock.tick(tk)
	select {
	case ev := <-tm.Events():
		t.Fatalf("unexpected trailing event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTimerClearedEvent(t *testing.T) {
	clock := newFakeClock()
	tm := NewTimer(clock)
	defer tm.Close()

	tm.StartInactiveFor(10 * time.Minute)
	tm.Stop()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-tm.Events():
			if ev.Kind == TimerCleared {
				if ev.Generation != tm.Generation() {
					t.Fatalf("cleared event generation %d, want current %d", ev.Generation, tm.Generation())
				}
				return
			}
		case <-deadline:
			t.Fatal("no cleared event after Stop")
		}
	}
}

func TestTimerRemainingTracksClock(t *testing.T) {
	clock := newFakeClock()
	tm := NewTimer(clock)
	defer tm.Close()

	tm.StartActiveFor(time.Hour)
	clock.Advance(20 * time.Minute)

	if r, ok := tm.Remaining(); !ok || r != 40*time.Minute {
		t.Fatalf("remaining = %v (ok=%v), want 40m", r, ok)
	}
}
