package core

import (
	"errors"
	"testing"
	"time"
)

type recorder struct {
	states   chan Status
	ticks    chan Status
	expiries chan TimerPurpose
}

func newRecorder() *recorder {
	return &recorder{
		states:   make(chan Status, 32),
		ticks:    make(chan Status, 32),
		expiries: make(chan TimerPurpose, 32),
	}
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnStateChange: func(s Status) { r.states <- s },
		OnTick:        func(s Status) { r.ticks <- s },
		OnExpiry:      func(p TimerPurpose, _ Status) { r.expiries <- p },
	}
}

func (r *recorder) waitExpiry(t *testing.T) TimerPurpose {
	t.Helper()
	select {
	case p := <-r.expiries:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("no expiry notification fired")
		return PurposeNone
	}
}

func (r *recorder) expectNoExpiry(t *testing.T) {
	t.Helper()
	select {
	case p := <-r.expiries:
		t.Fatalf("unexpected expiry notification for %q", p)
	case <-time.After(100 * time.Millisecond):
	}
}

func newTestEngine(t *testing.T, clock Clock, power *fakePower, rec *recorder) *Engine {
	t.Helper()
	e := NewEngine(Options{
		Power:             power.set,
		Clock:             clock,
		KeepDisplayOn:     true,
		ShowRemainingTime: true,
		Callbacks:         rec.callbacks(),
	})
	e.Start()
	t.Cleanup(e.Close)
	return e
}

func mustStatus(t *testing.T, e *Engine) Status {
	t.Helper()
	s, err := e.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	return s
}

func TestStartForcesActive(t *testing.T) {
	power := &fakePower{}
	e := newTestEngine(t, newFakeClock(), power, newRecorder())

	s := mustStatus(t, e)
	if s.State != StateActive {
		t.Fatalf("state = %q, want %q", s.State, StateActive)
	}
	if got := power.last(); !got.system || !got.display {
		t.Fatalf("power flags = %+v, want system and display required", got)
	}
}

func TestToggleOffIsIdempotent(t *testing.T) {
	power := &fakePower{}
	e := newTestEngine(t, newFakeClock(), power, newRecorder())

	s, err := e.Toggle()
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if s.State != StateInactive {
		t.Fatalf("state = %q, want %q", s.State, StateInactive)
	}
	if got := power.last(); got.system || got.display {
		t.Fatalf("power flags = %+v, want both released", got)
	}

	calls := power.count()
	if s, err = e.SetActive(false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if s.State != StateInactive {
		t.Fatalf("state = %q, want %q", s.State, StateInactive)
	}
	if power.count() != calls {
		t.Fatalf("re-entrant toggle-off issued %d extra power calls", power.count()-calls)
	}
}

func TestSetInactiveForRejectedWhenNotActive(t *testing.T) {
	power := &fakePower{}
	e := newTestEngine(t, newFakeClock(), power, newRecorder())

	if _, err := e.Toggle(); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	_, err := e.SetInactiveFor(30 * time.Minute)
	if !errors.Is(err, ErrNotActive) {
		t.Fatalf("err = %v, want ErrNotActive", err)
	}

	s := mustStatus(t, e)
	if s.State != StateInactive || s.TimerPurpose != PurposeNone {
		t.Fatalf("rejected pause mutated state: %+v", s)
	}
}

func TestPauseThenResume(t *testing.T) {
	clock := newFakeClock()
	power := &fakePower{}
	rec := newRecorder()
	e := newTestEngine(t, clock, power, rec)

	s, err := e.SetInactiveFor(30 * time.Minute)
	if err != nil {
		t.Fatalf("SetInactiveFor: %v", err)
	}
	if s.State != StatePaused || s.TimerPurpose != PurposeInactiveFor {
		t.Fatalf("status after pause: %+v", s)
	}
	if got := power.last(); got.system || got.display {
		t.Fatalf("power flags = %+v, want both released while paused", got)
	}

	tk := waitTicker(t, clock, 1)
	clock.Advance(30 * time.Minute)
	clock.tick(tk)

	if p := rec.waitExpiry(t); p != PurposeInactiveFor {
		t.Fatalf("expiry purpose = %q, want %q", p, PurposeInactiveFor)
	}

	s = mustStatus(t, e)
	if s.State != StateActive || s.TimerPurpose != PurposeNone {
		t.Fatalf("status after resume: %+v", s)
	}
	if got := power.last(); !got.system || !got.display {
		t.Fatalf("power flags = %+v, want system and display required", got)
	}
}

func TestToggleOffCancelsActiveForCountdown(t *testing.T) {
	clock := newFakeClock()
	power := &fakePower{}
	rec := newRecorder()
	e := newTestEngine(t, clock, power, rec)

	s, err := e.SetActiveFor(15 * time.Minute)
	if err != nil {
		t.Fatalf("SetActiveFor: %v", err)
	}
	if s.State != StateActive || s.TimerPurpose != PurposeActiveFor {
		t.Fatalf("status after timed activate: %+v", s)
	}

	tk := waitTicker(t, clock, 1)

	if s, err = e.Toggle(); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if s.State != StateInactive || s.TimerPurpose != PurposeNone {
		t.Fatalf("status after toggle-off: %+v", s)
	}

	// A tick of the cancelled countdown past its end must not fire.
	clock.Advance(15 * time.Minute)
	clock.tick(tk)
	rec.expectNoExpiry(t)
}

func TestStaleGenerationEventDropped(t *testing.T) {
	clock := newFakeClock()
	power := &fakePower{}
	rec := newRecorder()
	e := newTestEngine(t, clock, power, rec)

	if _, err := e.SetActiveFor(15 * time.Minute); err != nil {
		t.Fatalf("SetActiveFor: %v", err)
	}
	stale := e.timer.Generation()

	// Re-arm indefinitely; the countdown is superseded.
	if _, err := e.SetActiveFor(0); err != nil {
		t.Fatalf("SetActiveFor: %v", err)
	}
	calls := power.count()

	e.timer.events <- TimerEvent{Kind: TimerExpired, Purpose: PurposeActiveFor, Generation: stale}

	rec.expectNoExpiry(t)
	s := mustStatus(t, e)
	if s.State != StateActive {
		t.Fatalf("stale expiry transitioned state to %q", s.State)
	}
	if power.count() != calls {
		t.Fatalf("stale expiry issued %d power calls", power.count()-calls)
	}
}

func TestActiveForRoundTrip(t *testing.T) {
	clock := newFakeClock()
	power := &fakePower{}
	rec := newRecorder()
	e := newTestEngine(t, clock, power, rec)

	if _, err := e.SetActiveFor(60 * time.Minute); err != nil {
		t.Fatalf("SetActiveFor: %v", err)
	}

	tk := waitTicker(t, clock, 1)
	clock.Advance(60 * time.Minute)
	clock.tick(tk)

	if p := rec.waitExpiry(t); p != PurposeActiveFor {
		t.Fatalf("expiry purpose = %q, want %q", p, PurposeActiveFor)
	}
	rec.expectNoExpiry(t)

	s := mustStatus(t, e)
	if s.State != StateInactive || s.TimerPurpose != PurposeNone {
		t.Fatalf("status after expiry: %+v", s)
	}
	if got := power.last(); got.system || got.display {
		t.Fatalf("last power call = %+v, want both released", got)
	}
}

func TestKeepDisplayOnWhileInactive(t *testing.T) {
	power := &fakePower{}
	e := newTestEngine(t, newFakeClock(), power, newRecorder())

	if _, err := e.Toggle(); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	calls := power.count()

	if _, err := e.SetKeepDisplayOn(false); err != nil {
		t.Fatalf("SetKeepDisplayOn: %v", err)
	}
	if power.count() != calls {
		t.Fatal("display preference change while inactive issued a power call")
	}

	s, err := e.Toggle()
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if got := power.last(); !got.system || got.display {
		t.Fatalf("power flags = %+v, want system only", got)
	}
	if s.Tooltip != "Caffeine: Active (display can sleep)" {
		t.Fatalf("tooltip = %q", s.Tooltip)
	}
}

func TestPowerFailureIsOptimistic(t *testing.T) {
	power := &fakePower{err: errors.New("call rejected")}
	e := newTestEngine(t, newFakeClock(), power, newRecorder())

	s, err := e.SetInactiveFor(10 * time.Minute)
	if err != nil {
		t.Fatalf("SetInactiveFor: %v", err)
	}
	if s.State != StatePaused {
		t.Fatalf("state = %q, want %q despite power failure", s.State, StatePaused)
	}
}

func TestTickCarriesRemainingTime(t *testing.T) {
	clock := newFakeClock()
	power := &fakePower{}
	rec := newRecorder()
	e := newTestEngine(t, clock, power, rec)

	if _, err := e.SetActiveFor(90 * time.Minute); err != nil {
		t.Fatalf("SetActiveFor: %v", err)
	}

	tk := waitTicker(t, clock, 1)
	clock.Advance(30 * time.Minute)
	clock.tick(tk)

	select {
	case s := <-rec.ticks:
		if s.RemainingSeconds != 3600 {
			t.Fatalf("remaining = %ds, want 3600", s.RemainingSeconds)
		}
		if s.Tooltip != "Caffeine: Active (1h 0m remaining)" {
			t.Fatalf("tooltip = %q", s.Tooltip)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no tick notification")
	}
}
