package core

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// tickInterval is the fixed period of countdown tick events.
const tickInterval = time.Second

// TimerEventKind discriminates countdown events.
type TimerEventKind int

const (
	// TimerTick carries the recomputed remaining time.
	TimerTick TimerEventKind = iota
	// TimerExpired fires exactly once per countdown, after its final tick.
	TimerExpired
	// TimerCleared fires when a countdown is cancelled via Stop.
	TimerCleared
)

// TimerEvent is delivered to the engine loop. Generation identifies the
// countdown instance that produced the event; events whose generation
// no longer matches the timer's current one are stale and must be
// ignored by the consumer.
type TimerEvent struct {
	Kind       TimerEventKind
	Purpose    TimerPurpose
	Remaining  time.Duration
	Generation uint64
}

// Timer is the single-slot countdown scheduler. At most one countdown
// exists at any instant; starting a new one supersedes the old one.
// There is deliberately no queue: product semantics never allow more
// than one pending timer.
type Timer struct {
	clock  Clock
	events chan TimerEvent
	closed chan struct{}
	once   sync.Once

	mu      sync.Mutex
	gen     uint64
	purpose TimerPurpose
	end     time.Time
	stop    chan struct{}
}

func NewTimer(clock Clock) *Timer {
	return &Timer{
		clock:   clock,
		events:  make(chan TimerEvent, 16),
		closed:  make(chan struct{}),
		purpose: PurposeNone,
	}
}

// Events is the stream consumed by the engine loop.
func (t *Timer) Events() <-chan TimerEvent { return t.events }

// StartActiveFor starts a countdown after which keep-awake stops.
func (t *Timer) StartActiveFor(d time.Duration) uint64 {
	return t.start(PurposeActiveFor, d)
}

// StartInactiveFor starts a countdown after which keep-awake resumes.
func (t *Timer) StartInactiveFor(d time.Duration) uint64 {
	return t.start(PurposeInactiveFor, d)
}

func (t *Timer) start(p TimerPurpose, d time.Duration) uint64 {
	t.mu.Lock()
	t.cancelLocked()
	t.gen++
	gen := t.gen
	t.purpose = p
	t.end = t.clock.Now().Add(d)
	t.stop = make(chan struct{})
	go t.run(gen, p, t.end, t.stop)
	t.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"purpose":    p,
		"duration":   d,
		"generation": gen,
	}).Debug("countdown started")

	return gen
}

// Stop cancels any running countdown. Idempotent. The generation bump
// invalidates ticks of the old run that are already in flight.
func (t *Timer) Stop() {
	t.mu.Lock()
	hadCountdown := t.stop != nil
	t.cancelLocked()
	t.gen++
	gen := t.gen
	t.mu.Unlock()

	if hadCountdown {
		t.emitAdvisory(TimerEvent{Kind: TimerCleared, Purpose: PurposeNone, Generation: gen})
	}
}

// Close releases the timer; pending run goroutines unblock and exit.
func (t *Timer) Close() {
	t.Stop()
	t.once.Do(func() { close(t.closed) })
}

// Generation returns the current countdown generation. A timer event is
// valid only if its captured generation equals this value.
func (t *Timer) Generation() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen
}

// Purpose returns the purpose of the running countdown, or PurposeNone.
func (t *Timer) Purpose() TimerPurpose {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.purpose
}

// Remaining returns the time left on the running countdown. The second
// return is false when no countdown is active.
func (t *Timer) Remaining() (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.purpose == PurposeNone {
		return 0, false
	}
	return t.end.Sub(t.clock.Now()), true
}

func (t *Timer) cancelLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.purpose = PurposeNone
	t.end = time.Time{}
}

func (t *Timer) run(gen uint64, p TimerPurpose, end time.Time, stop chan struct{}) {
	tk := t.clock.NewTicker(tickInterval)
	defer tk.Stop()

	for {
		select {
		case <-stop:
			return
		case <-tk.C():
			remaining := end.Sub(t.clock.Now())
			t.emit(TimerEvent{Kind: TimerTick, Purpose: p, Remaining: remaining, Generation: gen})
			if remaining <= 0 {
				t.expire(gen)
				t.emit(TimerEvent{Kind: TimerExpired, Purpose: p, Generation: gen})
				return
			}
		}
	}
}

// expire clears the slot on natural expiry without bumping the
// generation, so the expiry event still passes the consumer's
// generation check while RemainingTime already reports none.
func (t *Timer) expire(gen uint64) {
	t.mu.Lock()
	if t.gen == gen {
		t.purpose = PurposeNone
		t.end = time.Time{}
		t.stop = nil
	}
	t.mu.Unlock()
}

func (t *Timer) emit(ev TimerEvent) {
	select {
	case t.events <- ev:
	case <-t.closed:
	}
}

// emitAdvisory drops the event instead of blocking. Used for Stop,
// which runs on the consumer's own goroutine.
func (t *Timer) emitAdvisory(ev TimerEvent) {
	select {
	case t.events <- ev:
	default:
	}
}
