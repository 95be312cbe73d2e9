package core

import (
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNotActive is returned when a pause is requested while the engine
// is not in the Active state. Callers are expected to enforce the
// precondition; the engine rejects rather than pausing from an
// undefined state.
var ErrNotActive = errors.New("pause is only available while active")

// ErrEngineClosed is returned for commands issued after Close.
var ErrEngineClosed = errors.New("engine is closed")

// PowerFunc sets the OS keep-awake flags. systemRequired=false always
// restores normal sleep behavior regardless of displayRequired.
type PowerFunc func(systemRequired, displayRequired bool) error

// Callbacks are invoked from inside the engine loop. They must not call
// back into the engine synchronously and should return quickly.
type Callbacks struct {
	// OnStateChange fires after every applied command and every
	// expiry-driven transition.
	OnStateChange func(Status)
	// OnTick fires on countdown ticks and on countdown clearing.
	OnTick func(Status)
	// OnExpiry fires exactly once per naturally expired countdown,
	// before OnStateChange for the same transition.
	OnExpiry func(TimerPurpose, Status)
}

// Options configures a new Engine.
type Options struct {
	Power             PowerFunc
	Clock             Clock
	KeepDisplayOn     bool
	ShowRemainingTime bool
	Callbacks         Callbacks
}

// Engine is the power state machine plus its command dispatcher. All
// mutations, user commands and timer callbacks alike, funnel through a
// single loop goroutine so exactly one logical transition is in flight
// at a time. That goroutine is also the exclusive caller of the power
// API: the OS execution-state slot is tied to the calling thread, so
// the loop pins itself to one.
type Engine struct {
	power PowerFunc
	timer *Timer
	cb    Callbacks

	cmds    chan command
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once

	// Owned exclusively by the loop goroutine.
	state         AppState
	keepDisplayOn bool
	showRemaining bool
}

type cmdKind int

const (
	cmdToggle cmdKind = iota
	cmdSetActive
	cmdActiveFor
	cmdInactiveFor
	cmdKeepDisplayOn
	cmdShowRemaining
	cmdStatus
)

type command struct {
	kind  cmdKind
	flag  bool
	dur   time.Duration
	reply chan result
}

type result struct {
	status Status
	err    error
}

// NewEngine builds an engine in the Inactive state. Start applies the
// default policy of going Active immediately.
func NewEngine(opts Options) *Engine {
	clock := opts.Clock
	if clock == nil {
		clock = RealClock{}
	}
	return &Engine{
		power:         opts.Power,
		timer:         NewTimer(clock),
		cb:            opts.Callbacks,
		cmds:          make(chan command),
		done:          make(chan struct{}),
		stopped:       make(chan struct{}),
		state:         StateInactive,
		keepDisplayOn: opts.KeepDisplayOn,
		showRemaining: opts.ShowRemainingTime,
	}
}

// Start launches the loop and forces the Active state per default
// policy.
func (e *Engine) Start() {
	go e.loop()
	if _, err := e.SetActive(true); err != nil {
		logrus.WithError(err).Error("failed to apply initial active state")
	}
}

// Close stops the loop, cancels any countdown, and issues the canonical
// release call so the OS is not left in a held-awake state.
func (e *Engine) Close() {
	e.once.Do(func() { close(e.done) })
	<-e.stopped
}

// Toggle flips between Active and not: Active goes Inactive; Inactive
// and Paused go Active, cancelling any countdown.
func (e *Engine) Toggle() (Status, error) {
	return e.dispatch(command{kind: cmdToggle})
}

// SetActive forces the Active (true) or Inactive (false) state. A
// re-entrant call that matches the current state is a complete no-op.
func (e *Engine) SetActive(active bool) (Status, error) {
	return e.dispatch(command{kind: cmdSetActive, flag: active})
}

// SetActiveFor goes Active for the given duration, superseding any
// running countdown. A non-positive duration means indefinitely.
// Accepted from any state.
func (e *Engine) SetActiveFor(d time.Duration) (Status, error) {
	return e.dispatch(command{kind: cmdActiveFor, dur: d})
}

// SetInactiveFor pauses keep-awake for the given duration. Only
// accepted while Active; otherwise returns ErrNotActive.
func (e *Engine) SetInactiveFor(d time.Duration) (Status, error) {
	return e.dispatch(command{kind: cmdInactiveFor, dur: d})
}

// SetKeepDisplayOn updates the display preference. Re-issues the power
// call only when currently Active.
func (e *Engine) SetKeepDisplayOn(v bool) (Status, error) {
	return e.dispatch(command{kind: cmdKeepDisplayOn, flag: v})
}

// SetShowRemainingTime updates the tooltip preference.
func (e *Engine) SetShowRemainingTime(v bool) (Status, error) {
	return e.dispatch(command{kind: cmdShowRemaining, flag: v})
}

// Status returns a snapshot, serialized through the loop like any
// other command.
func (e *Engine) Status() (Status, error) {
	return e.dispatch(command{kind: cmdStatus})
}

func (e *Engine) dispatch(c command) (Status, error) {
	c.reply = make(chan result, 1)
	select {
	case e.cmds <- c:
	case <-e.stopped:
		return Status{}, ErrEngineClosed
	}
	select {
	case r := <-c.reply:
		return r.status, r.err
	case <-e.stopped:
		return Status{}, ErrEngineClosed
	}
}

func (e *Engine) loop() {
	// Whichever thread last called the power primitive is the one whose
	// lifetime matters, so the loop stays on a single thread for the
	// process's duration.
	runtime.LockOSThread()

	for {
		select {
		case c := <-e.cmds:
			c.reply <- e.handleCommand(c)
		case ev := <-e.timer.Events():
			e.handleTimerEvent(ev)
		case <-e.done:
			e.timer.Close()
			e.state = StateInactive
			e.setPower(false, false)
			close(e.stopped)
			return
		}
	}
}

func (e *Engine) handleCommand(c command) result {
	switch c.kind {
	case cmdStatus:
		return result{status: e.snapshot()}

	case cmdToggle:
		c.flag = e.state != StateActive
		fallthrough

	case cmdSetActive:
		if c.flag {
			if e.state == StateActive {
				return result{status: e.snapshot()}
			}
			e.timer.Stop()
			e.state = StateActive
			e.setPower(true, e.keepDisplayOn)
		} else {
			if e.state == StateInactive {
				return result{status: e.snapshot()}
			}
			e.timer.Stop()
			e.state = StateInactive
			e.setPower(false, false)
		}

	case cmdActiveFor:
		e.state = StateActive
		e.setPower(true, e.keepDisplayOn)
		if c.dur > 0 {
			e.timer.StartActiveFor(c.dur)
		} else {
			e.timer.Stop()
		}

	case cmdInactiveFor:
		if e.state != StateActive {
			return result{status: e.snapshot(), err: ErrNotActive}
		}
		e.state = StatePaused
		e.setPower(false, false)
		e.timer.StartInactiveFor(c.dur)

	case cmdKeepDisplayOn:
		e.keepDisplayOn = c.flag
		if e.state == StateActive {
			e.setPower(true, c.flag)
		}

	case cmdShowRemaining:
		e.showRemaining = c.flag
	}

	s := e.snapshot()
	e.notifyState(s)
	return result{status: s}
}

func (e *Engine) handleTimerEvent(ev TimerEvent) {
	if ev.Generation != e.timer.Generation() {
		logrus.WithFields(logrus.Fields{
			"kind":       ev.Kind,
			"purpose":    ev.Purpose,
			"generation": ev.Generation,
		}).Debug("dropping stale timer event")
		return
	}

	switch ev.Kind {
	case TimerTick, TimerCleared:
		if e.cb.OnTick != nil {
			e.cb.OnTick(e.snapshot())
		}

	case TimerExpired:
		switch ev.Purpose {
		case PurposeActiveFor:
			e.state = StateInactive
			e.setPower(false, false)
		case PurposeInactiveFor:
			e.state = StateActive
			e.setPower(true, e.keepDisplayOn)
		default:
			return
		}

		logrus.WithField("purpose", ev.Purpose).Info("countdown expired")

		s := e.snapshot()
		if e.cb.OnExpiry != nil {
			e.cb.OnExpiry(ev.Purpose, s)
		}
		e.notifyState(s)
	}
}

func (e *Engine) snapshot() Status {
	s := Status{
		State:             e.state,
		KeepDisplayOn:     e.keepDisplayOn,
		ShowRemainingTime: e.showRemaining,
		TimerPurpose:      e.timer.Purpose(),
	}
	if r, ok := e.timer.Remaining(); ok {
		if r < 0 {
			r = 0
		}
		s.RemainingSeconds = int(r / time.Second)
	}
	s.Tooltip = Tooltip(s)
	return s
}

// setPower is optimistic: a failed call is logged but the in-memory
// state still transitions, since the UI and timers must stay consistent
// and the next state change re-issues the call anyway.
func (e *Engine) setPower(system, display bool) {
	if e.power == nil {
		return
	}
	if err := e.power(system, display); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"systemRequired":  system,
			"displayRequired": display,
		}).Error("failed to set keep-awake flags")
	}
}

func (e *Engine) notifyState(s Status) {
	if e.cb.OnStateChange != nil {
		e.cb.OnStateChange(s)
	}
}
