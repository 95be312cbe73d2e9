package events

import "encoding/json"

// Event name constants
const (
	StateChanged      = "state.changed"
	TimerTick         = "timer.tick"
	TimerExpired      = "timer.expired"
	ScheduleTriggered = "schedule.triggered"
)

// Event is a generic SSE event from the daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// StateChangedEvent carries the engine snapshot after a transition or
// setting change.
type StateChangedEvent struct {
	State            string `json:"state"`
	KeepDisplayOn    bool   `json:"keepDisplayOn"`
	TimerPurpose     string `json:"timerPurpose"`
	RemainingSeconds int    `json:"remainingSeconds"`
	Tooltip          string `json:"tooltip"`
	Ts               int64  `json:"ts"`
}

// TimerTickEvent is emitted once per countdown tick and once when a
// countdown is cleared (RemainingSeconds 0, Purpose "none").
type TimerTickEvent struct {
	Purpose          string `json:"purpose"`
	RemainingSeconds int    `json:"remainingSeconds"`
	Tooltip          string `json:"tooltip"`
	Ts               int64  `json:"ts"`
}

// TimerExpiredEvent is emitted exactly once per naturally expired
// countdown.
type TimerExpiredEvent struct {
	Purpose string `json:"purpose"`
	Message string `json:"message"`
	Ts      int64  `json:"ts"`
}

// ScheduleTriggeredEvent is emitted when the wake schedule activates
// keep-awake.
type ScheduleTriggeredEvent struct {
	DurationMinutes int    `json:"durationMinutes"`
	NextRun         int64  `json:"nextRun,omitempty"`
	Message         string `json:"message,omitempty"`
	Ts              int64  `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic
// type T. If Data is empty, it returns the zero value of T with a nil
// error.
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
