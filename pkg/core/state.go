package core

// AppState is the three-way mode of the keep-awake engine.
type AppState string

const (
	// StateActive means sleep is being prevented.
	StateActive AppState = "active"
	// StateInactive means the OS is free to sleep. Reached only via an
	// explicit toggle-off or an expired active-for countdown.
	StateInactive AppState = "inactive"
	// StatePaused means sleep is temporarily allowed and an
	// inactive-for countdown is running to resume.
	StatePaused AppState = "paused"
)

// TimerPurpose tags the single in-flight countdown.
type TimerPurpose string

const (
	PurposeNone        TimerPurpose = "none"
	PurposeActiveFor   TimerPurpose = "active-for"
	PurposeInactiveFor TimerPurpose = "inactive-for"
)

// Status is a read-only snapshot of the engine, pushed to observers and
// returned by every command. Observers must not feed it back as state.
type Status struct {
	State             AppState     `json:"state"`
	KeepDisplayOn     bool         `json:"keepDisplayOn"`
	ShowRemainingTime bool         `json:"showRemainingTime"`
	TimerPurpose      TimerPurpose `json:"timerPurpose"`
	RemainingSeconds  int          `json:"remainingSeconds"`
	Tooltip           string       `json:"tooltip"`
}
