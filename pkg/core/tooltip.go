package core

import (
	"fmt"
	"time"
)

// Tooltip derives the observable tray string from a status snapshot.
func Tooltip(s Status) string {
	switch s.State {
	case StateInactive:
		return "Caffeine: Inactive"
	case StatePaused:
		return fmt.Sprintf("Caffeine: Paused (resumes in %s)",
			FormatDuration(time.Duration(s.RemainingSeconds)*time.Second))
	case StateActive:
		if s.TimerPurpose == PurposeActiveFor && s.ShowRemainingTime {
			return fmt.Sprintf("Caffeine: Active (%s remaining)",
				FormatDuration(time.Duration(s.RemainingSeconds)*time.Second))
		}
		if !s.KeepDisplayOn {
			return "Caffeine: Active (display can sleep)"
		}
		return "Caffeine: Active"
	}
	return "Caffeine"
}

// FormatDuration renders a remaining time as "{H}h {M}m" when at least
// an hour is left, "{M}m" otherwise. Partial minutes round up so a
// freshly started countdown shows its full length.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int((d - time.Duration(hours)*time.Hour + time.Minute - 1) / time.Minute)
	if hours >= 1 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
