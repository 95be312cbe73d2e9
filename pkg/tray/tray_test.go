package tray

import (
	"testing"

	"github.com/teocci/csh-caffeine/pkg/core"
)

func TestPauseAvailability(t *testing.T) {
	cases := []struct {
		state core.AppState
		want  bool
	}{
		{core.StateActive, true},
		{core.StatePaused, false},
		{core.StateInactive, false},
	}
	for _, c := range cases {
		if got := pauseAvailable(c.state); got != c.want {
			t.Errorf("pauseAvailable(%s) = %v, want %v", c.state, got, c.want)
		}
	}
}

func TestMinutesLabel(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{15, "15 min"},
		{45, "45 min"},
		{60, "1 h"},
		{90, "1 h 30 min"},
		{120, "2 h"},
		{1440, "24 h"},
	}
	for _, c := range cases {
		if got := minutesLabel(c.minutes); got != c.want {
			t.Errorf("minutesLabel(%d) = %q, want %q", c.minutes, got, c.want)
		}
	}
}
