package core

import (
	"testing"
	"time"
)

func TestTooltip(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   string
	}{
		{
			name:   "inactive",
			status: Status{State: StateInactive},
			want:   "Caffeine: Inactive",
		},
		{
			name: "paused with remaining",
			status: Status{
				State:            StatePaused,
				TimerPurpose:     PurposeInactiveFor,
				RemainingSeconds: 45 * 60,
			},
			want: "Caffeine: Paused (resumes in 45m)",
		},
		{
			name: "active timed with remaining shown",
			status: Status{
				State:             StateActive,
				KeepDisplayOn:     true,
				ShowRemainingTime: true,
				TimerPurpose:      PurposeActiveFor,
				RemainingSeconds:  2*3600 + 15*60,
			},
			want: "Caffeine: Active (2h 15m remaining)",
		},
		{
			name: "active timed with remaining hidden",
			status: Status{
				State:         StateActive,
				KeepDisplayOn: true,
				TimerPurpose:  PurposeActiveFor,
			},
			want: "Caffeine: Active",
		},
		{
			name: "active indefinite display can sleep",
			status: Status{
				State:         StateActive,
				KeepDisplayOn: false,
			},
			want: "Caffeine: Active (display can sleep)",
		},
		{
			name: "active indefinite",
			status: Status{
				State:         StateActive,
				KeepDisplayOn: true,
			},
			want: "Caffeine: Active",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tooltip(tt.status); got != tt.want {
				t.Fatalf("Tooltip() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0m"},
		{-5 * time.Second, "0m"},
		{30 * time.Second, "1m"},
		{15 * time.Minute, "15m"},
		{59*time.Minute + 30*time.Second, "60m"},
		{time.Hour, "1h 0m"},
		{8 * time.Hour, "8h 0m"},
		{24 * time.Hour, "24h 0m"},
		{90 * time.Minute, "1h 30m"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Fatalf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
