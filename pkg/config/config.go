package config

import "github.com/sirupsen/logrus"

// NotificationMode selects how timer-expiry notifications are
// delivered.
type NotificationMode string

const (
	NotificationAndSound NotificationMode = "notification-and-sound"
	NotificationOnly     NotificationMode = "notification-only"
	SoundOnly            NotificationMode = "sound-only"
	Silent               NotificationMode = "silent"
)

// Valid reports whether m is one of the known modes.
func (m NotificationMode) Valid() bool {
	switch m {
	case NotificationAndSound, NotificationOnly, SoundOnly, Silent:
		return true
	}
	return false
}

type Config interface {
	KeepDisplayOn() bool
	NotificationMode() NotificationMode
	RunAtStartup() bool
	ShowRemainingTime() bool
	LastUsedDurationMinutes() int
	WakeSchedule() string
	WakeScheduleDurationMinutes() int

	SetKeepDisplayOn(bool)
	SetNotificationMode(NotificationMode)
	SetRunAtStartup(bool)
	SetShowRemainingTime(bool)
	SetLastUsedDurationMinutes(int)
	SetWakeSchedule(string)
	SetWakeScheduleDurationMinutes(int)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error

	LogrusFields() logrus.Fields
}
