//go:build !windows && !darwin

package power

import "github.com/sirupsen/logrus"

// No keep-awake primitive is wired on this platform; the state machine
// still runs so the tray and timers behave normally.
func setKeepAwake(system, display bool) error {
	logrus.WithFields(logrus.Fields{
		"systemRequired":  system,
		"displayRequired": display,
	}).Debug("keep-awake flags ignored on this platform")
	return nil
}
