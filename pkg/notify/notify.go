// Package notify delivers best-effort desktop notifications for timer
// expiry. Delivery failures are logged and never affect engine state.
package notify

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/teocci/csh-caffeine/pkg/config"
)

// Expiry messages, fixed product strings.
const (
	ActiveForExpiredMessage   = "Active timer expired. PC can now sleep."
	InactiveForExpiredMessage = "Pause ended. Keeping PC awake again."
)

// Notifier dispatches a user-facing message according to mode.
type Notifier interface {
	Notify(message string, mode config.NotificationMode)
}

// Desktop shells out to the platform notification tool. Asynchronous
// and best-effort.
type Desktop struct {
	title string
}

func NewDesktop() *Desktop {
	return &Desktop{title: "Caffeine"}
}

func (d *Desktop) Notify(message string, mode config.NotificationMode) {
	if mode == config.Silent {
		return
	}

	showBanner := mode == config.NotificationAndSound || mode == config.NotificationOnly
	playSound := mode == config.NotificationAndSound || mode == config.SoundOnly

	go func() {
		if showBanner {
			if err := showNotification(d.title, message); err != nil {
				logrus.WithError(err).Debug("failed to show notification")
			}
		}
		if playSound {
			if err := playChime(); err != nil {
				logrus.WithError(err).Debug("failed to play notification sound")
			}
		}
	}()
}

func showNotification(title, body string) error {
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", body, title)
		return exec.Command("/usr/bin/osascript", "-e", script).Run()
	case "linux":
		return exec.Command("notify-send", title, body).Run()
	case "windows":
		// Balloon notification through the shell COM object; toast APIs
		// need an AppUserModelID the bare binary does not have.
		script := fmt.Sprintf(
			`(New-Object -ComObject Wscript.Shell).Popup(%q, 5, %q, 64) | Out-Null`,
			body, title)
		return exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script).Run()
	}
	return fmt.Errorf("no notification backend for %s", runtime.GOOS)
}

func playChime() error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("/usr/bin/afplay", "/System/Library/Sounds/Glass.aiff").Run()
	case "linux":
		return exec.Command("paplay", "/usr/share/sounds/freedesktop/stereo/complete.oga").Run()
	case "windows":
		return exec.Command("rundll32", "user32.dll,MessageBeep").Run()
	}
	return fmt.Errorf("no sound backend for %s", runtime.GOOS)
}
