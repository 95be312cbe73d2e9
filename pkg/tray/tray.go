// Package tray runs the system tray UI. It talks to the daemon over
// the unix socket exactly like the CLI does, and keeps its state in
// sync through the daemon's SSE event feed with a polling fallback.
package tray

import (
	"context"
	"fmt"
	"time"

	"github.com/getlantern/systray"
	"github.com/sirupsen/logrus"

	"github.com/teocci/csh-caffeine/pkg/client"
	"github.com/teocci/csh-caffeine/pkg/config"
	"github.com/teocci/csh-caffeine/pkg/core"
	"github.com/teocci/csh-caffeine/pkg/events"
	"github.com/teocci/csh-caffeine/pkg/version"
)

// pollInterval is the fallback refresh cadence when no events arrive.
const pollInterval = 30 * time.Second

// durationChoices are the minute values offered in the Active For and
// Pause For submenus.
var durationChoices = []int{15, 30, 45, 60, 120, 240, 360, 480, 1440}

type actionKind int

const (
	actToggle actionKind = iota
	actActiveFor
	actPauseFor
	actKeepDisplay
	actShowRemaining
	actRunAtStartup
	actNotifyMode
	actQuit
)

type action struct {
	kind    actionKind
	minutes int
	mode    config.NotificationMode
}

type app struct {
	api *client.Client

	mStatus        *systray.MenuItem
	mBattery       *systray.MenuItem
	mToggle        *systray.MenuItem
	mPauseFor      *systray.MenuItem
	mKeepDisplay   *systray.MenuItem
	mShowRemaining *systray.MenuItem
	mRunAtStartup  *systray.MenuItem
	modeItems      map[config.NotificationMode]*systray.MenuItem

	actions chan action
}

// Run blocks until the tray is quit.
func Run(unixSocketPath string) {
	a := &app{
		api:       client.NewClient(unixSocketPath),
		modeItems: make(map[config.NotificationMode]*systray.MenuItem),
		actions:   make(chan action, 8),
	}
	systray.Run(a.onReady, a.onExit)
}

func (a *app) onReady() {
	systray.SetTitle("☕")
	systray.SetTooltip("Caffeine")

	a.mStatus = systray.AddMenuItem("Connecting...", "Current state")
	a.mStatus.Disable()

	a.mBattery = systray.AddMenuItem("Battery: -", "Host battery; staying awake on battery drains it faster")
	a.mBattery.Disable()
	a.mBattery.Hide()

	a.mToggle = systray.AddMenuItem("Toggle", "Toggle keeping the PC awake")

	systray.AddSeparator()

	mActiveFor := systray.AddMenuItem("Active For", "Keep awake for a fixed duration")
	indefinite := mActiveFor.AddSubMenuItem("Indefinitely", "Keep awake until turned off")
	go a.forwardClicks(indefinite, action{kind: actActiveFor, minutes: 0})
	for _, m := range durationChoices {
		item := mActiveFor.AddSubMenuItem(minutesLabel(m), "")
		go a.forwardClicks(item, action{kind: actActiveFor, minutes: m})
	}

	a.mPauseFor = systray.AddMenuItem("Pause For", "Let the PC sleep for a while, then resume")
	for _, m := range durationChoices {
		item := a.mPauseFor.AddSubMenuItem(minutesLabel(m), "")
		go a.forwardClicks(item, action{kind: actPauseFor, minutes: m})
	}

	systray.AddSeparator()

	a.mKeepDisplay = systray.AddMenuItemCheckbox("Keep Display On", "Also prevent the display from turning off", false)
	a.mShowRemaining = systray.AddMenuItemCheckbox("Show Remaining Time", "Show the countdown in the tooltip", false)
	a.mRunAtStartup = systray.AddMenuItemCheckbox("Run at Startup", "Start the tray when you log in", false)

	mNotify := systray.AddMenuItem("Notifications", "How timer expiry is announced")
	for _, mode := range []struct {
		mode  config.NotificationMode
		label string
	}{
		{config.NotificationAndSound, "Notification and Sound"},
		{config.NotificationOnly, "Notification Only"},
		{config.SoundOnly, "Sound Only"},
		{config.Silent, "Silent"},
	} {
		item := mNotify.AddSubMenuItemCheckbox(mode.label, "", false)
		a.modeItems[mode.mode] = item
		go a.forwardClicks(item, action{kind: actNotifyMode, mode: mode.mode})
	}

	systray.AddSeparator()

	mAbout := systray.AddMenuItem(fmt.Sprintf("Caffeine %s", version.Version), "")
	mAbout.Disable()
	mQuit := systray.AddMenuItem("Quit", "Quit the tray (the daemon keeps running)")

	go a.forwardClicks(a.mToggle, action{kind: actToggle})
	go a.forwardClicks(a.mKeepDisplay, action{kind: actKeepDisplay})
	go a.forwardClicks(a.mShowRemaining, action{kind: actShowRemaining})
	go a.forwardClicks(a.mRunAtStartup, action{kind: actRunAtStartup})
	go a.forwardClicks(mQuit, action{kind: actQuit})

	go a.loop()

	a.refresh()
}

func (a *app) onExit() {
	logrus.Info("caffeine tray exiting")
}

func (a *app) forwardClicks(item *systray.MenuItem, act action) {
	for range item.ClickedCh {
		a.actions <- act
	}
}

// loop serializes menu actions and daemon events so the menu state is
// only ever touched from one goroutine.
func (a *app) loop() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh := a.api.SubscribeEvents(ctx)
	poll := time.NewTicker(pollInterval)
	defer poll.Stop()

	for {
		select {
		case act := <-a.actions:
			if act.kind == actQuit {
				systray.Quit()
				return
			}
			a.handle(act)
			a.refresh()

		case ev, ok := <-evCh:
			if !ok {
				return
			}
			a.handleEvent(ev)

		case <-poll.C:
			a.refresh()
		}
	}
}

func (a *app) handle(act action) {
	var err error
	switch act.kind {
	case actToggle:
		_, err = a.api.Toggle()
	case actActiveFor:
		_, err = a.api.SetActiveFor(act.minutes)
	case actPauseFor:
		_, err = a.api.SetInactiveFor(act.minutes)
	case actKeepDisplay:
		_, err = a.api.SetKeepDisplayOn(!a.mKeepDisplay.Checked())
	case actShowRemaining:
		_, err = a.api.SetShowRemainingTime(!a.mShowRemaining.Checked())
	case actRunAtStartup:
		_, err = a.api.SetRunAtStartup(!a.mRunAtStartup.Checked())
	case actNotifyMode:
		_, err = a.api.SetNotificationMode(act.mode)
	}
	if err != nil {
		logrus.WithError(err).Error("daemon request failed")
	}
}

func (a *app) handleEvent(ev events.Event) {
	switch ev.Name {
	case events.StateChanged:
		payload, err := events.DecodeAs[events.StateChangedEvent](ev)
		if err != nil {
			logrus.WithError(err).Error("failed to decode state.changed event")
			return
		}
		a.applyState(core.AppState(payload.State), payload.Tooltip)

	case events.TimerTick:
		payload, err := events.DecodeAs[events.TimerTickEvent](ev)
		if err != nil {
			logrus.WithError(err).Error("failed to decode timer.tick event")
			return
		}
		systray.SetTooltip(payload.Tooltip)

	case events.TimerExpired, events.ScheduleTriggered:
		// The daemon already notified the user; just resync the menu.
		a.refresh()
	}
}

// refresh pulls status and config from the daemon and redraws the
// menu. Called on startup, after every action, and on the poll ticker.
func (a *app) refresh() {
	st, err := a.api.GetStatus()
	if err != nil {
		systray.SetTitle("🚫")
		systray.SetTooltip("Caffeine: daemon not reachable")
		a.mStatus.SetTitle("Daemon not reachable")
		logrus.WithError(err).Debug("cannot reach daemon")
		return
	}

	a.applyState(st.State, st.Tooltip)

	raw, err := a.api.GetConfig()
	if err != nil {
		logrus.WithError(err).Debug("failed to get config")
		return
	}
	conf := config.NewFileFromConfig(raw, "")

	setChecked(a.mKeepDisplay, conf.KeepDisplayOn())
	setChecked(a.mShowRemaining, conf.ShowRemainingTime())
	setChecked(a.mRunAtStartup, conf.RunAtStartup())

	for mode, item := range a.modeItems {
		setChecked(item, mode == conf.NotificationMode())
	}

	a.refreshBattery()
}

func (a *app) refreshBattery() {
	bat, err := a.api.GetBatteryInfo()
	if err != nil || !bat.Present {
		a.mBattery.Hide()
		return
	}
	a.mBattery.SetTitle(fmt.Sprintf("Battery: %.0f%% (%s)", bat.Percent, bat.State))
	a.mBattery.Show()
}

func (a *app) applyState(state core.AppState, tooltip string) {
	switch state {
	case core.StateActive:
		systray.SetTitle("☕")
		a.mToggle.SetTitle("Deactivate")
	case core.StatePaused:
		systray.SetTitle("⏸")
		a.mToggle.SetTitle("Activate")
	default:
		systray.SetTitle("💤")
		a.mToggle.SetTitle("Activate")
	}
	systray.SetTooltip(tooltip)
	a.mStatus.SetTitle(tooltip)

	// Pausing is only meaningful while keep-awake is actually held.
	if pauseAvailable(state) {
		a.mPauseFor.Enable()
	} else {
		a.mPauseFor.Disable()
	}
}

func pauseAvailable(state core.AppState) bool {
	return state == core.StateActive
}

func setChecked(item *systray.MenuItem, checked bool) {
	if checked {
		item.Check()
	} else {
		item.Uncheck()
	}
}

func minutesLabel(m int) string {
	if m < 60 {
		return fmt.Sprintf("%d min", m)
	}
	if m%60 == 0 {
		return fmt.Sprintf("%d h", m/60)
	}
	return fmt.Sprintf("%d h %d min", m/60, m%60)
}
