package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/teocci/csh-caffeine/pkg/client"
	"github.com/teocci/csh-caffeine/pkg/config"
	"github.com/teocci/csh-caffeine/pkg/core"
	"github.com/teocci/csh-caffeine/pkg/events"
	"github.com/teocci/csh-caffeine/pkg/notify"
	"github.com/teocci/csh-caffeine/pkg/power"
)

var (
	conf     config.Config
	eng      *core.Engine
	hub      *events.EventHub
	notifier notify.Notifier
	sched    *Scheduler
)

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/status", getStatus)
	router.POST("/toggle", postToggle)
	router.PUT("/active", setActive)
	router.PUT("/active-for", setActiveFor)
	router.PUT("/inactive-for", setInactiveFor)
	router.PUT("/keep-display-on", setKeepDisplayOn)
	router.PUT("/notification-mode", setNotificationMode)
	router.PUT("/run-at-startup", setRunAtStartup)
	router.PUT("/show-remaining-time", setShowRemainingTime)
	router.GET("/config", getConfig)
	router.GET("/battery", getBattery)
	router.GET("/schedule", getSchedule)
	router.PUT("/schedule", setSchedule)
	router.POST("/schedule/skip", skipSchedule)
	router.GET("/version", getVersion)
	router.GET("/events", streamEvents)

	return router
}

func Run(configPath string, unixSocketPath string) error {
	conf = config.NewFile(configPath)
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	hub = events.NewEventHub()
	notifier = notify.NewDesktop()

	eng = core.NewEngine(core.Options{
		Power:             power.SetKeepAwake,
		KeepDisplayOn:     conf.KeepDisplayOn(),
		ShowRemainingTime: conf.ShowRemainingTime(),
		Callbacks: core.Callbacks{
			OnStateChange: publishStateChange,
			OnTick:        publishTick,
			OnExpiry:      handleExpiry,
		},
	})

	sched = NewScheduler(runScheduledWake, publishScheduleTriggered, func(data any) {
		logrus.Errorf("scheduler: %v", data)
	})
	if expr := conf.WakeSchedule(); expr != "" {
		if err := sched.Schedule(expr); err != nil {
			logrus.Errorf("invalid wake schedule %q in config, ignoring: %v", expr, err)
		}
	}

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			err := conf.Load()
			if err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			applyReloadedConfig()
			logrus.Infof("config reloaded")
		}
	}()

	if err := ensureSingleInstance(unixSocketPath); err != nil {
		return err
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", unixSocketPath, err)
	}

	srv := &http.Server{
		Handler: setupRoutes(),
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	eng.Start()
	sched.Start()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	logrus.Info("stopping scheduler")
	sched.Stop()

	// Close releases the keep-awake flags so the OS can sleep again.
	logrus.Info("stopping engine")
	eng.Close()

	hub.Close()

	if err := os.Remove(unixSocketPath); err != nil && !os.IsNotExist(err) {
		logrus.Errorf("failed to remove socket file: %v", err)
	}

	logrus.Info("exiting")
	return nil
}

// applyReloadedConfig pushes reloadable settings into the engine and
// re-arms the wake schedule, so a SIGHUP reload takes effect beyond the
// config struct itself.
func applyReloadedConfig() {
	if _, err := eng.SetKeepDisplayOn(conf.KeepDisplayOn()); err != nil {
		logrus.WithError(err).Error("failed to apply reloaded keep-display-on")
	}
	if _, err := eng.SetShowRemainingTime(conf.ShowRemainingTime()); err != nil {
		logrus.WithError(err).Error("failed to apply reloaded show-remaining-time")
	}

	if expr := conf.WakeSchedule(); expr == "" {
		sched.Clear()
	} else if err := sched.Schedule(expr); err != nil {
		logrus.Errorf("invalid wake schedule %q in config, ignoring: %v", expr, err)
	}
}

// ensureSingleInstance probes an existing socket file. A responding
// daemon means a second instance must not start; a dead socket file is
// removed so the listener can bind.
func ensureSingleInstance(unixSocketPath string) error {
	if _, err := os.Stat(unixSocketPath); err != nil {
		return nil
	}

	c := client.NewClient(unixSocketPath)
	if v, err := c.GetVersion(); err == nil {
		return fmt.Errorf("another caffeine daemon (version %s) is already running on %s", v, unixSocketPath)
	}

	logrus.Warnf("removing stale socket file %s", unixSocketPath)
	if err := os.Remove(unixSocketPath); err != nil {
		return fmt.Errorf("failed to remove stale socket file: %w", err)
	}
	return nil
}

// runScheduledWake is the scheduler task: go Active for the configured
// duration, exactly as if the user had picked it from the tray.
func runScheduledWake() error {
	minutes := conf.WakeScheduleDurationMinutes()
	if minutes <= 0 {
		minutes = conf.LastUsedDurationMinutes()
	}
	_, err := eng.SetActiveFor(time.Duration(minutes) * time.Minute)
	return err
}

func publishStateChange(s core.Status) {
	hub.Publish(events.StateChanged, events.StateChangedEvent{
		State:            string(s.State),
		KeepDisplayOn:    s.KeepDisplayOn,
		TimerPurpose:     string(s.TimerPurpose),
		RemainingSeconds: s.RemainingSeconds,
		Tooltip:          s.Tooltip,
		Ts:               time.Now().Unix(),
	})
}

func publishTick(s core.Status) {
	hub.Publish(events.TimerTick, events.TimerTickEvent{
		Purpose:          string(s.TimerPurpose),
		RemainingSeconds: s.RemainingSeconds,
		Tooltip:          s.Tooltip,
		Ts:               time.Now().Unix(),
	})
}

// handleExpiry notifies the user and publishes the expiry event. Runs
// inside the engine loop, so everything heavy goes through the
// non-blocking hub and the async notifier.
func handleExpiry(purpose core.TimerPurpose, _ core.Status) {
	var msg string
	switch purpose {
	case core.PurposeActiveFor:
		msg = notify.ActiveForExpiredMessage
	case core.PurposeInactiveFor:
		msg = notify.InactiveForExpiredMessage
	default:
		return
	}

	notifier.Notify(msg, conf.NotificationMode())
	hub.Publish(events.TimerExpired, events.TimerExpiredEvent{
		Purpose: string(purpose),
		Message: msg,
		Ts:      time.Now().Unix(),
	})
}

func publishScheduleTriggered(data any) {
	if runAt, ok := data.(time.Time); ok {
		logrus.Infof("scheduled wake triggered at %s", runAt.Format(time.DateTime))
	}

	ev := events.ScheduleTriggeredEvent{
		DurationMinutes: conf.WakeScheduleDurationMinutes(),
		Message:         "Scheduled wake started.",
		Ts:              time.Now().Unix(),
	}
	if nextRun, _ := sched.Status(); !nextRun.IsZero() {
		ev.NextRun = nextRun.Unix()
	}
	hub.Publish(events.ScheduleTriggered, ev)
}
