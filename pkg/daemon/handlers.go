package daemon

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/distatus/battery"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/teocci/csh-caffeine/pkg/client"
	"github.com/teocci/csh-caffeine/pkg/config"
	"github.com/teocci/csh-caffeine/pkg/core"
	"github.com/teocci/csh-caffeine/pkg/startup"
	"github.com/teocci/csh-caffeine/pkg/version"
)

// The longest duration offered anywhere in the UI is 24 hours.
const maxDurationMinutes = 24 * 60

func getStatus(c *gin.Context) {
	st, err := eng.Status()
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, st)
}

func postToggle(c *gin.Context) {
	st, err := eng.Toggle()
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	logrus.Infof("toggled, now %s", st.State)
	c.IndentedJSON(http.StatusOK, st)
}

func setActive(c *gin.Context) {
	var active bool
	if err := c.BindJSON(&active); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	st, err := eng.SetActive(active)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	logrus.Infof("set active to %t", active)
	c.IndentedJSON(http.StatusOK, st)
}

func setActiveFor(c *gin.Context) {
	var minutes int
	if err := c.BindJSON(&minutes); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if minutes < 0 || minutes > maxDurationMinutes {
		err := fmt.Errorf("minutes must be between 0 and %d, got %d", maxDurationMinutes, minutes)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	st, err := eng.SetActiveFor(time.Duration(minutes) * time.Minute)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	if minutes > 0 {
		conf.SetLastUsedDurationMinutes(minutes)
		saveConfig()
		logrus.Infof("active for %d minutes", minutes)
	} else {
		logrus.Info("active indefinitely")
	}

	c.IndentedJSON(http.StatusOK, st)
}

func setInactiveFor(c *gin.Context) {
	var minutes int
	if err := c.BindJSON(&minutes); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if minutes <= 0 || minutes > maxDurationMinutes {
		err := fmt.Errorf("minutes must be between 1 and %d, got %d", maxDurationMinutes, minutes)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	st, err := eng.SetInactiveFor(time.Duration(minutes) * time.Minute)
	if err != nil {
		if errors.Is(err, core.ErrNotActive) {
			c.IndentedJSON(http.StatusConflict, err.Error())
			_ = c.AbortWithError(http.StatusConflict, err)
			return
		}
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	conf.SetLastUsedDurationMinutes(minutes)
	saveConfig()

	logrus.Infof("paused for %d minutes", minutes)
	c.IndentedJSON(http.StatusOK, st)
}

func setKeepDisplayOn(c *gin.Context) {
	var keep bool
	if err := c.BindJSON(&keep); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if _, err := eng.SetKeepDisplayOn(keep); err != nil {
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	conf.SetKeepDisplayOn(keep)
	saveConfig()

	logrus.Infof("set keep display on to %t", keep)
	c.IndentedJSON(http.StatusCreated, "ok")
}

func setNotificationMode(c *gin.Context) {
	var mode config.NotificationMode
	if err := c.BindJSON(&mode); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if !mode.Valid() {
		err := fmt.Errorf("unknown notification mode %q", mode)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetNotificationMode(mode)
	saveConfig()

	logrus.Infof("set notification mode to %s", mode)
	c.IndentedJSON(http.StatusCreated, "ok")
}

func setRunAtStartup(c *gin.Context) {
	var enabled bool
	if err := c.BindJSON(&enabled); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	// Register with the OS first; the setting is only persisted once
	// registration succeeded, so config and OS never disagree.
	if err := startup.Set(enabled); err != nil {
		logrus.Errorf("failed to update startup registration: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	conf.SetRunAtStartup(enabled)
	saveConfig()

	logrus.Infof("set run at startup to %t", enabled)
	c.IndentedJSON(http.StatusCreated, "ok")
}

func setShowRemainingTime(c *gin.Context) {
	var show bool
	if err := c.BindJSON(&show); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if _, err := eng.SetShowRemainingTime(show); err != nil {
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	conf.SetShowRemainingTime(show)
	saveConfig()

	logrus.Infof("set show remaining time to %t", show)
	c.IndentedJSON(http.StatusCreated, "ok")
}

func getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(conf)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func getBattery(c *gin.Context) {
	batteries, err := battery.GetAll()
	if err != nil || len(batteries) == 0 {
		if err != nil {
			logrus.Debugf("battery lookup failed: %v", err)
		}
		// Desktops simply have no battery; that is not an error.
		c.IndentedJSON(http.StatusOK, client.BatteryInfo{Present: false})
		return
	}

	bat := batteries[0]
	percent := 0.0
	if bat.Full > 0 {
		percent = bat.Current / bat.Full * 100
	}
	c.IndentedJSON(http.StatusOK, client.BatteryInfo{
		Present: true,
		Percent: percent,
		State:   bat.State.String(),
	})
}

func getSchedule(c *gin.Context) {
	st := client.ScheduleStatus{
		Expression:      conf.WakeSchedule(),
		DurationMinutes: conf.WakeScheduleDurationMinutes(),
	}
	nextRun, running := sched.Status()
	if !nextRun.IsZero() {
		st.NextRun = nextRun.Unix()
	}
	st.Running = running
	c.IndentedJSON(http.StatusOK, st)
}

func setSchedule(c *gin.Context) {
	var req client.ScheduleStatus
	if err := c.BindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if req.Expression == "" {
		sched.Clear()
		conf.SetWakeSchedule("")
		saveConfig()

		logrus.Info("wake schedule cleared")
		c.IndentedJSON(http.StatusCreated, "ok")
		return
	}

	if req.DurationMinutes <= 0 || req.DurationMinutes > maxDurationMinutes {
		err := fmt.Errorf("durationMinutes must be between 1 and %d, got %d", maxDurationMinutes, req.DurationMinutes)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if err := sched.Schedule(req.Expression); err != nil {
		err = fmt.Errorf("invalid cron expression %q: %v", req.Expression, err)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetWakeSchedule(req.Expression)
	conf.SetWakeScheduleDurationMinutes(req.DurationMinutes)
	saveConfig()

	logrus.Infof("wake schedule set to %q for %d minutes", req.Expression, req.DurationMinutes)
	c.IndentedJSON(http.StatusCreated, "ok")
}

func skipSchedule(c *gin.Context) {
	if err := sched.Skip(); err != nil {
		c.IndentedJSON(http.StatusConflict, err.Error())
		_ = c.AbortWithError(http.StatusConflict, err)
		return
	}

	logrus.Info("next scheduled wake skipped")
	c.IndentedJSON(http.StatusCreated, "ok")
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

// streamEvents serves the SSE feed consumed by the tray and by
// `caffeine remaining --watch`.
func streamEvents(c *gin.Context) {
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
