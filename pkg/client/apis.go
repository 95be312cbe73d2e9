package client

import (
	"encoding/json"
	"strconv"

	pkgerrors "github.com/pkg/errors"

	"github.com/teocci/csh-caffeine/pkg/config"
	"github.com/teocci/csh-caffeine/pkg/core"
)

// BatteryInfo is the daemon's view of the host battery, absent on
// machines without one.
type BatteryInfo struct {
	Present bool    `json:"present"`
	Percent float64 `json:"percent"`
	State   string  `json:"state"`
}

// ScheduleStatus describes the wake schedule slot.
type ScheduleStatus struct {
	Expression      string `json:"expression"`
	DurationMinutes int    `json:"durationMinutes"`
	NextRun         int64  `json:"nextRun,omitempty"` // unix seconds, 0 when unscheduled
	Running         bool   `json:"running"`
}

func (c *Client) GetStatus() (*core.Status, error) {
	ret, err := c.Get("/status")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get status")
	}

	var s core.Status
	if err := json.Unmarshal([]byte(ret), &s); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal status")
	}
	return &s, nil
}

func (c *Client) Toggle() (*core.Status, error) {
	ret, err := c.Post("/toggle", "")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to toggle")
	}

	var s core.Status
	if err := json.Unmarshal([]byte(ret), &s); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal status")
	}
	return &s, nil
}

func (c *Client) SetActive(active bool) (string, error) {
	return c.Put("/active", strconv.FormatBool(active))
}

// SetActiveFor keeps the system awake for the given number of minutes;
// 0 means indefinitely.
func (c *Client) SetActiveFor(minutes int) (string, error) {
	return c.Put("/active-for", strconv.Itoa(minutes))
}

// SetInactiveFor pauses keep-awake for the given number of minutes.
func (c *Client) SetInactiveFor(minutes int) (string, error) {
	return c.Put("/inactive-for", strconv.Itoa(minutes))
}

func (c *Client) SetKeepDisplayOn(enabled bool) (string, error) {
	return c.Put("/keep-display-on", strconv.FormatBool(enabled))
}

func (c *Client) SetNotificationMode(mode config.NotificationMode) (string, error) {
	payload, err := json.Marshal(mode)
	if err != nil {
		return "", err
	}
	return c.Put("/notification-mode", string(payload))
}

func (c *Client) SetRunAtStartup(enabled bool) (string, error) {
	return c.Put("/run-at-startup", strconv.FormatBool(enabled))
}

func (c *Client) SetShowRemainingTime(enabled bool) (string, error) {
	return c.Put("/show-remaining-time", strconv.FormatBool(enabled))
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}
	return &conf, nil
}

func (c *Client) GetBatteryInfo() (*BatteryInfo, error) {
	ret, err := c.Get("/battery")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get battery info")
	}

	var info BatteryInfo
	if err := json.Unmarshal([]byte(ret), &info); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal battery info")
	}
	return &info, nil
}

func (c *Client) GetSchedule() (*ScheduleStatus, error) {
	ret, err := c.Get("/schedule")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get schedule")
	}

	var st ScheduleStatus
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal schedule")
	}
	return &st, nil
}

func (c *Client) SetSchedule(expression string, durationMinutes int) (string, error) {
	payload, err := json.Marshal(ScheduleStatus{
		Expression:      expression,
		DurationMinutes: durationMinutes,
	})
	if err != nil {
		return "", err
	}
	return c.Put("/schedule", string(payload))
}

func (c *Client) SkipSchedule() (string, error) {
	return c.Post("/schedule/skip", "")
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}

	var v string
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal version")
	}
	return v, nil
}
