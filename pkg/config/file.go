package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/teocci/csh-caffeine/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		KeepDisplayOn:               ptr.To(true),
		NotificationMode:            ptr.To(NotificationAndSound),
		RunAtStartup:                ptr.To(false),
		ShowRemainingTime:           ptr.To(true),
		LastUsedDurationMinutes:     ptr.To(60),
		WakeSchedule:                ptr.To(""),
		WakeScheduleDurationMinutes: ptr.To(60),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

// NewFile loads settings from configPath. A missing or unreadable file
// falls back to defaults; losing a preference is never fatal.
func NewFile(configPath string) *File {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	if err := f.Load(); err != nil {
		logrus.WithError(err).WithField("path", configPath).
			Warn("failed to load settings, falling back to defaults")
		f.c = &RawFileConfig{}
	}
	return f
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = defaultFileConfig
	}

	return &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}
}

// RawFileConfig is the on-disk JSON shape. Pointer fields distinguish
// "unset, use the default" from an explicit value.
type RawFileConfig struct {
	KeepDisplayOn               *bool             `json:"keepDisplayOn,omitempty"`
	NotificationMode            *NotificationMode `json:"notificationMode,omitempty"`
	RunAtStartup                *bool             `json:"runAtStartup,omitempty"`
	ShowRemainingTime           *bool             `json:"showRemainingTime,omitempty"`
	LastUsedDurationMinutes     *int              `json:"lastUsedDurationMinutes,omitempty"`
	WakeSchedule                *string           `json:"wakeSchedule,omitempty"`
	WakeScheduleDurationMinutes *int              `json:"wakeScheduleDurationMinutes,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	return &RawFileConfig{
		KeepDisplayOn:               ptr.To(c.KeepDisplayOn()),
		NotificationMode:            ptr.To(c.NotificationMode()),
		RunAtStartup:                ptr.To(c.RunAtStartup()),
		ShowRemainingTime:           ptr.To(c.ShowRemainingTime()),
		LastUsedDurationMinutes:     ptr.To(c.LastUsedDurationMinutes()),
		WakeSchedule:                ptr.To(c.WakeSchedule()),
		WakeScheduleDurationMinutes: ptr.To(c.WakeScheduleDurationMinutes()),
	}, nil
}

func (f *File) KeepDisplayOn() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.KeepDisplayOn != nil {
		return *f.c.KeepDisplayOn
	}
	return *defaultFileConfig.KeepDisplayOn
}

func (f *File) NotificationMode() NotificationMode {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.NotificationMode != nil && f.c.NotificationMode.Valid() {
		return *f.c.NotificationMode
	}
	return *defaultFileConfig.NotificationMode
}

func (f *File) RunAtStartup() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.RunAtStartup != nil {
		return *f.c.RunAtStartup
	}
	return *defaultFileConfig.RunAtStartup
}

func (f *File) ShowRemainingTime() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.ShowRemainingTime != nil {
		return *f.c.ShowRemainingTime
	}
	return *defaultFileConfig.ShowRemainingTime
}

func (f *File) LastUsedDurationMinutes() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.LastUsedDurationMinutes != nil && *f.c.LastUsedDurationMinutes > 0 {
		return *f.c.LastUsedDurationMinutes
	}
	return *defaultFileConfig.LastUsedDurationMinutes
}

func (f *File) WakeSchedule() string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.WakeSchedule != nil {
		return *f.c.WakeSchedule
	}
	return *defaultFileConfig.WakeSchedule
}

func (f *File) WakeScheduleDurationMinutes() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.WakeScheduleDurationMinutes != nil && *f.c.WakeScheduleDurationMinutes > 0 {
		return *f.c.WakeScheduleDurationMinutes
	}
	return *defaultFileConfig.WakeScheduleDurationMinutes
}

func (f *File) SetKeepDisplayOn(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.KeepDisplayOn = &b
}

func (f *File) SetNotificationMode(m NotificationMode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.NotificationMode = &m
}

func (f *File) SetRunAtStartup(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.RunAtStartup = &b
}

func (f *File) SetShowRemainingTime(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.ShowRemainingTime = &b
}

func (f *File) SetLastUsedDurationMinutes(i int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.LastUsedDurationMinutes = &i
}

func (f *File) SetWakeSchedule(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.WakeSchedule = &s
}

func (f *File) SetWakeScheduleDurationMinutes(i int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.WakeScheduleDurationMinutes = &i
}

func (f *File) Load() error {
	b, err := os.ReadFile(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			f.mu.Lock()
			f.c = &RawFileConfig{}
			f.mu.Unlock()
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to read %s", f.filepath)
	}

	c := &RawFileConfig{}
	if err := json.Unmarshal(b, c); err != nil {
		return pkgerrors.Wrapf(err, "failed to parse %s", f.filepath)
	}

	f.mu.Lock()
	f.c = c
	f.mu.Unlock()
	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	b, err := json.MarshalIndent(f.c, "", "  ")
	f.mu.RUnlock()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to marshal settings")
	}

	if err := os.MkdirAll(filepath.Dir(f.filepath), 0755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create %s", filepath.Dir(f.filepath))
	}

	if err := os.WriteFile(f.filepath, b, 0644); err != nil {
		return pkgerrors.Wrapf(err, "failed to write %s", f.filepath)
	}

	return nil
}

// LogrusFields exposes the effective settings for startup logging.
func (f *File) LogrusFields() logrus.Fields {
	return logrus.Fields{
		"keepDisplayOn":               f.KeepDisplayOn(),
		"notificationMode":            f.NotificationMode(),
		"runAtStartup":                f.RunAtStartup(),
		"showRemainingTime":           f.ShowRemainingTime(),
		"lastUsedDurationMinutes":     f.LastUsedDurationMinutes(),
		"wakeSchedule":                f.WakeSchedule(),
		"wakeScheduleDurationMinutes": f.WakeScheduleDurationMinutes(),
	}
}
