package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileDefaults(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "config.json"))

	if !f.KeepDisplayOn() {
		t.Error("KeepDisplayOn default should be true")
	}
	if got := f.NotificationMode(); got != NotificationAndSound {
		t.Errorf("NotificationMode default = %q", got)
	}
	if f.RunAtStartup() {
		t.Error("RunAtStartup default should be false")
	}
	if !f.ShowRemainingTime() {
		t.Error("ShowRemainingTime default should be true")
	}
	if got := f.LastUsedDurationMinutes(); got != 60 {
		t.Errorf("LastUsedDurationMinutes default = %d", got)
	}
}

func TestFileSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caffeine", "config.json")

	f := NewFile(path)
	f.SetKeepDisplayOn(false)
	f.SetNotificationMode(Silent)
	f.SetLastUsedDurationMinutes(120)
	if err := f.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	g := NewFile(path)
	if g.KeepDisplayOn() {
		t.Error("KeepDisplayOn should persist as false")
	}
	if got := g.NotificationMode(); got != Silent {
		t.Errorf("NotificationMode = %q, want %q", got, Silent)
	}
	if got := g.LastUsedDurationMinutes(); got != 120 {
		t.Errorf("LastUsedDurationMinutes = %d, want 120", got)
	}
	// Unset fields still resolve to defaults.
	if !g.ShowRemainingTime() {
		t.Error("ShowRemainingTime should default to true")
	}
}

func TestFileCorruptFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	f := NewFile(path)
	if !f.KeepDisplayOn() || f.RunAtStartup() {
		t.Error("corrupt settings file should yield defaults")
	}
}

func TestNotificationModeValid(t *testing.T) {
	for _, m := range []NotificationMode{NotificationAndSound, NotificationOnly, SoundOnly, Silent} {
		if !m.Valid() {
			t.Errorf("%q should be valid", m)
		}
	}
	if NotificationMode("loud").Valid() {
		t.Error("unknown mode should be invalid")
	}
}
