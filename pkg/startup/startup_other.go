//go:build !windows && !darwin

package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const desktopEntryTemplate = `[Desktop Entry]
Type=Application
Name=Caffeine
Exec=/path/to/caffeine tray
X-GNOME-Autostart-enabled=true
`

func desktopEntryPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to locate home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "autostart", "caffeine.desktop"), nil
}

func register(exe string) error {
	path, err := desktopEntryPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	entry := strings.ReplaceAll(desktopEntryTemplate, "/path/to/caffeine", exe)
	if err := os.WriteFile(path, []byte(entry), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func unregister() error {
	path, err := desktopEntryPath()
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}
