//go:build darwin

package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

const launchAgentTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>com.teocci.caffeine</string>
	<key>ProgramArguments</key>
	<array>
		<string>/path/to/caffeine</string>
		<string>tray</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
</dict>
</plist>
`

func plistPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, "Library", "LaunchAgents", "com.teocci.caffeine.plist"), nil
}

func register(exe string) error {
	path, err := plistPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	tmpl := strings.ReplaceAll(launchAgentTemplate, "/path/to/caffeine", exe)
	if err := os.WriteFile(path, []byte(tmpl), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logrus.WithField("path", path).Info("login item registered")
	return nil
}

func unregister() error {
	path, err := plistPath()
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}
