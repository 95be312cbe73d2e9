//go:build windows

package startup

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const (
	runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`
	valueName  = "Caffeine"
)

func register(exe string) error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open Run key: %w", err)
	}
	defer key.Close()

	if err := key.SetStringValue(valueName, fmt.Sprintf(`"%s" tray`, exe)); err != nil {
		return fmt.Errorf("failed to set Run value: %w", err)
	}
	return nil
}

func unregister() error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open Run key: %w", err)
	}
	defer key.Close()

	err = key.DeleteValue(valueName)
	if err != nil && err != registry.ErrNotExist {
		return fmt.Errorf("failed to delete Run value: %w", err)
	}
	return nil
}
