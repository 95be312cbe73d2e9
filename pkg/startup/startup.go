// Package startup registers the tray app to launch at login.
package startup

import (
	"os"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"
)

// Set registers (or unregisters) the current executable's tray command
// to run at login. Errors surface to the caller so the persisted
// setting can stay consistent with reality.
func Set(enabled bool) error {
	exe, err := os.Executable()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to resolve executable path")
	}
	exe, err = filepath.Abs(exe)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to resolve executable path")
	}

	if enabled {
		return register(exe)
	}
	return unregister()
}
