//go:build windows

package power

import (
	"fmt"

	"golang.org/x/sys/windows"
)

const (
	esContinuous      uintptr = 0x80000000
	esSystemRequired  uintptr = 0x00000001
	esDisplayRequired uintptr = 0x00000002
)

var (
	kernel32                    = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadExecutionState = kernel32.NewProc("SetThreadExecutionState")
)

// setKeepAwake calls SetThreadExecutionState. ES_CONTINUOUS keeps the
// flags in effect until the next call; passing only ES_CONTINUOUS
// clears both requirements.
func setKeepAwake(system, display bool) error {
	flags := esContinuous
	if system {
		flags |= esSystemRequired
	}
	if display {
		flags |= esDisplayRequired
	}

	prev, _, callErr := procSetThreadExecutionState.Call(flags)
	if prev == 0 {
		if callErr != nil && callErr != windows.ERROR_SUCCESS {
			return fmt.Errorf("SetThreadExecutionState failed: %w", callErr)
		}
		return fmt.Errorf("SetThreadExecutionState returned NULL previous state")
	}
	return nil
}
