// Package power wraps the OS sleep-prevention primitive behind a
// single idempotent call.
package power

// SetKeepAwake asserts or releases the OS keep-awake flags.
// systemRequired=false always restores normal sleep behavior regardless
// of displayRequired; SetKeepAwake(false, false) is the canonical
// release call and must be issued once during process teardown.
//
// The underlying OS facility is tied to the calling thread's
// execution-state slot, so all calls must come from the same
// OS-thread-locked goroutine.
func SetKeepAwake(systemRequired, displayRequired bool) error {
	if !systemRequired {
		displayRequired = false
	}
	return setKeepAwake(systemRequired, displayRequired)
}
