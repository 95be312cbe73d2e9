//go:build darwin

package power

/*
#cgo LDFLAGS: -framework CoreFoundation -framework IOKit

#include <stdlib.h>
#include <CoreFoundation/CoreFoundation.h>
#include <IOKit/pwr_mgt/IOPMLib.h>

// Expose the macros
const CFStringRef AssertionTypeNoIdleSleep = kIOPMAssertionTypePreventUserIdleSystemSleep;
const CFStringRef AssertionTypeNoDisplaySleep = kIOPMAssertionTypePreventUserIdleDisplaySleep;
const IOPMAssertionID NullAssertionID = kIOPMNullAssertionID;
*/
import "C"

import (
	"fmt"
	"unsafe"
)

var (
	systemAssertionID  C.IOPMAssertionID = C.NullAssertionID
	displayAssertionID C.IOPMAssertionID = C.NullAssertionID
)

func createAssertion(assertionType C.CFStringRef, name, details string) (C.IOPMAssertionID, error) {
	cname := C.CString(name)
	cdetail := C.CString(details)
	defer C.free(unsafe.Pointer(cname))
	defer C.free(unsafe.Pointer(cdetail))

	cfName := C.CFStringCreateWithCString(
		C.kCFAllocatorDefault,
		cname,
		C.kCFStringEncodingUTF8,
	)
	cfDetails := C.CFStringCreateWithCString(
		C.kCFAllocatorDefault,
		cdetail,
		C.kCFStringEncodingUTF8,
	)
	defer C.CFRelease(C.CFTypeRef(cfName))
	defer C.CFRelease(C.CFTypeRef(cfDetails))

	var assertionID C.IOPMAssertionID
	status := C.IOPMAssertionCreateWithDescription(
		assertionType,
		cfName,
		cfDetails,
		0,
		0,
		0,
		0,
		&assertionID,
	)
	if status != C.kIOReturnSuccess {
		return 0, fmt.Errorf("IOPMAssertionCreateWithDescription failed: 0x%x", uint32(status))
	}
	return assertionID, nil
}

func releaseAssertion(assertionID C.IOPMAssertionID) error {
	status := C.IOPMAssertionRelease(assertionID)
	if status != C.kIOReturnSuccess {
		return fmt.Errorf("IOPMAssertionRelease failed: 0x%x", uint32(status))
	}
	return nil
}

// setKeepAwake reconciles the two IOPM assertions with the requested
// flags. Creating an assertion that already exists or releasing one
// that doesn't is skipped, so repeated calls with the same flags are
// harmless.
func setKeepAwake(system, display bool) error {
	if system && systemAssertionID == C.NullAssertionID {
		id, err := createAssertion(C.AssertionTypeNoIdleSleep,
			"caffeine", "caffeine is keeping the system awake")
		if err != nil {
			return err
		}
		systemAssertionID = id
	}
	if !system && systemAssertionID != C.NullAssertionID {
		err := releaseAssertion(systemAssertionID)
		systemAssertionID = C.NullAssertionID
		if err != nil {
			return err
		}
	}

	if display && displayAssertionID == C.NullAssertionID {
		id, err := createAssertion(C.AssertionTypeNoDisplaySleep,
			"caffeine", "caffeine is keeping the display awake")
		if err != nil {
			return err
		}
		displayAssertionID = id
	}
	if !display && displayAssertionID != C.NullAssertionID {
		err := releaseAssertion(displayAssertionID)
		displayAssertionID = C.NullAssertionID
		if err != nil {
			return err
		}
	}

	return nil
}
