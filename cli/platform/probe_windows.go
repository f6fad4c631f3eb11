//go:build windows

package platform

import (
	"os"
	"runtime"
)

func uname() (system, machine string) {
	// PROCESSOR_ARCHITEW6432 is only set for 32-bit processes on a 64-bit host.
	machine = os.Getenv("PROCESSOR_ARCHITEW6432")
	if machine == "" {
		machine = os.Getenv("PROCESSOR_ARCHITECTURE")
	}
	if machine == "" {
		machine = runtime.GOARCH
	}
	return "Windows", machine
}
