//go:build !unix && !windows

package platform

import "runtime"

func uname() (system, machine string) {
	return runtime.GOOS, runtime.GOARCH
}
