//go:build !windows

package pathenv

import "errors"

func registryPath(Scope) (string, error) {
	return "", errors.New("the Windows registry is not available on this host")
}
