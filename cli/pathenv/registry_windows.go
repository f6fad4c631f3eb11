//go:build windows

package pathenv

import (
	"errors"

	"golang.org/x/sys/windows/registry"
)

const machineEnvironmentKey = `SYSTEM\CurrentControlSet\Control\Session Manager\Environment`

// registryPath reads the Path value that setx rewrites for scope.
func registryPath(scope Scope) (string, error) {
	root, path := registry.CURRENT_USER, `Environment`
	if scope == ScopeSystem {
		root, path = registry.LOCAL_MACHINE, machineEnvironmentKey
	}

	key, err := registry.OpenKey(root, path, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer key.Close()

	value, _, err := key.GetStringValue("Path")
	if errors.Is(err, registry.ErrNotExist) {
		// A user without a Path of their own.
		return "", nil
	}
	return value, err
}
