// Package pathenv appends a directory to the persistent PATH of the current
// user or of the whole machine, using the host's native mechanism.
//
// Nothing here checks privileges up front. If the caller lacks them the
// underlying command fails and its own output is all the user gets.
package pathenv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/rs/zerolog"

	"github.com/0kunkun0/ikunbuild/cli/execute"
	"github.com/0kunkun0/ikunbuild/cli/platform"
)

// SystemProfile is the shell profile edited for system-wide changes on
// non-Windows hosts.
const SystemProfile = "/etc/profile"

// maxSetxValue is the longest value setx stores without truncating it.
const maxSetxValue = 1024

var (
	ErrInvalidScope = errors.New("invalid PATH scope")
	ErrPathTooLong  = errors.New("PATH would exceed the 1024 characters setx can store")
)

// Scope selects whose PATH is changed.
type Scope int

const (
	ScopeUser Scope = iota + 1
	ScopeSystem
)

func (s Scope) String() string {
	switch s {
	case ScopeUser:
		return "user"
	case ScopeSystem:
		return "system"
	default:
		return "unknown"
	}
}

// ParseScope accepts the menu numbers as well as the scope names.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "user":
		return ScopeUser, nil
	case "2", "system", "system-wide":
		return ScopeSystem, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidScope, s)
	}
}

// PathReader returns the persisted PATH of scope, without expanding the
// variables it references.
type PathReader func(scope Scope) (string, error)

// Configurator issues PATH-append commands.
type Configurator struct {
	logger   zerolog.Logger
	runner   execute.Runner
	home     string
	readPath PathReader
}

// Option configures a Configurator.
type Option func(*Configurator)

// WithHome overrides the home directory whose profile is edited for user scope.
func WithHome(home string) Option {
	return func(c *Configurator) {
		c.home = home
	}
}

// WithPathReader overrides where the current Windows PATH is read from.
func WithPathReader(r PathReader) Option {
	return func(c *Configurator) {
		c.readPath = r
	}
}

// New creates a Configurator.
func New(logger zerolog.Logger, runner execute.Runner, opts ...Option) *Configurator {
	c := &Configurator{
		logger: logger,
		runner: runner,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.readPath == nil {
		c.readPath = registryPath
	}
	if c.home == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.home = home
		}
	}
	return c
}

// Command returns the command that appends dir to PATH for scope on p.
func (c *Configurator) Command(scope Scope, p platform.Descriptor, dir string) (execute.Command, error) {
	if scope != ScopeUser && scope != ScopeSystem {
		return execute.Command{}, fmt.Errorf("%w: %d", ErrInvalidScope, int(scope))
	}

	if p.IsWindows() {
		return c.setxCommand(scope, dir)
	}

	line := `export PATH="$PATH":` + shellescape.Quote(dir)
	if scope == ScopeSystem {
		return execute.NewCommand("sudo", "sh", "-c", appendScript(line, SystemProfile)), nil
	}

	if c.home == "" {
		return execute.Command{}, errors.New("cannot determine home directory for user PATH")
	}
	return execute.NewCommand("sh", "-c", appendScript(line, filepath.Join(c.home, ".profile"))), nil
}

// setxCommand passes the complete new value to setx as a single argument.
// The value of the scope alone is used, so the machine PATH is never copied
// into the user's.
func (c *Configurator) setxCommand(scope Scope, dir string) (execute.Command, error) {
	current, err := c.readPath(scope)
	if err != nil {
		return execute.Command{}, fmt.Errorf("failed to read %s PATH: %w", scope, err)
	}

	value := appendEntry(current, dir)
	if len(value) > maxSetxValue {
		return execute.Command{}, fmt.Errorf("%w: %d characters", ErrPathTooLong, len(value))
	}

	var args []string
	if scope == ScopeSystem {
		args = append(args, "/M")
	}
	args = append(args, "PATH", value)
	return execute.NewCommand("setx", args...), nil
}

func appendEntry(current, dir string) string {
	current = strings.TrimRight(current, ";")
	if current == "" {
		return dir
	}
	return current + ";" + dir
}

func appendScript(line, profile string) string {
	return fmt.Sprintf("printf '%%s\\n' %s >> %s", shellescape.Quote(line), shellescape.Quote(profile))
}

// Configure appends dir to PATH. The returned exit code comes straight from
// the underlying command; an error means the command could not be issued.
func (c *Configurator) Configure(scope Scope, p platform.Descriptor, dir string) (int, error) {
	cmd, err := c.Command(scope, p, dir)
	if err != nil {
		return -1, err
	}

	c.logger.Info().
		Str("scope", scope.String()).
		Str("dir", dir).
		Str("command", cmd.String()).
		Msg("Appending directory to PATH")

	code, err := c.runner.Run(cmd)
	if err != nil {
		return code, fmt.Errorf("failed to update PATH: %w", err)
	}
	if code != 0 {
		c.logger.Warn().Int("exit_code", code).Msg("PATH command exited with non-zero status")
	}
	return code, nil
}
