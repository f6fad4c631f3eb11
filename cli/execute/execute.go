// Package execute runs external commands on the local machine and reports
// their exit status. Output is streamed to the configured writers verbatim;
// nothing here parses what the child process prints.
package execute

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"al.essio.dev/pkg/shellescape"
	"github.com/rs/zerolog"
)

// Command is a program name plus its arguments.
type Command struct {
	Name string
	Args []string
}

// NewCommand is a convenience constructor.
func NewCommand(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// Argv returns the command as a single slice, program name first.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String renders the command the way a user would type it into a shell.
func (c Command) String() string {
	return shellescape.QuoteCommand(c.Argv())
}

// Runner runs a command to completion.
//
// The returned int is the process exit code. A non-nil error means the
// process could not be started at all; in that case the exit code is -1.
type Runner interface {
	Run(cmd Command) (int, error)
}

// Local runs commands as child processes of the current one.
type Local struct {
	logger zerolog.Logger
	dir    string
	stdout io.Writer
	stderr io.Writer
}

// LocalOption configures a Local runner.
type LocalOption func(*Local)

// WithOutput redirects the child's stdout and stderr.
func WithOutput(stdout, stderr io.Writer) LocalOption {
	return func(l *Local) {
		l.stdout = stdout
		l.stderr = stderr
	}
}

// NewLocal creates a runner that executes commands in dir.
func NewLocal(logger zerolog.Logger, dir string, opts ...LocalOption) *Local {
	l := &Local{
		logger: logger,
		dir:    dir,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run blocks until the command exits.
func (l *Local) Run(c Command) (int, error) {
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Dir = l.dir
	cmd.Stdout = l.stdout
	cmd.Stderr = l.stderr

	l.logger.Debug().
		Str("command", c.String()).
		Str("dir", l.dir).
		Msg("Executing command")

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			l.logger.Debug().
				Int("exit_code", exitErr.ExitCode()).
				Str("command", c.Name).
				Msg("Command exited with non-zero status")
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("failed to execute %s: %w", c.Name, err)
	}

	return 0, nil
}
