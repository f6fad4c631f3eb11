package cli

// This file contains the PATH configuration flow.

import (
	"fmt"
	"time"

	"github.com/0kunkun0/ikunbuild/cli/pathenv"
	"github.com/0kunkun0/ikunbuild/model"
)

// configurePath asks for a scope and appends the working directory to PATH.
func (s *Session) configurePath() {
	fmt.Fprintf(s.out, "Current directory: %s\n", s.workDir)
	fmt.Fprintln(s.out, s.colors.warn("Changing the system-wide PATH needs administrator rights on Windows or sudo elsewhere."))
	fmt.Fprintln(s.out, "1. Current user")
	fmt.Fprintln(s.out, "2. All users (system-wide)")

	line, ok := s.readLine("Enter option: ")
	if !ok {
		return
	}

	scope, err := pathenv.ParseScope(line)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Scope choice rejected")
		fmt.Fprintln(s.out, s.colors.warn(fmt.Sprintf("Invalid option: %s", line)))
		return
	}
	s.applyPath(scope)
}

// applyPath issues the PATH-append command. Whether it worked is only
// visible through the command's own output and exit code.
func (s *Session) applyPath(scope pathenv.Scope) int {
	start := time.Now()
	change := &model.PathChange{Scope: scope.String(), Dir: s.workDir}
	if cmd, err := s.paths.Command(scope, s.platform, s.workDir); err == nil {
		change.Command = cmd.String()
	}

	code, err := s.paths.Configure(scope, s.platform, s.workDir)
	if err != nil {
		fmt.Fprintln(s.out, s.colors.fail(err.Error()))
	} else {
		fmt.Fprintf(s.out, "PATH command exited with status %d.\n", code)
	}

	s.record(model.HistoryTypePath, start, code, func(h *model.History) {
		h.Path = change
	})
	return code
}
