package cli

// This file contains the interactive session state shared by the menu,
// fetch, build and PATH flows.

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/rs/zerolog"

	"github.com/0kunkun0/ikunbuild/cli/execute"
	"github.com/0kunkun0/ikunbuild/cli/fetch"
	"github.com/0kunkun0/ikunbuild/cli/pathenv"
	"github.com/0kunkun0/ikunbuild/cli/platform"
	"github.com/0kunkun0/ikunbuild/history"
	"github.com/0kunkun0/ikunbuild/model"
)

// Session drives one user through the menu. The platform descriptor is
// probed once when the session is created and never changes afterwards.
type Session struct {
	logger   zerolog.Logger
	in       *bufio.Reader
	out      io.Writer
	platform platform.Descriptor
	workDir  string

	runner   execute.Runner
	fetcher  *fetch.Fetcher
	paths    *pathenv.Configurator
	recorder *history.Recorder // nil disables history

	args   []string
	colors palette
}

// readLine prints prompt and reads one line. ok is false once input is exhausted.
func (s *Session) readLine(prompt string) (line string, ok bool) {
	fmt.Fprint(s.out, prompt)
	line, err := s.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(s.out)
		return "", false
	}
	return strings.TrimSpace(line), true
}

func (s *Session) record(kind model.HistoryType, start time.Time, exitCode int, fill func(*model.History)) {
	if s.recorder == nil {
		return
	}

	id, err := history.NewID()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record history")
		return
	}

	h := &model.History{
		ID:        id,
		Type:      kind,
		Timestamp: start,
		Args:      s.args,
		WorkDir:   s.workDir,
		ExitCode:  exitCode,
		Duration:  time.Since(start),
		Target: &model.Target{
			OS:    s.platform.OS.String(),
			Arch:  s.platform.Kind.String(),
			Width: int(s.platform.Width),
		},
	}
	fill(h)

	// Recording is best-effort and never changes the outcome of an action.
	if _, err := s.recorder.Record(h); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record history")
	}
}

// palette colors console text when enabled.
type palette struct {
	enabled bool
}

func (p palette) paint(c color.Color, s string) string {
	if !p.enabled {
		return s
	}
	return c.Sprint(s)
}

func (p palette) title(s string) string { return p.paint(color.Cyan, s) }
func (p palette) ok(s string) string    { return p.paint(color.Green, s) }
func (p palette) warn(s string) string  { return p.paint(color.Yellow, s) }
func (p palette) fail(s string) string  { return p.paint(color.Red, s) }
func (p palette) arrow(s string) string { return p.paint(color.Blue, s) }
