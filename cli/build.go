package cli

// This file contains the build flow: compiler discovery, compiler selection
// and invocation of the library manager and error analyzer builds.

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/0kunkun0/ikunbuild/cli/toolchain"
	"github.com/0kunkun0/ikunbuild/model"
)

// maxVersionChecks caps how many compiler banners are printed.
const maxVersionChecks = 3

// showToolchains prints the version banner of each compiler. A compiler that
// is not installed just shows whatever error starting it produced.
func (s *Session) showToolchains(profiles []toolchain.Profile) {
	fmt.Fprintln(s.out, "Checking compilers...")

	for i, status := range toolchain.Detect(profiles) {
		if i >= maxVersionChecks {
			break
		}
		p := status.Profile

		location := "not found in PATH"
		if status.Found {
			location = status.Path
		}
		fmt.Fprintf(s.out, "%s (version >= %s): %s\n", s.colors.title(p.Label), p.MinVersion, location)

		if _, err := s.runner.Run(p.Version); err != nil {
			fmt.Fprintln(s.out, err)
		}
		fmt.Fprintln(s.out)
	}
}

func compilerPrompt(profiles []toolchain.Profile) string {
	options := make([]string, 0, len(profiles))
	for _, p := range profiles {
		options = append(options, fmt.Sprintf("%s: %s", p.ID, p.Label))
	}
	return fmt.Sprintf("Enter compiler (%s): ", strings.Join(options, ", "))
}

// promptCompiler asks until it gets a number. Whether the number names a
// usable compiler is decided by toolchain.Resolve.
func (s *Session) promptCompiler(profiles []toolchain.Profile) (string, bool) {
	prompt := compilerPrompt(profiles)
	for {
		line, ok := s.readLine(prompt)
		if !ok {
			return "", false
		}
		if _, err := strconv.Atoi(line); err != nil {
			s.logger.Debug().Err(fmt.Errorf("%w: %q", ErrInvalidMenuChoice, line)).Msg("Compiler choice rejected")
			fmt.Fprintln(s.out, s.colors.warn(fmt.Sprintf("Invalid option: %q, enter the number of a compiler", line)))
			continue
		}
		return line, true
	}
}

// build runs one interactive build attempt and returns its exit status.
func (s *Session) build() int {
	profiles := toolchain.Available(s.platform)
	s.showToolchains(profiles)

	choice, ok := s.promptCompiler(profiles)
	if !ok {
		return 0
	}
	_, status := s.buildWith(choice)
	return status
}

// buildWith resolves choice and runs the manager build followed by the
// analyzer build. The status is 1 when the choice is invalid or unsupported
// on this platform and 0 otherwise; compiler failures only show up in the
// exit codes of the result.
func (s *Session) buildWith(choice string) (result model.BuildResult, status int) {
	start := time.Now()
	result.Choice = choice
	defer func() {
		s.record(model.HistoryTypeBuild, start, status, func(h *model.History) {
			h.Build = &result
		})
	}()

	profile, err := toolchain.Resolve(choice, s.platform)
	if err != nil {
		s.logger.Error().Err(err).Str("platform", s.platform.String()).Msg("Cannot build")
		fmt.Fprintln(s.out, s.colors.fail(err.Error()))
		return result, 1
	}
	result.Compiler = profile.Label

	s.logger.Info().Str("compiler", profile.Label).Msg("Building ikun")

	for _, cmd := range profile.Commands() {
		fmt.Fprintf(s.out, "%s %s\n", s.colors.arrow("->"), cmd)

		code, err := s.runner.Run(cmd)
		result.ExitCodes = append(result.ExitCodes, code)
		if err != nil {
			// Without the first binary there is no point building the second.
			s.logger.Error().Err(err).Str("command", cmd.Name).Msg("Failed to start compiler")
			fmt.Fprintln(s.out, s.colors.fail(err.Error()))
			break
		}
		if code != 0 {
			s.logger.Warn().Int("exit_code", code).Str("command", cmd.Name).Msg("Compiler exited with non-zero status")
		}
	}

	if len(profile.Cleanup) > 0 {
		removed, err := toolchain.Cleanup(s.workDir, profile.Cleanup)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to remove build byproducts")
		} else {
			result.CleanedUp = true
			s.logger.Debug().Strs("removed", removed).Msg("Removed build byproducts")
		}
	}

	if result.Succeeded() {
		fmt.Fprintln(s.out, s.colors.ok("Build finished."))
	} else {
		fmt.Fprintln(s.out, s.colors.warn("Build finished with errors, see the compiler output above."))
	}
	return result, 0
}
