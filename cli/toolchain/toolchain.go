// Package toolchain maps a user-facing compiler choice to the pair of
// command lines that build the library manager and the error analyzer.
package toolchain

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/0kunkun0/ikunbuild/cli/execute"
	"github.com/0kunkun0/ikunbuild/cli/platform"
)

const (
	ManagerSource  = "ikun_core.cpp"
	ManagerName    = "ikun"
	AnalyzerSource = "ikun_error_analyzer.cpp"
	AnalyzerName   = "ikun_error_analyzer"
)

var (
	ErrInvalidChoice         = errors.New("invalid compiler choice")
	ErrUnsupportedOnPlatform = errors.New("compiler not supported on this platform")
)

// Constraint decides whether a profile may be used on a platform.
type Constraint func(platform.Descriptor) bool

// WindowsOnly restricts a profile to Windows hosts.
func WindowsOnly(d platform.Descriptor) bool {
	return d.IsWindows()
}

// Profile describes one compiler and how to build both binaries with it.
type Profile struct {
	ID    string
	Label string
	// Minimum major version the library sources require
	MinVersion string

	// Version prints the compiler banner
	Version execute.Command
	// Manager builds the library manager, Analyzer the error analyzer.
	// They always run in that order.
	Manager  execute.Command
	Analyzer execute.Command

	// Glob patterns of build byproducts removed after the build
	Cleanup []string

	// Constraint is nil for cross-platform compilers
	Constraint Constraint
}

// Allowed reports whether the profile may run on d.
func (p Profile) Allowed(d platform.Descriptor) bool {
	return p.Constraint == nil || p.Constraint(d)
}

// Commands returns the build commands in invocation order.
func (p Profile) Commands() []execute.Command {
	return []execute.Command{p.Manager, p.Analyzer}
}

// Profiles returns every known profile with command lines rendered for d,
// including profiles whose constraint rejects d.
func Profiles(d platform.Descriptor) []Profile {
	exe := d.ExeSuffix()

	gnu := func(compiler string, extra ...string) func(src, out string) execute.Command {
		return func(src, out string) execute.Command {
			args := []string{"-std=c++23", "-O3", src}
			args = append(args, extra...)
			args = append(args, "-o", out+exe)
			return execute.NewCommand(compiler, args...)
		}
	}
	gcc := gnu("g++", "-lstdc++exp")
	clang := gnu("clang++")
	msvc := func(src, out string) execute.Command {
		return execute.NewCommand("cl", "/EHsc", "/O2", "/W4", "/nologo", "/std:c++latest", src, "/Fe:"+out+".exe")
	}

	return []Profile{
		{
			ID:         "1",
			Label:      "GCC",
			MinVersion: "11",
			Version:    execute.NewCommand("g++", "--version"),
			Manager:    gcc(ManagerSource, ManagerName),
			Analyzer:   gcc(AnalyzerSource, AnalyzerName),
		},
		{
			ID:         "2",
			Label:      "Clang",
			MinVersion: "14",
			Version:    execute.NewCommand("clang++", "--version"),
			Manager:    clang(ManagerSource, ManagerName),
			Analyzer:   clang(AnalyzerSource, AnalyzerName),
		},
		{
			ID:         "3",
			Label:      "MSVC",
			MinVersion: "19",
			Version:    execute.NewCommand("cl"),
			Manager:    msvc(ManagerSource, ManagerName),
			Analyzer:   msvc(AnalyzerSource, AnalyzerName),
			Cleanup:    []string{"*.obj", "*.ilk"},
			Constraint: WindowsOnly,
		},
	}
}

// Available returns the profiles that may be used on d, in menu order.
func Available(d platform.Descriptor) []Profile {
	var out []Profile
	for _, p := range Profiles(d) {
		if p.Allowed(d) {
			out = append(out, p)
		}
	}
	return out
}

// Resolve maps a compiler choice to its profile.
//
// Non-numeric and unknown choices yield ErrInvalidChoice. A known choice whose
// constraint rejects d yields ErrUnsupportedOnPlatform.
func Resolve(choice string, d platform.Descriptor) (Profile, error) {
	choice = strings.TrimSpace(choice)
	if _, err := strconv.Atoi(choice); err != nil {
		return Profile{}, fmt.Errorf("%w: %q", ErrInvalidChoice, choice)
	}

	for _, p := range Profiles(d) {
		if p.ID != choice {
			continue
		}
		if !p.Allowed(d) {
			return Profile{}, fmt.Errorf("%w: %s requires a different host than %s", ErrUnsupportedOnPlatform, p.Label, d)
		}
		return p, nil
	}

	return Profile{}, fmt.Errorf("%w: %q", ErrInvalidChoice, choice)
}

// ToolStatus reports whether a profile's compiler binary is on PATH.
type ToolStatus struct {
	Profile Profile
	Path    string
	Found   bool
}

// Detect looks up the compiler binary of each profile in PATH.
func Detect(profiles []Profile) []ToolStatus {
	statuses := make([]ToolStatus, 0, len(profiles))
	for _, p := range profiles {
		path, err := exec.LookPath(p.Version.Name)
		statuses = append(statuses, ToolStatus{
			Profile: p,
			Path:    path,
			Found:   err == nil,
		})
	}
	return statuses
}

// Cleanup removes files in dir that match any of the patterns and returns
// the names it removed. It stops at the first removal error.
func Cleanup(dir string, patterns []string) ([]string, error) {
	var removed []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return removed, fmt.Errorf("invalid cleanup pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			if err := os.Remove(match); err != nil {
				return removed, fmt.Errorf("failed to remove %s: %w", match, err)
			}
			removed = append(removed, filepath.Base(match))
		}
	}
	return removed, nil
}
