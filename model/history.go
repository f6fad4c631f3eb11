package model

import "time"

// HistoryType represents the type of history entry
type HistoryType string

const (
	HistoryTypeFetch HistoryType = "fetch"
	HistoryTypeBuild HistoryType = "build"
	HistoryTypePath  HistoryType = "path"
)

// History represents a single ikunbuild action (fetch, build or PATH change).
// It contains common fields shared by all action types.
type History struct {
	// Unique ID for this action (16 random bytes, hex encoded)
	ID string `json:"id"`
	// Type of action
	Type HistoryType `json:"type"`
	// Timestamp when the action started
	Timestamp time.Time `json:"timestamp"`
	// Command-line arguments (including command name)
	Args []string `json:"args"`
	// Working directory the action ran in
	WorkDir string `json:"workdir"`
	// Exit code of the action
	ExitCode int `json:"exit_code"`
	// Duration of the action
	Duration time.Duration `json:"duration"`
	// Host platform the action ran on
	Target *Target `json:"target,omitempty"`

	// Type-specific data (only one should be populated based on Type)
	Downloads []DownloadResult `json:"downloads,omitempty"`
	Build     *BuildResult     `json:"build,omitempty"`
	Path      *PathChange      `json:"path,omitempty"`
}

// Target contains information about the host platform
type Target struct {
	// Normalized operating system family (e.g. "Linux", "Windows")
	OS string `json:"os,omitempty"`
	// CPU architecture family (e.g. "x86", "ARM")
	Arch string `json:"arch,omitempty"`
	// Word width in bits, 0 when unknown
	Width int `json:"width,omitempty"`
}

// PathChange records a PATH mutation request
type PathChange struct {
	// "user" or "system"
	Scope string `json:"scope"`
	// Directory appended to PATH
	Dir string `json:"dir"`
	// Rendered command that was issued
	Command string `json:"command,omitempty"`
}
