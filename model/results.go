package model

// Transport identifies which download mechanism produced an artifact.
type Transport string

const (
	TransportNone     Transport = ""
	TransportPrimary  Transport = "primary"
	TransportFallback Transport = "fallback"
)

// DownloadResult is the outcome of fetching a single artifact.
//
// Succeeded is authoritative: one of the transports reported success.
// Verified is advisory only: the listing command found the file afterwards.
type DownloadResult struct {
	Artifact  string    `json:"artifact"`
	Succeeded bool      `json:"succeeded"`
	Transport Transport `json:"transport,omitempty"`
	Verified  bool      `json:"verified"`
	// blake3-256 of the file on disk, hex encoded
	Digest string `json:"digest,omitempty"`
	// Size of the file on disk in bytes
	Size int64 `json:"size,omitempty"`
}

// BuildResult is the outcome of one build attempt.
type BuildResult struct {
	// Compiler choice as entered by the user
	Choice string `json:"choice"`
	// Human readable compiler name, empty if the choice did not resolve
	Compiler string `json:"compiler,omitempty"`
	// Exit code of every invoked command, in invocation order.
	// -1 marks a command that could not be started.
	ExitCodes []int `json:"exit_codes,omitempty"`
	CleanedUp bool  `json:"cleaned_up,omitempty"`
}

// Succeeded reports whether every invoked command exited with status 0.
func (r BuildResult) Succeeded() bool {
	if len(r.ExitCodes) == 0 {
		return false
	}
	for _, code := range r.ExitCodes {
		if code != 0 {
			return false
		}
	}
	return true
}
