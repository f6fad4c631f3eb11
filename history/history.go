package history

// This file contains shared history utilities for recording, loading and
// parsing ikunbuild action history.

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/0kunkun0/ikunbuild/model"
	"github.com/rs/zerolog"
)

// DirName is the directory created inside the working directory.
const DirName = ".ikun"

const fileName = "history.json"

type Entry struct {
	History  model.History
	FullPath string
}

// Root returns the history root for a working directory.
func Root(workDir string) string {
	return filepath.Join(workDir, DirName)
}

// NewID returns a random 16-byte hex encoded identifier.
func NewID() (string, error) {
	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		return "", fmt.Errorf("failed to generate history ID: %w", err)
	}
	return hex.EncodeToString(idBytes), nil
}

// Recorder writes history entries below a root directory.
type Recorder struct {
	logger zerolog.Logger
	root   string
}

func NewRecorder(logger zerolog.Logger, root string) *Recorder {
	return &Recorder{logger: logger, root: root}
}

// Record writes h to <root>/history/<timestamp>-<id>/history.json and returns
// the run directory.
func (r *Recorder) Record(h *model.History) (string, error) {
	shortID := h.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	runName := fmt.Sprintf("%s-%s-%s", h.Timestamp.Format("20060102-150405"), h.Type, shortID)
	runDir := filepath.Join(r.root, "history", runName)

	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := os.WriteFile(filepath.Join(runDir, fileName), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write history: %w", err)
	}

	r.logger.Debug().Str("dir", runDir).Str("id", h.ID).Msg("Recorded history entry")
	return runDir, nil
}

// LoadEntries loads all history entries below root. A missing root yields
// no entries; unreadable entries are skipped with a warning.
func LoadEntries(logger zerolog.Logger, root string) ([]Entry, error) {
	var entries []Entry

	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			historyPath := filepath.Join(path, fileName)
			if _, err := os.Stat(historyPath); err == nil {
				history, err := parseHistoryJSON(historyPath)
				if err != nil {
					logger.Warn().Err(err).Str("path", historyPath).Msg("Failed to parse history.json")
					return nil
				}

				entries = append(entries, Entry{
					History:  history,
					FullPath: path,
				})
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk %s directory: %w", DirName, err)
	}

	return entries, nil
}

// parseHistoryJSON parses a history.json file.
func parseHistoryJSON(historyPath string) (model.History, error) {
	data, err := os.ReadFile(historyPath)
	if err != nil {
		return model.History{}, err
	}

	var history model.History
	if err := json.Unmarshal(data, &history); err != nil {
		return model.History{}, err
	}

	return history, nil
}
