package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0kunkun0/ikunbuild/model"
)

func TestRecordAndLoad(t *testing.T) {
	root := Root(t.TempDir())
	rec := NewRecorder(zerolog.Nop(), root)

	id, err := NewID()
	require.NoError(t, err)
	require.Len(t, id, 32)

	h := &model.History{
		ID:        id,
		Type:      model.HistoryTypeBuild,
		Timestamp: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		ExitCode:  1,
		Build:     &model.BuildResult{Choice: "3"},
	}
	runDir, err := rec.Record(h)
	require.NoError(t, err)
	assert.Equal(t, "20261019-120000-build-"+id[:8], filepath.Base(runDir))

	// A broken entry is skipped, not fatal.
	broken := filepath.Join(root, "history", "broken")
	require.NoError(t, os.MkdirAll(broken, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(broken, "history.json"), []byte("{"), 0o644))

	entries, err := LoadEntries(zerolog.Nop(), root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, runDir, entries[0].FullPath)
	assert.Equal(t, "3", entries[0].History.Build.Choice)
	assert.Equal(t, 1, entries[0].History.ExitCode)
}

func TestLoadEntries_MissingRoot(t *testing.T) {
	entries, err := LoadEntries(zerolog.Nop(), filepath.Join(t.TempDir(), DirName))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
