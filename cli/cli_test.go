package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/0kunkun0/ikunbuild/history"
	"github.com/0kunkun0/ikunbuild/model"
)

func newTestApp(input string) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	app := New()
	app.logger = zerolog.Nop()
	app.stdin = strings.NewReader(input)
	app.stdout = out
	return app, out
}

func TestApp_BuildInvalidCompilerExitsWithOne(t *testing.T) {
	var exitCode int
	origExiter := cli.OsExiter
	cli.OsExiter = func(code int) { exitCode = code }
	t.Cleanup(func() { cli.OsExiter = origExiter })

	dir := t.TempDir()
	app, out := newTestApp("")

	err := app.Run([]string{AppName, "--no-color", "-C", dir, "build", "--compiler", "9"})
	require.Error(t, err)
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, out.String(), "invalid compiler choice")

	entries, err := history.LoadEntries(zerolog.Nop(), history.Root(dir))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.HistoryTypeBuild, entries[0].History.Type)
	assert.Equal(t, 1, entries[0].History.ExitCode)
}

func TestApp_PathRejectsUnknownScope(t *testing.T) {
	app, _ := newTestApp("")

	err := app.Run([]string{AppName, "-C", t.TempDir(), "path", "--scope", "everyone"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PATH scope")
}

func TestApp_InteractiveExit(t *testing.T) {
	app, out := newTestApp("4\n")

	require.NoError(t, app.Run([]string{AppName, "-C", t.TempDir()}))
	assert.Contains(t, out.String(), "ikun library build tool")
}

func TestApp_ListEmpty(t *testing.T) {
	app, out := newTestApp("")

	require.NoError(t, app.Run([]string{AppName, "-C", t.TempDir(), "list"}))
	assert.Contains(t, out.String(), "No history entries found")
}

func TestApp_ListShowsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	recorder := history.NewRecorder(zerolog.Nop(), history.Root(dir))
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := recorder.Record(&model.History{
		ID:        "aaaaaaaaaaaaaaaa",
		Type:      model.HistoryTypeFetch,
		Timestamp: start,
		ExitCode:  1,
		Downloads: []model.DownloadResult{
			{Artifact: "core.hpp", Succeeded: true, Transport: model.TransportFallback, Digest: "0123456789abcdef", Size: 2048},
			{Artifact: "ikun_stderr.hpp"},
		},
	})
	require.NoError(t, err)

	_, err = recorder.Record(&model.History{
		ID:        "bbbbbbbbbbbbbbbb",
		Type:      model.HistoryTypeBuild,
		Timestamp: start.Add(time.Minute),
		Build:     &model.BuildResult{Choice: "2", Compiler: "Clang", ExitCodes: []int{0, 1}},
	})
	require.NoError(t, err)

	app, out := newTestApp("")
	require.NoError(t, app.Run([]string{AppName, "-C", dir, "list"}))

	text := out.String()
	assert.Contains(t, text, "=== History (2 total) ===")
	assert.Contains(t, text, "Files: 1/2 downloaded")
	assert.Contains(t, text, "download: core.hpp via fallback (2.0 KB) blake3:0123456789ab")
	assert.Contains(t, text, "download: ikun_stderr.hpp failed")
	assert.Contains(t, text, "compiler: Clang exit codes: 0,1")
	assert.Less(t, strings.Index(text, "id=bbbbbbbb"), strings.Index(text, "id=aaaaaaaa"))

	out.Reset()
	require.NoError(t, app.Run([]string{AppName, "-C", dir, "list", "-n", "1"}))
	assert.Contains(t, out.String(), "id=bbbbbbbb")
	assert.NotContains(t, out.String(), "id=aaaaaaaa")
}

func TestSetVersion(t *testing.T) {
	app, _ := newTestApp("")

	app.SetVersion("1.2.0", "none", "unknown")
	assert.Equal(t, "1.2.0", app.cli.Version)

	app.SetVersion("1.2.0", "0123456789abcdef", "2025-01-01")
	assert.Equal(t, "1.2.0 (commit: 01234567, built: 2025-01-01)", app.cli.Version)
}
