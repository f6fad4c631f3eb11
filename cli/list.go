package cli

// This file contains the list command for displaying previous actions.

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/0kunkun0/ikunbuild/history"
	"github.com/0kunkun0/ikunbuild/model"
)

func (a *App) list(ctx *cli.Context) error {
	limit := ctx.Int("limit")

	workDir, err := a.workDir(ctx)
	if err != nil {
		return err
	}

	historyEntries, err := history.LoadEntries(a.logger, history.Root(workDir))
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	out := a.stdout
	if len(historyEntries) == 0 {
		fmt.Fprintln(out, "No history entries found")
		return nil
	}

	// Sort by timestamp (newest first)
	sort.Slice(historyEntries, func(i, j int) bool {
		return historyEntries[i].History.Timestamp.After(historyEntries[j].History.Timestamp)
	})

	displayEntries := historyEntries
	if limit > 0 && limit < len(displayEntries) {
		displayEntries = displayEntries[:limit]
	}

	fmt.Fprintf(out, "\n=== History (%d total) ===\n\n", len(historyEntries))

	for _, entry := range displayEntries {
		printEntry(out, entry)
	}

	return nil
}

func printEntry(out io.Writer, entry history.Entry) {
	h := entry.History
	timestamp := h.Timestamp.Format("2006-01-02 15:04:05")
	duration := h.Duration.Round(time.Millisecond)

	status := "✓"
	if h.ExitCode != 0 {
		status = "✗"
	}

	shortID := h.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	fmt.Fprintf(out, "%s  %s  %-5s  [%s]  exit=%d  id=%s\n", status, timestamp, h.Type, duration, h.ExitCode, shortID)
	if len(h.Args) > 1 {
		fmt.Fprintf(out, "   Args: %s\n", strings.Join(h.Args[1:], " "))
	}
	if h.Target != nil && h.Target.OS != "" {
		fmt.Fprintf(out, "   Platform: %s/%s", h.Target.OS, h.Target.Arch)
		if h.Target.Width != 0 {
			fmt.Fprintf(out, " (%d-bit)", h.Target.Width)
		}
		fmt.Fprintln(out)
	}

	if len(h.Downloads) > 0 {
		fmt.Fprintf(out, "   Files: %s\n", summarize(h.Downloads))
	}
	for _, d := range h.Downloads {
		switch {
		case !d.Succeeded:
			fmt.Fprintf(out, "   download: %s failed\n", d.Artifact)
		default:
			fmt.Fprintf(out, "   download: %s via %s (%.1f KB)", d.Artifact, d.Transport, float64(d.Size)/1024)
			if len(d.Digest) >= 12 {
				fmt.Fprintf(out, " blake3:%s", d.Digest[:12])
			}
			fmt.Fprintln(out)
		}
	}

	if b := h.Build; b != nil {
		compiler := b.Compiler
		if compiler == "" {
			compiler = fmt.Sprintf("invalid choice %q", b.Choice)
		}
		fmt.Fprintf(out, "   compiler: %s", compiler)
		if len(b.ExitCodes) > 0 {
			codes := make([]string, 0, len(b.ExitCodes))
			for _, code := range b.ExitCodes {
				codes = append(codes, fmt.Sprint(code))
			}
			fmt.Fprintf(out, " exit codes: %s", strings.Join(codes, ","))
		}
		fmt.Fprintln(out)
	}

	if p := h.Path; p != nil {
		fmt.Fprintf(out, "   PATH (%s): %s\n", p.Scope, p.Dir)
		if p.Command != "" {
			fmt.Fprintf(out, "   Command: %s\n", p.Command)
		}
	}

	fmt.Fprintf(out, "   %s\n", entry.FullPath)
	fmt.Fprintln(out)
}

// summarize returns a one-line description of a download batch.
func summarize(downloads []model.DownloadResult) string {
	ok := 0
	for _, d := range downloads {
		if d.Succeeded {
			ok++
		}
	}
	return fmt.Sprintf("%d/%d downloaded", ok, len(downloads))
}
