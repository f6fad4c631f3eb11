package cli

// This file contains the fetch flow that downloads every required artifact.

import (
	"fmt"
	"time"

	"github.com/0kunkun0/ikunbuild/cli/fetch"
	"github.com/0kunkun0/ikunbuild/model"
)

// fetchArtifacts downloads every required artifact once and prints one
// status line per artifact. A failed artifact never stops the batch.
func (s *Session) fetchArtifacts() []model.DownloadResult {
	start := time.Now()
	artifacts := fetch.Required()

	fmt.Fprintln(s.out, "Note: only the files required to build the library are downloaded.")

	failed := 0
	results := s.fetcher.FetchAll(artifacts, func(r model.DownloadResult) {
		if !r.Succeeded {
			failed++
		}
		fmt.Fprintln(s.out, s.downloadStatus(r))
	})

	exitCode := 0
	if failed > 0 {
		exitCode = 1
		fmt.Fprintln(s.out, s.colors.fail(fmt.Sprintf("%d of %d files could not be downloaded.", failed, len(artifacts))))
	} else {
		fmt.Fprintln(s.out, "Download complete, choose 2 to build the library manager.")
	}

	s.record(model.HistoryTypeFetch, start, exitCode, func(h *model.History) {
		h.Downloads = results
	})
	return results
}

func (s *Session) downloadStatus(r model.DownloadResult) string {
	switch {
	case !r.Succeeded:
		return fmt.Sprintf("%s %s", s.colors.fail("[failed]"), r.Artifact)
	case !r.Verified:
		return fmt.Sprintf("%s %s via %s (could not confirm the file exists)", s.colors.warn("[ok?]"), r.Artifact, r.Transport)
	default:
		return fmt.Sprintf("%s %s via %s", s.colors.ok("[ok]"), r.Artifact, r.Transport)
	}
}
