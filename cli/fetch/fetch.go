// Package fetch downloads the library's required source files into the
// working directory. Downloads go through curl first and fall back to an
// in-process HTTP client; a best-effort listing command then checks that the
// file landed on disk.
package fetch

import (
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"lukechampine.com/blake3"

	"github.com/0kunkun0/ikunbuild/cli/execute"
	"github.com/0kunkun0/ikunbuild/cli/platform"
	"github.com/0kunkun0/ikunbuild/model"
)

// DefaultBaseURL is where the library sources are published.
const DefaultBaseURL = "https://raw.githubusercontent.com/0kunkun0/ikun/refs/heads/main"

// DefaultTimeout bounds a single fallback HTTP download.
const DefaultTimeout = 60 * time.Second

// Artifact is one remote file. Name is both the remote file name and the
// local path relative to the working directory.
type Artifact struct {
	Name string
}

var requiredArtifacts = []Artifact{
	{Name: "ikun_core.cpp"},
	{Name: "core.hpp"},
	{Name: "ikun_error_analyzer.cpp"},
	{Name: "ikun_stderr.hpp"},
}

// Required returns the files needed to build the library manager and the
// error analyzer.
func Required() []Artifact {
	return append([]Artifact(nil), requiredArtifacts...)
}

// Fetcher downloads artifacts into a directory.
type Fetcher struct {
	logger   zerolog.Logger
	runner   execute.Runner
	platform platform.Descriptor
	dir      string

	baseURL  string
	insecure bool
	timeout  time.Duration
	client   *http.Client
	progress io.Writer
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(baseURL string) Option {
	return func(f *Fetcher) {
		f.baseURL = baseURL
	}
}

// WithInsecure disables TLS certificate verification for both transports.
func WithInsecure(insecure bool) Option {
	return func(f *Fetcher) {
		f.insecure = insecure
	}
}

// WithTimeout bounds each fallback HTTP download.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = timeout
	}
}

// WithHTTPClient replaces the fallback HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithProgress renders a progress bar for fallback downloads to w.
func WithProgress(w io.Writer) Option {
	return func(f *Fetcher) {
		f.progress = w
	}
}

// New creates a Fetcher writing into dir.
func New(logger zerolog.Logger, runner execute.Runner, p platform.Descriptor, dir string, opts ...Option) *Fetcher {
	f := &Fetcher{
		logger:   logger,
		runner:   runner,
		platform: p,
		dir:      dir,
		baseURL:  DefaultBaseURL,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = newHTTPClient(f.insecure, f.timeout)
	}
	return f
}

func newHTTPClient(insecure bool, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		MinVersion: tls.VersionTLS12,
		// Opt-in only, see WithInsecure.
		InsecureSkipVerify: insecure, //nolint:gosec
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// URL returns the remote location of an artifact.
func (f *Fetcher) URL(name string) string {
	u, err := url.JoinPath(f.baseURL, name)
	if err != nil {
		return strings.TrimRight(f.baseURL, "/") + "/" + name
	}
	return u
}

// Path returns the local location of an artifact.
func (f *Fetcher) Path(name string) string {
	return filepath.Join(f.dir, filepath.FromSlash(name))
}

// Fetch downloads one artifact. It never returns an error: every failure is
// reflected in the result so callers can carry on with the next artifact.
func (f *Fetcher) Fetch(name string) model.DownloadResult {
	result := model.DownloadResult{Artifact: name}
	remote := f.URL(name)
	local := f.Path(name)

	logger := f.logger.With().Str("artifact", name).Logger()
	logger.Debug().Str("url", remote).Str("path", local).Msg("Downloading artifact")

	switch {
	case f.primary(logger, remote, local):
		result.Transport = model.TransportPrimary
	case f.fallback(logger, name, remote, local):
		result.Transport = model.TransportFallback
	default:
		logger.Error().Str("url", remote).Msg("All transports failed")
		// curl may have left a truncated file that a build would pick up.
		if err := os.Remove(local); err != nil && !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("path", local).Msg("Failed to remove partial download")
		}
		return result
	}
	result.Succeeded = true

	result.Verified = f.verify(logger, local)
	if !result.Verified {
		logger.Warn().Str("path", local).Msg("File may not have been downloaded")
	}

	if digest, size, err := digestFile(local); err == nil {
		result.Digest = digest
		result.Size = size
	} else {
		logger.Debug().Err(err).Msg("Failed to hash artifact")
	}

	return result
}

// FetchAll fetches every artifact once, in order, without stopping at failures.
// each, if not nil, is called with every result as soon as it is known.
func (f *Fetcher) FetchAll(artifacts []Artifact, each func(model.DownloadResult)) []model.DownloadResult {
	results := make([]model.DownloadResult, 0, len(artifacts))
	for _, a := range artifacts {
		r := f.Fetch(a.Name)
		if each != nil {
			each(r)
		}
		results = append(results, r)
	}
	return results
}

func (f *Fetcher) primary(logger zerolog.Logger, remote, local string) bool {
	args := []string{"-L", "--fail", "-sS", "-o", local}
	if f.insecure {
		args = append(args, "-k")
	}
	args = append(args, remote)

	code, err := f.runner.Run(execute.NewCommand("curl", args...))
	if err != nil {
		logger.Debug().Err(err).Msg("curl unavailable, falling back to native HTTP client")
		return false
	}
	if code != 0 {
		logger.Debug().Int("exit_code", code).Msg("curl failed, falling back to native HTTP client")
		return false
	}
	return true
}

func (f *Fetcher) fallback(logger zerolog.Logger, name, remote, local string) bool {
	if err := f.download(name, remote, local); err != nil {
		logger.Debug().Err(err).Msg("Native HTTP download failed")
		return false
	}
	return true
}

func (f *Fetcher) download(name, remote, local string) (err error) {
	resp, err := f.client.Get(remote)
	if err != nil {
		return fmt.Errorf("native http get failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %s", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", local, err)
	}

	out, err := os.Create(local)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", local, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close destination file: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(local)
		}
	}()

	var w io.Writer = out
	if f.progress != nil {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetWriter(f.progress),
			progressbar.OptionSetDescription(name),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Close()
		w = io.MultiWriter(out, bar)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to write to destination file: %w", err)
	}
	return nil
}

// verify lists the downloaded file with the platform's listing command.
// A failure here is advisory: shells may report success even when the
// transport wrote nowhere useful, and the reverse.
func (f *Fetcher) verify(logger zerolog.Logger, local string) bool {
	cmd := execute.NewCommand("ls", local)
	if f.platform.IsWindows() {
		cmd = execute.NewCommand("cmd", "/c", "dir", local)
	}

	code, err := f.runner.Run(cmd)
	if err != nil {
		logger.Debug().Err(err).Msg("Verification command could not run")
		return false
	}
	return code == 0
}

func digestFile(path string) (string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer file.Close()

	h := blake3.New(32, nil)
	n, err := io.Copy(h, file)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
