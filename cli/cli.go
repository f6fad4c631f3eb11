package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/0kunkun0/ikunbuild/cli/execute"
	"github.com/0kunkun0/ikunbuild/cli/fetch"
	"github.com/0kunkun0/ikunbuild/cli/pathenv"
	"github.com/0kunkun0/ikunbuild/cli/platform"
	"github.com/0kunkun0/ikunbuild/history"
)

const AppName = "ikunbuild"

type App struct {
	logger zerolog.Logger
	cli    *cli.App

	stdin  io.Reader
	stdout io.Writer
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	app := &App{
		logger: logger,
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}
	app.cli = &cli.App{
		Name:  AppName,
		Usage: "Download, build and install the ikun library manager",
		Description: `Without a command, an interactive menu is shown:

  1  Download the files required to build the library
  2  Build the library manager and the error analyzer
  3  Append the working directory to PATH
  4  Exit`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose (debug) logging",
			},
			&cli.StringFlag{
				Name:    "workdir",
				Aliases: []string{"C"},
				Usage:   "Directory to download into and build in (default: current directory)",
				EnvVars: []string{"IKUN_WORKDIR"},
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Base URL the library files are downloaded from",
				Value:   fetch.DefaultBaseURL,
				EnvVars: []string{"IKUN_BASE_URL"},
			},
			&cli.BoolFlag{
				Name:    "insecure",
				Usage:   "Skip TLS certificate verification when downloading",
				EnvVars: []string{"IKUN_INSECURE"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "Timeout for a single download through the built-in HTTP client",
				Value:   fetch.DefaultTimeout,
				EnvVars: []string{"IKUN_HTTP_TIMEOUT"},
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Usage:   "Disable colored output",
				EnvVars: []string{"IKUN_NO_COLOR", "NO_COLOR"},
			},
		},
		Before: func(ctx *cli.Context) error {
			if ctx.Bool("verbose") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			return nil
		},
		Action: app.interactive,
	}
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "fetch",
		Usage:  "Download the files required to build the library",
		Action: app.runFetch,
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "build",
		Usage:  "Build the library manager and the error analyzer",
		Action: app.runBuild,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "compiler",
				Aliases: []string{"c"},
				Usage:   "Compiler to use (1: GCC, 2: Clang, 3: MSVC); prompts when omitted",
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "path",
		Usage:  "Append the working directory to PATH",
		Action: app.runPath,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "scope",
				Usage: "Whose PATH to change: user or system; prompts when omitted",
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "list",
		Usage:  "List previous fetch, build and PATH actions",
		Action: app.list,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Limit number of results (default: 20)",
				Value:   20,
			},
		},
	})
	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && commit != "" {
		if len(commit) > 8 {
			commit = commit[:8]
		}
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	}
}

func (a *App) workDir(ctx *cli.Context) (string, error) {
	dir := ctx.String("workdir")
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = cwd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory %s: %w", dir, err)
	}
	return abs, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func (a *App) newSession(ctx *cli.Context) (*Session, error) {
	workDir, err := a.workDir(ctx)
	if err != nil {
		return nil, err
	}

	p := platform.Probe()
	a.logger.Debug().
		Str("os", p.OS.String()).
		Str("arch", p.Kind.String()).
		Str("width", p.Width.String()).
		Str("raw_os", p.RawOS).
		Str("raw_arch", p.RawArch).
		Msg("Detected platform")

	runner := execute.NewLocal(a.logger, workDir, execute.WithOutput(a.stdout, os.Stderr))

	fetchOpts := []fetch.Option{
		fetch.WithBaseURL(ctx.String("base-url")),
		fetch.WithInsecure(ctx.Bool("insecure")),
		fetch.WithTimeout(ctx.Duration("timeout")),
	}
	if isTerminal(os.Stderr) {
		fetchOpts = append(fetchOpts, fetch.WithProgress(os.Stderr))
	}
	if ctx.Bool("insecure") {
		a.logger.Warn().Msg("TLS certificate verification is disabled for downloads")
	}

	return &Session{
		logger:   a.logger,
		in:       bufio.NewReader(a.stdin),
		out:      a.stdout,
		platform: p,
		workDir:  workDir,
		runner:   runner,
		fetcher:  fetch.New(a.logger, runner, p, workDir, fetchOpts...),
		paths:    pathenv.New(a.logger, runner),
		recorder: history.NewRecorder(a.logger, history.Root(workDir)),
		args:     os.Args,
		colors:   palette{enabled: !ctx.Bool("no-color") && isTerminal(os.Stdout)},
	}, nil
}

func (a *App) interactive(ctx *cli.Context) error {
	s, err := a.newSession(ctx)
	if err != nil {
		return err
	}
	s.Loop()
	return nil
}

func (a *App) runFetch(ctx *cli.Context) error {
	s, err := a.newSession(ctx)
	if err != nil {
		return err
	}
	s.fetchArtifacts()
	return nil
}

func (a *App) runBuild(ctx *cli.Context) error {
	s, err := a.newSession(ctx)
	if err != nil {
		return err
	}

	var status int
	if choice := ctx.String("compiler"); choice != "" {
		_, status = s.buildWith(choice)
	} else {
		status = s.build()
	}
	if status != 0 {
		return cli.Exit("", status)
	}
	return nil
}

func (a *App) runPath(ctx *cli.Context) error {
	s, err := a.newSession(ctx)
	if err != nil {
		return err
	}

	if raw := ctx.String("scope"); raw != "" {
		scope, err := pathenv.ParseScope(raw)
		if err != nil {
			return err
		}
		s.applyPath(scope)
		return nil
	}
	s.configurePath()
	return nil
}
