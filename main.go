package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/dev-namespace/hydra/internal/commands"
	"github.com/dev-namespace/hydra/internal/core/config"
	"github.com/dev-namespace/hydra/internal/printer"
	"github.com/dev-namespace/hydra/internal/shutdown"
	"github.com/dev-namespace/hydra/pkg/utils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	if err := setupLogger("info", "", nil); err != nil {
		panic(err)
	}

	var (
		p     = printer.New(os.Stderr)
		ctx   = printer.NewContext(context.Background(), p)
		flags = &commands.Flags{}
	)

	flags.Shutdown = shutdown.New(log.With().Str("component", "hydra").Logger())
	stopSignals := flags.Shutdown.Start()
	defer stopSignals()

	var deferredLogs *utils.DeferredWriter

	app := &cli.Command{
		Name:      "hydra",
		Usage:     "Run AI agents in loops or interactive tabs",
		UsageText: "hydra [global options] [PLAN] [command [command options]]",
		Description: `Hydra drives an interactive agent CLI inside a pseudo-terminal. The default
mode runs the agent in a loop against a prompt file until it signals that all
work is complete. The tui mode opens a multi-tab interface where each tab is
a live agent session.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (trace, debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("HYDRA_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to a file to write logs to",
				Sources:     cli.EnvVars("HYDRA_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Usage:       "path to the configuration file",
				Sources:     cli.EnvVars("HYDRA_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			level := flags.LogLevel
			if c.Bool("verbose") {
				level = "debug"
			}

			// The tui owns the terminal, so buffer logs until it exits
			var deferred io.Writer
			if c.Args().First() == "tui" {
				deferredLogs = &utils.DeferredWriter{}
				deferred = deferredLogs
			}

			if err := setupLogger(level, flags.LogFile, deferred); err != nil {
				return ctx, err
			}

			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			cfg.MergeCLI(0, 0, c.Bool("verbose"))
			flags.Config = cfg

			return ctx, nil
		},
	}

	runCmd := commands.NewRunCmd(flags)

	app = runCmd.Register(app)
	app = commands.NewTuiCmd(flags).Register(app)
	app = commands.NewInitCmd(flags).Register(app)
	app = commands.NewValidateCmd(flags).Register(app)
	app = commands.NewHistoryCmd(flags).Register(app)

	// Register run flags on the root command
	app.Flags = append(app.Flags, runCmd.Flags()...)

	// The loop is the default action; a bare positional argument is a plan file
	app.Action = runCmd.Run

	// Keep exit handling in main so deferred logs flush first
	app.ExitErrHandler = func(context.Context, *cli.Command, error) {}

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		var coder cli.ExitCoder
		if errors.As(err, &coder) {
			exitCode = coder.ExitCode()
			if msg := err.Error(); msg != "" {
				printer.Ctx(ctx).Errorf("%s", msg)
			}
		} else {
			fmt.Println()
			printer.Ctx(ctx).FatalError(err)
			exitCode = 1
		}
	}

	// Flush deferred logs to console after the tui exits
	if deferredLogs != nil {
		if err := deferredLogs.Flush(zerolog.ConsoleWriter{Out: os.Stderr}); err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", err)
		}
	}

	os.Exit(exitCode)
}

func setupLogger(level string, logFile string, deferred io.Writer) error {
	parsedLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	var output io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}

	if logFile != "" {
		logDir := filepath.Dir(logFile)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}

		if deferred != nil {
			output = io.MultiWriter(file, deferred)
		} else {
			output = io.MultiWriter(
				zerolog.ConsoleWriter{Out: os.Stderr},
				file,
			)
		}
	} else if deferred != nil {
		output = deferred
	}

	log.Logger = log.Output(output).Level(parsedLevel)

	return nil
}
