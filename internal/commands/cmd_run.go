package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/dev-namespace/hydra/internal/core/config"
	"github.com/dev-namespace/hydra/internal/core/history"
	"github.com/dev-namespace/hydra/internal/core/prompt"
	"github.com/dev-namespace/hydra/internal/printer"
	"github.com/dev-namespace/hydra/internal/runner"
	"github.com/dev-namespace/hydra/pkg/randid"
)

type RunCmd struct {
	flags *Flags

	promptPath     string
	maxIterations  int
	timeoutSeconds int
	dryRun         bool
}

// NewRunCmd creates a new run command.
func NewRunCmd(flags *Flags) *RunCmd {
	return &RunCmd{flags: flags}
}

// Flags returns the run-specific flags for registration on the root command,
// since run is the default action.
func (cmd *RunCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "prompt",
			Aliases:     []string{"p"},
			Usage:       "path to the prompt file (overrides discovery)",
			Destination: &cmd.promptPath,
		},
		&cli.IntFlag{
			Name:        "max",
			Aliases:     []string{"m"},
			Usage:       "maximum number of iterations",
			Destination: &cmd.maxIterations,
		},
		&cli.IntFlag{
			Name:        "timeout",
			Aliases:     []string{"t"},
			Usage:       "per-iteration timeout in seconds",
			Destination: &cmd.timeoutSeconds,
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "print the resolved configuration and prompt without starting the agent",
			Destination: &cmd.dryRun,
		},
	}
}

// Register adds the run command to the application.
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Run the agent loop until completion or the iteration limit",
		UsageText: "hydra run [PLAN] [options]",
		Description: `Runs the agent repeatedly against the resolved prompt until it emits the
all-complete marker, the iteration limit is reached, or a stop is requested.

PLAN is an optional path or glob pattern for a plan file to append to the
prompt. When a glob matches multiple files, the most recently modified one
is used. Without a PLAN argument the newest markdown file under
./.hydra/plans/ is used, if any.`,
		Flags:  cmd.Flags(),
		Action: cmd.Run,
	})

	return app
}

// Run executes the loop. Exported for use as the default command.
func (cmd *RunCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *RunCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)
	logger := log.With().Str("component", "run").Logger()

	cfg := cmd.flags.Config
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}
	cfg.MergeCLI(cmd.maxIterations, cmd.timeoutSeconds, false)

	resolved, planPath, err := resolvePrompt(cmd.promptPath, c.Args().First())
	if err != nil {
		return err
	}

	if cmd.dryRun {
		return cmd.printDryRun(p, resolved)
	}

	r := runner.New(cfg, resolved, cmd.flags.Shutdown, p, logger)

	started := time.Now()
	result := r.Run(ctx)
	cmd.recordRun(ctx, logger, resolved, planPath, r.LogPath(), started, result)

	if result.Err != nil {
		return cli.Exit(result.Err.Error(), result.Outcome.ExitCode())
	}
	if code := result.Outcome.ExitCode(); code != 0 {
		return cli.Exit(fmt.Sprintf("loop %s after %d iteration(s)", result.Outcome, result.Iterations), code)
	}

	return nil
}

// recordRun saves the loop outcome to the run history. Failures are
// logged, not fatal, since the run itself already finished.
func (cmd *RunCmd) recordRun(ctx context.Context, logger zerolog.Logger, resolved *prompt.Resolved, planPath, logPath string, started time.Time, result runner.Result) {
	entry := history.Entry{
		ID:         randid.Generate(8),
		Prompt:     resolved.Path,
		Plan:       planPath,
		Outcome:    result.Outcome.String(),
		Iterations: result.Iterations,
		ExitCode:   result.Outcome.ExitCode(),
		LogFile:    logPath,
		StartedAt:  started,
		Duration:   time.Since(started),
	}
	if result.Err != nil {
		entry.Error = result.Err.Error()
	}

	if err := newHistoryStore().Save(ctx, entry); err != nil {
		logger.Warn().Err(err).Msg("failed to record run history")
	}
}

func (cmd *RunCmd) printDryRun(p *printer.Printer, resolved *prompt.Resolved) error {
	cfg := cmd.flags.Config

	p.Section("Configuration")
	p.CheckItem("command", cfg.Command+" "+strings.Join(cfg.CommandArgs, " "))
	p.CheckItem("max iterations", fmt.Sprintf("%d", cfg.MaxIterations))
	p.CheckItem("timeout", fmt.Sprintf("%ds", cfg.TimeoutSeconds))
	p.CheckItem("stop file", cfg.StopFile)
	p.CheckItem("prompt source", resolved.Source.String())

	p.Section("Prompt")
	rendered, err := renderMarkdown(resolved.Content)
	if err != nil {
		p.Printf("%s\n", resolved.Content)
		return nil
	}
	p.Printf("%s", rendered)

	return nil
}

func renderMarkdown(content string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("tokyo-night"),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(content)
}

// resolvePrompt resolves the prompt from the CLI flag or the discovery chain
// and appends a plan. planArg names the plan file or glob; when it is empty
// the newest plan under the project plans directory is picked up, and no
// plan at all is fine. Returns the plan path actually used, if any.
func resolvePrompt(cliPromptPath, planArg string) (*prompt.Resolved, string, error) {
	resolved, err := prompt.Resolve(cliPromptPath)
	if err != nil {
		return nil, "", err
	}

	var planPath string
	if planArg != "" {
		planPath, err = prompt.ResolvePlanArg(planArg)
	} else {
		planPath, err = prompt.FindLatestPlan(config.PlansDir())
	}
	if err != nil {
		return nil, "", err
	}

	if planPath != "" {
		planContent, err := prompt.ReadPlan(planPath)
		if err != nil {
			return nil, "", err
		}
		resolved.Content = prompt.InjectPlan(resolved.Content, planContent)
	}

	return resolved, planPath, nil
}
