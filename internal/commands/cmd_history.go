package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dev-namespace/hydra/internal/core/config"
	"github.com/dev-namespace/hydra/internal/core/history"
	"github.com/dev-namespace/hydra/internal/printer"
	"github.com/dev-namespace/hydra/internal/store/jsonfile"
)

// historyLimit caps how many runs are kept on disk.
const historyLimit = 100

type HistoryCmd struct {
	flags *Flags

	clear  bool
	failed bool
	limit  int
}

// NewHistoryCmd creates a new history command.
func NewHistoryCmd(flags *Flags) *HistoryCmd {
	return &HistoryCmd{flags: flags}
}

// Register adds the history command to the application.
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "history",
		Usage:       "Show past loop runs",
		UsageText:   "hydra history [options] [RUN_ID]",
		Description: "Lists recorded loop runs, newest first, with their outcome and iteration count. Pass a run ID for full details of one run.",
		ArgsUsage:   "[RUN_ID]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "clear",
				Usage:       "delete all recorded runs",
				Destination: &cmd.clear,
			},
			&cli.BoolFlag{
				Name:        "failed",
				Usage:       "show details of the most recent failed run",
				Destination: &cmd.failed,
			},
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "show at most N runs",
				Value:       20,
				Destination: &cmd.limit,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *HistoryCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)
	store := newHistoryStore()

	if cmd.clear {
		if err := store.Clear(ctx); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		p.Successf("history cleared")
		return nil
	}

	if id := c.Args().First(); id != "" {
		e, err := store.Get(ctx, id)
		if errors.Is(err, history.ErrNotFound) {
			return cli.Exit(fmt.Sprintf("no run with ID %q", id), 1)
		}
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}
		cmd.printEntry(p, e)
		return nil
	}

	if cmd.failed {
		e, err := store.LastFailed(ctx)
		if errors.Is(err, history.ErrNotFound) {
			p.Infof("no failed runs recorded")
			return nil
		}
		if err != nil {
			return fmt.Errorf("find failed run: %w", err)
		}
		cmd.printEntry(p, e)
		return nil
	}

	entries, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}
	if len(entries) == 0 {
		p.Infof("no recorded runs")
		return nil
	}

	if cmd.limit > 0 && len(entries) > cmd.limit {
		entries = entries[:cmd.limit]
	}

	for _, e := range entries {
		label := e.ID + " " + e.Outcome
		detail := fmt.Sprintf("%s, %d iteration(s), %s",
			e.StartedAt.Format(time.DateTime), e.Iterations, e.Duration.Round(time.Second))
		if e.Error != "" {
			detail += ", " + e.Error
		}
		if e.Failed() {
			p.FailItem(label, detail)
		} else {
			p.CheckItem(label, detail)
		}
	}

	return nil
}

// printEntry shows the full record of a single run.
func (cmd *HistoryCmd) printEntry(p *printer.Printer, e history.Entry) {
	p.Section("Run " + e.ID)
	item := p.CheckItem
	if e.Failed() {
		item = p.FailItem
	}
	item("outcome", fmt.Sprintf("%s (exit %d)", e.Outcome, e.ExitCode))
	p.Infof("started:    %s", e.StartedAt.Format(time.DateTime))
	p.Infof("duration:   %s", e.Duration.Round(time.Second))
	p.Infof("iterations: %d", e.Iterations)
	p.Infof("prompt:     %s", e.Prompt)
	if e.Plan != "" {
		p.Infof("plan:       %s", e.Plan)
	}
	if e.LogFile != "" {
		p.Infof("log:        %s", e.LogFile)
	}
	if e.Error != "" {
		p.Errorf("error: %s", e.Error)
	}
}

func newHistoryStore() history.Store {
	return jsonfile.NewHistoryStore(config.GlobalHistoryPath(), historyLimit)
}
