package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/dev-namespace/hydra/internal/tui"
)

type TuiCmd struct {
	flags *Flags

	promptPath string
}

// NewTuiCmd creates a new tui command.
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{flags: flags}
}

// Register adds the tui command to the application.
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "tui",
		Usage:     "Open the interactive multi-tab terminal interface",
		UsageText: "hydra tui [PLAN] [options]",
		Description: `Opens a full-screen interface where each tab hosts a live agent process.
Keystrokes are forwarded to the active tab and completion markers are shown
in the tab bar.

PLAN is an optional path or glob pattern for a plan file to append to the
prompt. Without it the newest markdown file under ./.hydra/plans/ is used,
if any.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "prompt",
				Aliases:     []string{"p"},
				Usage:       "path to the prompt file (overrides discovery)",
				Destination: &cmd.promptPath,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *TuiCmd) run(_ context.Context, c *cli.Command) error {
	logger := log.With().Str("component", "tui").Logger()

	cfg := cmd.flags.Config
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}

	resolved, _, err := resolvePrompt(cmd.promptPath, c.Args().First())
	if err != nil {
		return err
	}

	return tui.Run(cfg, resolved, cmd.flags.Shutdown, logger)
}
