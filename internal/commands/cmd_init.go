package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/dev-namespace/hydra/internal/core/config"
	"github.com/dev-namespace/hydra/internal/printer"
)

const promptTemplate = `# Project Prompt

Describe the work the agent should do here. This file is read at the start
of every iteration, so keep it focused on the current goal.

## Goal

<!-- What should the agent accomplish? -->

## Constraints

<!-- Anything the agent must not touch or change. -->
`

type InitCmd struct {
	flags *Flags

	yes bool
}

// NewInitCmd creates a new init command.
func NewInitCmd(flags *Flags) *InitCmd {
	return &InitCmd{flags: flags}
}

// Register adds the init command to the application.
func (cmd *InitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "init",
		Usage:     "Scaffold the .hydra directory in the current project",
		UsageText: "hydra init [options]",
		Description: `Creates the .hydra directory with a starter prompt file and a logs
directory, and offers to add .hydra/ to the project's .gitignore.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "answer yes to all prompts",
				Destination: &cmd.yes,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *InitCmd) run(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	if err := os.MkdirAll(config.LogsDir(), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", config.LogsDir(), err)
	}
	p.CheckItem("created", config.LogsDir())

	promptPath := config.LocalPromptPath()
	if _, err := os.Stat(promptPath); err == nil {
		p.WarnItem("exists", promptPath)
	} else {
		if err := os.WriteFile(promptPath, []byte(promptTemplate), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", promptPath, err)
		}
		p.CheckItem("created", promptPath)
	}

	if err := cmd.updateGitignore(p); err != nil {
		return err
	}

	p.Success("project initialized", "edit "+promptPath+" and run `hydra`")
	return nil
}

func (cmd *InitCmd) updateGitignore(p *printer.Printer) error {
	data, err := os.ReadFile(".gitignore")
	switch {
	case os.IsNotExist(err):
		return nil
	case err != nil:
		return fmt.Errorf("read .gitignore: %w", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == ".hydra/" || strings.TrimSpace(line) == ".hydra" {
			return nil
		}
	}

	ok := cmd.yes
	if !ok {
		confirm := huh.NewConfirm().
			Title("Add .hydra/ to .gitignore?").
			Value(&ok)
		if err := confirm.Run(); err != nil {
			return fmt.Errorf("confirm gitignore update: %w", err)
		}
	}
	if !ok {
		return nil
	}

	entry := ".hydra/\n"
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		entry = "\n" + entry
	}

	f, err := os.OpenFile(".gitignore", os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open .gitignore: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("append to .gitignore: %w", err)
	}
	p.CheckItem("updated", ".gitignore")

	return nil
}
