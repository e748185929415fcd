package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/dev-namespace/hydra/internal/core/config"
	"github.com/dev-namespace/hydra/internal/printer"
)

type ValidateCmd struct {
	flags  *Flags
	format string
}

// NewValidateCmd creates a new validate command.
func NewValidateCmd(flags *Flags) *ValidateCmd {
	return &ValidateCmd{flags: flags}
}

// Register adds the validate command to the application.
func (cmd *ValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "validate",
		Usage:       "Validate configuration and environment",
		UsageText:   "hydra validate [options]",
		Description: "Checks the configuration file, the agent executable, and the prompt discovery chain.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ValidateCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if cmd.flags.Config == nil {
		return fmt.Errorf("configuration not loaded")
	}

	result := cmd.flags.Config.ValidateDeep(cmd.flags.ConfigPath)

	if cmd.format == "json" {
		return cmd.outputJSON(c, result)
	}

	return cmd.outputText(p, result)
}

func (cmd *ValidateCmd) outputJSON(c *cli.Command, result *config.ValidationResult) error {
	out := struct {
		Valid    bool                       `json:"valid"`
		Errors   []config.ValidationError   `json:"errors,omitempty"`
		Warnings []config.ValidationWarning `json:"warnings,omitempty"`
		Checks   []config.ValidationCheck   `json:"checks,omitempty"`
	}{
		Valid:    result.IsValid(),
		Errors:   result.Errors,
		Warnings: result.Warnings,
		Checks:   result.Checks,
	}

	enc := json.NewEncoder(c.Root().Writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	if !result.IsValid() {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *ValidateCmd) outputText(p *printer.Printer, result *config.ValidationResult) error {
	for _, check := range result.Checks {
		detail := check.Message
		for _, d := range check.Details {
			detail += "\n    " + d
		}
		p.CheckItem(check.Category, detail)
	}

	for _, warn := range result.Warnings {
		msg := warn.Message
		if warn.Item != "" {
			msg = warn.Item + ": " + msg
		}
		p.WarnItem(warn.Category, msg)
	}

	for _, e := range result.Errors {
		msg := e.Message
		if e.Item != "" {
			msg = e.Item + ": " + msg
		}
		if e.Fix != "" {
			msg += "\n    fix: " + e.Fix
		}
		p.FailItem(e.Category, msg)
	}

	p.Printf("")
	if !result.IsValid() {
		p.Errorf("%d error(s) found", result.ErrorCount())
		return cli.Exit("", 1)
	}

	if len(result.Warnings) > 0 {
		p.Successf("configuration is valid (%d warning(s))", len(result.Warnings))
	} else {
		p.Successf("configuration is valid")
	}

	return nil
}
