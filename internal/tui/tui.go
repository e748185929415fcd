package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/dev-namespace/hydra/internal/core/config"
	"github.com/dev-namespace/hydra/internal/core/prompt"
)

// Run starts interactive mode and blocks until the user quits or the
// shutdown flag is raised.
func Run(cfg *config.Config, resolved *prompt.Resolved, stop Stopper, logger zerolog.Logger) error {
	m, err := New(cfg, resolved, stop, logger)
	if err != nil {
		return err
	}
	defer m.Cleanup()

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	if fm, ok := final.(*Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}
