package commands

import (
	"github.com/dev-namespace/hydra/internal/core/config"
	"github.com/dev-namespace/hydra/internal/shutdown"
)

// Flags carries global flag values plus state the Before hook prepares
// for every command.
type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string

	// Config is loaded in the Before hook and available to all commands.
	Config *config.Config

	// Shutdown is the process-wide signal controller.
	Shutdown *shutdown.Controller
}

// DefaultConfigPath returns the per-user config file location.
func DefaultConfigPath() string {
	return config.GlobalConfigPath()
}
