// Package config handles configuration loading and validation for hydra.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	// MaxIterations bounds how many agent sessions a loop run spawns.
	MaxIterations int `yaml:"max_iterations"`

	// Verbose enables debug output.
	Verbose bool `yaml:"verbose"`

	// StopFile is the filename checked before each iteration; its
	// presence requests a graceful stop.
	StopFile string `yaml:"stop_file"`

	// TimeoutSeconds bounds a single iteration (default 20 minutes).
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// MaxTabs caps concurrent sessions in interactive mode.
	MaxTabs int `yaml:"max_tabs"`

	// Command is the agent binary to spawn.
	Command string `yaml:"command"`

	// CommandArgs are passed to the agent before the prompt file.
	CommandArgs []string `yaml:"command_args"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxIterations:  10,
		Verbose:        false,
		StopFile:       ".hydra-stop",
		TimeoutSeconds: 1200,
		MaxTabs:        7,
		Command:        "claude",
		CommandArgs:    []string{"--dangerously-skip-permissions"},
	}
}

// Load reads configuration from the given path. A missing file yields
// defaults; a present but unreadable or malformed file is an error.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.MaxIterations == 0 {
		c.MaxIterations = defaults.MaxIterations
	}
	if c.StopFile == "" {
		c.StopFile = defaults.StopFile
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if c.MaxTabs == 0 {
		c.MaxTabs = defaults.MaxTabs
	}
	if c.Command == "" {
		c.Command = defaults.Command
	}
}

// MergeCLI applies command line options over config values. CLI options
// take precedence when provided; verbose is additive.
func (c *Config) MergeCLI(maxIterations, timeoutSeconds int, verbose bool) {
	if maxIterations > 0 {
		c.MaxIterations = maxIterations
	}
	if timeoutSeconds > 0 {
		c.TimeoutSeconds = timeoutSeconds
	}
	if verbose {
		c.Verbose = true
	}
}

// Validate checks that the configuration is valid. Field problems are
// reported together as criterio.FieldErrors.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.MaxIterations < 1 {
		errs = errs.Append("max_iterations", fmt.Errorf("must be at least 1"))
	}

	if c.TimeoutSeconds < 1 {
		errs = errs.Append("timeout_seconds", fmt.Errorf("must be at least 1"))
	}

	if c.StopFile == "" {
		errs = errs.Append("stop_file", fmt.Errorf("cannot be empty"))
	} else if filepath.Base(c.StopFile) != c.StopFile {
		errs = errs.Append("stop_file", fmt.Errorf("must be a bare filename, got %q", c.StopFile))
	}

	if c.MaxTabs < 1 {
		errs = errs.Append("max_tabs", fmt.Errorf("must be at least 1"))
	}

	if c.Command == "" {
		errs = errs.Append("command", fmt.Errorf("cannot be empty"))
	}

	return errs.ToError()
}

// GlobalDir returns the per-user hydra directory (~/.hydra).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hydra"
	}
	return filepath.Join(home, ".hydra")
}

// GlobalConfigPath returns the path to the per-user config file.
func GlobalConfigPath() string {
	return filepath.Join(GlobalDir(), "config.yaml")
}

// GlobalDefaultPromptPath returns the per-user fallback prompt file.
func GlobalDefaultPromptPath() string {
	return filepath.Join(GlobalDir(), "default-prompt.md")
}

// GlobalHistoryPath returns the per-user run history file.
func GlobalHistoryPath() string {
	return filepath.Join(GlobalDir(), "history.json")
}

// LocalDir returns the project-level hydra directory.
func LocalDir() string {
	return ".hydra"
}

// LocalPromptPath returns the project-level prompt file.
func LocalPromptPath() string {
	return filepath.Join(LocalDir(), "prompt.md")
}

// LogsDir returns where session logs are written.
func LogsDir() string {
	return filepath.Join(LocalDir(), "logs")
}

// PlansDir returns where plan documents are searched for.
func PlansDir() string {
	return filepath.Join(LocalDir(), "plans")
}
