package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/hay-kot/criterio"
)

// ValidationResult holds the outcome of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
	Checks   []ValidationCheck
}

// ValidationError represents a configuration error.
type ValidationError struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
	Fix      string `json:"fix,omitempty"`
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidationCheck represents a successful validation check.
type ValidationCheck struct {
	Category string   `json:"category"`
	Message  string   `json:"message"`
	Details  []string `json:"details,omitempty"`
}

// IsValid returns true if there are no errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// ErrorCount returns the number of errors.
func (r *ValidationResult) ErrorCount() int {
	return len(r.Errors)
}

// ValidateDeep performs environment-aware validation beyond the basic
// field checks: executable lookup, prompt file resolution, and leftover
// stop files.
func (c *Config) ValidateDeep(configPath string) *ValidationResult {
	result := &ValidationResult{}

	c.validateFields(result)
	c.validateFileAccess(result, configPath)
	c.validateCommand(result)
	c.validatePromptSources(result)
	c.validateStopFile(result)

	return result
}

func (c *Config) validateFields(result *ValidationResult) {
	if err := c.Validate(); err != nil {
		var fieldErrs criterio.FieldErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				result.Errors = append(result.Errors, ValidationError{
					Category: "config",
					Item:     fe.Field,
					Message:  fe.Err.Error(),
				})
			}
			return
		}
		result.Errors = append(result.Errors, ValidationError{
			Category: "config",
			Message:  err.Error(),
		})
		return
	}

	result.Checks = append(result.Checks, ValidationCheck{
		Category: "config",
		Message:  "all fields valid",
	})
}

func (c *Config) validateFileAccess(result *ValidationResult, configPath string) {
	if configPath == "" {
		configPath = GlobalConfigPath()
	}

	if _, err := os.Stat(configPath); err != nil {
		if os.IsNotExist(err) {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Category: "files",
				Item:     configPath,
				Message:  "config file not found, using defaults",
			})
			return
		}
		result.Errors = append(result.Errors, ValidationError{
			Category: "files",
			Item:     configPath,
			Message:  fmt.Sprintf("cannot access config file: %v", err),
		})
		return
	}

	result.Checks = append(result.Checks, ValidationCheck{
		Category: "files",
		Message:  "config file readable",
		Details:  []string{configPath},
	})
}

func (c *Config) validateCommand(result *ValidationResult) {
	if c.Command == "" {
		return
	}

	path, err := exec.LookPath(c.Command)
	if err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Category: "command",
			Item:     c.Command,
			Message:  "agent executable not found in PATH",
			Fix:      fmt.Sprintf("install %s or set command in config", c.Command),
		})
		return
	}

	result.Checks = append(result.Checks, ValidationCheck{
		Category: "command",
		Message:  "agent executable found",
		Details:  []string{path},
	})
}

func (c *Config) validatePromptSources(result *ValidationResult) {
	sources := []string{
		LocalPromptPath(),
		"prompt.md",
		GlobalDefaultPromptPath(),
	}

	var found []string
	for _, p := range sources {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			found = append(found, p)
		}
	}

	if len(found) == 0 {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Category: "prompt",
			Message:  "no prompt file found; loop mode will need --prompt",
		})
		return
	}

	result.Checks = append(result.Checks, ValidationCheck{
		Category: "prompt",
		Message:  fmt.Sprintf("%d prompt source(s) available", len(found)),
		Details:  found,
	})
}

func (c *Config) validateStopFile(result *ValidationResult) {
	if c.StopFile == "" {
		return
	}

	if _, err := os.Stat(c.StopFile); err == nil {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Category: "stop_file",
			Item:     c.StopFile,
			Message:  "stop file exists, loop mode will halt before the first iteration",
		})
	}
}
