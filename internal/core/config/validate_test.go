package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDeep_CommandNotFound(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Command = "definitely-not-a-real-binary-xyz"

	result := cfg.ValidateDeep("")

	assert.False(t, result.IsValid())
	require.NotEmpty(t, result.Errors)

	var found bool
	for _, e := range result.Errors {
		if e.Category == "command" {
			found = true
			assert.Contains(t, e.Message, "not found")
		}
	}
	assert.True(t, found, "expected a command category error")
}

func TestValidateDeep_CommandFound(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Command = "sh"

	result := cfg.ValidateDeep("")

	for _, e := range result.Errors {
		assert.NotEqual(t, "command", e.Category)
	}
}

func TestValidateDeep_MissingConfigFileWarns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Command = "sh"

	result := cfg.ValidateDeep(filepath.Join(t.TempDir(), "absent.yaml"))

	var warned bool
	for _, w := range result.Warnings {
		if w.Category == "files" {
			warned = true
		}
	}
	assert.True(t, warned, "missing config file should warn, not error")
}

func TestValidateDeep_StopFilePresent(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := DefaultConfig()
	cfg.Command = "sh"
	require.NoError(t, os.WriteFile(cfg.StopFile, nil, 0o644))

	result := cfg.ValidateDeep("")

	var warned bool
	for _, w := range result.Warnings {
		if w.Category == "stop_file" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestValidateDeep_FieldErrorsSurface(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 0

	result := cfg.ValidateDeep("")

	assert.False(t, result.IsValid())
	assert.Equal(t, result.ErrorCount(), len(result.Errors))

	var found bool
	for _, e := range result.Errors {
		if e.Category == "config" && e.Item == "max_iterations" {
			found = true
			assert.Contains(t, e.Message, "at least 1")
		}
	}
	assert.True(t, found, "field errors should surface per field")
}
