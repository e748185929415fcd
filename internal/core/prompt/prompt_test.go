package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate pins both cwd and home to temp directories so the resolution
// chain only sees files the test created.
func isolate(t *testing.T) (cwd, home string) {
	t.Helper()
	cwd = t.TempDir()
	home = t.TempDir()
	t.Chdir(cwd)
	t.Setenv("HOME", home)
	return cwd, home
}

func TestResolve_CLIOverride(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "cli-prompt.md")
	require.NoError(t, os.WriteFile(path, []byte("cli content"), 0o644))

	r, err := Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, SourceCLI, r.Source)
	assert.Equal(t, "cli content", r.Content)
	assert.Equal(t, path, r.Path)
}

func TestResolve_CLIPathMissingIsError(t *testing.T) {
	isolate(t)

	_, err := Resolve("/nonexistent/prompt.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nonexistent/prompt.md")
}

func TestResolve_ProjectPrompt(t *testing.T) {
	cwd, _ := isolate(t)

	require.NoError(t, os.MkdirAll(filepath.Join(cwd, ".hydra"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cwd, ".hydra", "prompt.md"), []byte("project"), 0o644))

	r, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, SourceProject, r.Source)
	assert.Equal(t, "project", r.Content)
}

func TestResolve_CurrentDirPrompt(t *testing.T) {
	cwd, _ := isolate(t)

	require.NoError(t, os.WriteFile(filepath.Join(cwd, "prompt.md"), []byte("cwd prompt"), 0o644))

	r, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, SourceCurrentDir, r.Source)
	assert.Equal(t, "cwd prompt", r.Content)
}

func TestResolve_GlobalFallback(t *testing.T) {
	_, home := isolate(t)

	require.NoError(t, os.MkdirAll(filepath.Join(home, ".hydra"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".hydra", "default-prompt.md"), []byte("global"), 0o644))

	r, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, SourceGlobal, r.Source)
	assert.Equal(t, "global", r.Content)
}

func TestResolve_PriorityOrder(t *testing.T) {
	cwd, home := isolate(t)

	require.NoError(t, os.MkdirAll(filepath.Join(cwd, ".hydra"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".hydra"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cwd, ".hydra", "prompt.md"), []byte("project"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cwd, "prompt.md"), []byte("cwd"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".hydra", "default-prompt.md"), []byte("global"), 0o644))

	r, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, SourceProject, r.Source, "project prompt wins without a CLI override")
}

func TestResolve_NothingFound(t *testing.T) {
	isolate(t)

	_, err := Resolve("")
	assert.ErrorIs(t, err, ErrNoPrompt)
}

func TestInjectPlan(t *testing.T) {
	got := InjectPlan("Prompt content\n\n\n", "- [ ] task one\n")

	assert.Equal(t, "Prompt content\n\n## Implementation Plan\n\n- [ ] task one\n", got)
}

func TestInjectScratchpad(t *testing.T) {
	got := InjectScratchpad("Prompt content", ".hydra/scratchpad/plan.md")

	assert.Equal(t,
		"Prompt content\n\n## Scratchpad\n\nShared notes file across iterations: .hydra/scratchpad/plan.md",
		got)
}

func TestInjectOrdering(t *testing.T) {
	out := InjectScratchpad(InjectPlan("# Prompt", "plan body"), "notes.md")

	planPos := indexOf(t, out, "## Implementation Plan")
	scratchPos := indexOf(t, out, "## Scratchpad")
	assert.Less(t, planPos, scratchPos, "scratchpad section follows the plan section")
}

func indexOf(t *testing.T, s, sub string) int {
	t.Helper()
	idx := strings.Index(s, sub)
	require.GreaterOrEqual(t, idx, 0, "substring %q not found", sub)
	return idx
}

func TestWriteCombined(t *testing.T) {
	r := &Resolved{Path: "x.md", Content: "body text", Source: SourceCLI}

	path, err := WriteCombined(r)
	require.NoError(t, err)
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "ITERATION INSTRUCTIONS")
	assert.Contains(t, content, "###TASK_COMPLETE###")
	assert.Contains(t, content, "###ALL_TASKS_COMPLETE###")
	assert.Contains(t, content, "body text")

	instrPos := indexOf(t, content, "ITERATION INSTRUCTIONS")
	bodyPos := indexOf(t, content, "body text")
	assert.Less(t, instrPos, bodyPos, "instructions precede the prompt body")
}
