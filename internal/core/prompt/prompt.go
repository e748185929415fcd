// Package prompt resolves which prompt file drives a run and assembles
// the final prompt handed to the agent.
package prompt

import (
	"fmt"
	"os"
	"strings"

	"github.com/dev-namespace/hydra/internal/core/config"
)

// Source identifies which priority level supplied the prompt.
type Source int

const (
	// SourceCLI is the --prompt flag, highest priority.
	SourceCLI Source = iota
	// SourceProject is ./.hydra/prompt.md.
	SourceProject
	// SourceCurrentDir is ./prompt.md.
	SourceCurrentDir
	// SourceGlobal is ~/.hydra/default-prompt.md, the fallback.
	SourceGlobal
)

func (s Source) String() string {
	switch s {
	case SourceCLI:
		return "--prompt flag"
	case SourceProject:
		return "./.hydra/prompt.md"
	case SourceCurrentDir:
		return "./prompt.md"
	case SourceGlobal:
		return "~/.hydra/default-prompt.md"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Resolved is a prompt file that has been located and read.
type Resolved struct {
	Path    string
	Content string
	Source  Source
}

// ErrNoPrompt is returned when no prompt file exists at any priority
// level.
var ErrNoPrompt = fmt.Errorf("no prompt file found (looked for %s, %s, %s)",
	config.LocalPromptPath(), "prompt.md", config.GlobalDefaultPromptPath())

// Resolve finds the prompt for a run. cliPath, when non-empty, must
// exist; the fallback chain is only consulted without it.
func Resolve(cliPath string) (*Resolved, error) {
	if cliPath != "" {
		content, err := readPromptFile(cliPath)
		if err != nil {
			return nil, err
		}
		return &Resolved{Path: cliPath, Content: content, Source: SourceCLI}, nil
	}

	candidates := []struct {
		path   string
		source Source
	}{
		{config.LocalPromptPath(), SourceProject},
		{"prompt.md", SourceCurrentDir},
		{config.GlobalDefaultPromptPath(), SourceGlobal},
	}

	for _, c := range candidates {
		if info, err := os.Stat(c.path); err != nil || info.IsDir() {
			continue
		}
		content, err := readPromptFile(c.path)
		if err != nil {
			return nil, err
		}
		return &Resolved{Path: c.path, Content: content, Source: c.source}, nil
	}

	return nil, ErrNoPrompt
}

func readPromptFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt file %s: %w", path, err)
	}
	return string(data), nil
}

// InjectPlan appends the plan document under an Implementation Plan
// heading so the agent sees prompt and plan as one document.
func InjectPlan(promptContent, planContent string) string {
	return fmt.Sprintf("%s\n\n## Implementation Plan\n\n%s",
		strings.TrimRight(promptContent, " \t\n"), planContent)
}

// InjectScratchpad appends a Scratchpad section pointing at a notes
// file shared across iterations.
func InjectScratchpad(promptContent, scratchpadPath string) string {
	return fmt.Sprintf("%s\n\n## Scratchpad\n\nShared notes file across iterations: %s",
		strings.TrimRight(promptContent, " \t\n"), scratchpadPath)
}

// IterationInstructions is prepended to every loop-mode prompt. It
// tells the agent how to signal completion.
const IterationInstructions = `╔══════════════════════════════════════════════════════════════════════════════╗
║                           hydra ITERATION INSTRUCTIONS                       ║
╚══════════════════════════════════════════════════════════════════════════════╝

You are running inside hydra, an automated task runner.

YOUR TASK:
1. Review the implementation plan referenced in the prompt below
2. Pick the highest-leverage task that is not yet complete
3. Complete that ONE task thoroughly
4. Mark the task as completed in the plan
4. Signal completion with the appropriate stop sequence

STOP SEQUENCES (output on its own line when done):

  ###TASK_COMPLETE###
  Use this when you have completed the current task but MORE tasks remain.
  hydra will start a new iteration for the next task.

  ###ALL_TASKS_COMPLETE###
  Use this when ALL tasks in the implementation plan are complete.
  hydra will end the session.

IMPORTANT:
- Complete only ONE task per iteration
- Always output exactly one of the two stop sequences when finished
- Mark the task as completed in the plan when finished
- Work AUTONOMOUSLY - do NOT ask the user for input or confirmation
- Make decisions yourself and proceed with the implementation
- Do NOT use AskUserQuestion or similar tools that require user input

────────────────────────────────────────────────────────────────────────────────
`

// WriteCombined writes the iteration instructions plus the resolved
// prompt to a temp file and returns its path. The caller removes the
// file when the run ends.
func WriteCombined(r *Resolved) (string, error) {
	combined := IterationInstructions + "\n" + r.Content

	f, err := os.CreateTemp("", "hydra-prompt-*.md")
	if err != nil {
		return "", fmt.Errorf("create temp prompt file: %w", err)
	}

	if _, err := f.WriteString(combined); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write combined prompt: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close combined prompt: %w", err)
	}

	return f.Name(), nil
}
