package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ReadPlan returns the plan file content. A missing file is an error so
// a typoed path fails loudly instead of running without a plan.
func ReadPlan(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("plan file not found: %s", path)
		}
		return "", fmt.Errorf("read plan file %s: %w", path, err)
	}
	return string(data), nil
}

// FindLatestPlan searches dir recursively for markdown documents and
// returns the most recently modified one. An empty string means no plan
// exists; that is not an error.
func FindLatestPlan(dir string) (string, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(dir, "**", "*.md"))
	if err != nil {
		return "", fmt.Errorf("glob plans in %s: %w", dir, err)
	}
	return latestOf(matches), nil
}

// ResolvePlanArg turns a PLAN argument into a concrete file path. A
// pattern (anything with glob metacharacters) resolves to its most
// recently modified match; a plain path is returned as is.
func ResolvePlanArg(arg string) (string, error) {
	if !strings.ContainsAny(arg, "*?[{") {
		return arg, nil
	}

	matches, err := doublestar.FilepathGlob(arg)
	if err != nil {
		return "", fmt.Errorf("glob plan pattern %q: %w", arg, err)
	}
	latest := latestOf(matches)
	if latest == "" {
		return "", fmt.Errorf("no plan matches pattern %q", arg)
	}
	return latest, nil
}

func latestOf(matches []string) string {
	var latest string
	var latestMod int64
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		if mod := info.ModTime().UnixNano(); latest == "" || mod > latestMod {
			latest = m
			latestMod = mod
		}
	}
	return latest
}
