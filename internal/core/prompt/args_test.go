package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArgs_AppendsPromptPath(t *testing.T) {
	args, err := BuildArgs([]string{"--dangerously-skip-permissions"}, "/tmp/p.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"--dangerously-skip-permissions", "/tmp/p.md"}, args)
}

func TestBuildArgs_NoArgs(t *testing.T) {
	args, err := BuildArgs(nil, "/tmp/p.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"/tmp/p.md"}, args)
}

func TestBuildArgs_TemplatedPath(t *testing.T) {
	args, err := BuildArgs([]string{"--file={{ .PromptPath }}", "--yes"}, "/tmp/p.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"--file=/tmp/p.md", "--yes"}, args)
}

func TestBuildArgs_TemplatedPathNotAppendedTwice(t *testing.T) {
	args, err := BuildArgs([]string{"{{ .PromptPath }}"}, "/tmp/p.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"/tmp/p.md"}, args)
}

func TestBuildArgs_BadTemplate(t *testing.T) {
	_, err := BuildArgs([]string{"{{ .Nope }}"}, "/tmp/p.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render command arg")
}
