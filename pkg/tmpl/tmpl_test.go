package tmpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     any
		want     string
		wantErr  bool
	}{
		{
			name:     "plain text",
			template: "no templating here",
			data:     nil,
			want:     "no templating here",
		},
		{
			name:     "field substitution",
			template: "--prompt-file={{ .PromptPath }}",
			data:     struct{ PromptPath string }{"/tmp/prompt.md"},
			want:     "--prompt-file=/tmp/prompt.md",
		},
		{
			name:     "shell quoting",
			template: "{{ shq .PromptPath }}",
			data:     struct{ PromptPath string }{"/tmp/it's here.md"},
			want:     `'/tmp/it'\''s here.md'`,
		},
		{
			name:     "undefined key",
			template: "{{ .Missing }}",
			data:     map[string]string{},
			wantErr:  true,
		},
		{
			name:     "invalid template",
			template: "{{ .Unclosed",
			data:     nil,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.template, tt.data)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, "''", shellQuote(""))
	assert.Equal(t, "'plain'", shellQuote("plain"))
	assert.Equal(t, `'a'\''b'`, shellQuote("a'b"))
}
