package prompt

import (
	"fmt"
	"strings"

	"github.com/dev-namespace/hydra/pkg/tmpl"
)

// argData is the template context available to command arguments.
type argData struct {
	PromptPath string
}

// BuildArgs renders templated agent arguments and ensures the prompt path
// is passed to the agent. Arguments may reference {{ .PromptPath }}; when
// no argument templates it in, the path is appended as the final argument.
func BuildArgs(args []string, promptPath string) ([]string, error) {
	data := argData{PromptPath: promptPath}

	out := make([]string, 0, len(args)+1)
	templated := false
	for _, arg := range args {
		if !strings.Contains(arg, "{{") {
			out = append(out, arg)
			continue
		}

		rendered, err := tmpl.Render(arg, data)
		if err != nil {
			return nil, fmt.Errorf("render command arg %q: %w", arg, err)
		}
		templated = true
		out = append(out, rendered)
	}

	if !templated {
		out = append(out, promptPath)
	}

	return out, nil
}
