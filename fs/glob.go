package fs

import (
	"context"
	"encoding/json"
	"fmt"
	iofs "io/fs"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	deepseek "github.com/hunjixin/deepseek-api"
)

const globName = "glob"

type globArgs struct {
	Pattern string `json:"pattern" jsonschema:"description=Glob pattern relative to the project root (e.g. **/*.go)"`
}

// GlobTool returns the tool definition for the glob tool.
func GlobTool() (deepseek.Tool, error) {
	return deepseek.NewFunction[globArgs](globName,
		"Find files in the project matching a glob pattern. Supports ** for recursive matching.")
}

func (e *Executor) glob(_ context.Context, arguments string) (deepseek.ToolResult, error) {
	var a globArgs
	if err := json.Unmarshal([]byte(arguments), &a); err != nil {
		return domainError(fmt.Sprintf("invalid arguments: %s", err)), nil
	}
	if a.Pattern == "" {
		return domainError("pattern is required"), nil
	}
	matches, err := match(e.root.FS(), a.Pattern)
	if err != nil {
		return domainError(err.Error()), nil
	}
	if len(matches) == 0 {
		return textResult("no matches found"), nil
	}
	return textResult(strings.Join(matches, "\n")), nil
}

// match returns the regular files of fsys matching pattern, in walk order.
func match(fsys iofs.FS, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}
	var matches []string
	err := doublestar.GlobWalk(fsys, pattern, func(path string, d iofs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		matches = append(matches, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error matching pattern: %w", err)
	}
	return matches, nil
}
