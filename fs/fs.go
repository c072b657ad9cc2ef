// Package fs gives the model read-only access to a project directory: a
// glob tool, a file reading tool, and Collect, which packs matching files
// into a system message that seeds a conversation.
//
// Every path is resolved inside the root directory; paths that escape it are
// rejected.
package fs

import (
	"context"
	"fmt"
	"os"

	deepseek "github.com/hunjixin/deepseek-api"
)

// Compile-time interface check.
var _ deepseek.ToolExecutor = (*Executor)(nil)

// Executor dispatches tool calls to the filesystem tools.
type Executor struct {
	root  *os.Root
	tools []deepseek.Tool
}

// NewExecutor opens dir as the root of all tool paths.
func NewExecutor(dir string) (*Executor, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("fs: %w", err)
	}
	tools := make([]deepseek.Tool, 0, 2)
	for _, mk := range []func() (deepseek.Tool, error){GlobTool, ReadTool} {
		t, err := mk()
		if err != nil {
			root.Close()
			return nil, fmt.Errorf("fs: %w", err)
		}
		tools = append(tools, t)
	}
	return &Executor{root: root, tools: tools}, nil
}

// Close releases the root directory.
func (e *Executor) Close() error {
	return e.root.Close()
}

// Tools returns the tool definitions.
func (e *Executor) Tools() []deepseek.Tool {
	return e.tools
}

// Execute dispatches a tool call by name. Unknown tool names return an error
// result so the model can self-correct.
func (e *Executor) Execute(ctx context.Context, name, arguments string) (deepseek.ToolResult, error) {
	switch name {
	case globName:
		return e.glob(ctx, arguments)
	case readName:
		return e.read(ctx, arguments)
	default:
		return domainError(fmt.Sprintf("unknown tool: %s", name)), nil
	}
}

func domainError(msg string) deepseek.ToolResult {
	return deepseek.ToolResult{Content: msg, IsError: true}
}

func textResult(text string) deepseek.ToolResult {
	return deepseek.ToolResult{Content: text}
}
