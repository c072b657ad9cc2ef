package mock

import (
	"context"

	deepseek "github.com/hunjixin/deepseek-api"
)

// Interface compliance check.
var _ deepseek.ToolExecutor = (*ToolExecutor)(nil)

// ToolExecutor is a test double for deepseek.ToolExecutor.
// Set ExecuteFn before calling Execute. ToolsFn is nil-safe.
type ToolExecutor struct {
	ToolsFn   func() []deepseek.Tool
	ExecuteFn func(ctx context.Context, name, arguments string) (deepseek.ToolResult, error)
}

// Tools delegates to ToolsFn. Returns nil when ToolsFn is not set.
func (e *ToolExecutor) Tools() []deepseek.Tool {
	if e.ToolsFn == nil {
		return nil
	}
	return e.ToolsFn()
}

// Execute delegates to ExecuteFn.
func (e *ToolExecutor) Execute(ctx context.Context, name, arguments string) (deepseek.ToolResult, error) {
	return e.ExecuteFn(ctx, name, arguments)
}
