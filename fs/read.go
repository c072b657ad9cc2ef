package fs

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	deepseek "github.com/hunjixin/deepseek-api"
)

const readName = "read_file"

type readArgs struct {
	Path   string `json:"path" jsonschema:"description=File path relative to the project root"`
	Offset int    `json:"offset,omitempty" jsonschema:"description=Line number to start reading from (1-based)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"description=Maximum number of lines to read"`
}

// ReadTool returns the tool definition for the file reading tool.
func ReadTool() (deepseek.Tool, error) {
	return deepseek.NewFunction[readArgs](readName,
		"Read a project file with line numbers, optionally from an offset and up to a limit.")
}

func (e *Executor) read(_ context.Context, arguments string) (deepseek.ToolResult, error) {
	var a readArgs
	if err := json.Unmarshal([]byte(arguments), &a); err != nil {
		return domainError(fmt.Sprintf("invalid arguments: %s", err)), nil
	}
	if a.Path == "" {
		return domainError("path is required"), nil
	}

	f, err := e.root.Open(a.Path)
	if err != nil {
		return domainError(fmt.Sprintf("failed to open file: %s", err)), nil
	}
	defer f.Close()

	var b strings.Builder
	scanner := bufio.NewScanner(f)
	lineNum, linesRead := 0, 0
	for scanner.Scan() {
		lineNum++
		if lineNum < a.Offset {
			continue
		}
		if a.Limit > 0 && linesRead >= a.Limit {
			break
		}
		fmt.Fprintf(&b, "%d\t%s\n", lineNum, scanner.Text())
		linesRead++
	}
	if err := scanner.Err(); err != nil {
		return domainError(fmt.Sprintf("error reading file: %s", err)), nil
	}
	return textResult(b.String()), nil
}
