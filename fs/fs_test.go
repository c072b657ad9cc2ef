package fs_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hunjixin/deepseek-api/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newExecutor(t *testing.T, dir string) *fs.Executor {
	t.Helper()
	e, err := fs.NewExecutor(dir)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func args(t *testing.T, v map[string]any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestGlobTool(t *testing.T) {
	t.Parallel()

	t.Run("tool definition", func(t *testing.T) {
		t.Parallel()
		tool, err := fs.GlobTool()
		require.NoError(t, err)
		assert.Equal(t, "glob", tool.Function.Name)
		assert.NotEmpty(t, tool.Function.Description)

		var schema map[string]any
		require.NoError(t, json.Unmarshal(tool.Function.Parameters, &schema))
		props, ok := schema["properties"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, props, "pattern")
	})

	t.Run("matches files recursively", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, dir, "a.go", "")
		writeFile(t, dir, "sub/b.go", "")
		writeFile(t, dir, "sub/c.txt", "")
		e := newExecutor(t, dir)

		res, err := e.Execute(context.Background(), "glob", args(t, map[string]any{"pattern": "**/*.go"}))
		require.NoError(t, err)
		require.False(t, res.IsError, res.Content)
		assert.ElementsMatch(t, []string{"a.go", "sub/b.go"}, strings.Split(res.Content, "\n"))
	})

	t.Run("no matches", func(t *testing.T) {
		t.Parallel()
		e := newExecutor(t, t.TempDir())
		res, err := e.Execute(context.Background(), "glob", args(t, map[string]any{"pattern": "*.rs"}))
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.Equal(t, "no matches found", res.Content)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		t.Parallel()
		e := newExecutor(t, t.TempDir())
		res, err := e.Execute(context.Background(), "glob", args(t, map[string]any{"pattern": "[a-"}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})

	t.Run("missing pattern", func(t *testing.T) {
		t.Parallel()
		e := newExecutor(t, t.TempDir())
		res, err := e.Execute(context.Background(), "glob", `{}`)
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})
}

func TestReadTool(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "line1\nline2\nline3\nline4\n")
	e := newExecutor(t, dir)

	t.Run("whole file", func(t *testing.T) {
		t.Parallel()
		res, err := e.Execute(context.Background(), "read_file", args(t, map[string]any{"path": "notes.txt"}))
		require.NoError(t, err)
		require.False(t, res.IsError, res.Content)
		assert.Equal(t, "1\tline1\n2\tline2\n3\tline3\n4\tline4\n", res.Content)
	})

	t.Run("offset and limit", func(t *testing.T) {
		t.Parallel()
		res, err := e.Execute(context.Background(), "read_file", args(t, map[string]any{"path": "notes.txt", "offset": 2, "limit": 2}))
		require.NoError(t, err)
		assert.Equal(t, "2\tline2\n3\tline3\n", res.Content)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		res, err := e.Execute(context.Background(), "read_file", args(t, map[string]any{"path": "nope.txt"}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})

	t.Run("escaping the root is rejected", func(t *testing.T) {
		t.Parallel()
		res, err := e.Execute(context.Background(), "read_file", args(t, map[string]any{"path": "../outside.txt"}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})

	t.Run("unknown tool", func(t *testing.T) {
		t.Parallel()
		res, err := e.Execute(context.Background(), "write_file", `{}`)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Equal(t, "error: unknown tool: write_file", res.Message("call_1").Content)
	})

	t.Run("tools are advertised", func(t *testing.T) {
		t.Parallel()
		var names []string
		for _, tool := range e.Tools() {
			names = append(names, tool.Function.Name)
		}
		assert.Equal(t, []string{"glob", "read_file"}, names)
	})
}

func TestCollect(t *testing.T) {
	t.Parallel()

	t.Run("packs matching files once", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, dir, "main.go", "package main\n")
		writeFile(t, dir, "pkg/util.go", "package pkg")
		writeFile(t, dir, "README.md", "# readme\n")
		writeFile(t, dir, "bin/tool", "\x00\x01binary")

		got, err := fs.Collect(dir, "**/*.go", "main.go", "bin/*")
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(got, `<file path="main.go">`))
		assert.Contains(t, got, "<file path=\"pkg/util.go\">\npackage pkg\n</file>")
		assert.NotContains(t, got, "README")
		assert.NotContains(t, got, "binary")
	})

	t.Run("stops at the size cap", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, dir, "a.txt", strings.Repeat("a", fs.MaxCollectBytes-10))
		writeFile(t, dir, "b.txt", strings.Repeat("b", 100))

		got, err := fs.Collect(dir, "a.txt", "b.txt")
		require.NoError(t, err)
		assert.Contains(t, got, `<file path="a.txt">`)
		assert.NotContains(t, got, `<file path="b.txt">`)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		t.Parallel()
		_, err := fs.Collect(t.TempDir(), "[")
		assert.Error(t, err)
	})

	t.Run("missing root", func(t *testing.T) {
		t.Parallel()
		_, err := fs.Collect(filepath.Join(t.TempDir(), "missing"))
		assert.Error(t, err)
	})
}
