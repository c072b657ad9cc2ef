package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dsjson "github.com/hunjixin/deepseek-api/json"
)

// fakeAPI serves canned DeepSeek responses and records chat request bodies.
type fakeAPI struct {
	t *testing.T

	mu       sync.Mutex
	paths    []string
	bodies   []map[string]any
	replies  [][]string // SSE data payloads per chat call; the last one repeats
	fimReply string
}

func newFakeAPI(t *testing.T, replies ...[]string) (*fakeAPI, string) {
	t.Helper()
	f := &fakeAPI{t: t, replies: replies}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv.URL
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/models":
		writeJSON(w, `{"object":"list","data":[{"id":"deepseek-chat","object":"model","owned_by":"deepseek"},{"id":"deepseek-reasoner","object":"model","owned_by":"deepseek"}]}`)
		return
	case "/user/balance":
		writeJSON(w, `{"is_available":true,"balance_infos":[{"currency":"CNY","total_balance":"110.00","granted_balance":"10.00","topped_up_balance":"100.00"}]}`)
		return
	}

	var body map[string]any
	assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
	f.mu.Lock()
	n := len(f.bodies)
	f.paths = append(f.paths, r.URL.Path)
	f.bodies = append(f.bodies, body)
	f.mu.Unlock()

	if r.URL.Path == "/beta/completions" {
		if body["stream"] == true {
			writeSSE(w, fmt.Sprintf(`{"choices":[{"index":0,"text":%q}]}`, f.fimReply))
			return
		}
		writeJSON(w, fmt.Sprintf(`{"id":"f1","object":"text_completion","choices":[{"index":0,"text":%q,"finish_reason":"stop"}]}`, f.fimReply))
		return
	}

	reply := f.replies[min(n, len(f.replies)-1)]
	if body["stream"] == true {
		writeSSE(w, reply...)
		return
	}
	var content strings.Builder
	for _, data := range reply {
		var chunk struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
		}
		assert.NoError(f.t, json.Unmarshal([]byte(data), &chunk))
		for _, c := range chunk.Choices {
			content.WriteString(c.Delta.Content)
		}
	}
	writeJSON(w, fmt.Sprintf(`{"id":"c1","object":"chat.completion","model":"deepseek-chat","choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}],"usage":{"prompt_tokens":5,"completion_tokens":2,"total_tokens":7}}`, content.String()))
}

func (f *fakeAPI) request(i int) (string, map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Greater(f.t, len(f.bodies), i)
	return f.paths[i], f.bodies[i]
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bodies)
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, body)
}

func writeSSE(w http.ResponseWriter, payloads ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	for _, p := range payloads {
		fmt.Fprintf(w, "data: %s\n\n", p)
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
}

// textReply splits content into one chunk per part.
func textReply(parts ...string) []string {
	out := make([]string, 0, len(parts)+1)
	for _, p := range parts {
		out = append(out, fmt.Sprintf(`{"id":"c1","object":"chat.completion.chunk","model":"deepseek-chat","choices":[{"index":0,"delta":{"content":%q}}]}`, p))
	}
	return append(out, `{"id":"c1","object":"chat.completion.chunk","model":"deepseek-chat","choices":[{"index":0,"delta":{},"finish_reason":"stop"}],"usage":{"prompt_tokens":5,"completion_tokens":2,"total_tokens":7}}`)
}

// messages returns the role and content of each message in a request body.
func messages(t *testing.T, body map[string]any) [][2]string {
	t.Helper()
	raw, ok := body["messages"].([]any)
	require.True(t, ok)
	out := make([][2]string, 0, len(raw))
	for _, m := range raw {
		msg := m.(map[string]any)
		content, _ := msg["content"].(string)
		out = append(out, [2]string{msg["role"].(string), content})
	}
	return out
}

func runDS(t *testing.T, baseURL, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append(args,
		"--api-key", "sk-test",
		"--base-url", baseURL,
		"--config-dir", t.TempDir(),
		"--max-retries", "0",
	))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestModels(t *testing.T) {
	t.Parallel()
	_, url := newFakeAPI(t, textReply("unused"))

	out, _, err := runDS(t, url, "", "models")
	require.NoError(t, err)
	assert.Contains(t, out, "MODEL")
	assert.Contains(t, out, "deepseek-chat")
	assert.Contains(t, out, "deepseek-reasoner")
	assert.Contains(t, out, "deepseek")
}

func TestBalance(t *testing.T) {
	t.Parallel()
	_, url := newFakeAPI(t, textReply("unused"))

	out, _, err := runDS(t, url, "", "balance")
	require.NoError(t, err)
	assert.Contains(t, out, "Balance sufficient for API calls")
	assert.Contains(t, out, "CNY")
	assert.Contains(t, out, "110.00")
	assert.Contains(t, out, "100.00")
}

func TestComplete(t *testing.T) {
	t.Parallel()
	api, url := newFakeAPI(t, textReply("Hel", "lo"))

	out, _, err := runDS(t, url, "", "complete", "--system", "be brief", "say", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello\n", out)

	path, body := api.request(0)
	assert.Equal(t, "/chat/completions", path)
	assert.Equal(t, "deepseek-chat", body["model"])
	assert.Nil(t, body["temperature"])
	assert.Equal(t, [][2]string{{"system", "be brief"}, {"user", "say hi"}}, messages(t, body))
}

func TestComplete_Stream(t *testing.T) {
	t.Parallel()
	api, url := newFakeAPI(t, textReply("Hel", "lo"))

	out, _, err := runDS(t, url, "", "complete", "--stream", "--temperature", "0.2", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello\n", out)

	_, body := api.request(0)
	assert.Equal(t, true, body["stream"])
	assert.InDelta(t, 0.2, body["temperature"], 1e-9)
}

func TestComplete_PromptFromStdin(t *testing.T) {
	t.Parallel()
	api, url := newFakeAPI(t, textReply("ok"))

	_, _, err := runDS(t, url, "  from stdin\n", "complete")
	require.NoError(t, err)

	_, body := api.request(0)
	assert.Equal(t, [][2]string{{"user", "from stdin"}}, messages(t, body))
}

func TestComplete_Prefix(t *testing.T) {
	t.Parallel()
	api, url := newFakeAPI(t, textReply("fmt.Println()"))

	out, _, err := runDS(t, url, "", "complete", "--prefix", "```go\n", "hello")
	require.NoError(t, err)
	assert.Equal(t, "```go\nfmt.Println()\n", out)

	path, body := api.request(0)
	assert.Equal(t, "/beta/chat/completions", path)
	raw := body["messages"].([]any)
	last := raw[len(raw)-1].(map[string]any)
	assert.Equal(t, "assistant", last["role"])
	assert.Equal(t, true, last["prefix"])
}

func TestComplete_PrefixWithTools(t *testing.T) {
	t.Parallel()
	api, url := newFakeAPI(t, textReply("unused"))

	_, _, err := runDS(t, url, "", "complete", "--tools", "--prefix", "x", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--prefix cannot be combined with --tools")
	assert.Zero(t, api.calls())
}

func TestComplete_Session(t *testing.T) {
	t.Parallel()
	api, url := newFakeAPI(t, textReply("first"), textReply("second"))
	path := filepath.Join(t.TempDir(), "s.json")

	_, _, err := runDS(t, url, "", "complete", "--session", path, "one")
	require.NoError(t, err)
	_, _, err = runDS(t, url, "", "complete", "--session", path, "two")
	require.NoError(t, err)

	_, body := api.request(1)
	assert.Equal(t, [][2]string{
		{"user", "one"},
		{"assistant", "first"},
		{"user", "two"},
	}, messages(t, body))

	s, err := dsjson.Load(path)
	require.NoError(t, err)
	require.Len(t, s.Messages, 4)
	assert.Equal(t, "second", s.Messages[3].Content)
	assert.Equal(t, 14, s.Usage.TotalTokens)
}

func TestComplete_Context(t *testing.T) {
	t.Parallel()
	api, url := newFakeAPI(t, textReply("ok"))
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n"), 0o600))

	_, _, err := runDS(t, url, "", "complete", "--root", root, "--context", "*.go", "explain")
	require.NoError(t, err)

	_, body := api.request(0)
	msgs := messages(t, body)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0][1], "main.go")
	assert.Contains(t, msgs[0][1], "package main")
	assert.True(t, strings.HasSuffix(msgs[0][1], "explain"))
}

func TestComplete_Tools(t *testing.T) {
	t.Parallel()
	toolCall := []string{
		`{"id":"c1","object":"chat.completion.chunk","model":"deepseek-chat","choices":[{"index":0,"delta":{"role":"assistant","tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"read_file","arguments":"{\"path\":\"notes.txt\"}"}}]}}]}`,
		`{"id":"c1","object":"chat.completion.chunk","model":"deepseek-chat","choices":[{"index":0,"delta":{},"finish_reason":"tool_calls"}]}`,
	}
	api, url := newFakeAPI(t, toolCall, textReply("The note says hello."))
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hello\n"), 0o600))

	out, _, err := runDS(t, url, "", "complete", "--tools", "--root", root, "what does the note say?")
	require.NoError(t, err)
	assert.Equal(t, "The note says hello.\n", out)

	_, first := api.request(0)
	assert.NotEmpty(t, first["tools"])

	_, second := api.request(1)
	msgs := messages(t, second)
	require.Len(t, msgs, 3)
	assert.Equal(t, "tool", msgs[2][0])
	assert.Contains(t, msgs[2][1], "1\thello")
}

func TestFIM(t *testing.T) {
	t.Parallel()
	api, url := newFakeAPI(t, textReply("unused"))
	api.fimReply = "    return 1"

	out, _, err := runDS(t, url, "", "fim", "--suffix", "}", "func one() int {")
	require.NoError(t, err)
	assert.Equal(t, "    return 1\n", out)

	path, body := api.request(0)
	assert.Equal(t, "/beta/completions", path)
	assert.Equal(t, "deepseek-chat", body["model"])
	assert.Equal(t, "func one() int {", body["prompt"])
	assert.Equal(t, "}", body["suffix"])
}

func TestFIM_Stream(t *testing.T) {
	t.Parallel()
	api, url := newFakeAPI(t, textReply("unused"))
	api.fimReply = "world"

	out, _, err := runDS(t, url, "", "fim", "--stream", "hello")
	require.NoError(t, err)
	assert.Equal(t, "world\n", out)
}

func TestChat_Plain(t *testing.T) {
	t.Parallel()
	api, url := newFakeAPI(t, textReply("Hi", " there"), textReply("Bye"))
	sessionPath := filepath.Join(t.TempDir(), "chat.json")

	out, _, err := runDS(t, url, "hello\n\n/system be polite\nagain\n/exit\nignored\n", "chat", "--session", sessionPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Hi there")
	assert.Contains(t, out, "Bye")
	assert.Equal(t, 2, api.calls())

	_, body := api.request(1)
	assert.Equal(t, [][2]string{
		{"user", "hello"},
		{"assistant", "Hi there"},
		{"system", "be polite"},
		{"user", "again"},
	}, messages(t, body))

	s, err := dsjson.Load(sessionPath)
	require.NoError(t, err)
	assert.Len(t, s.Messages, 5)
}

func TestChat_SessionDir(t *testing.T) {
	t.Parallel()
	_, url := newFakeAPI(t, textReply("ok"))
	dir := t.TempDir()

	_, stderr, err := runDS(t, url, "hi\n", "chat", "--session-dir", dir)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".json"))
	assert.Contains(t, stderr, "Session saved to")
}

func TestMissingAPIKey(t *testing.T) {
	t.Setenv("DS_API_KEY", "")
	t.Setenv("DEEPSEEK_API_KEY", "")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"models", "--config-dir", t.TempDir()})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestReadPrompt(t *testing.T) {
	t.Parallel()

	got, err := readPrompt(strings.NewReader("ignored"), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "a b", got)

	got, err = readPrompt(strings.NewReader(" piped \n"), []string{"-"})
	require.NoError(t, err)
	assert.Equal(t, "piped", got)

	_, err = readPrompt(strings.NewReader(" \n"), nil)
	assert.Error(t, err)
}
