package agent_test

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	deepseek "github.com/hunjixin/deepseek-api"
	"github.com/hunjixin/deepseek-api/agent"
	"github.com/hunjixin/deepseek-api/mock"
	"github.com/hunjixin/deepseek-api/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textChunk(content string) deepseek.ChatCompletionChunk {
	return deepseek.ChatCompletionChunk{
		Choices: []deepseek.ChunkChoice{{Delta: deepseek.Delta{Content: content}}},
	}
}

func reasoningChunk(reasoning string) deepseek.ChatCompletionChunk {
	return deepseek.ChatCompletionChunk{
		Choices: []deepseek.ChunkChoice{{Delta: deepseek.Delta{ReasoningContent: reasoning}}},
	}
}

func toolChunk(index int, id, name, args string) deepseek.ChatCompletionChunk {
	return deepseek.ChatCompletionChunk{
		Choices: []deepseek.ChunkChoice{{Delta: deepseek.Delta{ToolCalls: []deepseek.ToolCall{{
			Index:    index,
			ID:       id,
			Function: deepseek.FunctionCall{Name: name, Arguments: args},
		}}}}},
	}
}

func finishChunk(reason deepseek.FinishReason, usage *deepseek.Usage) deepseek.ChatCompletionChunk {
	return deepseek.ChatCompletionChunk{
		Choices: []deepseek.ChunkChoice{{FinishReason: reason}},
		Usage:   usage,
	}
}

// scriptedService answers successive ChatStream calls with the given turns
// and records the requests it saw.
func scriptedService(t *testing.T, turns ...[]deepseek.ChatCompletionChunk) (*mock.Service, *[]deepseek.ChatRequest) {
	t.Helper()
	var reqs []deepseek.ChatRequest
	svc := &mock.Service{
		ChatStreamFn: func(_ context.Context, req deepseek.ChatRequest) (deepseek.Stream[deepseek.ChatCompletionChunk], error) {
			i := len(reqs)
			reqs = append(reqs, req)
			if i >= len(turns) {
				t.Fatalf("unexpected request %d", i+1)
			}
			return mock.StreamOf(turns[i]...), nil
		},
	}
	return svc, &reqs
}

func TestLoop_Run(t *testing.T) {
	t.Parallel()

	t.Run("text response ends turn", func(t *testing.T) {
		t.Parallel()

		svc, reqs := scriptedService(t, []deepseek.ChatCompletionChunk{
			textChunk("hel"),
			textChunk("lo"),
			finishChunk(deepseek.FinishStop, &deepseek.Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5}),
		})
		executor := &mock.ToolExecutor{
			ExecuteFn: func(_ context.Context, _, _ string) (deepseek.ToolResult, error) {
				t.Fatal("executor should not be called")
				return deepseek.ToolResult{}, nil
			},
		}

		session := deepseek.NewSession(deepseek.ModelChat)
		session.Append(deepseek.UserMessage("hi"))
		err := agent.New(svc, executor).Run(context.Background(), &session)
		require.NoError(t, err)

		require.Len(t, session.Messages, 2)
		assert.Equal(t, deepseek.AssistantMessage("hello"), session.Messages[1])
		assert.Equal(t, 5, session.Usage.TotalTokens)
		require.Len(t, *reqs, 1)
		req := (*reqs)[0]
		assert.True(t, req.Stream)
		assert.True(t, req.IncludeUsage)
		assert.Equal(t, deepseek.ModelChat, req.Model)
	})

	t.Run("single tool call", func(t *testing.T) {
		t.Parallel()

		svc, reqs := scriptedService(t,
			[]deepseek.ChatCompletionChunk{
				toolChunk(0, "call_1", "glob", `{"pat`),
				toolChunk(0, "", "", `tern":"*.go"}`),
				finishChunk(deepseek.FinishToolCalls, nil),
			},
			[]deepseek.ChatCompletionChunk{
				textChunk("found main.go"),
				finishChunk(deepseek.FinishStop, nil),
			},
		)
		tools := []deepseek.Tool{{Type: "function", Function: deepseek.Function{Name: "glob"}}}
		var gotName, gotArgs string
		executor := &mock.ToolExecutor{
			ToolsFn: func() []deepseek.Tool { return tools },
			ExecuteFn: func(_ context.Context, name, args string) (deepseek.ToolResult, error) {
				gotName, gotArgs = name, args
				return deepseek.ToolResult{Content: "main.go"}, nil
			},
		}

		session := deepseek.NewSession(deepseek.ModelChat)
		session.Append(deepseek.UserMessage("list go files"))
		err := agent.New(svc, executor).Run(context.Background(), &session)
		require.NoError(t, err)

		assert.Equal(t, "glob", gotName)
		assert.JSONEq(t, `{"pattern":"*.go"}`, gotArgs)

		require.Len(t, session.Messages, 4)
		call := session.Messages[1]
		assert.Equal(t, deepseek.RoleAssistant, call.Role)
		require.Len(t, call.ToolCalls, 1)
		assert.Equal(t, "call_1", call.ToolCalls[0].ID)
		assert.Equal(t, deepseek.ToolMessage("call_1", "main.go"), session.Messages[2])
		assert.Equal(t, "found main.go", session.Messages[3].Content)

		require.Len(t, *reqs, 2)
		assert.Equal(t, tools, (*reqs)[0].Tools)
		assert.Len(t, (*reqs)[1].Messages, 3)
	})

	t.Run("multiple tool calls in single response", func(t *testing.T) {
		t.Parallel()

		svc, _ := scriptedService(t,
			[]deepseek.ChatCompletionChunk{
				toolChunk(0, "a", "read_file", `{"path":"a"}`),
				toolChunk(1, "b", "read_file", `{"path":"b"}`),
				finishChunk(deepseek.FinishToolCalls, nil),
			},
			[]deepseek.ChatCompletionChunk{textChunk("done")},
		)
		var calls atomic.Int32
		executor := &mock.ToolExecutor{
			ExecuteFn: func(_ context.Context, _, args string) (deepseek.ToolResult, error) {
				calls.Add(1)
				return deepseek.ToolResult{Content: args}, nil
			},
		}

		session := deepseek.NewSession(deepseek.ModelChat)
		err := agent.New(svc, executor).Run(context.Background(), &session)
		require.NoError(t, err)

		assert.Equal(t, int32(2), calls.Load())
		require.Len(t, session.Messages, 4)
		assert.Equal(t, "a", session.Messages[1].ToolCallID)
		assert.Equal(t, "b", session.Messages[2].ToolCallID)
	})

	t.Run("tool infrastructure error becomes error result", func(t *testing.T) {
		t.Parallel()

		svc, _ := scriptedService(t,
			[]deepseek.ChatCompletionChunk{toolChunk(0, "c", "glob", `{}`)},
			[]deepseek.ChatCompletionChunk{textChunk("sorry")},
		)
		executor := &mock.ToolExecutor{
			ExecuteFn: func(_ context.Context, _, _ string) (deepseek.ToolResult, error) {
				return deepseek.ToolResult{}, errors.New("disk on fire")
			},
		}

		session := deepseek.NewSession(deepseek.ModelChat)
		err := agent.New(svc, executor).Run(context.Background(), &session)
		require.NoError(t, err)

		assert.Equal(t, deepseek.ToolMessage("c", "error: glob: disk on fire"), session.Messages[1])
	})

	t.Run("tool domain error fed back to model", func(t *testing.T) {
		t.Parallel()

		svc, _ := scriptedService(t,
			[]deepseek.ChatCompletionChunk{toolChunk(0, "c", "read_file", `{"path":"nope"}`)},
			[]deepseek.ChatCompletionChunk{textChunk("no such file")},
		)
		var handled []deepseek.ToolResult
		executor := &mock.ToolExecutor{
			ExecuteFn: func(_ context.Context, _, _ string) (deepseek.ToolResult, error) {
				return deepseek.ToolResult{Content: "file not found", IsError: true}, nil
			},
		}

		session := deepseek.NewSession(deepseek.ModelChat)
		err := agent.New(svc, executor).Run(context.Background(), &session,
			agent.WithToolHandler(func(_ deepseek.ToolCall, r deepseek.ToolResult) {
				handled = append(handled, r)
			}))
		require.NoError(t, err)

		assert.Equal(t, "error: file not found", session.Messages[1].Content)
		assert.Equal(t, []deepseek.ToolResult{{Content: "file not found", IsError: true}}, handled)
	})

	t.Run("stream error preserves partial message", func(t *testing.T) {
		t.Parallel()

		transport := &sse.TransportError{Err: io.ErrUnexpectedEOF}
		calls := 0
		svc := &mock.Service{
			ChatStreamFn: func(_ context.Context, _ deepseek.ChatRequest) (deepseek.Stream[deepseek.ChatCompletionChunk], error) {
				return &mock.Stream[deepseek.ChatCompletionChunk]{
					NextFn: func() (deepseek.ChatCompletionChunk, error) {
						calls++
						if calls == 1 {
							return textChunk("partial"), nil
						}
						return deepseek.ChatCompletionChunk{}, transport
					},
				}, nil
			},
		}

		session := deepseek.NewSession(deepseek.ModelChat)
		err := agent.New(svc, nil).Run(context.Background(), &session)
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)

		require.Len(t, session.Messages, 1)
		assert.Equal(t, "partial", session.Messages[0].Content)
	})

	t.Run("recoverable stream errors are skipped", func(t *testing.T) {
		t.Parallel()

		steps := []struct {
			chunk deepseek.ChatCompletionChunk
			err   error
		}{
			{chunk: textChunk("a")},
			{err: &sse.FormatError{Line: "garbage"}},
			{err: &sse.SyntaxError{Payload: "{", Err: io.ErrUnexpectedEOF}},
			{chunk: textChunk("b")},
			{err: io.EOF},
		}
		i := 0
		svc := &mock.Service{
			ChatStreamFn: func(_ context.Context, _ deepseek.ChatRequest) (deepseek.Stream[deepseek.ChatCompletionChunk], error) {
				return &mock.Stream[deepseek.ChatCompletionChunk]{
					NextFn: func() (deepseek.ChatCompletionChunk, error) {
						s := steps[i]
						i++
						return s.chunk, s.err
					},
				}, nil
			},
		}

		var skipped []error
		session := deepseek.NewSession(deepseek.ModelChat)
		err := agent.New(svc, nil).Run(context.Background(), &session,
			agent.WithSkippedHandler(func(err error) { skipped = append(skipped, err) }))
		require.NoError(t, err)

		assert.Len(t, skipped, 2)
		assert.Equal(t, "ab", session.Messages[0].Content)
	})

	t.Run("service error", func(t *testing.T) {
		t.Parallel()

		apiErr := &deepseek.APIError{StatusCode: 401, Kind: deepseek.KindUnauthorized}
		svc := &mock.Service{
			ChatStreamFn: func(_ context.Context, _ deepseek.ChatRequest) (deepseek.Stream[deepseek.ChatCompletionChunk], error) {
				return nil, apiErr
			},
		}

		session := deepseek.NewSession(deepseek.ModelChat)
		err := agent.New(svc, nil).Run(context.Background(), &session)
		assert.ErrorIs(t, err, apiErr)
		assert.Empty(t, session.Messages)
	})

	t.Run("context cancellation", func(t *testing.T) {
		t.Parallel()

		svc := &mock.Service{
			ChatStreamFn: func(_ context.Context, _ deepseek.ChatRequest) (deepseek.Stream[deepseek.ChatCompletionChunk], error) {
				t.Fatal("service should not be called")
				return nil, nil
			},
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		session := deepseek.NewSession(deepseek.ModelChat)
		err := agent.New(svc, nil).Run(ctx, &session)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("event handler receives deltas", func(t *testing.T) {
		t.Parallel()

		svc, _ := scriptedService(t, []deepseek.ChatCompletionChunk{
			reasoningChunk("think"),
			textChunk("say"),
			finishChunk(deepseek.FinishStop, nil),
		})

		type delta struct{ content, reasoning string }
		var got []delta
		session := deepseek.NewSession(deepseek.ModelReasoner)
		err := agent.New(svc, nil).Run(context.Background(), &session,
			agent.WithEventHandler(func(c, r string) { got = append(got, delta{c, r}) }))
		require.NoError(t, err)

		assert.Equal(t, []delta{{"", "think"}, {"say", ""}}, got)
		assert.Equal(t, "think", session.Messages[0].ReasoningContent)
	})

	t.Run("run options shape the request", func(t *testing.T) {
		t.Parallel()

		svc, reqs := scriptedService(t, []deepseek.ChatCompletionChunk{textChunk("ok")})
		session := deepseek.NewSession(deepseek.ModelChat)
		err := agent.New(svc, nil).Run(context.Background(), &session,
			agent.WithModel(deepseek.ModelReasoner),
			agent.WithMaxTokens(64),
			agent.WithTemperature(0.5),
		)
		require.NoError(t, err)

		req := (*reqs)[0]
		assert.Equal(t, deepseek.ModelReasoner, req.Model)
		assert.Equal(t, 64, req.MaxTokens)
		require.NotNil(t, req.Temperature)
		assert.InDelta(t, 0.5, *req.Temperature, 1e-9)
		assert.Nil(t, req.Tools)
	})

	t.Run("turn limit", func(t *testing.T) {
		t.Parallel()

		turn := []deepseek.ChatCompletionChunk{toolChunk(0, "x", "glob", `{}`)}
		svc, reqs := scriptedService(t, turn, turn)
		executor := &mock.ToolExecutor{
			ExecuteFn: func(_ context.Context, _, _ string) (deepseek.ToolResult, error) {
				return deepseek.ToolResult{Content: "again"}, nil
			},
		}

		session := deepseek.NewSession(deepseek.ModelChat)
		err := agent.New(svc, executor).Run(context.Background(), &session, agent.WithMaxTurns(2))
		assert.ErrorIs(t, err, agent.ErrTooManyTurns)
		assert.Len(t, *reqs, 2)
	})
}
