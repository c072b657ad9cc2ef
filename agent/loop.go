// Package agent runs the tool-calling conversation loop between a
// deepseek.Service and a deepseek.ToolExecutor.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"

	deepseek "github.com/hunjixin/deepseek-api"
	"github.com/hunjixin/deepseek-api/sse"
)

// DefaultMaxTurns bounds the number of model calls in a single Run.
const DefaultMaxTurns = 16

// ErrTooManyTurns is returned when the model keeps requesting tools after
// the turn limit.
var ErrTooManyTurns = errors.New("agent: too many turns")

// Loop orchestrates the conversation between a Service and a ToolExecutor.
type Loop struct {
	service  deepseek.Service
	executor deepseek.ToolExecutor
}

// New creates a new Loop. executor may be nil, in which case no tools are
// offered and Run makes a single call.
func New(service deepseek.Service, executor deepseek.ToolExecutor) *Loop {
	return &Loop{service: service, executor: executor}
}

// RunOption configures a single Run invocation.
type RunOption func(*runConfig)

type runConfig struct {
	onDelta     func(content, reasoning string)
	onToolCall  func(call deepseek.ToolCall, result deepseek.ToolResult)
	onSkipped   func(error)
	model       deepseek.Model
	maxTokens   int
	temperature *float64
	maxTurns    int
}

// WithEventHandler sets a callback that receives the content and reasoning
// deltas of each streamed chunk.
func WithEventHandler(h func(content, reasoning string)) RunOption {
	return func(c *runConfig) {
		c.onDelta = h
	}
}

// WithToolHandler sets a callback invoked after each tool execution.
func WithToolHandler(h func(call deepseek.ToolCall, result deepseek.ToolResult)) RunOption {
	return func(c *runConfig) {
		c.onToolCall = h
	}
}

// WithSkippedHandler sets a callback that receives malformed stream events
// the loop skipped over.
func WithSkippedHandler(h func(error)) RunOption {
	return func(c *runConfig) {
		c.onSkipped = h
	}
}

// WithModel overrides the session model for this run.
func WithModel(model deepseek.Model) RunOption {
	return func(c *runConfig) {
		c.model = model
	}
}

// WithMaxTokens sets max_tokens on every request. Zero keeps the service
// default.
func WithMaxTokens(n int) RunOption {
	return func(c *runConfig) {
		c.maxTokens = n
	}
}

// WithTemperature sets the sampling temperature on every request.
func WithTemperature(t float64) RunOption {
	return func(c *runConfig) {
		c.temperature = &t
	}
}

// WithMaxTurns overrides DefaultMaxTurns.
func WithMaxTurns(n int) RunOption {
	return func(c *runConfig) {
		c.maxTurns = n
	}
}

// Run sends the session's messages to the service, streams the response,
// executes any tool calls, and repeats until the assistant stops requesting
// tools. Every message produced is appended to the session, including the
// partial assistant message of a stream that failed midway.
func (l *Loop) Run(ctx context.Context, session *deepseek.Session, opts ...RunOption) error {
	cfg := runConfig{maxTurns: DefaultMaxTurns}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.model == "" {
		cfg.model = session.Model
	}
	for range cfg.maxTurns {
		cont, err := l.turn(ctx, session, &cfg)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	return ErrTooManyTurns
}

// turn executes a single model call. It returns true when tool calls were
// answered and the loop should continue.
func (l *Loop) turn(ctx context.Context, session *deepseek.Session, cfg *runConfig) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	req := deepseek.ChatRequest{
		Model:        cfg.model,
		Messages:     session.Messages,
		MaxTokens:    cfg.maxTokens,
		Temperature:  cfg.temperature,
		Stream:       true,
		IncludeUsage: true,
	}
	if l.executor != nil {
		req.Tools = l.executor.Tools()
	}

	stream, err := l.service.ChatStream(ctx, req)
	if err != nil {
		return false, err
	}
	defer stream.Close()

	var acc deepseek.Accumulator
	var streamErr error
	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if sse.IsRecoverable(err) {
				if cfg.onSkipped != nil {
					cfg.onSkipped(err)
				}
				continue
			}
			streamErr = err
			break
		}
		content, reasoning := acc.Add(chunk)
		if cfg.onDelta != nil && (content != "" || reasoning != "") {
			cfg.onDelta(content, reasoning)
		}
	}

	msg := acc.Message()
	if streamErr != nil {
		if msg.Content != "" || msg.ReasoningContent != "" {
			msg.ToolCalls = nil
			session.Append(msg)
		}
		return false, streamErr
	}
	session.Append(msg)
	session.Usage = session.Usage.Add(acc.Usage())

	if len(msg.ToolCalls) == 0 || l.executor == nil {
		return false, nil
	}

	results := make([]deepseek.Message, 0, len(msg.ToolCalls))
	for _, call := range msg.ToolCalls {
		result, err := l.executor.Execute(ctx, call.Function.Name, call.Function.Arguments)
		if err != nil {
			result = deepseek.ToolResult{
				Content: fmt.Sprintf("%s: %v", call.Function.Name, err),
				IsError: true,
			}
		}
		if cfg.onToolCall != nil {
			cfg.onToolCall(call, result)
		}
		results = append(results, result.Message(call.ID))
	}
	session.Append(results...)

	return true, nil
}
