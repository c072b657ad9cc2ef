// Package bubbletea provides the Bubble Tea chat TUI of the ds command.
package bubbletea

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	deepseek "github.com/hunjixin/deepseek-api"
	"github.com/hunjixin/deepseek-api/sse"
)

// ChatFunc runs one assistant turn over the session using model. onDelta is
// called for each content or reasoning delta. The function blocks until the
// turn completes or ctx is cancelled, appends the reply to the session and
// returns why the model stopped.
type ChatFunc func(ctx context.Context, session *deepseek.Session, model deepseek.Model, onDelta func(content, reasoning string)) (deepseek.FinishReason, error)

// OpenFunc opens a non-blocking chat completion stream.
type OpenFunc func(ctx context.Context, req deepseek.ChatRequest) (*sse.AsyncStream[deepseek.ChatCompletionChunk], error)

// AsyncChat returns a ChatFunc that drives the non-blocking stream returned
// by open. Malformed events are skipped. A partial reply is kept in the
// session when the stream fails or is cancelled midway.
func AsyncChat(open OpenFunc, maxTokens int) ChatFunc {
	return func(ctx context.Context, session *deepseek.Session, model deepseek.Model, onDelta func(content, reasoning string)) (deepseek.FinishReason, error) {
		stream, err := open(ctx, deepseek.ChatRequest{
			Model:        model,
			Messages:     session.Messages,
			MaxTokens:    maxTokens,
			Stream:       true,
			IncludeUsage: true,
		})
		if err != nil {
			return "", err
		}
		defer stream.Close()

		var acc deepseek.Accumulator
		var streamErr error
		for {
			chunk, err := stream.Next(ctx)
			if err == io.EOF {
				break
			}
			if err != nil {
				if sse.IsRecoverable(err) {
					continue
				}
				streamErr = err
				break
			}
			if c, r := acc.Add(chunk); c != "" || r != "" {
				onDelta(c, r)
			}
		}

		msg := acc.Message()
		if streamErr != nil {
			if msg.Content != "" {
				session.Append(msg)
			}
			return acc.FinishReason(), streamErr
		}
		session.Append(msg)
		session.Usage = session.Usage.Add(acc.Usage())
		return acc.FinishReason(), nil
	}
}

// Run creates and runs the Bubble Tea program. It blocks until the program
// exits. Cancelling ctx quits the program.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// StreamDeltaMsg carries one streamed delta to the model.
type StreamDeltaMsg struct {
	Content   string
	Reasoning string
}

// ChatDoneMsg signals that the running turn has completed.
type ChatDoneMsg struct {
	Err    error
	Finish deepseek.FinishReason
}
