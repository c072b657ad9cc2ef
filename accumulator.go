package deepseek

import "strings"

// MaxToolCalls bounds the tool call index accepted from a stream. Fragments
// outside [0, MaxToolCalls) are dropped.
const MaxToolCalls = 128

// Accumulator folds the chunks of a streamed chat completion (choice 0) into
// the assistant message they describe.
type Accumulator struct {
	content   strings.Builder
	reasoning strings.Builder
	calls     []ToolCall
	finish    FinishReason
	usage     Usage
	model     string
}

// Add folds one chunk and returns the content and reasoning deltas it
// carried, for callers that render incrementally.
func (a *Accumulator) Add(c ChatCompletionChunk) (content, reasoning string) {
	if c.Model != "" {
		a.model = c.Model
	}
	if c.Usage != nil {
		a.usage = *c.Usage
	}
	for _, ch := range c.Choices {
		if ch.Index != 0 {
			continue
		}
		a.content.WriteString(ch.Delta.Content)
		a.reasoning.WriteString(ch.Delta.ReasoningContent)
		for _, tc := range ch.Delta.ToolCalls {
			a.addToolCall(tc)
		}
		if ch.FinishReason != "" {
			a.finish = ch.FinishReason
		}
		content += ch.Delta.Content
		reasoning += ch.Delta.ReasoningContent
	}
	return content, reasoning
}

// Tool call fragments are keyed by index; the first fragment carries the ID
// and name, later ones append to the arguments.
func (a *Accumulator) addToolCall(tc ToolCall) {
	if tc.Index < 0 || tc.Index >= MaxToolCalls {
		return
	}
	for len(a.calls) <= tc.Index {
		a.calls = append(a.calls, ToolCall{Type: "function"})
	}
	cur := &a.calls[tc.Index]
	if tc.ID != "" {
		cur.ID = tc.ID
	}
	if tc.Type != "" {
		cur.Type = tc.Type
	}
	if tc.Function.Name != "" {
		cur.Function.Name = tc.Function.Name
	}
	cur.Function.Arguments += tc.Function.Arguments
}

// Message returns the assistant message assembled so far.
func (a *Accumulator) Message() Message {
	msg := Message{
		Role:             RoleAssistant,
		Content:          a.content.String(),
		ReasoningContent: a.reasoning.String(),
	}
	if len(a.calls) > 0 {
		msg.ToolCalls = make([]ToolCall, len(a.calls))
		for i, c := range a.calls {
			c.Index = 0
			msg.ToolCalls[i] = c
		}
	}
	return msg
}

// FinishReason returns the finish reason of choice 0, empty while streaming.
func (a *Accumulator) FinishReason() FinishReason { return a.finish }

// Usage returns the usage carried by the last chunk, if any.
func (a *Accumulator) Usage() Usage { return a.usage }

// Model returns the model name reported by the service.
func (a *Accumulator) Model() string { return a.model }
