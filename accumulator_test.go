package deepseek_test

import (
	"testing"

	deepseek "github.com/hunjixin/deepseek-api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunk(d deepseek.Delta, finish deepseek.FinishReason) deepseek.ChatCompletionChunk {
	return deepseek.ChatCompletionChunk{
		Model:   "deepseek-reasoner",
		Choices: []deepseek.ChunkChoice{{Delta: d, FinishReason: finish}},
	}
}

func TestAccumulator(t *testing.T) {
	t.Parallel()

	var acc deepseek.Accumulator
	c, r := acc.Add(chunk(deepseek.Delta{Role: deepseek.RoleAssistant, ReasoningContent: "think"}, ""))
	assert.Empty(t, c)
	assert.Equal(t, "think", r)

	c, _ = acc.Add(chunk(deepseek.Delta{Content: "Hel"}, ""))
	assert.Equal(t, "Hel", c)
	acc.Add(chunk(deepseek.Delta{Content: "lo"}, deepseek.FinishStop))

	last := deepseek.ChatCompletionChunk{Usage: &deepseek.Usage{TotalTokens: 9}}
	acc.Add(last)

	msg := acc.Message()
	assert.Equal(t, deepseek.RoleAssistant, msg.Role)
	assert.Equal(t, "Hello", msg.Content)
	assert.Equal(t, "think", msg.ReasoningContent)
	assert.Equal(t, deepseek.FinishStop, acc.FinishReason())
	assert.Equal(t, 9, acc.Usage().TotalTokens)
	assert.Equal(t, "deepseek-reasoner", acc.Model())
}

func TestAccumulator_ToolCalls(t *testing.T) {
	t.Parallel()

	var acc deepseek.Accumulator
	acc.Add(chunk(deepseek.Delta{ToolCalls: []deepseek.ToolCall{
		{Index: 0, ID: "call_1", Type: "function", Function: deepseek.FunctionCall{Name: "get_weather", Arguments: `{"ci`}},
	}}, ""))
	acc.Add(chunk(deepseek.Delta{ToolCalls: []deepseek.ToolCall{
		{Index: 0, Function: deepseek.FunctionCall{Arguments: `ty":"Paris"}`}},
		{Index: 1, ID: "call_2", Type: "function", Function: deepseek.FunctionCall{Name: "now", Arguments: `{}`}},
	}}, deepseek.FinishToolCalls))

	msg := acc.Message()
	require.Len(t, msg.ToolCalls, 2)
	assert.Equal(t, "call_1", msg.ToolCalls[0].ID)
	assert.Equal(t, "get_weather", msg.ToolCalls[0].Function.Name)
	assert.Equal(t, `{"city":"Paris"}`, msg.ToolCalls[0].Function.Arguments)
	assert.Equal(t, "now", msg.ToolCalls[1].Function.Name)
	assert.Equal(t, deepseek.FinishToolCalls, acc.FinishReason())
}

func TestAccumulator_ToolCallIndexOutOfRange(t *testing.T) {
	t.Parallel()

	var acc deepseek.Accumulator
	assert.NotPanics(t, func() {
		acc.Add(chunk(deepseek.Delta{ToolCalls: []deepseek.ToolCall{
			{Index: -1, ID: "bad", Function: deepseek.FunctionCall{Name: "x"}},
			{Index: deepseek.MaxToolCalls, ID: "huge", Function: deepseek.FunctionCall{Name: "y"}},
			{Index: 0, ID: "call_1", Function: deepseek.FunctionCall{Name: "ok", Arguments: "{}"}},
		}}, ""))
	})

	msg := acc.Message()
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "call_1", msg.ToolCalls[0].ID)
}
