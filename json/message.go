package json

import (
	"fmt"

	deepseek "github.com/hunjixin/deepseek-api"
)

// messageDTO is the persisted form of a Message. Reasoning is kept so a
// resumed conversation can show it, even though it is never sent back.
type messageDTO struct {
	Role       string        `json:"role"`
	Content    string        `json:"content"`
	Name       string        `json:"name,omitempty"`
	Prefix     bool          `json:"prefix,omitempty"`
	Reasoning  string        `json:"reasoning,omitempty"`
	ToolCalls  []toolCallDTO `json:"tool_calls,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
}

type toolCallDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

func marshalMessage(m deepseek.Message) messageDTO {
	dto := messageDTO{
		Role:       string(m.Role),
		Content:    m.Content,
		Name:       m.Name,
		Prefix:     m.Prefix,
		Reasoning:  m.ReasoningContent,
		ToolCallID: m.ToolCallID,
	}
	for _, tc := range m.ToolCalls {
		dto.ToolCalls = append(dto.ToolCalls, toolCallDTO{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return dto
}

func unmarshalMessage(dto messageDTO) (deepseek.Message, error) {
	m := deepseek.Message{
		Role:             deepseek.Role(dto.Role),
		Content:          dto.Content,
		Name:             dto.Name,
		Prefix:           dto.Prefix,
		ReasoningContent: dto.Reasoning,
		ToolCallID:       dto.ToolCallID,
	}
	for _, tc := range dto.ToolCalls {
		m.ToolCalls = append(m.ToolCalls, deepseek.ToolCall{
			ID:       tc.ID,
			Type:     "function",
			Function: deepseek.FunctionCall{Name: tc.Name, Arguments: tc.Arguments},
		})
	}
	if err := deepseek.ValidateMessage(m); err != nil {
		return deepseek.Message{}, fmt.Errorf("invalid message: %w", err)
	}
	return m, nil
}
