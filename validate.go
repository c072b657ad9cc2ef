package deepseek

import "fmt"

// Validate checks the documented parameter ranges of a chat request.
func (r ChatRequest) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("messages must not be empty: %w", ErrValidation)
	}
	for i, m := range r.Messages {
		if err := ValidateMessage(m); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
		if m.Prefix && i != len(r.Messages)-1 {
			return fmt.Errorf("message %d: prefix message must be last: %w", i, ErrValidation)
		}
	}
	if err := validateMaxTokens(r.MaxTokens); err != nil {
		return err
	}
	if len(r.Stop) > 16 {
		return fmt.Errorf("stop accepts at most 16 sequences, got %d: %w", len(r.Stop), ErrValidation)
	}
	switch r.ResponseFormat {
	case "", ResponseFormatText, ResponseFormatJSON:
	default:
		return fmt.Errorf("unknown response format %q: %w", r.ResponseFormat, ErrValidation)
	}
	if r.TopLogprobs != nil {
		if *r.TopLogprobs < 0 || *r.TopLogprobs > 20 {
			return fmt.Errorf("top_logprobs must be in [0, 20], got %d: %w", *r.TopLogprobs, ErrValidation)
		}
		if !r.Logprobs {
			return fmt.Errorf("top_logprobs requires logprobs: %w", ErrValidation)
		}
	}
	for _, t := range r.Tools {
		if t.Function.Name == "" {
			return fmt.Errorf("tool function name must not be empty: %w", ErrValidation)
		}
	}
	return validateSampling(r.Temperature, r.TopP, r.PresencePenalty, r.FrequencyPenalty)
}

// Validate checks the documented parameter ranges of a FIM request.
func (r FIMRequest) Validate() error {
	if r.Prompt == "" {
		return fmt.Errorf("prompt must not be empty: %w", ErrValidation)
	}
	if err := validateMaxTokens(r.MaxTokens); err != nil {
		return err
	}
	if r.Logprobs != nil && (*r.Logprobs < 0 || *r.Logprobs > 20) {
		return fmt.Errorf("logprobs must be in [0, 20], got %d: %w", *r.Logprobs, ErrValidation)
	}
	return validateSampling(r.Temperature, r.TopP, r.PresencePenalty, r.FrequencyPenalty)
}

// ValidateMessage checks that a message's fields are valid for its role.
func ValidateMessage(m Message) error {
	switch m.Role {
	case RoleSystem, RoleUser:
		if m.Prefix || len(m.ToolCalls) > 0 || m.ToolCallID != "" {
			return fmt.Errorf("%s message carries assistant or tool fields: %w", m.Role, ErrValidation)
		}
	case RoleAssistant:
		if m.ToolCallID != "" {
			return fmt.Errorf("assistant message carries tool_call_id: %w", ErrValidation)
		}
	case RoleTool:
		if m.ToolCallID == "" {
			return fmt.Errorf("tool message requires tool_call_id: %w", ErrValidation)
		}
	default:
		return fmt.Errorf("unknown role %q: %w", m.Role, ErrValidation)
	}
	return nil
}

func validateMaxTokens(n int) error {
	if n < 0 || n > 8192 {
		return fmt.Errorf("max_tokens must be in [1, 8192], got %d: %w", n, ErrValidation)
	}
	return nil
}

func validateSampling(temperature, topP, presence, frequency *float64) error {
	if temperature != nil && (*temperature < 0 || *temperature > 2) {
		return fmt.Errorf("temperature must be in [0, 2], got %g: %w", *temperature, ErrValidation)
	}
	if topP != nil && (*topP < 0 || *topP > 1) {
		return fmt.Errorf("top_p must be in [0, 1], got %g: %w", *topP, ErrValidation)
	}
	if presence != nil && (*presence < -2 || *presence > 2) {
		return fmt.Errorf("presence_penalty must be in [-2, 2], got %g: %w", *presence, ErrValidation)
	}
	if frequency != nil && (*frequency < -2 || *frequency > 2) {
		return fmt.Errorf("frequency_penalty must be in [-2, 2], got %g: %w", *frequency, ErrValidation)
	}
	return nil
}
