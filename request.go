package deepseek

import (
	"encoding/json"
	"fmt"
)

// ResponseFormat selects between free text and JSON object output.
type ResponseFormat string

const (
	ResponseFormatText ResponseFormat = "text"
	ResponseFormatJSON ResponseFormat = "json_object"
)

// StreamOptions configures streaming responses.
type StreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// Stop holds up to 16 stop sequences. A single sequence is sent as a bare
// string.
type Stop []string

// MarshalJSON encodes a one-element Stop as a string.
func (s Stop) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]string(s))
}

// UnmarshalJSON accepts a string or an array of strings.
func (s *Stop) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = Stop{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	*s = many
	return nil
}

// ChatRequest carries the parameters of a chat completion. Zero/nil fields
// leave the service defaults in place.
type ChatRequest struct {
	Model            Model
	Messages         []Message
	MaxTokens        int // 0 = service default
	ResponseFormat   ResponseFormat
	Stop             Stop
	Stream           bool
	IncludeUsage     bool // only meaningful when Stream is set
	Tools            []Tool
	ToolChoice       ToolChoice
	Temperature      *float64
	TopP             *float64
	PresencePenalty  *float64
	FrequencyPenalty *float64
	Logprobs         bool
	TopLogprobs      *int
}

// HasPrefix reports whether the last message is an assistant prefix, which
// must be sent to the beta endpoint.
func (r ChatRequest) HasPrefix() bool {
	n := len(r.Messages)
	return n > 0 && r.Messages[n-1].Prefix
}

type chatRequestJSON struct {
	Model            Model           `json:"model"`
	Messages         []Message       `json:"messages"`
	MaxTokens        int             `json:"max_tokens,omitempty"`
	ResponseFormat   *responseFormat `json:"response_format,omitempty"`
	Stop             Stop            `json:"stop,omitempty"`
	Stream           bool            `json:"stream"`
	StreamOptions    *StreamOptions  `json:"stream_options,omitempty"`
	Tools            []Tool          `json:"tools,omitempty"`
	ToolChoice       *ToolChoice     `json:"tool_choice,omitempty"`
	Temperature      *float64        `json:"temperature,omitempty"`
	TopP             *float64        `json:"top_p,omitempty"`
	PresencePenalty  *float64        `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64        `json:"frequency_penalty,omitempty"`
	Logprobs         bool            `json:"logprobs,omitempty"`
	TopLogprobs      *int            `json:"top_logprobs,omitempty"`
}

type responseFormat struct {
	Type ResponseFormat `json:"type"`
}

// MarshalJSON produces the wire body. Reasoning content of earlier assistant
// turns is dropped because the service rejects it as input, and sampling
// parameters are omitted for the reasoner model, which does not accept them.
func (r ChatRequest) MarshalJSON() ([]byte, error) {
	model := r.Model
	if model == "" {
		model = DefaultModel
	}
	msgs := make([]Message, len(r.Messages))
	for i, m := range r.Messages {
		m.ReasoningContent = ""
		msgs[i] = m
	}
	body := chatRequestJSON{
		Model:     model,
		Messages:  msgs,
		MaxTokens: r.MaxTokens,
		Stop:      r.Stop,
		Stream:    r.Stream,
		Tools:     r.Tools,
	}
	if r.ResponseFormat != "" {
		body.ResponseFormat = &responseFormat{Type: r.ResponseFormat}
	}
	if r.Stream && r.IncludeUsage {
		body.StreamOptions = &StreamOptions{IncludeUsage: true}
	}
	if !r.ToolChoice.IsZero() {
		tc := r.ToolChoice
		body.ToolChoice = &tc
	}
	if !model.Reasoning() {
		body.Temperature = r.Temperature
		body.TopP = r.TopP
		body.PresencePenalty = r.PresencePenalty
		body.FrequencyPenalty = r.FrequencyPenalty
		body.Logprobs = r.Logprobs
		body.TopLogprobs = r.TopLogprobs
	}
	return json.Marshal(body)
}

// FIMRequest carries the parameters of a fill-in-the-middle completion.
type FIMRequest struct {
	Model            Model
	Prompt           string
	Suffix           string
	Echo             bool
	MaxTokens        int
	Stop             Stop
	Stream           bool
	IncludeUsage     bool
	Temperature      *float64
	TopP             *float64
	PresencePenalty  *float64
	FrequencyPenalty *float64
	Logprobs         *int // number of most likely tokens to return, at most 20
}

type fimRequestJSON struct {
	Model            Model          `json:"model"`
	Prompt           string         `json:"prompt"`
	Suffix           string         `json:"suffix,omitempty"`
	Echo             bool           `json:"echo,omitempty"`
	MaxTokens        int            `json:"max_tokens,omitempty"`
	Stop             Stop           `json:"stop,omitempty"`
	Stream           bool           `json:"stream"`
	StreamOptions    *StreamOptions `json:"stream_options,omitempty"`
	Temperature      *float64       `json:"temperature,omitempty"`
	TopP             *float64       `json:"top_p,omitempty"`
	PresencePenalty  *float64       `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64       `json:"frequency_penalty,omitempty"`
	Logprobs         *int           `json:"logprobs,omitempty"`
}

// MarshalJSON produces the wire body.
func (r FIMRequest) MarshalJSON() ([]byte, error) {
	model := r.Model
	if model == "" {
		model = DefaultModel
	}
	body := fimRequestJSON{
		Model:            model,
		Prompt:           r.Prompt,
		Suffix:           r.Suffix,
		Echo:             r.Echo,
		MaxTokens:        r.MaxTokens,
		Stop:             r.Stop,
		Stream:           r.Stream,
		Temperature:      r.Temperature,
		TopP:             r.TopP,
		PresencePenalty:  r.PresencePenalty,
		FrequencyPenalty: r.FrequencyPenalty,
		Logprobs:         r.Logprobs,
	}
	if r.Stream && r.IncludeUsage {
		body.StreamOptions = &StreamOptions{IncludeUsage: true}
	}
	return json.Marshal(body)
}
