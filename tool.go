package deepseek

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Tool is a function the model may call.
type Tool struct {
	Type     string   `json:"type"` // always "function"
	Function Function `json:"function"`
}

// Function describes a callable function. Parameters is a JSON Schema
// object.
type Function struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
}

// NewFunction returns a Tool whose parameter schema is reflected from T.
// Field names follow T's json tags; `jsonschema` tags add descriptions and
// constraints.
func NewFunction[T any](name, description string) (Tool, error) {
	r := &jsonschema.Reflector{
		DoNotReference:            true,
		ExpandedStruct:            true,
		AllowAdditionalProperties: false,
	}
	var zero T
	schema := r.Reflect(&zero)
	schema.Version = ""
	params, err := json.Marshal(schema)
	if err != nil {
		return Tool{}, fmt.Errorf("reflect parameters of %s: %w", name, err)
	}
	return Tool{
		Type: "function",
		Function: Function{
			Name:        name,
			Description: description,
			Parameters:  params,
		},
	}, nil
}

// ToolCall is a function call requested by the model.
type ToolCall struct {
	Index    int          `json:"index,omitempty"`
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type,omitempty"`
	Function FunctionCall `json:"function"`
}

// FunctionCall holds the name and JSON-encoded arguments of a call. During
// streaming, Arguments arrives in fragments that must be concatenated.
type FunctionCall struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ToolChoice controls whether and which tool the model calls. The zero value
// leaves the choice to the service.
type ToolChoice struct {
	Mode     string // "none", "auto" or "required"; ignored when Function is set
	Function string // forces a call to the named function
}

var (
	ToolChoiceNone     = ToolChoice{Mode: "none"}
	ToolChoiceAuto     = ToolChoice{Mode: "auto"}
	ToolChoiceRequired = ToolChoice{Mode: "required"}
)

// ToolChoiceFunction forces a call to the named function.
func ToolChoiceFunction(name string) ToolChoice {
	return ToolChoice{Function: name}
}

// IsZero reports whether the choice is unset.
func (c ToolChoice) IsZero() bool {
	return c.Mode == "" && c.Function == ""
}

// MarshalJSON encodes the choice either as a bare mode string or as a named
// function object.
func (c ToolChoice) MarshalJSON() ([]byte, error) {
	if c.Function != "" {
		type fn struct {
			Name string `json:"name"`
		}
		return json.Marshal(struct {
			Type     string `json:"type"`
			Function fn     `json:"function"`
		}{Type: "function", Function: fn{Name: c.Function}})
	}
	return json.Marshal(c.Mode)
}

// UnmarshalJSON accepts both encodings produced by MarshalJSON.
func (c *ToolChoice) UnmarshalJSON(data []byte) error {
	var mode string
	if err := json.Unmarshal(data, &mode); err == nil {
		*c = ToolChoice{Mode: mode}
		return nil
	}
	var named struct {
		Function struct {
			Name string `json:"name"`
		} `json:"function"`
	}
	if err := json.Unmarshal(data, &named); err != nil {
		return fmt.Errorf("tool_choice: %w", err)
	}
	*c = ToolChoice{Function: named.Function.Name}
	return nil
}

// ToolResult is the outcome of executing a tool call. IsError marks results
// that describe a failure the model can react to, such as a missing file.
type ToolResult struct {
	Content string
	IsError bool
}

// ToolExecutor runs the tools it advertises.
type ToolExecutor interface {
	Tools() []Tool
	Execute(ctx context.Context, name, arguments string) (ToolResult, error)
}

// Message converts the result into the tool message answering call.
func (r ToolResult) Message(callID string) Message {
	content := r.Content
	if r.IsError {
		content = "error: " + content
	}
	return ToolMessage(callID, content)
}
