package bubbletea

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	deepseek "github.com/hunjixin/deepseek-api"
	"github.com/hunjixin/deepseek-api/sse"
)

var _ MessageBlock = (*ErrorBlock)(nil)

// ErrorBlock renders a failed turn: API errors by status and kind, broken
// streams by their cause, with a hint when the user can act on it.
type ErrorBlock struct {
	text   string
	hint   string
	styles Styles
}

// NewErrorBlock creates an ErrorBlock.
func NewErrorBlock(err error, styles Styles) *ErrorBlock {
	text, hint := describeError(err)
	return &ErrorBlock{text: text, hint: hint, styles: styles}
}

func describeError(err error) (text, hint string) {
	var apiErr *deepseek.APIError
	var te *sse.TransportError
	switch {
	case errors.As(err, &apiErr):
		text = fmt.Sprintf("API error %d (%s): %s", apiErr.StatusCode, apiErr.Kind, apiErr.Message)
		switch {
		case apiErr.Kind == deepseek.KindUnauthorized:
			hint = "Check DEEPSEEK_API_KEY or api_key in config.toml."
		case apiErr.Kind == deepseek.KindInsufficientFunds:
			hint = "The account is out of balance; see ds balance."
		case apiErr.Retryable():
			hint = "The service may recover; send the message again to retry."
		}
	case errors.As(err, &te):
		text = fmt.Sprintf("Stream interrupted: %v", te.Err)
		hint = "Text received before the interruption was kept."
	case errors.Is(err, deepseek.ErrValidation):
		text = fmt.Sprintf("Invalid request: %v", err)
	default:
		text = fmt.Sprintf("Error: %v", err)
	}
	return text, hint
}

func (b *ErrorBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *ErrorBlock) View(width int) string {
	content := b.styles.Error.Render(b.text)
	if b.hint != "" {
		content += "\n" + b.styles.Muted.Render(b.hint)
	}
	return lipgloss.NewStyle().Width(width).Render(content)
}
