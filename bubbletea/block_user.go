package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*UserMessageBlock)(nil)

// UserMessageBlock renders a user or system message with a role prefix.
type UserMessageBlock struct {
	text   string
	system bool
	styles Styles
}

// NewUserMessageBlock creates a block for a user message.
func NewUserMessageBlock(text string, styles Styles) *UserMessageBlock {
	return &UserMessageBlock{text: text, styles: styles}
}

// NewSystemMessageBlock creates a block for a system message.
func NewSystemMessageBlock(text string, styles Styles) *UserMessageBlock {
	return &UserMessageBlock{text: text, system: true, styles: styles}
}

func (b *UserMessageBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *UserMessageBlock) View(width int) string {
	prefix := b.styles.UserMsg.Render("> ")
	if b.system {
		prefix = b.styles.System.Render("system> ")
	}
	return lipgloss.NewStyle().Width(width).Render(prefix + b.text)
}
