package bubbletea

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rivo/uniseg"
)

var _ MessageBlock = (*ReasoningBlock)(nil)

// ReasoningBlock renders the reasoner's chain of thought. It starts
// collapsed and toggles on ToggleMsg.
type ReasoningBlock struct {
	content   strings.Builder
	collapsed bool
	focused   bool
	styles    Styles
}

// NewReasoningBlock creates a collapsed ReasoningBlock.
func NewReasoningBlock(styles Styles) *ReasoningBlock {
	return &ReasoningBlock{collapsed: true, styles: styles}
}

// Append adds a reasoning delta.
func (b *ReasoningBlock) Append(text string) {
	b.content.WriteString(text)
}

// Collapsed reports whether the body is hidden.
func (b *ReasoningBlock) Collapsed() bool { return b.collapsed }

// SetFocused marks the block as the target of the toggle key.
func (b *ReasoningBlock) SetFocused(focused bool) { b.focused = focused }

func (b *ReasoningBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	if _, ok := msg.(ToggleMsg); ok {
		b.collapsed = !b.collapsed
	}
	return b, nil
}

func (b *ReasoningBlock) View(width int) string {
	wrap := lipgloss.NewStyle().Width(width)

	indicator := "▶"
	if !b.collapsed {
		indicator = "▼"
	}
	// Grapheme count so CJK and emoji reasoning reads as the user sees it.
	n := uniseg.GraphemeClusterCount(b.content.String())
	label := fmt.Sprintf("%s Reasoning (%d chars)", indicator, n)
	headerStyle := b.styles.Reasoning
	if b.focused {
		headerStyle = b.styles.Focused
	}
	header := headerStyle.Render(wrap.Render(label))
	if b.collapsed {
		return header
	}
	body := b.styles.Reasoning.Render(wrap.Render(b.content.String()))
	return header + "\n" + body
}
