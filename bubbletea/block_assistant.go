package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	deepseek "github.com/hunjixin/deepseek-api"
	"github.com/hunjixin/deepseek-api/markdown"
)

var _ MessageBlock = (*AssistantBlock)(nil)

// AssistantBlock renders a reply as markdown, followed by a note when the
// model stopped for a reason other than finishing its answer.
type AssistantBlock struct {
	raw    strings.Builder
	finish deepseek.FinishReason
	theme  deepseek.Theme
	styles Styles

	// The render is cached for one width and content length.
	cacheWidth int
	cacheLen   int
	cache      string
}

// NewAssistantBlock creates a new block for streaming assistant text.
func NewAssistantBlock(theme deepseek.Theme) *AssistantBlock {
	return &AssistantBlock{theme: theme, styles: NewStyles(theme)}
}

// Append adds a content delta.
func (b *AssistantBlock) Append(text string) {
	b.raw.WriteString(text)
}

// SetFinish records why the model stopped.
func (b *AssistantBlock) SetFinish(r deepseek.FinishReason) {
	b.finish = r
}

// Raw returns the unrendered content.
func (b *AssistantBlock) Raw() string {
	return b.raw.String()
}

func (b *AssistantBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *AssistantBlock) View(width int) string {
	body := b.render(width)
	note := finishNote(b.finish)
	if note == "" {
		return body
	}
	note = b.styles.Muted.Render(note)
	if body == "" {
		return note
	}
	return strings.TrimRight(body, "\n") + "\n" + note
}

func (b *AssistantBlock) render(width int) string {
	src := b.raw.String()
	if width <= 0 || strings.TrimSpace(src) == "" {
		return ""
	}
	if width == b.cacheWidth && len(src) == b.cacheLen {
		return b.cache
	}
	// A fence still streaming is closed so its text renders as code.
	if strings.Count(src, "```")%2 == 1 {
		src += "\n```"
	}
	b.cache = markdown.Render(src, width, b.theme)
	b.cacheWidth, b.cacheLen = width, b.raw.Len()
	return b.cache
}

// finishNote describes a finish reason the user should know about. A natural
// stop and a tool call hand-off need no note.
func finishNote(r deepseek.FinishReason) string {
	switch r {
	case deepseek.FinishLength:
		return "[cut off: max_tokens reached]"
	case deepseek.FinishContentFilter:
		return "[stopped by the content filter]"
	case deepseek.FinishInsufficientSystemResource:
		return "[stopped: the service ran out of resources, try again]"
	default:
		return ""
	}
}

func notableFinish(r deepseek.FinishReason) bool {
	return finishNote(r) != ""
}
