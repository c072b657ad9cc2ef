// Package markdown renders assistant replies to ANSI-styled terminal output
// using goldmark for parsing and lipgloss for styling.
package markdown

import deepseek "github.com/hunjixin/deepseek-api"

// Render parses GitHub-flavored markdown and returns ANSI-styled terminal
// output. Paragraphs and list items are word-wrapped to width. Code blocks
// are rendered at full width without reflow.
func Render(source string, width int, theme deepseek.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	r := newRenderer(theme)
	return r.render([]byte(source), width)
}
