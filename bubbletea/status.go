package bubbletea

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "…"

// fitStatus lays out left and right on one line of the given display width.
// The left side is truncated first; right is kept whole while it fits.
func fitStatus(left, right string, width int) (string, string, string) {
	if width <= 0 {
		return "", "", ""
	}
	rw := runewidth.StringWidth(right)
	if rw >= width {
		return "", "", runewidth.Truncate(right, width, ellipsis)
	}
	room := width - rw - 1
	if room < 2 {
		left = ""
	} else {
		left = runewidth.Truncate(left, room, ellipsis)
	}
	gap := width - rw - runewidth.StringWidth(left)
	return left, strings.Repeat(" ", gap), right
}

func (m Model) statusLine() string {
	var left string
	switch {
	case m.err != nil:
		left = fmt.Sprintf("Error: %v", m.err)
	case m.running:
		left = "Generating... Ctrl+C to cancel"
	default:
		left = "Enter send, Tab reasoning, Ctrl+R model, Ctrl+S system, Ctrl+C quit"
	}

	right := string(m.model)
	if m.systemMode {
		right += " [system]"
	}
	u := m.session.Usage
	right += fmt.Sprintf(" %d tok ¥%.4f", u.TotalTokens, m.model.Cost(u))

	l, gap, r := fitStatus(left, right, m.Viewport.Width)
	leftStyle := m.styles.Muted
	if m.err != nil {
		leftStyle = m.styles.Error
	}
	rightStyle := m.styles.Muted
	if m.systemMode {
		rightStyle = m.styles.System
	}
	return leftStyle.Render(l) + gap + rightStyle.Render(r)
}
