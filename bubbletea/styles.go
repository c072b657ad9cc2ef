package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	deepseek "github.com/hunjixin/deepseek-api"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	UserMsg   lipgloss.Style
	Reasoning lipgloss.Style
	System    lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Muted     lipgloss.Style
	Accent    lipgloss.Style
	Focused   lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t deepseek.Theme) Styles {
	return Styles{
		UserMsg:   lipgloss.NewStyle().Foreground(ansiColor(t.UserMsg)).Bold(true),
		Reasoning: lipgloss.NewStyle().Foreground(ansiColor(t.Reasoning)).Faint(true),
		System:    lipgloss.NewStyle().Foreground(ansiColor(t.System)).Bold(true),
		Error:     lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Success:   lipgloss.NewStyle().Foreground(ansiColor(t.Success)),
		Muted:     lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Accent:    lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
		Focused:   lipgloss.NewStyle().Foreground(ansiColor(t.Accent)),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
