package bubbletea_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	deepseek "github.com/hunjixin/deepseek-api"
	bt "github.com/hunjixin/deepseek-api/bubbletea"
	"github.com/stretchr/testify/require"
)

// initModel creates a model over session and sends a WindowSizeMsg to
// initialize the viewport.
func initModel(t *testing.T, chat bt.ChatFunc, session *deepseek.Session) bt.Model {
	t.Helper()
	return initModelWithSize(t, chat, session, 80, 24)
}

func initModelWithSize(t *testing.T, chat bt.ChatFunc, session *deepseek.Session, width, height int) bt.Model {
	t.Helper()
	if session == nil {
		s := deepseek.NewSession(deepseek.ModelChat)
		session = &s
	}
	m := bt.New(chat, session, deepseek.DefaultTheme())
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

func nopChat(_ context.Context, _ *deepseek.Session, _ deepseek.Model, _ func(string, string)) (deepseek.FinishReason, error) {
	return deepseek.FinishStop, nil
}
