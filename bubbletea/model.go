package bubbletea

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	deepseek "github.com/hunjixin/deepseek-api"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the chat TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	chat    ChatFunc
	session *deepseek.Session
	theme   deepseek.Theme
	styles  Styles

	model      deepseek.Model
	systemMode bool

	blocks     []MessageBlock
	blockFocus int // index of the focused reasoning block, -1 for none

	// Blocks receiving deltas of the running turn.
	activeText      *AssistantBlock
	activeReasoning *ReasoningBlock

	running bool
	cancel  context.CancelFunc
	deltaCh chan StreamDeltaMsg
	doneCh  chan ChatDoneMsg
	err     error
	ready   bool
}

// New creates a chat Model over session. The session model selects the
// initial model; Ctrl+R toggles between chat and reasoner.
func New(chat ChatFunc, session *deepseek.Session, theme deepseek.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	model := session.Model
	if model == "" {
		model = deepseek.DefaultModel
	}
	return Model{
		Input:      ti,
		chat:       chat,
		session:    session,
		theme:      theme,
		styles:     NewStyles(theme),
		model:      model,
		blockFocus: -1,
	}
}

// Running returns whether a turn is in progress.
func (m Model) Running() bool { return m.running }

// Err returns the error of the last turn, if any.
func (m Model) Err() error { return m.err }

// ChatModel returns the model used for the next turn.
func (m Model) ChatModel() deepseek.Model { return m.model }

// SystemMode reports whether the next input is sent as a system message.
func (m Model) SystemMode() bool { return m.systemMode }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamDeltaMsg:
		m = m.processDelta(msg)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		if m.deltaCh != nil {
			return m, listenForDelta(m.deltaCh, m.doneCh)
		}
		return m, nil

	case ChatDoneMsg:
		m.running = false
		m.cancel = nil
		m.deltaCh = nil
		m.doneCh = nil
		if msg.Err == nil && notableFinish(msg.Finish) {
			if m.activeText == nil {
				m.activeText = NewAssistantBlock(m.theme)
				m.blocks = append(m.blocks, m.activeText)
			}
			m.activeText.SetFinish(msg.Finish)
		}
		m.activeText = nil
		m.activeReasoning = nil
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.err = msg.Err
			m.blocks = append(m.blocks, NewErrorBlock(msg.Err, m.styles))
		}
		m = m.updateBlockFocus()
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		return m, m.Input.Focus()
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	const inputHeight, statusHeight, borderHeight = 1, 1, 2
	vpHeight := max(msg.Height-inputHeight-statusHeight-borderHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m = m.renderSession()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	m.Input.Width = msg.Width
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submitInput(text)

	case tea.KeyCtrlR:
		if !m.running {
			if m.model == deepseek.ModelReasoner {
				m.model = deepseek.ModelChat
			} else {
				m.model = deepseek.ModelReasoner
			}
		}
		return m, nil

	case tea.KeyCtrlS:
		if !m.running {
			m.systemMode = !m.systemMode
		}
		return m, nil

	case tea.KeyTab:
		if !m.running && m.blockFocus >= 0 {
			block, cmd := m.blocks[m.blockFocus].Update(ToggleMsg{})
			m.blocks[m.blockFocus] = block
			m.Viewport.SetContent(m.renderContent())
			return m, cmd
		}
		return m, nil

	case tea.KeyShiftTab:
		if !m.running {
			m = m.cycleFocusPrev()
			m.Viewport.SetContent(m.renderContent())
		}
		return m, nil
	}

	if m.running {
		return m, nil
	}
	// Character keys go to the input only, so j/k type instead of scrolling.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil

	if m.systemMode {
		m.session.Append(deepseek.SystemMessage(text))
		m.blocks = append(m.blocks, NewSystemMessageBlock(text, m.styles))
	} else {
		m.session.Append(deepseek.UserMessage(text))
		m.blocks = append(m.blocks, NewUserMessageBlock(text, m.styles))
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	m.activeText = nil
	m.activeReasoning = nil

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.deltaCh = make(chan StreamDeltaMsg, 256)
	m.doneCh = make(chan ChatDoneMsg, 1)
	m.running = true
	m.Input.Blur()

	return m, tea.Batch(
		startChat(ctx, m.chat, m.session, m.model, m.deltaCh, m.doneCh),
		listenForDelta(m.deltaCh, m.doneCh),
	)
}

// renderSession creates blocks from the messages already in the session.
func (m Model) renderSession() Model {
	for _, msg := range m.session.Messages {
		switch msg.Role {
		case deepseek.RoleSystem:
			m.blocks = append(m.blocks, NewSystemMessageBlock(msg.Content, m.styles))
		case deepseek.RoleUser:
			m.blocks = append(m.blocks, NewUserMessageBlock(msg.Content, m.styles))
		case deepseek.RoleAssistant:
			if msg.ReasoningContent != "" {
				b := NewReasoningBlock(m.styles)
				b.Append(msg.ReasoningContent)
				m.blocks = append(m.blocks, b)
			}
			if msg.Content != "" {
				b := NewAssistantBlock(m.theme)
				b.Append(msg.Content)
				m.blocks = append(m.blocks, b)
			}
		}
	}
	return m.updateBlockFocus()
}

func (m Model) renderContent() string {
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

// processDelta routes a delta to the active blocks of the running turn,
// creating them on first use.
func (m Model) processDelta(d StreamDeltaMsg) Model {
	if d.Reasoning != "" {
		if m.activeReasoning == nil {
			m.activeReasoning = NewReasoningBlock(m.styles)
			m.blocks = append(m.blocks, m.activeReasoning)
			m = m.updateBlockFocus()
		}
		m.activeReasoning.Append(d.Reasoning)
	}
	if d.Content != "" {
		if m.activeText == nil {
			m.activeText = NewAssistantBlock(m.theme)
			m.blocks = append(m.blocks, m.activeText)
		}
		m.activeText.Append(d.Content)
	}
	return m
}

// updateBlockFocus focuses the last reasoning block.
func (m Model) updateBlockFocus() Model {
	m.blockFocus = -1
	for i := len(m.blocks) - 1; i >= 0; i-- {
		if _, ok := m.blocks[i].(*ReasoningBlock); ok {
			m.blockFocus = i
			break
		}
	}
	return m.markFocus()
}

// cycleFocusPrev moves the focus to the previous reasoning block, wrapping
// around.
func (m Model) cycleFocusPrev() Model {
	n := len(m.blocks)
	start := m.blockFocus - 1
	if start < 0 {
		start = n - 1
	}
	m.blockFocus = -1
	for i := range n {
		idx := (start - i + n) % n
		if _, ok := m.blocks[idx].(*ReasoningBlock); ok {
			m.blockFocus = idx
			break
		}
	}
	return m.markFocus()
}

func (m Model) markFocus() Model {
	for i, block := range m.blocks {
		if rb, ok := block.(*ReasoningBlock); ok {
			rb.SetFocused(i == m.blockFocus)
		}
	}
	return m
}

// startChat runs the turn in a goroutine and signals completion.
func startChat(ctx context.Context, chat ChatFunc, session *deepseek.Session, model deepseek.Model, deltaCh chan<- StreamDeltaMsg, doneCh chan<- ChatDoneMsg) tea.Cmd {
	return func() tea.Msg {
		finish, err := chat(ctx, session, model, func(content, reasoning string) {
			select {
			case deltaCh <- StreamDeltaMsg{Content: content, Reasoning: reasoning}:
			case <-ctx.Done():
			}
		})
		close(deltaCh)
		doneCh <- ChatDoneMsg{Err: err, Finish: finish}
		return nil
	}
}

// listenForDelta waits for the next delta. When the channel closes it reads
// the result from doneCh and returns ChatDoneMsg.
func listenForDelta(ch <-chan StreamDeltaMsg, doneCh <-chan ChatDoneMsg) tea.Cmd {
	return func() tea.Msg {
		d, ok := <-ch
		if !ok {
			return <-doneCh
		}
		return d
	}
}
