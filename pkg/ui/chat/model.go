package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type transcriptEntry struct {
	role    string
	content string
}

type turnResultMsg struct {
	replies []string
	err     error
}

type model struct {
	ctx     context.Context
	turnFn  TurnFunc
	botName string

	theme     theme
	input     textinput.Model
	viewport  viewport.Model
	entries   []transcriptEntry
	width     int
	height    int
	isReady   bool
	isLoading bool
	lastErr   string
}

func newModel(ctx context.Context, turnFn TurnFunc, botName string) *model {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "Say something..."
	in.Focus()
	in.CharLimit = 0

	vp := viewport.New(80, 16)

	return &model{
		ctx:      ctx,
		turnFn:   turnFn,
		botName:  botName,
		theme:    defaultTheme(),
		input:    in,
		viewport: vp,
		width:    100,
		height:   24,
	}
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.resizeComponents()
		m.refreshViewport()
		m.isReady = true
		return m, nil
	case turnResultMsg:
		m.isLoading = false
		if typed.err != nil {
			m.lastErr = typed.err.Error()
		} else {
			m.lastErr = ""
			for _, reply := range typed.replies {
				m.entries = append(m.entries, transcriptEntry{role: "bot", content: reply})
			}
		}
		m.refreshViewport()
		return m, nil
	case tea.KeyMsg:
		switch typed.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m *model) submit() tea.Cmd {
	if m.isLoading {
		return nil
	}

	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	if text == "/quit" || text == "/exit" {
		return tea.Quit
	}

	m.input.Reset()
	m.entries = append(m.entries, transcriptEntry{role: "user", content: text})
	m.isLoading = true
	m.refreshViewport()

	return runTurnCmd(m.ctx, m.turnFn, text)
}

func runTurnCmd(ctx context.Context, turnFn TurnFunc, text string) tea.Cmd {
	return func() tea.Msg {
		replies, err := turnFn(ctx, text)
		return turnResultMsg{replies: replies, err: err}
	}
}

func (m *model) resizeComponents() {
	m.viewport.Width = m.width
	height := m.height - 4
	if height < 4 {
		height = 4
	}
	m.viewport.Height = height
	m.input.Width = m.width - 4
}

func (m *model) refreshViewport() {
	var b strings.Builder
	for _, entry := range m.entries {
		tag := m.theme.userTag.Render("you")
		if entry.role == "bot" {
			tag = m.theme.botTag.Render(m.botName)
		}
		fmt.Fprintf(&b, "%s %s\n", tag, entry.content)
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m *model) View() string {
	if !m.isReady {
		return "starting..."
	}

	var sections []string
	sections = append(sections, m.theme.header.Render(m.botName))
	sections = append(sections, m.viewport.View())

	if m.lastErr != "" {
		sections = append(sections, m.theme.errorLine.Render("error: "+m.lastErr))
	}
	if m.isLoading {
		sections = append(sections, m.theme.status.Render("thinking..."))
	}

	sections = append(sections, m.input.View())
	sections = append(sections, m.theme.hint.Render("enter to send · esc to quit"))

	return strings.Join(sections, "\n")
}
