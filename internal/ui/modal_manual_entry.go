package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ManualEntryModal asks for a URL, file path or inline HTML to show now.
type ManualEntryModal struct {
	input textinput.Model
}

// Ensure ManualEntryModal implements View.
var _ View = (*ManualEntryModal)(nil)

func NewManualEntryModal() *ManualEntryModal {
	ti := textinput.New()
	ti.Placeholder = "https://example.com, /path/to/file.png or <h1>html</h1>"
	ti.Width = 60
	ti.CharLimit = 0
	ti.Focus()
	return &ManualEntryModal{input: ti}
}

func (m *ManualEntryModal) Init() tea.Cmd {
	return textinput.Blink
}

func (m *ManualEntryModal) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return DismissModalMsg{} }
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			return m, func() tea.Msg { return ManualEntryMsg{Text: text} }
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *ManualEntryModal) View() string {
	s := Styles.Title.Render("Show now") + "\n\n"
	s += m.input.View() + "\n\n"
	s += Styles.Hint.Render("Enter: show and pause  Esc: cancel")
	return Styles.Box.Render(s)
}
