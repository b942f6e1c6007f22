package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

func newHelpModel() help.Model {
	h := help.New()
	h.Styles.ShortKey = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHighlight)).
		Bold(true)
	h.Styles.ShortDesc = Styles.Hint
	h.Styles.ShortSeparator = Styles.Hint
	return h
}

func hintBindings(hints []Hint) []key.Binding {
	out := make([]key.Binding, 0, len(hints))
	for _, h := range hints {
		out = append(out, key.NewBinding(key.WithKeys(h.Key), key.WithHelp(h.Key, h.Desc)))
	}
	return out
}

// RenderHelpBar renders the described single-key bindings on one line.
func RenderHelpBar(reg *KeybindRegistry) string {
	if reg == nil {
		return ""
	}
	return newHelpModel().ShortHelpView(hintBindings(reg.SingleKeyHints()))
}

// RenderKeybindHelp produces the transient help box shown after SPC.
// With a partial sequence in the buffer (e.g. "SPC x") it shows the next level.
func RenderKeybindHelp(h *KeyHandler) string {
	if h == nil {
		return ""
	}
	currentSeq := ""
	if len(h.Buffer) > 0 {
		currentSeq = strings.Join(h.Buffer, " ")
	}
	hints := h.Registry.LeaderHints(currentSeq)
	if len(hints) == 0 {
		return ""
	}
	bindings := append(hintBindings(hints), key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	))

	prefix := "SPC"
	if currentSeq != "" {
		prefix = currentSeq
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccent)).
		Padding(0, 1).
		MarginTop(1)
	return box.Render(Styles.Hint.Render(prefix) + " " + newHelpModel().ShortHelpView(bindings))
}
