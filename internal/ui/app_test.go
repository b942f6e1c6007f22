package ui

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"dbviewer/internal/content"
	"dbviewer/internal/cycler"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceSource struct {
	items []string
	err   error
}

func (s *sliceSource) Load() ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append([]string(nil), s.items...), nil
}

type nullSurface struct {
	shown []string
}

func (s *nullSurface) ShowRemote(url string) error      { s.shown = append(s.shown, url); return nil }
func (s *nullSurface) ShowLocalFile(path string) error  { s.shown = append(s.shown, path); return nil }
func (s *nullSurface) ShowInline(markup string) error   { s.shown = append(s.shown, markup); return nil }
func (s *nullSurface) ShowPlaceholder(msg string) error { s.shown = append(s.shown, msg); return nil }
func (s *nullSurface) SetPaused(bool) error             { return nil }

func noFiles(string) (os.FileInfo, error) { return nil, os.ErrNotExist }

type consoleHarness struct {
	model   tea.Model
	console *ConsoleModel
	surface *nullSurface
	board   *cycler.Board
}

func newConsoleHarness(t *testing.T, items ...string) *consoleHarness {
	t.Helper()
	src := &sliceSource{items: items}
	surface := &nullSurface{}
	sched := cycler.NewTimerScheduler(func(cycler.Token) {})
	c := cycler.New(cycler.Options{
		Source:     src,
		Surface:    surface,
		Scheduler:  sched,
		Classifier: content.Classifier{Stat: noFiles},
		Delay:      time.Hour,
	})
	t.Cleanup(c.Stop)
	board := &cycler.Board{}
	m := NewConsoleModel(context.Background(), Options{Cycler: c, Board: board, Source: src})
	m.Classifier = content.Classifier{Stat: noFiles}
	h := &consoleHarness{model: m.AsTeaModel(), console: m, surface: surface, board: board}
	h.send(startMsg{})
	return h
}

// send delivers msg and returns the resulting command.
func (h *consoleHarness) send(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	h.model, cmd = h.model.Update(msg)
	return cmd
}

// press sends a key and feeds the message its command produces back in.
func (h *consoleHarness) press(k string) {
	cmd := h.send(keyMsg(k))
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case CommandMsg, openManualEntryMsg, toggleHelpMsg, ManualEntryMsg, DismissModalMsg:
		h.send(msg)
	}
}

func TestConsole_StartShowsFirstItemAndPublishes(t *testing.T) {
	h := newConsoleHarness(t, "http://a", "http://b")

	assert.Equal(t, []string{"http://a"}, h.surface.shown)
	s, title, updated := h.board.Load()
	assert.Equal(t, cycler.PhaseCycling, s.Phase)
	assert.Equal(t, "http://a", s.Current.Raw)
	assert.Equal(t, LoadingTitle, title)
	assert.False(t, updated.IsZero())
}

func TestConsole_ArrowKeysNavigate(t *testing.T) {
	h := newConsoleHarness(t, "http://a", "http://b", "http://c")

	h.press("right")
	h.press("l")
	h.press("left")

	assert.Equal(t, []string{"http://a", "http://b", "http://c", "http://b"}, h.surface.shown)
}

func TestConsole_PauseToggle(t *testing.T) {
	h := newConsoleHarness(t, "http://a")

	h.press("down")
	s, _, _ := h.board.Load()
	assert.Equal(t, cycler.PhasePaused, s.Phase)

	h.press("p")
	s, _, _ = h.board.Load()
	assert.Equal(t, cycler.PhaseCycling, s.Phase)
}

func TestConsole_ManualEntryShowsAndHolds(t *testing.T) {
	h := newConsoleHarness(t, "http://a")

	h.press("up")
	require.Equal(t, 1, h.console.Overlays.Len())
	assert.Contains(t, h.model.View(), "Show now")

	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("<h1>hi</h1>")})
	h.press("enter")

	assert.Equal(t, 0, h.console.Overlays.Len())
	assert.Equal(t, "<h1>hi</h1>", h.surface.shown[len(h.surface.shown)-1])
	s, _, _ := h.board.Load()
	assert.Equal(t, cycler.PhaseOverride, s.Phase)
	assert.Equal(t, content.KindInline, s.Current.Kind)
}

func TestConsole_ManualEntryEscCancels(t *testing.T) {
	h := newConsoleHarness(t, "http://a")

	h.press("o")
	require.Equal(t, 1, h.console.Overlays.Len())
	h.press("esc")

	assert.Equal(t, 0, h.console.Overlays.Len())
	assert.Equal(t, []string{"http://a"}, h.surface.shown)
}

func TestConsole_ManualEntryIgnoresBlank(t *testing.T) {
	h := newConsoleHarness(t, "http://a")

	h.press("up")
	cmd := h.send(keyMsg("enter"))

	assert.Nil(t, cmd)
	assert.Equal(t, 1, h.console.Overlays.Len())
}

func TestConsole_ExternalCommand(t *testing.T) {
	h := newConsoleHarness(t, "http://a")

	h.send(CommandMsg{Command: cycler.Command{Action: cycler.ActionOverride, Text: "http://x"}})

	assert.Equal(t, "http://x", h.surface.shown[len(h.surface.shown)-1])
}

func TestConsole_StaleTokenIgnored(t *testing.T) {
	h := newConsoleHarness(t, "http://a", "http://b")

	h.send(AdvanceDueMsg{Token: 9999})

	assert.Equal(t, []string{"http://a"}, h.surface.shown)
}

func TestConsole_TitleChanged(t *testing.T) {
	h := newConsoleHarness(t, "http://a")

	cmd := h.send(TitleChangedMsg{Title: "Grafana"})

	assert.NotNil(t, cmd)
	assert.Equal(t, "Grafana", h.console.Title)
	_, title, _ := h.board.Load()
	assert.Equal(t, "Grafana", title)
}

func TestConsole_QuitMsg(t *testing.T) {
	h := newConsoleHarness(t, "http://a")

	cmd := h.send(QuitMsg{})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, h.model.View())
}

func TestConsole_SpaceLeaderQuits(t *testing.T) {
	h := newConsoleHarness(t, "http://a")

	h.send(keyMsg(" "))
	assert.Contains(t, h.model.View(), "Quit")
	cmd := h.send(keyMsg("q"))

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestConsole_PreviewAndView(t *testing.T) {
	h := newConsoleHarness(t, "http://a", "<b>hi</b>")

	cmd := h.send(ContentChangedMsg{})
	require.NotNil(t, cmd)
	h.send(cmd())

	assert.Equal(t, []string{"http://a", "<b>hi</b>"}, h.console.Preview)
	v := h.model.View()
	assert.Contains(t, v, "cycling")
	assert.Contains(t, v, "http://a")
	assert.Contains(t, v, "inline")
}

func TestConsole_FallbackLabel(t *testing.T) {
	h := newConsoleHarness(t, "http://a", "http://b")
	src := h.console.Source.(*sliceSource)
	src.err = content.ErrSourceUnavailable

	h.press("right")

	assert.Equal(t, []string{"http://a", "http://a"}, h.surface.shown)
	v := h.model.View()
	assert.Contains(t, v, "fallback")
	assert.NotContains(t, v, "1/2")
}

func TestConsole_PreviewError(t *testing.T) {
	h := newConsoleHarness(t, "http://a")
	h.send(previewLoadedMsg{Err: errors.New("boom")})

	assert.Contains(t, h.model.View(), "boom")
}

func TestConsole_HelpToggle(t *testing.T) {
	h := newConsoleHarness(t, "http://a")

	h.press("?")
	assert.True(t, h.console.ShowHelp)
	assert.Contains(t, h.model.View(), "previous item")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "a b", truncate("a\n  b", 5))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
