package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dbviewer/internal/content"
	"dbviewer/internal/cycler"
	"dbviewer/internal/logger"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LoadingTitle is the window title until the first page reports its own.
const LoadingTitle = "Loading..."

const (
	previewLimit = 8
	itemWidth    = 72
)

// ConsoleModel is the root model. It owns the cycler; every cycler call
// happens inside Update.
type ConsoleModel struct {
	Cycler     *cycler.Cycler
	Board      *cycler.Board
	Source     content.Source
	Classifier content.Classifier
	KeyHandler *KeyHandler
	Overlays   OverlayStack
	Log        logger.Logger

	// ContentPath is shown in the header; informational only.
	ContentPath string
	Title       string
	Preview     []string
	PreviewErr  error
	ShowHelp    bool
	Quitting    bool

	ctx   context.Context
	width int
}

// Options wires the console.
type Options struct {
	Cycler      *cycler.Cycler
	Board       *cycler.Board
	Source      content.Source
	Logger      logger.Logger
	ContentPath string
}

// NewConsoleModel creates the console with its default keybindings.
func NewConsoleModel(ctx context.Context, opts Options) *ConsoleModel {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	board := opts.Board
	if board == nil {
		board = &cycler.Board{}
	}
	return &ConsoleModel{
		Cycler:      opts.Cycler,
		Board:       board,
		Source:      opts.Source,
		KeyHandler:  NewKeyHandler(defaultKeybinds()),
		Log:         log,
		ContentPath: opts.ContentPath,
		Title:       LoadingTitle,
		ctx:         ctx,
	}
}

func command(a cycler.Action) tea.Cmd {
	return func() tea.Msg { return CommandMsg{Command: cycler.Command{Action: a}} }
}

func defaultKeybinds() *KeybindRegistry {
	reg := NewKeybindRegistry()
	next := command(cycler.ActionAdvance)
	prev := command(cycler.ActionRetreat)
	pause := command(cycler.ActionTogglePause)
	entry := func() tea.Msg { return openManualEntryMsg{} }
	help := func() tea.Msg { return toggleHelpMsg{} }

	reg.BindWithDesc("right", next, "next")
	reg.Bind("l", next)
	reg.BindWithDesc("left", prev, "prev")
	reg.Bind("h", prev)
	reg.BindWithDesc("down", pause, "pause")
	reg.Bind("p", pause)
	reg.BindWithDesc("up", entry, "show now")
	reg.Bind("o", entry)
	reg.BindWithDesc("?", help, "help")
	reg.BindWithDesc("q", tea.Quit, "quit")
	reg.Bind("esc", tea.Quit)
	reg.Bind("ctrl+c", tea.Quit)
	reg.BindWithDesc("SPC q", tea.Quit, "Quit")
	reg.BindWithDesc("SPC o", entry, "Show now")
	reg.BindWithDesc("SPC p", pause, "Pause")
	reg.BindWithDesc("SPC r", func() tea.Msg { return ContentChangedMsg{} }, "Reload preview")
	return reg
}

// Ensure consoleAdapter can be used as tea.Model.
var _ tea.Model = (*consoleAdapter)(nil)

type consoleAdapter struct {
	*ConsoleModel
}

// AsTeaModel returns a tea.Model adapter for use with tea.NewProgram.
func (m *ConsoleModel) AsTeaModel() tea.Model {
	return &consoleAdapter{ConsoleModel: m}
}

// Init implements tea.Model.
func (a *consoleAdapter) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle(a.Title),
		func() tea.Msg { return startMsg{} },
		a.loadPreview(),
		tick(),
	)
}

// Update implements tea.Model.
func (a *consoleAdapter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	a.publish()
	return a, cmd
}

func (a *consoleAdapter) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case startMsg:
		a.Cycler.Advance(a.ctx)
		return nil
	case AdvanceDueMsg:
		a.Cycler.Fire(a.ctx, msg.Token)
		return nil
	case CommandMsg:
		a.Log.Debug("command", logger.String("action", msg.Command.Action.String()))
		a.Cycler.Apply(a.ctx, msg.Command)
		return nil
	case ManualEntryMsg:
		a.Overlays.Pop()
		a.Cycler.SubmitOverride(a.ctx, msg.Text)
		return nil
	case DismissModalMsg:
		a.Overlays.Pop()
		return nil
	case openManualEntryMsg:
		modal := NewManualEntryModal()
		a.Overlays.Push(modal)
		return modal.Init()
	case toggleHelpMsg:
		a.ShowHelp = !a.ShowHelp
		return nil
	case TitleChangedMsg:
		a.Title = msg.Title
		return tea.SetWindowTitle(msg.Title)
	case ContentChangedMsg:
		return a.loadPreview()
	case previewLoadedMsg:
		a.Preview, a.PreviewErr = msg.Items, msg.Err
		return nil
	case QuitMsg:
		a.Quitting = true
		return tea.Quit
	case tickMsg:
		return tick()
	case tea.WindowSizeMsg:
		a.width = msg.Width
		return nil
	case tea.KeyMsg:
		if a.Overlays.Len() > 0 {
			cmd, _ := a.Overlays.UpdateTop(msg)
			return cmd
		}
		if a.KeyHandler != nil {
			if _, cmd := a.KeyHandler.Handle(msg); cmd != nil {
				return cmd
			}
		}
		return nil
	}
	if a.Overlays.Len() > 0 {
		cmd, _ := a.Overlays.UpdateTop(msg)
		return cmd
	}
	return nil
}

func (a *ConsoleModel) publish() {
	if a.Board != nil && a.Cycler != nil {
		a.Board.Publish(a.Cycler.Snapshot(), a.Title)
	}
}

func (a *ConsoleModel) loadPreview() tea.Cmd {
	src := a.Source
	if src == nil {
		return nil
	}
	return func() tea.Msg {
		items, err := src.Load()
		return previewLoadedMsg{Items: items, Err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{} })
}

// View implements tea.Model.
func (a *consoleAdapter) View() string {
	if a.Quitting {
		return ""
	}
	if top, ok := a.Overlays.Peek(); ok {
		return top.View()
	}
	var b strings.Builder
	b.WriteString(Styles.Box.Render(a.statusView()))
	b.WriteString("\n")
	if a.KeyHandler != nil && a.KeyHandler.LeaderWaiting {
		b.WriteString(RenderKeybindHelp(a.KeyHandler))
	} else if a.KeyHandler != nil {
		b.WriteString(" " + RenderHelpBar(a.KeyHandler.Registry))
	}
	if a.ShowHelp {
		b.WriteString("\n\n" + helpText())
	}
	return b.String()
}

func (a *ConsoleModel) statusView() string {
	s := a.Cycler.Snapshot()
	var b strings.Builder
	b.WriteString(Styles.Title.Render("dbviewer") + "  " + phaseBadge(s.Phase) + "\n\n")

	row := func(label, value string) {
		b.WriteString(Styles.Label.Render(label) + value + "\n")
	}
	if s.Current.Raw != "" {
		pos := "manual"
		if n, total := s.Position(); n > 0 {
			pos = fmt.Sprintf("%d/%d", n, total)
		} else if s.Fallback {
			pos = "fallback"
		}
		row("Showing", Styles.Selected.Render(truncate(s.Current.Raw, itemWidth)))
		row("", Styles.Muted.Render(s.Current.Kind.String()+"  "+pos))
	} else {
		row("Showing", Styles.Empty.Render(cycler.PlaceholderMessage))
	}
	row("Title", Styles.Normal.Render(truncate(a.Title, itemWidth)))
	row("Next", countdown(s))
	if a.ContentPath != "" {
		row("Source", Styles.Muted.Render(a.ContentPath))
	}

	b.WriteString("\n")
	b.WriteString(a.previewView(s))
	return b.String()
}

func (a *ConsoleModel) previewView(s cycler.State) string {
	if a.PreviewErr != nil {
		return Styles.Error.Render("content file: " + a.PreviewErr.Error())
	}
	if len(a.Preview) == 0 {
		return Styles.Empty.Render("content file is empty")
	}
	n, _ := s.Position()
	lines := make([]string, 0, previewLimit+1)
	for i, raw := range a.Preview {
		if i == previewLimit {
			lines = append(lines, Styles.Muted.Render(fmt.Sprintf("  … %d more", len(a.Preview)-previewLimit)))
			break
		}
		kind := a.Classifier.Classify(raw).Kind.String()
		line := fmt.Sprintf("%2d %-6s %s", i+1, kind, truncate(raw, itemWidth-10))
		if i+1 == n && s.Current.Raw == raw {
			lines = append(lines, Styles.Selected.Render("▸"+line))
		} else {
			lines = append(lines, Styles.Muted.Render(" "+line))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func phaseBadge(p cycler.Phase) string {
	switch p {
	case cycler.PhaseCycling:
		return Styles.Status.Render("● cycling")
	case cycler.PhasePaused:
		return Styles.Warning.Render("⏸ paused")
	case cycler.PhaseOverride:
		return Styles.Warning.Render("⏸ manual")
	default:
		return Styles.Muted.Render("○ idle")
	}
}

func countdown(s cycler.State) string {
	rem := s.Remaining.Round(time.Second)
	switch {
	case s.Phase.Held():
		return Styles.Warning.Render(fmt.Sprintf("held at %s", rem))
	case s.Pending:
		return Styles.Status.Render(rem.String())
	default:
		return Styles.Muted.Render("-")
	}
}

func helpText() string {
	lines := []string{
		"right / l      next item",
		"left / h       previous item",
		"down / p       pause or resume",
		"up / o         show a URL, path or HTML now (stays paused)",
		"SPC            leader: q quit, o show now, p pause, r reload preview",
		"q / esc        quit",
	}
	return Styles.Hint.Render(strings.Join(lines, "\n"))
}

// truncate flattens s to one line of at most n runes.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
