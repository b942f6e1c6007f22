package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"dbviewer/internal/config"
	"dbviewer/internal/content"
	"dbviewer/internal/control"
	"dbviewer/internal/cycler"
	"dbviewer/internal/display"
	"dbviewer/internal/logger"
	"dbviewer/internal/metrics"
	"dbviewer/internal/trace"
	"dbviewer/internal/ui"
)

const shutdownTimeout = 5 * time.Second

func runCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the kiosk (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKiosk(cmd, f)
		},
	}
}

// surface is a cycler.Surface that can be shut down.
type surface interface {
	cycler.Surface
	Close() error
}

func runKiosk(cmd *cobra.Command, f *flags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	if err := ensureLogDirs(cfg.Log.OutputPaths); err != nil {
		return err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := uuid.NewString()
	log = log.With(logger.String("session", session))
	log.Info("starting",
		logger.String("content_file", cfg.ContentFile),
		logger.Duration("delay", cfg.Delay),
		logger.String("surface", cfg.Surface),
	)

	tp, err := trace.NewProvider(ctx, session)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer shutdown(log, "tracing", tp.Shutdown)

	r := &relay{}
	send := func(msg tea.Msg) { r.Send(msg) }

	surf, done, err := newSurface(ctx, cfg, log, send)
	if err != nil {
		return err
	}
	defer func() {
		if err := surf.Close(); err != nil {
			log.Warn("close display", logger.Error(err))
		}
	}()

	collector := metrics.NewCollector()
	board := &cycler.Board{}
	src := &content.FileSource{Path: cfg.ContentFile}
	cyc := cycler.New(cycler.Options{
		Source:  src,
		Surface: surf,
		Scheduler: cycler.NewTimerScheduler(func(t cycler.Token) {
			send(ui.AdvanceDueMsg{Token: t})
		}),
		Observer:   collector,
		Logger:     log.With(logger.String("component", "cycler")),
		Tracer:     tp.Tracer(),
		Delay:      cfg.Delay,
		RetryDelay: cfg.RetryDelay,
	})
	defer cyc.Stop()

	if w, err := content.NewWatcher(cfg.ContentFile,
		func() { send(ui.ContentChangedMsg{}) },
		func(err error) { log.Warn("content watch", logger.Error(err)) },
	); err != nil {
		log.Warn("content file not watched", logger.Error(err))
	} else {
		go w.Run(ctx)
		defer w.Close()
	}

	if cfg.ControlEnabled() {
		srv := control.NewServer(cfg.ControlAddr,
			func(c cycler.Command) { send(ui.CommandMsg{Command: c}) },
			board, collector.Handler(), log.With(logger.String("component", "control")))
		if err := srv.Start(); err != nil {
			return fmt.Errorf("control server: %w", err)
		}
		defer shutdown(log, "control server", srv.Stop)
	}

	model := ui.NewConsoleModel(ctx, ui.Options{
		Cycler:      cyc,
		Board:       board,
		Source:      src,
		Logger:      log,
		ContentPath: cfg.ContentFile,
	})
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if f.noConsole {
		opts = append(opts, tea.WithInput(nil), tea.WithoutRenderer())
	} else {
		opts = append(opts, tea.WithAltScreen())
	}
	p := tea.NewProgram(model.AsTeaModel(), opts...)
	r.Attach(p)

	if done != nil {
		go func() {
			select {
			case <-done:
				log.Info("browser closed")
				p.Send(ui.QuitMsg{})
			case <-ctx.Done():
			}
		}()
	}

	_, err = p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	log.Info("stopped")
	return nil
}

// newSurface returns the configured display and, for Chrome, a channel closed
// when the browser exits.
func newSurface(ctx context.Context, cfg *config.Config, log logger.Logger, send func(tea.Msg)) (surface, <-chan struct{}, error) {
	onTitle := func(title string) { send(ui.TitleChangedMsg{Title: title}) }
	if cfg.Surface == config.SurfaceLog {
		return display.NewLog(log.With(logger.String("component", "display")), onTitle), nil, nil
	}
	c, err := display.NewChrome(ctx, display.ChromeOptions{
		ExecPath:          cfg.Chrome.ExecPath,
		UserAgent:         cfg.Chrome.UserAgent,
		UserDataDir:       cfg.Chrome.UserDataDir,
		Headless:          cfg.Chrome.Headless,
		DisableJavaScript: cfg.Chrome.DisableJavaScript,
		Width:             cfg.Chrome.Width,
		Height:            cfg.Chrome.Height,
	}, log.With(logger.String("component", "display")), display.Handlers{
		OnTitle:   onTitle,
		OnCommand: func(c cycler.Command) { send(ui.CommandMsg{Command: c}) },
		OnQuit:    func() { send(ui.QuitMsg{}) },
	})
	if err != nil {
		return nil, nil, err
	}
	return c, c.Done(), nil
}

func shutdown(log logger.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Warn("shutdown "+name, logger.Error(err))
	}
}

// ensureLogDirs creates parent directories of file log outputs.
func ensureLogDirs(paths []string) error {
	for _, p := range paths {
		if p == "stdout" || p == "stderr" || strings.Contains(p, "://") {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
	}
	return nil
}

func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
