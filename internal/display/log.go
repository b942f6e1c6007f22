package display

import (
	"sync"

	"dbviewer/internal/content"
	"dbviewer/internal/cycler"
	"dbviewer/internal/logger"
)

// Log is a Surface that only logs. It reports the item itself as the title,
// calling onTitle from a new goroutine like Chrome does.
type Log struct {
	log     logger.Logger
	onTitle func(string)

	mu     sync.Mutex
	closed bool
}

// Ensure Log implements cycler.Surface.
var _ cycler.Surface = (*Log)(nil)

// NewLog returns a logging surface. onTitle may be nil.
func NewLog(log logger.Logger, onTitle func(string)) *Log {
	return &Log{log: log, onTitle: onTitle}
}

func (l *Log) ShowRemote(url string) error {
	return l.show("remote", url, NormalizeURL(url))
}

func (l *Log) ShowLocalFile(path string) error {
	return l.show("file", path, path)
}

func (l *Log) ShowInline(markup string) error {
	title := content.InlineTitle(markup)
	if title == "" {
		title = "dbviewer"
	}
	return l.show("inline", markup, title)
}

func (l *Log) ShowPlaceholder(message string) error {
	return l.show("placeholder", message, message)
}

func (l *Log) SetPaused(paused bool) error {
	if l.isClosed() {
		return ErrClosed
	}
	l.log.Info("display paused indicator", logger.Bool("paused", paused))
	return nil
}

func (l *Log) show(kind, value, title string) error {
	if l.isClosed() {
		return ErrClosed
	}
	l.log.Info("display", logger.String("kind", kind), logger.String("value", value))
	if l.onTitle != nil {
		go l.onTitle(title)
	}
	return nil
}

func (l *Log) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Close makes further calls return ErrClosed.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}
