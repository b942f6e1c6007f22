package cycler

import (
	"sync"
	"time"
)

// Board holds the most recent State for readers outside the event loop, such
// as the control server.
type Board struct {
	mu      sync.RWMutex
	state   State
	title   string
	updated time.Time
}

// Publish stores s. Called from the event loop after each update.
func (b *Board) Publish(s State, title string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = s
	b.title = title
	b.updated = time.Now()
}

// Load returns the last published state, window title and publish time.
func (b *Board) Load() (State, string, time.Time) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state, b.title, b.updated
}
