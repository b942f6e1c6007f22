package commands

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// relay hands messages from timers, the watcher, the browser and the control
// server to the program. The surface and watcher start before the program
// exists; messages sent until Attach are dropped.
type relay struct {
	p atomic.Pointer[tea.Program]
}

// Attach sets the program that receives messages.
func (r *relay) Attach(p *tea.Program) {
	r.p.Store(p)
}

// Send forwards msg and reports whether a program was attached. It blocks
// until the program's event loop takes the message or the program exits.
func (r *relay) Send(msg tea.Msg) bool {
	p := r.p.Load()
	if p == nil {
		return false
	}
	p.Send(msg)
	return true
}
