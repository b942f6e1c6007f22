package cycler

import (
	"sync"
	"time"
)

// Token identifies one scheduled advance. The cycler keeps at most one live
// token; a token delivered after it was replaced or cancelled is ignored.
type Token uint64

// Timer is the handle to a scheduled advance.
type Timer interface {
	// Remaining returns the time left before the action fires, never negative.
	Remaining() time.Duration
	// Cancel stops the action. Safe to call more than once.
	Cancel()
}

// Scheduler arms single-shot deferred actions.
type Scheduler interface {
	Schedule(delay time.Duration, token Token) Timer
}

// TimerScheduler schedules with time.AfterFunc and hands elapsed tokens to
// deliver, which must move them onto the event loop (e.g. tea.Program.Send).
type TimerScheduler struct {
	deliver func(Token)
	now     func() time.Time
}

// Ensure TimerScheduler implements Scheduler.
var _ Scheduler = (*TimerScheduler)(nil)

// NewTimerScheduler returns a scheduler that calls deliver from a timer goroutine.
func NewTimerScheduler(deliver func(Token)) *TimerScheduler {
	return &TimerScheduler{deliver: deliver, now: time.Now}
}

// Schedule implements Scheduler.
func (s *TimerScheduler) Schedule(delay time.Duration, token Token) Timer {
	t := &afterFuncTimer{deadline: s.now().Add(delay), now: s.now}
	t.timer = time.AfterFunc(delay, func() {
		s.deliver(token)
	})
	return t
}

type afterFuncTimer struct {
	mu       sync.Mutex
	timer    *time.Timer
	deadline time.Time
	stopped  bool
	now      func() time.Time
}

func (t *afterFuncTimer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return 0
	}
	if d := t.deadline.Sub(t.now()); d > 0 {
		return d
	}
	return 0
}

func (t *afterFuncTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.stopped {
		t.timer.Stop()
		t.stopped = true
	}
}
