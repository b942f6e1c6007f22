package cycler

import (
	"errors"
	"fmt"
	"os"
	"time"

	"dbviewer/internal/content"
)

type fakeSource struct {
	items []string
	err   error
	loads int
	// bare returns an empty list without ErrEmptyList.
	bare bool
}

func (s *fakeSource) Load() ([]string, error) {
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	if len(s.items) == 0 && !s.bare {
		return nil, content.ErrEmptyList
	}
	return append([]string(nil), s.items...), nil
}

type recordingSurface struct {
	calls []string
	// rejectPause makes the next n SetPaused calls fail.
	rejectPause int
}

func (s *recordingSurface) ShowRemote(url string) error {
	s.calls = append(s.calls, "remote:"+url)
	return nil
}

func (s *recordingSurface) ShowLocalFile(path string) error {
	s.calls = append(s.calls, "file:"+path)
	return nil
}

func (s *recordingSurface) ShowInline(markup string) error {
	s.calls = append(s.calls, "inline:"+markup)
	return nil
}

func (s *recordingSurface) ShowPlaceholder(message string) error {
	s.calls = append(s.calls, "placeholder:"+message)
	return nil
}

func (s *recordingSurface) SetPaused(paused bool) error {
	s.calls = append(s.calls, fmt.Sprintf("paused:%v", paused))
	if s.rejectPause > 0 {
		s.rejectPause--
		return errors.New("display busy")
	}
	return nil
}

// shown returns the content calls only, without pause indicator changes.
func (s *recordingSurface) shown() []string {
	var out []string
	for _, c := range s.calls {
		if len(c) < 7 || c[:7] != "paused:" {
			out = append(out, c)
		}
	}
	return out
}

func (s *recordingSurface) last() string {
	shown := s.shown()
	if len(shown) == 0 {
		return ""
	}
	return shown[len(shown)-1]
}

// fakeScheduler is a manual clock.
type fakeScheduler struct {
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	s         *fakeScheduler
	token     Token
	deadline  time.Duration
	cancelled bool
	fired     bool
}

func (t *fakeTimer) Remaining() time.Duration {
	if t.cancelled || t.fired {
		return 0
	}
	return t.deadline - t.s.now
}

func (t *fakeTimer) Cancel() { t.cancelled = true }

func (s *fakeScheduler) Schedule(delay time.Duration, token Token) Timer {
	t := &fakeTimer{s: s, token: token, deadline: s.now + delay}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) live() []*fakeTimer {
	var out []*fakeTimer
	for _, t := range s.timers {
		if !t.cancelled && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// elapse moves the clock forward and returns the tokens that came due, in
// deadline order.
func (s *fakeScheduler) elapse(d time.Duration) []Token {
	s.now += d
	var due []Token
	for _, t := range s.timers {
		if !t.cancelled && !t.fired && t.deadline <= s.now {
			t.fired = true
			due = append(due, t.token)
		}
	}
	return due
}

type countingObserver struct {
	shown, manual, failed, wraps int
	paused                       []bool
}

func (o *countingObserver) Shown(_ content.Kind, manual bool) {
	o.shown++
	if manual {
		o.manual++
	}
}
func (o *countingObserver) SourceFailed(error) { o.failed++ }
func (o *countingObserver) Wrapped()           { o.wraps++ }
func (o *countingObserver) Paused(p bool)      { o.paused = append(o.paused, p) }

// onlyExisting treats the listed names as files on disk.
func onlyExisting(names ...string) content.Classifier {
	set := make(map[string]bool)
	for _, n := range names {
		set[n] = true
	}
	return content.Classifier{Stat: func(name string) (os.FileInfo, error) {
		if set[name] {
			return nil, nil
		}
		return nil, os.ErrNotExist
	}}
}
