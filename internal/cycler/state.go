package cycler

import (
	"time"

	"dbviewer/internal/content"
)

// Phase is the tagged state of the cycler.
type Phase int

const (
	// PhaseIdle: nothing to show yet; a retry may be pending.
	PhaseIdle Phase = iota
	// PhaseCycling: an item is on screen and an advance is pending.
	PhaseCycling
	// PhasePaused: an item is on screen and the timer is held at Remaining.
	PhasePaused
	// PhaseOverride: a manually entered item is on screen, held like PhasePaused.
	PhaseOverride
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCycling:
		return "cycling"
	case PhasePaused:
		return "paused"
	case PhaseOverride:
		return "override"
	default:
		return "unknown"
	}
}

// Held reports whether the phase keeps a captured timer for resume.
func (p Phase) Held() bool {
	return p == PhasePaused || p == PhaseOverride
}

// State is a snapshot of the cycler. Index is the position of the next item to
// show, in [0, len(Items)].
type State struct {
	Phase     Phase
	Index     int
	Items     []string
	Current   content.Item
	LastShown string
	Override  string
	// Fallback is set while LastShown is redisplayed because the source failed.
	Fallback  bool
	// Remaining is the captured time while held, or the live countdown in a
	// snapshot taken while an action is pending.
	Remaining time.Duration
	Pending   bool
}

// Position returns a 1-based "n/total" pair for the item on screen, or 0 when
// the current item did not come from the list, including a fallback.
func (s State) Position() (int, int) {
	if s.Phase == PhaseOverride || s.Phase == PhaseIdle || s.Fallback || s.Index == 0 {
		return 0, len(s.Items)
	}
	return s.Index, len(s.Items)
}
