package cycler

import (
	"context"
	"fmt"
)

// Action is an operator request, whatever the input device.
type Action int

const (
	ActionAdvance Action = iota
	ActionRetreat
	ActionTogglePause
	ActionOverride
)

var actionNames = map[Action]string{
	ActionAdvance:     "next",
	ActionRetreat:     "prev",
	ActionTogglePause: "pause",
	ActionOverride:    "override",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "unknown"
}

// ParseAction maps "next", "prev", "pause" and "override" to an Action.
func ParseAction(s string) (Action, error) {
	for a, name := range actionNames {
		if name == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// Command is an Action plus the text for ActionOverride.
type Command struct {
	Action Action
	Text   string
}

// Apply runs cmd against the cycler.
func (c *Cycler) Apply(ctx context.Context, cmd Command) {
	switch cmd.Action {
	case ActionAdvance:
		c.Navigate(ctx, Forward)
	case ActionRetreat:
		c.Navigate(ctx, Backward)
	case ActionTogglePause:
		c.TogglePause(ctx)
	case ActionOverride:
		c.SubmitOverride(ctx, cmd.Text)
	}
}
