package cycler

import "dbviewer/internal/content"

// Observer receives cycler events for metrics.
type Observer interface {
	Shown(kind content.Kind, manual bool)
	SourceFailed(err error)
	Wrapped()
	Paused(paused bool)
}

type nopObserver struct{}

func (nopObserver) Shown(content.Kind, bool) {}
func (nopObserver) SourceFailed(error)       {}
func (nopObserver) Wrapped()                 {}
func (nopObserver) Paused(bool)              {}
