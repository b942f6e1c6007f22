// Package cycler implements the content-cycling state machine that decides what
// the kiosk shows next and when.
//
// A Cycler is not safe for concurrent use. Every method must be called from the
// same event loop; timer expiry arrives there as a Token passed to Fire.
package cycler

import (
	"context"
	"errors"
	"strings"
	"time"

	"dbviewer/internal/content"
	"dbviewer/internal/logger"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// PlaceholderMessage is shown while there is nothing to display.
const PlaceholderMessage = "No content"

// Surface renders content. Calls must not block; rendering failures are the
// surface's business and are only logged here.
type Surface interface {
	ShowRemote(url string) error
	ShowLocalFile(path string) error
	ShowInline(markup string) error
	ShowPlaceholder(message string) error
	SetPaused(paused bool) error
}

// Direction for Navigate.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Options configures a Cycler. Source, Surface and Scheduler are required.
type Options struct {
	Source     content.Source
	Surface    Surface
	Scheduler  Scheduler
	Classifier content.Classifier
	Observer   Observer
	Logger     logger.Logger
	Tracer     trace.Tracer
	Delay      time.Duration
	RetryDelay time.Duration
}

type pending struct {
	token Token
	timer Timer
}

// Cycler holds the content list position, the single pending advance and the
// pause/override state.
type Cycler struct {
	source     content.Source
	surface    Surface
	sched      Scheduler
	classifier content.Classifier
	observer   Observer
	log        logger.Logger
	tracer     trace.Tracer
	delay      time.Duration
	retryDelay time.Duration

	state     State
	pending   *pending
	lastToken Token
	indicator bool
}

// New creates a Cycler in PhaseIdle. Nothing is shown until Advance is called.
func New(opts Options) *Cycler {
	c := &Cycler{
		source:     opts.Source,
		surface:    opts.Surface,
		sched:      opts.Scheduler,
		classifier: opts.Classifier,
		observer:   opts.Observer,
		log:        opts.Logger,
		tracer:     opts.Tracer,
		delay:      opts.Delay,
		retryDelay: opts.RetryDelay,
	}
	if c.observer == nil {
		c.observer = nopObserver{}
	}
	if c.log == nil {
		c.log = logger.NewNop()
	}
	if c.tracer == nil {
		c.tracer = noop.NewTracerProvider().Tracer("dbviewer/cycler")
	}
	if c.delay <= 0 {
		c.delay = 15 * time.Second
	}
	if c.retryDelay <= 0 {
		c.retryDelay = time.Second
	}
	return c
}

// Snapshot returns a copy of the current state. While an action is pending,
// Remaining holds its live countdown.
func (c *Cycler) Snapshot() State {
	s := c.state
	s.Items = append([]string(nil), c.state.Items...)
	if c.pending != nil {
		s.Pending = true
		s.Remaining = c.pending.timer.Remaining()
	}
	return s
}

// Advance shows the next item from the content source.
func (c *Cycler) Advance(ctx context.Context) {
	ctx, span := c.tracer.Start(ctx, "cycler.advance")
	defer c.endSpan(span)
	c.advance(ctx, nil)
}

// Fire is called when the action scheduled under token elapses. Tokens that
// are no longer live are ignored.
func (c *Cycler) Fire(ctx context.Context, token Token) {
	if c.pending == nil || c.pending.token != token {
		c.log.Debug("ignoring stale timer", logger.Any("token", uint64(token)))
		return
	}
	ctx, span := c.tracer.Start(ctx, "cycler.fire")
	defer c.endSpan(span)
	c.pending = nil
	c.advance(ctx, nil)
}

// Navigate cancels the pending action, clears the paused indicator and moves
// one item forward or backward.
func (c *Cycler) Navigate(ctx context.Context, dir Direction) {
	ctx, span := c.tracer.Start(ctx, "cycler.navigate",
		trace.WithAttributes(attribute.String("dbviewer.direction", dir.String())))
	defer c.endSpan(span)

	c.cancel()
	c.setIndicator(false)
	c.state.Override = ""

	n := len(c.state.Items)
	switch dir {
	case Forward:
		if c.state.Index == n {
			c.state.Index = 0
		}
	case Backward:
		// Index already points past the item on screen, so step back two.
		idx := c.state.Index - 2
		if idx < 0 || idx >= n {
			idx = n - 1
		}
		if idx < 0 {
			idx = 0
		}
		c.state.Index = idx
	}
	c.log.Debug("navigate", logger.String("direction", dir.String()), logger.Int("index", c.state.Index))
	c.advance(ctx, nil)
}

// TogglePause holds the pending action, or resumes a held one with the time it
// had left. With nothing pending and nothing held it does nothing.
func (c *Cycler) TogglePause(ctx context.Context) {
	_, span := c.tracer.Start(ctx, "cycler.toggle_pause")
	defer c.endSpan(span)

	switch {
	case c.pending != nil:
		c.hold()
		c.state.Phase = PhasePaused
		c.log.Info("paused", logger.Duration("remaining", c.state.Remaining))
	case c.state.Phase.Held():
		remaining := c.state.Remaining
		c.arm(remaining)
		c.state.Remaining = 0
		c.state.Phase = PhaseCycling
		c.state.Override = ""
		c.setIndicator(false)
		c.log.Info("resumed", logger.Duration("remaining", remaining))
	default:
		c.log.Debug("pause toggle ignored, no timer", logger.String("phase", c.state.Phase.String()))
	}
}

// SubmitOverride cancels the pending action and shows text outside the cycle.
// Cycling stays held until TogglePause or Navigate. Blank text is ignored.
func (c *Cycler) SubmitOverride(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	ctx, span := c.tracer.Start(ctx, "cycler.override")
	defer c.endSpan(span)

	c.cancel()
	c.advance(ctx, &text)
}

// Stop cancels any pending action. Used at shutdown.
func (c *Cycler) Stop() {
	c.cancel()
}

func (c *Cycler) advance(ctx context.Context, explicit *string) {
	manual := explicit != nil
	var raw string

	if manual {
		raw = *explicit
		c.state.Override = raw
		c.state.Fallback = false
	} else {
		items, err := c.source.Load()
		if err == nil && len(items) == 0 {
			err = content.ErrEmptyList
		}
		switch {
		case err != nil && c.state.LastShown == "":
			c.sourceFailed(ctx, err)
			c.idle()
			return
		case err != nil:
			c.sourceFailed(ctx, err)
			raw = c.state.LastShown
			c.state.Fallback = true
		case c.state.Index >= len(items):
			c.state.Items = items
			c.state.Index = 0
			c.observer.Wrapped()
			c.log.Debug("wrapped", logger.Int("items", len(items)))
			// items is non-empty, so the retry makes progress.
			c.advance(ctx, nil)
			return
		default:
			c.state.Items = items
			raw = items[c.state.Index]
			c.state.Index++
			c.state.Fallback = false
		}
	}

	item := c.classifier.Classify(raw)
	c.show(item)
	c.state.Current = item
	c.observer.Shown(item.Kind, manual)

	if c.pending != nil && !manual {
		return
	}
	c.arm(c.delay)
	c.state.LastShown = raw

	if manual {
		c.hold()
		c.state.Phase = PhaseOverride
		return
	}
	c.state.Phase = PhaseCycling
	c.state.Override = ""
	c.state.Remaining = 0
	c.setIndicator(false)
}

func (c *Cycler) show(item content.Item) {
	var err error
	switch item.Kind {
	case content.KindInline:
		err = c.surface.ShowInline(item.Raw)
	case content.KindLocalFile:
		err = c.surface.ShowLocalFile(item.Raw)
	default:
		err = c.surface.ShowRemote(item.Raw)
	}
	if err != nil {
		c.log.Warn("display rejected item", logger.String("item", item.Raw), logger.Error(err))
		return
	}
	c.log.Info("showing", logger.String("item", item.Raw), logger.String("kind", item.Kind.String()),
		logger.Int("index", c.state.Index))
}

// idle shows the placeholder and schedules a retry of the content source.
func (c *Cycler) idle() {
	c.state.Phase = PhaseIdle
	c.state.Current = content.Item{}
	c.state.Fallback = false
	if err := c.surface.ShowPlaceholder(PlaceholderMessage); err != nil {
		c.log.Warn("display rejected placeholder", logger.Error(err))
	}
	if c.pending == nil {
		c.arm(c.retryDelay)
	}
}

func (c *Cycler) sourceFailed(ctx context.Context, err error) {
	c.observer.SourceFailed(err)
	trace.SpanFromContext(ctx).RecordError(err)
	fields := []logger.Field{logger.Error(err), logger.String("fallback", c.state.LastShown)}
	if errors.Is(err, content.ErrEmptyList) {
		c.log.Warn("content list empty", fields...)
		return
	}
	c.log.Warn("content source unavailable", fields...)
}

// arm replaces any pending action with a new one.
func (c *Cycler) arm(d time.Duration) {
	c.cancel()
	c.lastToken++
	tok := c.lastToken
	c.pending = &pending{token: tok, timer: c.sched.Schedule(d, tok)}
}

func (c *Cycler) cancel() {
	if c.pending == nil {
		return
	}
	c.pending.timer.Cancel()
	c.pending = nil
}

// hold captures the pending action's remaining time, cancels it and shows the
// paused indicator.
func (c *Cycler) hold() {
	if c.pending == nil {
		return
	}
	c.state.Remaining = c.pending.timer.Remaining()
	c.cancel()
	c.setIndicator(true)
}

// setIndicator records the indicator only once the display accepts it, so a
// rejected change is retried on the next call.
func (c *Cycler) setIndicator(on bool) {
	if c.indicator == on {
		return
	}
	if err := c.surface.SetPaused(on); err != nil {
		c.log.Warn("display rejected pause indicator", logger.Bool("paused", on), logger.Error(err))
		return
	}
	c.indicator = on
	c.observer.Paused(on)
}

func (c *Cycler) endSpan(span trace.Span) {
	span.SetAttributes(
		attribute.String("dbviewer.phase", c.state.Phase.String()),
		attribute.Int("dbviewer.index", c.state.Index),
		attribute.String("dbviewer.item.kind", c.state.Current.Kind.String()),
		attribute.String("dbviewer.item", c.state.Current.Raw),
	)
	span.End()
}
