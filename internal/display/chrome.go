// Package display drives the kiosk window. Chrome renders content in a
// fullscreen Chromium controlled over the DevTools protocol; Log only records
// what would have been shown.
package display

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"dbviewer/internal/content"
	"dbviewer/internal/cycler"
	"dbviewer/internal/logger"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// ErrClosed is returned by a surface after Close.
var ErrClosed = errors.New("display closed")

// ErrBusy is returned when render requests arrive faster than Chrome applies them.
var ErrBusy = errors.New("display busy")

const (
	bindingName   = "dbviewerInput"
	queueSize     = 16
	renderTimeout = 30 * time.Second
)

// Handlers receive events from the kiosk window. OnTitle runs on the render
// worker, the others on a goroutine per event. Any of them may be nil.
type Handlers struct {
	OnTitle   func(title string)
	OnCommand func(cmd cycler.Command)
	OnQuit    func()
}

// ChromeOptions configures the browser process.
type ChromeOptions struct {
	ExecPath          string
	UserAgent         string
	UserDataDir       string
	Headless          bool
	DisableJavaScript bool
	Width             int
	Height            int
}

type requestKind int

const (
	reqRemote requestKind = iota
	reqFile
	reqInline
	reqPlaceholder
	reqPaused
)

type request struct {
	kind   requestKind
	value  string
	paused bool
}

// Chrome is a Surface backed by a kiosk-mode Chromium. Render requests are
// queued and applied in order by a single worker.
type Chrome struct {
	log      logger.Logger
	handlers Handlers

	ctx         context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc

	requests  chan request
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Ensure Chrome implements cycler.Surface.
var _ cycler.Surface = (*Chrome)(nil)

// NewChrome launches the browser and installs the key bindings.
func NewChrome(ctx context.Context, opts ChromeOptions, log logger.Logger, h Handlers) (*Chrome, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(opts)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(func(format string, args ...any) {
			log.Debug("chromedp", logger.String("detail", fmt.Sprintf(format, args...)))
		}),
	)

	c := &Chrome{
		log:         log,
		handlers:    h,
		ctx:         tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
		requests:    make(chan request, queueSize),
		done:        make(chan struct{}),
	}

	chromedp.ListenTarget(tabCtx, func(ev any) {
		if ev, ok := ev.(*runtime.EventBindingCalled); ok && ev.Name == bindingName {
			go c.handleBinding(ev.Payload)
		}
	})

	setup := []chromedp.Action{
		runtime.AddBinding(bindingName),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(keyScript).Do(ctx)
			return err
		}),
	}
	if opts.DisableJavaScript {
		setup = append(setup, emulation.SetScriptExecutionDisabled(true))
	}
	if err := chromedp.Run(tabCtx, setup...); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	c.wg.Add(1)
	go c.loop()
	return c, nil
}

func allocatorOptions(opts ChromeOptions) []chromedp.ExecAllocatorOption {
	o := []chromedp.ExecAllocatorOption{
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Flag("kiosk", true),
		chromedp.Flag("start-fullscreen", true),
		chromedp.Flag("noerrdialogs", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-session-crashed-bubble", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-component-update", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("exclude-switches", "enable-automation"),
		chromedp.Flag("autoplay-policy", "no-user-gesture-required"),
		chromedp.Flag("allow-file-access-from-files", true),
		chromedp.Flag("password-store", "basic"),
	}
	if opts.UserAgent != "" {
		o = append(o, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.UserDataDir != "" {
		o = append(o, chromedp.UserDataDir(opts.UserDataDir))
	}
	if opts.Width > 0 && opts.Height > 0 {
		o = append(o, chromedp.WindowSize(opts.Width, opts.Height))
	}
	if opts.ExecPath != "" {
		o = append(o, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.Headless {
		o = append(o, chromedp.Headless)
	}
	return o
}

// Done is closed when the browser goes away, e.g. the window was closed.
func (c *Chrome) Done() <-chan struct{} {
	return c.ctx.Done()
}

func (c *Chrome) ShowRemote(url string) error {
	return c.enqueue(request{kind: reqRemote, value: url})
}

func (c *Chrome) ShowLocalFile(path string) error {
	return c.enqueue(request{kind: reqFile, value: path})
}

func (c *Chrome) ShowInline(markup string) error {
	return c.enqueue(request{kind: reqInline, value: markup})
}

func (c *Chrome) ShowPlaceholder(message string) error {
	return c.enqueue(request{kind: reqPlaceholder, value: message})
}

func (c *Chrome) SetPaused(paused bool) error {
	return c.enqueue(request{kind: reqPaused, paused: paused})
}

func (c *Chrome) enqueue(r request) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.requests <- r:
		return nil
	default:
		return ErrBusy
	}
}

func (c *Chrome) loop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case <-c.ctx.Done():
			return
		case r := <-c.requests:
			if err := c.render(r); err != nil {
				c.log.Warn("render failed", logger.String("item", r.value), logger.Error(err))
			}
		}
	}
}

func (c *Chrome) render(r request) error {
	ctx, cancel := context.WithTimeout(c.ctx, renderTimeout)
	defer cancel()

	switch r.kind {
	case reqPaused:
		return chromedp.Run(ctx, chromedp.Evaluate(pausedScript(r.paused), nil))
	case reqInline, reqPlaceholder:
		doc, title, err := inlineDocument(r)
		if err != nil {
			return err
		}
		if err := chromedp.Run(ctx, chromedp.Navigate("about:blank"), setDocument(doc),
			chromedp.Evaluate(keyScript, nil)); err != nil {
			return err
		}
		c.reportTitle(title)
		return nil
	}

	target := NormalizeURL(r.value)
	if r.kind == reqFile {
		u, err := FileURL(r.value)
		if err != nil {
			return err
		}
		target = u
	}
	var title string
	if err := chromedp.Run(ctx, chromedp.Navigate(target), chromedp.Title(&title)); err != nil {
		return err
	}
	if title == "" {
		title = r.value
	}
	c.reportTitle(title)
	return nil
}

func inlineDocument(r request) (doc, title string, err error) {
	if r.kind == reqPlaceholder {
		doc, err = Placeholder(r.value)
		return doc, r.value, err
	}
	doc, err = WrapInline(r.value)
	title = content.InlineTitle(r.value)
	if title == "" {
		title = "dbviewer"
	}
	return doc, title, err
}

// setDocument replaces the main frame's document with html.
func setDocument(html string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
	})
}

func (c *Chrome) reportTitle(title string) {
	if c.handlers.OnTitle != nil {
		c.handlers.OnTitle(title)
	}
}

type bindingPayload struct {
	Action string `json:"action"`
	Text   string `json:"text"`
}

func (c *Chrome) handleBinding(payload string) {
	cmd, quit, err := parseBinding(payload)
	if err != nil {
		c.log.Warn("bad key binding payload", logger.String("payload", payload), logger.Error(err))
		return
	}
	if quit {
		if c.handlers.OnQuit != nil {
			c.handlers.OnQuit()
		}
		return
	}
	if c.handlers.OnCommand != nil {
		c.handlers.OnCommand(cmd)
	}
}

func parseBinding(payload string) (cmd cycler.Command, quit bool, err error) {
	var p bindingPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return cycler.Command{}, false, err
	}
	if p.Action == "quit" {
		return cycler.Command{}, true, nil
	}
	a, err := cycler.ParseAction(p.Action)
	if err != nil {
		return cycler.Command{}, false, err
	}
	return cycler.Command{Action: a, Text: p.Text}, false, nil
}

// Close stops the worker and shuts the browser down.
func (c *Chrome) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.wg.Wait()
		if err := chromedp.Cancel(c.ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.log.Debug("chrome cancel", logger.Error(err))
		}
		c.tabCancel()
		c.allocCancel()
	})
	return nil
}
