package display

import (
	"runtime"
	"strings"
	"testing"
	"time"

	"dbviewer/internal/cycler"
	"dbviewer/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := map[string]string{
		"http://example.com":      "http://example.com",
		"https://grafana/d/abc":   "https://grafana/d/abc",
		"grafana.local/d/abc":     "http://grafana.local/d/abc",
		"  example.com  ":         "http://example.com",
		"about:blank":             "about:blank",
		"data:text/html,<b>x</b>": "data:text/html,<b>x</b>",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeURL(in), in)
	}
}

func TestFileURL(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix paths")
	}
	got, err := FileURL("/srv/boards/a b.png")
	require.NoError(t, err)
	assert.Equal(t, "file:///srv/boards/a%20b.png", got)

	rel, err := FileURL("a.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "file:///"))
	assert.True(t, strings.HasSuffix(rel, "/a.png"))
}

func TestWrapInline(t *testing.T) {
	doc, err := WrapInline("<b>hi</b>")
	require.NoError(t, err)
	assert.Contains(t, doc, "<body><b>hi</b></body>")
	assert.Contains(t, doc, "<!DOCTYPE html>")

	full := "<!doctype html><html><body>own page</body></html>"
	doc, err = WrapInline(full)
	require.NoError(t, err)
	assert.Equal(t, full, doc)
}

func TestPlaceholderEscapes(t *testing.T) {
	doc, err := Placeholder("No <content>")
	require.NoError(t, err)
	assert.Contains(t, doc, `<div class="placeholder">No &lt;content&gt;</div>`)
	assert.Contains(t, doc, "<title>No &lt;content&gt;</title>")
}

func TestPausedScript(t *testing.T) {
	assert.True(t, strings.HasSuffix(pausedScript(true), "})(true);"))
	assert.True(t, strings.HasSuffix(pausedScript(false), "})(false);"))
	assert.Contains(t, pausedScript(true), pausedBadgeID)
}

func TestParseBinding(t *testing.T) {
	cmd, quit, err := parseBinding(`{"action":"next"}`)
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, cycler.Command{Action: cycler.ActionAdvance}, cmd)

	cmd, _, err = parseBinding(`{"action":"override","text":"http://sso.example.com/login"}`)
	require.NoError(t, err)
	assert.Equal(t, cycler.Command{Action: cycler.ActionOverride, Text: "http://sso.example.com/login"}, cmd)

	_, quit, err = parseBinding(`{"action":"quit"}`)
	require.NoError(t, err)
	assert.True(t, quit)

	_, _, err = parseBinding(`{"action":"jump"}`)
	assert.Error(t, err)
	_, _, err = parseBinding(`not json`)
	assert.Error(t, err)
}

func TestHandleBinding_Dispatches(t *testing.T) {
	var got []cycler.Command
	quits := 0
	c := &Chrome{log: logger.NewNop(), handlers: Handlers{
		OnCommand: func(cmd cycler.Command) { got = append(got, cmd) },
		OnQuit:    func() { quits++ },
	}}

	c.handleBinding(`{"action":"prev"}`)
	c.handleBinding(`{"action":"pause"}`)
	c.handleBinding(`{"action":"quit"}`)
	c.handleBinding(`garbage`)

	assert.Equal(t, []cycler.Command{{Action: cycler.ActionRetreat}, {Action: cycler.ActionTogglePause}}, got)
	assert.Equal(t, 1, quits)
}

func TestChromeEnqueue(t *testing.T) {
	c := &Chrome{requests: make(chan request, 1), done: make(chan struct{})}

	require.NoError(t, c.ShowRemote("http://a"))
	assert.ErrorIs(t, c.ShowInline("<b>x</b>"), ErrBusy)

	r := <-c.requests
	assert.Equal(t, request{kind: reqRemote, value: "http://a"}, r)

	close(c.done)
	assert.ErrorIs(t, c.SetPaused(true), ErrClosed)
}

func TestAllocatorOptions(t *testing.T) {
	base := len(allocatorOptions(ChromeOptions{}))
	full := allocatorOptions(ChromeOptions{
		ExecPath: "/usr/bin/chromium", UserAgent: "ua", UserDataDir: "/tmp/p",
		Headless: true, Width: 800, Height: 600,
	})
	assert.Equal(t, base+5, len(full))
}

func TestLogSurface(t *testing.T) {
	titles := make(chan string, 4)
	l := NewLog(logger.NewNop(), func(s string) { titles <- s })

	require.NoError(t, l.ShowInline("<title>Status</title><p>ok</p>"))
	select {
	case title := <-titles:
		assert.Equal(t, "Status", title)
	case <-time.After(time.Second):
		t.Fatal("no title reported")
	}

	require.NoError(t, l.SetPaused(true))
	require.NoError(t, l.Close())
	assert.ErrorIs(t, l.ShowRemote("http://a"), ErrClosed)
	assert.ErrorIs(t, l.SetPaused(false), ErrClosed)
}
