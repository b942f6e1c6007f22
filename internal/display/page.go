package display

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"path/filepath"
	"strings"
)

// keyScript forwards the kiosk key bindings to the dbviewerInput binding.
// It is installed on every new document and is safe to evaluate twice.
const keyScript = `(function () {
  if (window.__dbviewerKeys) { return; }
  window.__dbviewerKeys = true;
  window.addEventListener('keydown', function (e) {
    var send = function (msg) {
      if (typeof window.dbviewerInput === 'function') { window.dbviewerInput(JSON.stringify(msg)); }
    };
    switch (e.key) {
    case 'ArrowRight': send({action: 'next'}); break;
    case 'ArrowLeft': send({action: 'prev'}); break;
    case 'ArrowDown': send({action: 'pause'}); break;
    case 'ArrowUp':
      var text = window.prompt('Enter a URL or HTML to show');
      if (text) { send({action: 'override', text: text}); }
      break;
    case 'Escape': send({action: 'quit'}); break;
    default: return;
    }
    e.preventDefault();
    e.stopPropagation();
  }, true);
})();`

const pausedBadgeID = "__dbviewer_paused"

// pausedScript adds or removes the paused badge.
func pausedScript(on bool) string {
	return fmt.Sprintf(`(function (on) {
  var el = document.getElementById(%q);
  if (!on) { if (el) { el.remove(); } return; }
  if (el) { return; }
  el = document.createElement('div');
  el.id = %q;
  el.textContent = '\u23F8 Paused';
  el.style.cssText = 'position:fixed;top:16px;right:16px;z-index:2147483647;padding:8px 16px;' +
    'background:rgba(0,0,0,0.7);color:#fff;font:bold 24px sans-serif;border-radius:8px';
  (document.body || document.documentElement).appendChild(el);
})(%t);`, pausedBadgeID, pausedBadgeID, on)
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
html, body { margin: 0; height: 100%; background: #000; color: #fff; }
body {
  display: flex; align-items: center; justify-content: center;
  font-family: "DejaVu Sans", "Segoe UI", sans-serif; font-size: 4vw; text-align: center;
}
.placeholder { color: #888; }
</style>
</head>
<body>{{.Body}}</body>
</html>
`))

type pageData struct {
	Title string
	Body  template.HTML
}

// WrapInline embeds an HTML fragment in a fullscreen page. Complete documents
// are returned unchanged.
func WrapInline(markup string) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(markup))
	if strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html") {
		return markup, nil
	}
	return render(pageData{Title: "dbviewer", Body: template.HTML(markup)})
}

// Placeholder renders message on an otherwise empty page.
func Placeholder(message string) (string, error) {
	body := template.HTML(`<div class="placeholder">` + template.HTMLEscapeString(message) + `</div>`)
	return render(pageData{Title: message, Body: body})
}

func render(d pageData) (string, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return buf.String(), nil
}

// NormalizeURL adds http:// to scheme-less addresses such as "grafana.local/d/x".
func NormalizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.Contains(s, "://") {
		return s
	}
	for _, prefix := range []string{"about:", "data:", "file:", "chrome:"} {
		if strings.HasPrefix(s, prefix) {
			return s
		}
	}
	return "http://" + s
}

// FileURL turns a local path into an absolute file:// URL.
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		// Windows drive paths: C:/x -> /C:/x
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String(), nil
}
