package content

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// InlineTitle returns a window title for an inline snippet: its <title>, else
// its first heading, else "".
func InlineTitle(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return strings.TrimSpace(doc.Find("h1, h2, h3").First().Text())
}
