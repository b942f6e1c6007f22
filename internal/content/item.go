// Package content classifies kiosk content items and reads them from the
// line-oriented content file.
package content

import (
	"os"
	"strings"
)

// Kind is how an item is handed to the display surface.
type Kind int

const (
	KindRemote Kind = iota
	KindLocalFile
	KindInline
)

func (k Kind) String() string {
	switch k {
	case KindRemote:
		return "remote"
	case KindLocalFile:
		return "file"
	case KindInline:
		return "inline"
	default:
		return "unknown"
	}
}

// Item is a content string together with its classification.
type Item struct {
	Raw  string
	Kind Kind
}

// Classifier decides the Kind of a raw item. Stat is consulted for local files;
// nil means os.Stat.
type Classifier struct {
	Stat func(name string) (os.FileInfo, error)
}

// Classify classifies raw using os.Stat.
func Classify(raw string) Item {
	return Classifier{}.Classify(raw)
}

// Classify returns raw as inline markup if it starts with "<", as a local file if
// it names an existing path, and as a remote URL otherwise.
func (c Classifier) Classify(raw string) Item {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "<") {
		return Item{Raw: s, Kind: KindInline}
	}
	stat := c.Stat
	if stat == nil {
		stat = os.Stat
	}
	if s != "" {
		if _, err := stat(s); err == nil {
			return Item{Raw: s, Kind: KindLocalFile}
		}
	}
	return Item{Raw: s, Kind: KindRemote}
}
