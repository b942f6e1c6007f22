package content

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Content file locations used by the original kiosk images.
const (
	DefaultPathWindows = `C:\DBurl.txt`
	DefaultPathLinux   = "/home/pi/DBurl.txt"
)

var (
	// ErrSourceUnavailable means the content file could not be read.
	ErrSourceUnavailable = errors.New("content source unavailable")
	// ErrEmptyList means the content file had no non-blank lines.
	ErrEmptyList = errors.New("content list is empty")
)

// Source supplies the ordered content list. Load is called on every automatic
// advance, so implementations must not cache.
type Source interface {
	Load() ([]string, error)
}

// FileSource reads one item per line from Path.
type FileSource struct {
	Path string
}

// Ensure FileSource implements Source.
var _ Source = (*FileSource)(nil)

// DefaultPath returns the platform content file location.
func DefaultPath() string {
	if runtime.GOOS == "windows" {
		return DefaultPathWindows
	}
	return DefaultPathLinux
}

// Load reads the whole file. Lines are trimmed and blank lines skipped.
func (s *FileSource) Load() ([]string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	items := ParseLines(data)
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyList, s.Path)
	}
	return items, nil
}

// ParseLines splits data into trimmed, non-blank lines.
func ParseLines(data []byte) []string {
	var items []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			items = append(items, line)
		}
	}
	return items
}
