package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCheck_ListsItemsWithKinds(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "a.png")
	require.NoError(t, os.WriteFile(img, []byte("png"), 0o644))
	list := filepath.Join(dir, "DBurl.txt")
	require.NoError(t, os.WriteFile(list, []byte(img+"\n\n<b>hi</b>\nhttp://example.com\n"), 0o644))

	out, err := runRoot(t, "check", "--content-file", list, "--delay", "2000")
	require.NoError(t, err)

	assert.Contains(t, out, "3 items, 2s each")
	assert.Regexp(t, `1\s+file\s+`+regexpQuote(img), out)
	assert.Regexp(t, `2\s+inline\s+<b>hi</b>`, out)
	assert.Regexp(t, `3\s+remote\s+http://example.com`, out)
}

func TestCheck_UnreadableSourceFails(t *testing.T) {
	_, err := runRoot(t, "check", "--content-file", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestCheck_InvalidSurfaceFails(t *testing.T) {
	list := filepath.Join(t.TempDir(), "DBurl.txt")
	require.NoError(t, os.WriteFile(list, []byte("http://a\n"), 0o644))

	_, err := runRoot(t, "check", "--content-file", list, "--surface", "tv")
	assert.ErrorContains(t, err, "surface")
}

func TestEnsureLogDirs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, ensureLogDirs([]string{"stderr", filepath.Join(dir, "dbviewer.log")}))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOneLine(t *testing.T) {
	assert.Equal(t, "a b", oneLine("a\n b", 10))
	assert.Equal(t, "abcd…", oneLine("abcdefgh", 5))
}

func regexpQuote(s string) string {
	return regexp.QuoteMeta(s)
}
