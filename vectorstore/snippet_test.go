package vectorstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnippetCollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", Snippet("a\n\n b\t\tc"))
	assert.Equal(t, "hello world", Snippet("  hello   world  "))
}

func TestSnippetTruncatesAt200Runes(t *testing.T) {
	long := strings.Repeat("x", 500)
	got := Snippet(long)
	assert.Equal(t, 200, len([]rune(got)))

	multibyte := strings.Repeat("é", 500)
	got = Snippet(multibyte)
	assert.Equal(t, 200, len([]rune(got)))
	assert.Equal(t, strings.Repeat("é", 200), got)
}

func TestSnippetShortTextUnchanged(t *testing.T) {
	assert.Equal(t, "short text", Snippet("short text"))
	assert.Equal(t, "", Snippet(""))
	assert.Equal(t, "", Snippet("   \n  "))
}
