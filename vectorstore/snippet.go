package vectorstore

import "strings"

const snippetMaxChars = 200

// Snippet renders chunk text for display: whitespace runs collapsed to
// single spaces, trimmed, and cut to the first 200 characters. Shorter
// chunks come back whole.
func Snippet(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	runes := []rune(collapsed)
	if len(runes) <= snippetMaxChars {
		return collapsed
	}
	return string(runes[:snippetMaxChars])
}
