// Package chunker splits document text into overlapping fixed-size windows
// suitable for embedding. Units are characters (runes), consistent with the
// text handed to the embedder.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// Chunk is one slice of a document's text. Ordinals are dense and zero-based
// within a document.
type Chunk struct {
	Ordinal    int
	Text       string
	TokenCount int
}

// Split cuts text into chunks of at most window runes, each overlapping the
// previous one by overlap runes. The last chunk may be shorter. Splitting is
// deterministic: the same input and parameters always yield byte-identical
// chunk texts. Empty or whitespace-only input yields zero chunks.
func Split(text string, window, overlap int) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if window <= 0 {
		window = 1000
	}
	if overlap < 0 || overlap >= window {
		overlap = 0
	}

	runes := []rune(text)
	step := window - overlap

	var chunks []Chunk
	for start := 0; start < len(runes); start += step {
		end := start + window
		if end > len(runes) {
			end = len(runes)
		}
		piece := string(runes[start:end])
		if strings.TrimSpace(piece) != "" {
			chunks = append(chunks, Chunk{
				Ordinal:    len(chunks),
				Text:       piece,
				TokenCount: EstimateTokens(piece),
			})
		}
		if end == len(runes) {
			break
		}
	}

	return chunks
}

// EstimateTokens approximates the token count of text as one token per four
// characters, rounded up. Good enough for window budgeting.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}
