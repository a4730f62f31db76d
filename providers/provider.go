// Package providers implements the outbound adapters for the
// OpenAI-compatible embedding and chat-completion endpoints. Model names are
// passed through verbatim; no allow-list is consulted.
package providers

import "context"

// Message is one turn handed to the chat completer.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Embedder turns texts into fixed-dimension vectors, one per input, in input
// order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatCompleter produces a single reply for an ordered message sequence.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []Message, temperature float64) (string, error)
}
