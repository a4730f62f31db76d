package impl

import (
	"fmt"
	"strings"

	"github.com/vaultrag-api/providers"
	"github.com/vaultrag-api/vectorstore"
)

// DefaultSystemPrompt is used when no agent overrides it.
const DefaultSystemPrompt = "You are a helpful assistant. Answer the user's question using the provided context. If the context does not contain the answer, say so instead of guessing."

const contextPreamble = "Use the following retrieved context to answer:\n\n"

// composePrompt assembles the provider message list: system prompt with the
// retrieved context inlined, then the bounded history, then the new user
// message. When the context exceeds budget the lowest-scoring chunks are
// dropped first; retrieval order already has them at the tail.
func composePrompt(systemPrompt string, results []vectorstore.SearchResult, history []providers.Message, question string, maxContextChars int) []providers.Message {
	kept := results
	for len(kept) > 0 && contextLength(kept) > maxContextChars {
		kept = kept[:len(kept)-1]
	}

	system := systemPrompt
	if len(kept) > 0 {
		var b strings.Builder
		b.WriteString(systemPrompt)
		b.WriteString("\n\n")
		b.WriteString(contextPreamble)
		for _, r := range kept {
			b.WriteString(formatContextBlock(r))
		}
		system = b.String()
	}

	prompt := make([]providers.Message, 0, len(history)+2)
	prompt = append(prompt, providers.Message{Role: "system", Content: system})
	prompt = append(prompt, history...)
	prompt = append(prompt, providers.Message{Role: "user", Content: question})
	return prompt
}

func formatContextBlock(r vectorstore.SearchResult) string {
	title := ""
	if r.Title != nil && *r.Title != "" {
		title = " " + *r.Title
	}
	return fmt.Sprintf("[Document %s]%s\n%s\n\n", r.DocumentID, title, r.Text)
}

func contextLength(results []vectorstore.SearchResult) int {
	total := 0
	for _, r := range results {
		total += len(formatContextBlock(r))
	}
	return total
}
