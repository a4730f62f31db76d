package models

// ChatConfig carries per-request overrides for retrieval and generation.
type ChatConfig struct {
	TopK        *int     `json:"top_k,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

type ChatRequest struct {
	SessionID string      `json:"session_id"`
	Message   string      `json:"message"`
	VaultID   *string     `json:"vault_id,omitempty"`
	AgentID   *string     `json:"agent_id,omitempty"`
	Config    *ChatConfig `json:"config,omitempty"`
}

// Source describes one retrieved chunk backing an answer. Scores are cosine
// similarities, monotonically non-increasing across a response.
type Source struct {
	DocumentID string  `json:"document_id"`
	Title      *string `json:"title"`
	Snippet    string  `json:"snippet"`
	Score      float64 `json:"score"`
}

type ChatResponse struct {
	SessionID string   `json:"session_id"`
	Answer    string   `json:"answer"`
	Sources   []Source `json:"sources"`
}
