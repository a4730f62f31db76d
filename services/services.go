package services

import (
	"context"

	"github.com/vaultrag-api/models"
	"github.com/vaultrag-api/vectorstore"
)

type VaultService interface {
	Create(ctx context.Context, req models.CreateVaultRequest) (*models.VaultInfo, error)
	List(ctx context.Context) ([]models.VaultInfo, error)
	Get(ctx context.Context, vaultID string) (*models.VaultInfo, error)
	Delete(ctx context.Context, vaultID string) error

	// Exists returns a NotFound error when the vault does not exist.
	Exists(ctx context.Context, vaultID string) error
}

type DocumentService interface {
	Ingest(ctx context.Context, req models.IngestRequest) (string, error)
	List(ctx context.Context, vaultID *string, limit, offset int) (*models.DocumentListResponse, error)
	Get(ctx context.Context, documentID string) (*models.DocumentInfo, error)
	Delete(ctx context.Context, documentID string) error
}

type SessionService interface {
	GetOrCreate(ctx context.Context, sessionID string, userID *string) (*models.Session, error)
	UpdateLastActive(ctx context.Context, sessionID string) error
}

type MessageService interface {
	Save(ctx context.Context, sessionID, role, content string) (*models.Message, error)

	// Recent returns at most limit messages in ascending chronological order.
	Recent(ctx context.Context, sessionID string, limit int) ([]models.Message, error)
}

type AgentService interface {
	Create(ctx context.Context, req models.CreateAgentRequest) (*models.Agent, error)
	List(ctx context.Context, vaultID *string) ([]models.Agent, error)
	Get(ctx context.Context, agentID string) (*models.Agent, error)
	Delete(ctx context.Context, agentID string) error
}

type ChatService interface {
	Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
}

// VectorStore abstracts the pgvector-backed embedding store so services can
// be exercised against fakes.
type VectorStore interface {
	UpsertChunks(ctx context.Context, documentID string, vaultID, title, source *string, chunks []vectorstore.ChunkRecord) error
	Search(ctx context.Context, queryVector []float32, topK int, vaultID *string) ([]vectorstore.SearchResult, error)
	DeleteByDocument(ctx context.Context, documentID string) error
	DeleteByVault(ctx context.Context, vaultID string) error
	CountByDocument(ctx context.Context, documentID string) (int64, error)
}

// EmbeddingCache memoizes query embeddings. Lookups are best-effort; a miss
// or a cache failure never fails the caller.
type EmbeddingCache interface {
	Get(ctx context.Context, model, text string) ([]float32, bool)
	Put(ctx context.Context, model, text string, vector []float32)
}
