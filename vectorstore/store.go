// Package vectorstore persists chunk embeddings in Postgres with pgvector
// and serves cosine-similarity top-k search with a vault filter. It is the
// sole writer of the chunk_embeddings relation.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/vaultrag-api/errs"
)

// ChunkRecord is one chunk to persist, with its precomputed embedding.
type ChunkRecord struct {
	Ordinal    int
	Text       string
	TokenCount int
	Vector     []float32
}

// SearchResult is one retrieved chunk. Score is cosine similarity in [-1,1];
// results are ordered by score descending with ties broken by smaller
// ordinal, then smaller document id.
type SearchResult struct {
	ChunkID    string  `gorm:"column:chunk_id"`
	DocumentID string  `gorm:"column:document_id"`
	Title      *string `gorm:"column:title"`
	Text       string  `gorm:"column:text"`
	Ordinal    int     `gorm:"column:ordinal"`
	Score      float64 `gorm:"column:score"`
	Snippet    string  `gorm:"-"`
}

type Store struct {
	db        *gorm.DB
	dimension int
}

func New(db *gorm.DB, dimension int) *Store {
	return &Store{db: db, dimension: dimension}
}

const schemaTemplate = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS chunk_embeddings (
	chunk_id UUID PRIMARY KEY,
	document_id TEXT NOT NULL,
	vault_id TEXT,
	ordinal INT NOT NULL,
	text TEXT NOT NULL,
	token_count INT NOT NULL,
	title TEXT,
	source TEXT,
	embedding vector(%d) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_chunk_embeddings_document ON chunk_embeddings (document_id);
CREATE INDEX IF NOT EXISTS idx_chunk_embeddings_vault ON chunk_embeddings (vault_id);

DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_indexes
		WHERE schemaname = current_schema()
			AND indexname = 'idx_chunk_embeddings_embedding'
	) THEN
		EXECUTE 'CREATE INDEX idx_chunk_embeddings_embedding ON chunk_embeddings USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)';
	END IF;
END
$$;
`

// EnsureSchema creates the pgvector extension, the embeddings relation and
// its indexes. Idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Exec(fmt.Sprintf(schemaTemplate, s.dimension)).Error; err != nil {
		return errs.StoreUnavailable(fmt.Errorf("ensure vector schema: %w", err))
	}
	return nil
}

const (
	deleteByDocumentSQL = `DELETE FROM chunk_embeddings WHERE document_id = ?`
	deleteByVaultSQL    = `DELETE FROM chunk_embeddings WHERE vault_id = ?`
	insertChunkSQL      = `INSERT INTO chunk_embeddings (chunk_id, document_id, vault_id, ordinal, text, token_count, title, source, embedding) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	countByDocumentSQL  = `SELECT COUNT(*) FROM chunk_embeddings WHERE document_id = ?`

	searchVaultSQL = `SELECT chunk_id, document_id, title, text, ordinal, 1 - (embedding <=> ?) AS score FROM chunk_embeddings WHERE vault_id = ? ORDER BY embedding <=> ? ASC, ordinal ASC, document_id ASC LIMIT ?`
	searchNullSQL  = `SELECT chunk_id, document_id, title, text, ordinal, 1 - (embedding <=> ?) AS score FROM chunk_embeddings WHERE vault_id IS NULL ORDER BY embedding <=> ? ASC, ordinal ASC, document_id ASC LIMIT ?`
)

// UpsertChunks replaces the embeddings for a document in one transaction:
// either every chunk becomes visible to search, or none does.
func (s *Store) UpsertChunks(ctx context.Context, documentID string, vaultID, title, source *string, chunks []ChunkRecord) error {
	for _, chunk := range chunks {
		if len(chunk.Vector) != s.dimension {
			return errs.Validation("vector dimension mismatch: expected %d, got %d", s.dimension, len(chunk.Vector))
		}
		if chunk.Text == "" {
			return errs.Validation("chunk %d has empty text", chunk.Ordinal)
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(deleteByDocumentSQL, documentID).Error; err != nil {
			return fmt.Errorf("delete existing chunks: %w", err)
		}
		for _, chunk := range chunks {
			if err := tx.Exec(insertChunkSQL,
				uuid.New().String(),
				documentID,
				vaultID,
				chunk.Ordinal,
				chunk.Text,
				chunk.TokenCount,
				title,
				source,
				pgvector.NewVector(chunk.Vector),
			).Error; err != nil {
				return fmt.Errorf("insert chunk %d: %w", chunk.Ordinal, err)
			}
		}
		return nil
	})
	if err != nil {
		return errs.StoreUnavailable(fmt.Errorf("upsert chunks for document %s: %w", documentID, err))
	}
	return nil
}

// Search returns the topK nearest chunks to queryVector. When vaultID is set
// only embeddings denormalized with that vault are considered; when nil only
// embeddings with a null vault are considered. "No vault" is never "all
// vaults".
func (s *Store) Search(ctx context.Context, queryVector []float32, topK int, vaultID *string) ([]SearchResult, error) {
	if len(queryVector) != s.dimension {
		return nil, errs.Validation("query vector dimension mismatch: expected %d, got %d", s.dimension, len(queryVector))
	}
	if topK <= 0 {
		return nil, errs.Validation("top_k must be positive, got %d", topK)
	}

	vec := pgvector.NewVector(queryVector)
	var results []SearchResult
	var err error
	if vaultID != nil {
		err = s.db.WithContext(ctx).Raw(searchVaultSQL, vec, *vaultID, vec, topK).Scan(&results).Error
	} else {
		err = s.db.WithContext(ctx).Raw(searchNullSQL, vec, vec, topK).Scan(&results).Error
	}
	if err != nil {
		return nil, errs.StoreUnavailable(fmt.Errorf("vector search: %w", err))
	}

	for i := range results {
		results[i].Snippet = Snippet(results[i].Text)
	}
	return results, nil
}

// DeleteByDocument removes every chunk embedding of a document.
func (s *Store) DeleteByDocument(ctx context.Context, documentID string) error {
	if err := s.db.WithContext(ctx).Exec(deleteByDocumentSQL, documentID).Error; err != nil {
		return errs.StoreUnavailable(fmt.Errorf("delete embeddings for document %s: %w", documentID, err))
	}
	return nil
}

// DeleteByVault removes every embedding denormalized with the vault.
// Idempotent: deleting an unknown or already-empty vault succeeds.
func (s *Store) DeleteByVault(ctx context.Context, vaultID string) error {
	if err := s.db.WithContext(ctx).Exec(deleteByVaultSQL, vaultID).Error; err != nil {
		return errs.StoreUnavailable(fmt.Errorf("delete embeddings for vault %s: %w", vaultID, err))
	}
	return nil
}

// CountByDocument returns the number of stored chunks for a document.
func (s *Store) CountByDocument(ctx context.Context, documentID string) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Raw(countByDocumentSQL, documentID).Scan(&count).Error; err != nil {
		return 0, errs.StoreUnavailable(fmt.Errorf("count chunks for document %s: %w", documentID, err))
	}
	return count, nil
}
