package models

import (
	"time"

	"gorm.io/datatypes"
)

// Document is an immutable ingested text unit. VaultID is nullable: a null
// vault means the document belongs to no vault, not to all vaults.
type Document struct {
	ID        string         `json:"id" gorm:"primaryKey"`
	VaultID   *string        `json:"vault_id" gorm:"index:idx_documents_vault_id"`
	Title     *string        `json:"title"`
	Source    *string        `json:"source"`
	Metadata  datatypes.JSON `json:"metadata" gorm:"column:metadata_json;type:jsonb"`
	CreatedAt time.Time      `json:"created_at" gorm:"not null;index:idx_documents_created,sort:desc"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"not null"`
}

func (Document) TableName() string {
	return "documents"
}

type IngestRequest struct {
	Text     string                 `json:"text"`
	Title    *string                `json:"title,omitempty"`
	Source   *string                `json:"source,omitempty"`
	VaultID  *string                `json:"vault_id,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type IngestResponse struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

// DocumentInfo is the read model for a document, including its chunk count.
type DocumentInfo struct {
	ID         string                 `json:"id"`
	VaultID    *string                `json:"vault_id"`
	Title      *string                `json:"title"`
	Source     *string                `json:"source"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
	ChunkCount int64                  `json:"chunk_count"`
}

type DocumentListResponse struct {
	Documents []DocumentInfo `json:"documents"`
	Total     int64          `json:"total"`
	Limit     int            `json:"limit"`
	Offset    int            `json:"offset"`
}

type DocumentDeleteResponse struct {
	Message    string `json:"message"`
	DocumentID string `json:"document_id"`
}
