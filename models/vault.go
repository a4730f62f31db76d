package models

import "time"

// Vault is a tenant-scoped namespace owning documents and agents. Names are
// unique across live vaults; deletion cascades to documents, their
// embeddings, and agents.
type Vault struct {
	VaultID     string    `json:"vault_id" gorm:"column:vault_id;primaryKey"`
	Name        string    `json:"name" gorm:"not null;uniqueIndex:idx_vaults_name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;index:idx_vaults_created_at,sort:desc"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null"`
}

func (Vault) TableName() string {
	return "vaults"
}

type CreateVaultRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// VaultInfo is a vault with its live document count, computed at query time.
type VaultInfo struct {
	VaultID       string    `json:"vault_id" gorm:"column:vault_id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
	DocumentCount int64     `json:"document_count"`
}

type VaultDeleteResponse struct {
	VaultID string `json:"vault_id"`
	Status  string `json:"status"`
}
