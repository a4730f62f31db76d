package impl

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaultrag-api/errs"
	"github.com/vaultrag-api/models"
	"github.com/vaultrag-api/services"
)

type vaultServiceImpl struct {
	db      *gorm.DB
	vectors services.VectorStore
}

func NewVaultService(db *gorm.DB, vectors services.VectorStore) services.VaultService {
	return &vaultServiceImpl{
		db:      db,
		vectors: vectors,
	}
}

func (s *vaultServiceImpl) Create(ctx context.Context, req models.CreateVaultRequest) (*models.VaultInfo, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errs.Validation("vault name is required")
	}

	// Case-insensitive pre-check; the unique index is the backstop for races.
	var existing models.Vault
	err := s.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&existing).Error
	if err == nil {
		return nil, errs.Conflict("vault with name %q already exists", name)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.StoreUnavailable(fmt.Errorf("check vault name: %w", err))
	}

	now := time.Now().UTC()
	vault := &models.Vault{
		VaultID:     uuid.New().String(),
		Name:        name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.db.WithContext(ctx).Create(vault).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errs.Conflict("vault with name %q already exists", name)
		}
		return nil, errs.StoreUnavailable(fmt.Errorf("create vault: %w", err))
	}

	log.Printf("Created vault %s (name=%q)", vault.VaultID, vault.Name)

	return &models.VaultInfo{
		VaultID:       vault.VaultID,
		Name:          vault.Name,
		Description:   vault.Description,
		CreatedAt:     vault.CreatedAt,
		DocumentCount: 0,
	}, nil
}

const listVaultsSQL = `
SELECT v.vault_id, v.name, v.description, v.created_at,
	(SELECT COUNT(*) FROM documents d WHERE d.vault_id = v.vault_id) AS document_count
FROM vaults v
ORDER BY v.created_at DESC`

func (s *vaultServiceImpl) List(ctx context.Context) ([]models.VaultInfo, error) {
	var vaults []models.VaultInfo
	if err := s.db.WithContext(ctx).Raw(listVaultsSQL).Scan(&vaults).Error; err != nil {
		return nil, errs.StoreUnavailable(fmt.Errorf("list vaults: %w", err))
	}
	if vaults == nil {
		vaults = []models.VaultInfo{}
	}
	return vaults, nil
}

func (s *vaultServiceImpl) Get(ctx context.Context, vaultID string) (*models.VaultInfo, error) {
	var vault models.Vault
	if err := s.db.WithContext(ctx).Where("vault_id = ?", vaultID).First(&vault).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("vault", vaultID)
		}
		return nil, errs.StoreUnavailable(fmt.Errorf("get vault: %w", err))
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Document{}).Where("vault_id = ?", vaultID).Count(&count).Error; err != nil {
		return nil, errs.StoreUnavailable(fmt.Errorf("count vault documents: %w", err))
	}

	return &models.VaultInfo{
		VaultID:       vault.VaultID,
		Name:          vault.Name,
		Description:   vault.Description,
		CreatedAt:     vault.CreatedAt,
		DocumentCount: count,
	}, nil
}

// Delete removes the vault and everything it owns, leaves first: embeddings,
// then agents and documents, then the vault row itself. Every step is
// idempotent, so a crashed delete converges on retry.
func (s *vaultServiceImpl) Delete(ctx context.Context, vaultID string) error {
	var vault models.Vault
	if err := s.db.WithContext(ctx).Where("vault_id = ?", vaultID).First(&vault).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("vault", vaultID)
		}
		return errs.StoreUnavailable(fmt.Errorf("get vault: %w", err))
	}

	if err := s.vectors.DeleteByVault(ctx, vaultID); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Where("vault_id = ?", vaultID).Delete(&models.Agent{}).Error; err != nil {
		return errs.StoreUnavailable(fmt.Errorf("delete vault agents: %w", err))
	}

	if err := s.db.WithContext(ctx).Where("vault_id = ?", vaultID).Delete(&models.Document{}).Error; err != nil {
		return errs.StoreUnavailable(fmt.Errorf("delete vault documents: %w", err))
	}

	if err := s.db.WithContext(ctx).Where("vault_id = ?", vaultID).Delete(&models.Vault{}).Error; err != nil {
		return errs.StoreUnavailable(fmt.Errorf("delete vault: %w", err))
	}

	log.Printf("Deleted vault %s (name=%q)", vaultID, vault.Name)
	return nil
}

func (s *vaultServiceImpl) Exists(ctx context.Context, vaultID string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Vault{}).Where("vault_id = ?", vaultID).Count(&count).Error; err != nil {
		return errs.StoreUnavailable(fmt.Errorf("check vault: %w", err))
	}
	if count == 0 {
		return errs.NotFound("vault", vaultID)
	}
	return nil
}
