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

type agentServiceImpl struct {
	db     *gorm.DB
	vaults services.VaultService
}

func NewAgentService(db *gorm.DB, vaults services.VaultService) services.AgentService {
	return &agentServiceImpl{
		db:     db,
		vaults: vaults,
	}
}

func (s *agentServiceImpl) Create(ctx context.Context, req models.CreateAgentRequest) (*models.Agent, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errs.Validation("agent name is required")
	}
	if req.VaultID == "" {
		return nil, errs.Validation("vault_id is required")
	}
	if strings.TrimSpace(req.SystemPrompt) == "" {
		return nil, errs.Validation("system_prompt is required")
	}

	if err := s.vaults.Exists(ctx, req.VaultID); err != nil {
		return nil, err
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&models.Agent{}).
		Where("name = ? AND vault_id = ?", name, req.VaultID).
		Count(&count).Error
	if err != nil {
		return nil, errs.StoreUnavailable(fmt.Errorf("check agent name: %w", err))
	}
	if count > 0 {
		return nil, errs.Conflict("agent %q already exists in vault %s", name, req.VaultID)
	}

	agent := &models.Agent{
		AgentID:      uuid.New().String(),
		Name:         name,
		VaultID:      req.VaultID,
		SystemPrompt: req.SystemPrompt,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(agent).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errs.Conflict("agent %q already exists in vault %s", name, req.VaultID)
		}
		return nil, errs.StoreUnavailable(fmt.Errorf("create agent: %w", err))
	}

	log.Printf("Created agent %s (name=%q, vault=%s)", agent.AgentID, agent.Name, agent.VaultID)
	return agent, nil
}

func (s *agentServiceImpl) List(ctx context.Context, vaultID *string) ([]models.Agent, error) {
	query := s.db.WithContext(ctx).Model(&models.Agent{})
	if vaultID != nil {
		query = query.Where("vault_id = ?", *vaultID)
	}

	var agents []models.Agent
	if err := query.Order("created_at DESC").Find(&agents).Error; err != nil {
		return nil, errs.StoreUnavailable(fmt.Errorf("list agents: %w", err))
	}
	if agents == nil {
		agents = []models.Agent{}
	}
	return agents, nil
}

func (s *agentServiceImpl) Get(ctx context.Context, agentID string) (*models.Agent, error) {
	var agent models.Agent
	if err := s.db.WithContext(ctx).Where("agent_id = ?", agentID).First(&agent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("agent", agentID)
		}
		return nil, errs.StoreUnavailable(fmt.Errorf("get agent: %w", err))
	}
	return &agent, nil
}

func (s *agentServiceImpl) Delete(ctx context.Context, agentID string) error {
	result := s.db.WithContext(ctx).Where("agent_id = ?", agentID).Delete(&models.Agent{})
	if result.Error != nil {
		return errs.StoreUnavailable(fmt.Errorf("delete agent: %w", result.Error))
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("agent", agentID)
	}
	log.Printf("Deleted agent %s", agentID)
	return nil
}
