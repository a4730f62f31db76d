// Package memory holds the conversational state primitives: the append-only
// message history with bounded loading, and the per-session write locks that
// keep concurrent chat turns totally ordered.
package memory

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/vaultrag-api/errs"
	"github.com/vaultrag-api/models"
	"github.com/vaultrag-api/providers"
)

// HistoryStore persists messages and loads the bounded short-term history
// for a session.
type HistoryStore struct {
	db *gorm.DB
}

func NewHistoryStore(db *gorm.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Save appends a message. The role is validated here in addition to the
// database check constraint.
func (s *HistoryStore) Save(ctx context.Context, sessionID, role, content string) (*models.Message, error) {
	if !models.ValidRole(role) {
		return nil, errs.Validation("invalid role %q: must be one of user, assistant, system", role)
	}

	msg := &models.Message{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, errs.StoreUnavailable(fmt.Errorf("save message for session %s: %w", sessionID, err))
	}
	return msg, nil
}

// Recent loads the newest limit messages for a session and returns them in
// ascending chronological order, ready for prompt assembly.
func (s *HistoryStore) Recent(ctx context.Context, sessionID string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		return nil, nil
	}

	var newestFirst []models.Message
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&newestFirst).Error
	if err != nil {
		return nil, errs.StoreUnavailable(fmt.Errorf("load history for session %s: %w", sessionID, err))
	}

	messages := make([]models.Message, len(newestFirst))
	for i, msg := range newestFirst {
		messages[len(newestFirst)-1-i] = msg
	}
	return messages, nil
}

// ToPrompt converts stored messages into provider chat messages, preserving
// order.
func ToPrompt(messages []models.Message) []providers.Message {
	prompt := make([]providers.Message, len(messages))
	for i, msg := range messages {
		prompt[i] = providers.Message{Role: msg.Role, Content: msg.Content}
	}
	return prompt
}
