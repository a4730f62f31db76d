package impl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/vaultrag-api/errs"
	"github.com/vaultrag-api/models"
	"github.com/vaultrag-api/services"
)

type sessionServiceImpl struct {
	db *gorm.DB
}

func NewSessionService(db *gorm.DB) services.SessionService {
	return &sessionServiceImpl{db: db}
}

// GetOrCreate returns the existing session or creates one with the
// caller-chosen id. A concurrent create racing on the same id falls back to
// re-fetching the winner's row.
func (s *sessionServiceImpl) GetOrCreate(ctx context.Context, sessionID string, userID *string) (*models.Session, error) {
	var session models.Session
	err := s.db.WithContext(ctx).Where("id = ?", sessionID).First(&session).Error
	if err == nil {
		return &session, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.StoreUnavailable(fmt.Errorf("get session: %w", err))
	}

	now := time.Now().UTC()
	session = models.Session{
		ID:           sessionID,
		UserID:       userID,
		CreatedAt:    now,
		LastActiveAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var existing models.Session
			if ferr := s.db.WithContext(ctx).Where("id = ?", sessionID).First(&existing).Error; ferr == nil {
				return &existing, nil
			}
		}
		return nil, errs.StoreUnavailable(fmt.Errorf("create session: %w", err))
	}
	return &session, nil
}

// UpdateLastActive bumps last_active_at, never moving it backwards.
func (s *sessionServiceImpl) UpdateLastActive(ctx context.Context, sessionID string) error {
	now := time.Now().UTC()
	err := s.db.WithContext(ctx).
		Exec("UPDATE sessions SET last_active_at = ? WHERE id = ? AND last_active_at < ?", now, sessionID, now).Error
	if err != nil {
		return errs.StoreUnavailable(fmt.Errorf("update session activity: %w", err))
	}
	return nil
}
