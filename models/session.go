package models

import "time"

// Session is a conversation thread. Its id is chosen by the caller;
// LastActiveAt is monotonically non-decreasing within a session.
type Session struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	UserID       *string   `json:"user_id"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null"`
	LastActiveAt time.Time `json:"last_active_at" gorm:"not null;index:idx_sessions_last_active"`
}

func (Session) TableName() string {
	return "sessions"
}
