package models

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ValidRole reports whether role is one of user, assistant, system.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is an append-only conversation entry. The role check constraint is
// enforced at the database level as well as in MessageService.
type Message struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	SessionID string    `json:"session_id" gorm:"not null;index:idx_messages_session_created,priority:1"`
	Role      string    `json:"role" gorm:"not null;check:role IN ('user','assistant','system')"`
	Content   string    `json:"content" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;index:idx_messages_session_created,priority:2,sort:desc"`
}

func (Message) TableName() string {
	return "messages"
}
