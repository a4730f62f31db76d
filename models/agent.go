package models

import "time"

// Agent binds a system prompt to a vault. (name, vault_id) is unique;
// deleting the owning vault removes the agent.
type Agent struct {
	AgentID      string    `json:"agent_id" gorm:"column:agent_id;primaryKey"`
	Name         string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_agents_vault_name,priority:2"`
	VaultID      string    `json:"vault_id" gorm:"not null;uniqueIndex:idx_agents_vault_name,priority:1"`
	SystemPrompt string    `json:"system_prompt" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null;index:idx_agents_created_at,sort:desc"`
}

func (Agent) TableName() string {
	return "agents"
}

type CreateAgentRequest struct {
	Name         string `json:"name"`
	VaultID      string `json:"vault_id"`
	SystemPrompt string `json:"system_prompt"`
}

type AgentDeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
