package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vaultrag-api/errs"
	"github.com/vaultrag-api/models"
	"github.com/vaultrag-api/services"
)

type AgentHandlers struct {
	agentService services.AgentService
}

func NewAgentHandlers(agentService services.AgentService) *AgentHandlers {
	return &AgentHandlers{agentService: agentService}
}

func (h *AgentHandlers) CreateAgent(c *gin.Context) {
	var req models.CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.Validation("invalid request body: %v", err))
		return
	}

	agent, err := h.agentService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, agent)
}

func (h *AgentHandlers) ListAgents(c *gin.Context) {
	var vaultID *string
	if v := c.Query("vault_id"); v != "" {
		vaultID = &v
	}

	agents, err := h.agentService.List(c.Request.Context(), vaultID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, agents)
}

func (h *AgentHandlers) GetAgent(c *gin.Context) {
	agent, err := h.agentService.Get(c.Request.Context(), c.Param("agent_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, agent)
}

func (h *AgentHandlers) DeleteAgent(c *gin.Context) {
	agentID := c.Param("agent_id")
	if err := h.agentService.Delete(c.Request.Context(), agentID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AgentDeleteResponse{
		Success: true,
		Message: "Agent deleted",
	})
}
