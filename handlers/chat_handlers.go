package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vaultrag-api/errs"
	"github.com/vaultrag-api/models"
	"github.com/vaultrag-api/services"
)

type ChatHandlers struct {
	chatService services.ChatService
}

func NewChatHandlers(chatService services.ChatService) *ChatHandlers {
	return &ChatHandlers{chatService: chatService}
}

// Chat runs one conversational turn.
func (h *ChatHandlers) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.Validation("invalid request body: %v", err))
		return
	}

	response, err := h.chatService.Chat(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
