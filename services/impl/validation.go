package impl

import (
	"strings"

	"github.com/vaultrag-api/errs"
	"github.com/vaultrag-api/models"
)

// ValidateChatRequest checks a chat request before any state is touched.
func ValidateChatRequest(req models.ChatRequest) error {
	if strings.TrimSpace(req.SessionID) == "" {
		return errs.Validation("session_id is required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return errs.Validation("message must not be empty")
	}
	if req.Config != nil {
		if req.Config.TopK != nil && *req.Config.TopK < 1 {
			return errs.Validation("top_k must be at least 1, got %d", *req.Config.TopK)
		}
		if req.Config.Temperature != nil && (*req.Config.Temperature < 0 || *req.Config.Temperature > 2) {
			return errs.Validation("temperature must be between 0 and 2, got %g", *req.Config.Temperature)
		}
	}
	return nil
}
