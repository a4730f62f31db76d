package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vaultrag-api/errs"
	"github.com/vaultrag-api/models"
	"github.com/vaultrag-api/services"
)

type DocumentHandlers struct {
	documentService services.DocumentService
}

func NewDocumentHandlers(documentService services.DocumentService) *DocumentHandlers {
	return &DocumentHandlers{documentService: documentService}
}

func (h *DocumentHandlers) IngestDocument(c *gin.Context) {
	var req models.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.Validation("invalid request body: %v", err))
		return
	}

	documentID, err := h.documentService.Ingest(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.IngestResponse{
		DocumentID: documentID,
		Status:     "indexed",
	})
}

func (h *DocumentHandlers) ListDocuments(c *gin.Context) {
	var vaultID *string
	if v := c.Query("vault_id"); v != "" {
		vaultID = &v
	}

	limit, err := queryInt(c, "limit", 50)
	if err != nil {
		respondError(c, err)
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		respondError(c, err)
		return
	}

	response, err := h.documentService.List(c.Request.Context(), vaultID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *DocumentHandlers) GetDocument(c *gin.Context) {
	doc, err := h.documentService.Get(c.Request.Context(), c.Param("document_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandlers) DeleteDocument(c *gin.Context) {
	documentID := c.Param("document_id")
	if err := h.documentService.Delete(c.Request.Context(), documentID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.DocumentDeleteResponse{
		Message:    fmt.Sprintf("Document %s deleted", documentID),
		DocumentID: documentID,
	})
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, errs.Validation("invalid %s parameter: %q", name, raw)
	}
	return value, nil
}
