package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vaultrag-api/errs"
	"github.com/vaultrag-api/models"
	"github.com/vaultrag-api/services"
)

type VaultHandlers struct {
	vaultService services.VaultService
}

func NewVaultHandlers(vaultService services.VaultService) *VaultHandlers {
	return &VaultHandlers{vaultService: vaultService}
}

func (h *VaultHandlers) CreateVault(c *gin.Context) {
	var req models.CreateVaultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.Validation("invalid request body: %v", err))
		return
	}

	vault, err := h.vaultService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, vault)
}

func (h *VaultHandlers) ListVaults(c *gin.Context) {
	vaults, err := h.vaultService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, vaults)
}

func (h *VaultHandlers) GetVault(c *gin.Context) {
	vault, err := h.vaultService.Get(c.Request.Context(), c.Param("vault_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, vault)
}

func (h *VaultHandlers) DeleteVault(c *gin.Context) {
	vaultID := c.Param("vault_id")
	if err := h.vaultService.Delete(c.Request.Context(), vaultID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.VaultDeleteResponse{
		VaultID: vaultID,
		Status:  "deleted",
	})
}
