package handlers

import (
	"net/http"

	providerRepo "servihub/database/repository/provider"
	"servihub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProviderHandler exposes the directory mutations the engine depends on:
// availability (provider-controlled) and verification (set by the external
// verification workflow).
type ProviderHandler struct {
	Repo   providerRepo.ProviderRepository
	Logger *zap.Logger
}

func NewProviderHandler(repo providerRepo.ProviderRepository, logger *zap.Logger) *ProviderHandler {
	return &ProviderHandler{Repo: repo, Logger: logger}
}

// SetAvailability handles PUT /api/providers/:id/availability.
func (h *ProviderHandler) SetAvailability(c *gin.Context) {
	var req struct {
		Available *bool `json:"available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid availability request", err.Error())
		return
	}

	id := c.Param("id")
	if err := h.Repo.SetAvailability(c.Request.Context(), id, *req.Available); err != nil {
		utils.JSONError(c, http.StatusNotFound, "failed to update availability", err.Error())
		return
	}
	h.Logger.Info("provider availability updated",
		zap.String("providerId", id), zap.Bool("available", *req.Available))
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// SetVerified handles PUT /api/providers/:id/verified.
func (h *ProviderHandler) SetVerified(c *gin.Context) {
	var req struct {
		Verified *bool `json:"verified" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid verification request", err.Error())
		return
	}

	id := c.Param("id")
	if err := h.Repo.SetVerified(c.Request.Context(), id, *req.Verified); err != nil {
		utils.JSONError(c, http.StatusNotFound, "failed to update verification", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// Deactivate handles DELETE /api/providers/:id. Soft-deactivation only;
// provider records stay while bookings reference them.
func (h *ProviderHandler) Deactivate(c *gin.Context) {
	id := c.Param("id")
	if err := h.Repo.Deactivate(c.Request.Context(), id); err != nil {
		utils.JSONError(c, http.StatusNotFound, "failed to deactivate provider", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}
