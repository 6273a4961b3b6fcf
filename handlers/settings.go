package handlers

import (
	"net/http"

	"servihub/models"
	"servihub/services/settings"
	"servihub/utils"

	"github.com/gin-gonic/gin"
)

// SettingsHandler exposes the pricing settings accessor. Updates never touch
// bookings already priced; they only affect later quotes.
type SettingsHandler struct {
	Source settings.Source
}

func NewSettingsHandler(source settings.Source) *SettingsHandler {
	return &SettingsHandler{Source: source}
}

// GetPricing handles GET /api/settings/pricing.
func (h *SettingsHandler) GetPricing(c *gin.Context) {
	snapshot, err := h.Source.Current(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load pricing settings", err.Error())
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// UpdatePricing handles PUT /api/settings/pricing.
func (h *SettingsHandler) UpdatePricing(c *gin.Context) {
	var req models.PricingSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid settings payload", err.Error())
		return
	}
	if err := h.Source.Update(c.Request.Context(), req); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to update pricing settings", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
