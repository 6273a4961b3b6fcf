package handlers

import (
	"errors"
	"net/http"

	"servihub/models"
	"servihub/services/booking"
	"servihub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking engine over HTTP.
type BookingHandler struct {
	Engine booking.Engine
	Logger *zap.Logger
}

func NewBookingHandler(engine booking.Engine, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Engine: engine, Logger: logger}
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid booking request", err.Error())
		return
	}

	result, err := h.Engine.CreateBooking(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, booking.ErrConcurrentModification) {
			utils.JSONError(c, http.StatusConflict, "booking conflicted with a concurrent update, retry", err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to create booking", err.Error())
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetBooking handles GET /api/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	b, err := h.Engine.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "booking not found", err.Error())
		return
	}
	c.JSON(http.StatusOK, b)
}

// AttemptAssignment handles POST /api/bookings/:id/assign. Safe to re-invoke
// on an assigned booking; the existing assignment comes back unchanged.
func (h *BookingHandler) AttemptAssignment(c *gin.Context) {
	var req struct {
		ExcludeProviderIDs []string `json:"excludeProviderIds"`
	}
	// The body is optional.
	_ = c.ShouldBindJSON(&req)

	result, err := h.Engine.AttemptAssignment(c.Request.Context(), c.Param("id"), req.ExcludeProviderIDs...)
	if err != nil {
		if errors.Is(err, booking.ErrConcurrentModification) {
			utils.JSONError(c, http.StatusConflict, "assignment conflicted with a concurrent update, retry", err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "assignment attempt failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

// Transition handles POST /api/bookings/:id/transition.
func (h *BookingHandler) Transition(c *gin.Context) {
	var req struct {
		Event string `json:"event" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid transition request", err.Error())
		return
	}

	b, err := h.Engine.Transition(c.Request.Context(), c.Param("id"), booking.Event(req.Event))
	if err != nil {
		var invalid *booking.InvalidTransitionError
		if errors.As(err, &invalid) {
			utils.JSONError(c, http.StatusConflict, "invalid transition", err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "transition failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelBooking handles POST /api/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	if err := h.Engine.CancelBooking(c.Request.Context(), c.Param("id"), req.Reason); err != nil {
		var invalid *booking.InvalidTransitionError
		if errors.As(err, &invalid) {
			utils.JSONError(c, http.StatusConflict, "booking can no longer be cancelled", err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "cancellation failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// ConsumeEntitlement handles POST /api/entitlements/consume.
func (h *BookingHandler) ConsumeEntitlement(c *gin.Context) {
	var req struct {
		ClientID  string `json:"clientId" binding:"required"`
		ServiceID string `json:"serviceId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid entitlement request", err.Error())
		return
	}

	result, err := h.Engine.ConsumeEntitlement(c.Request.Context(), req.ClientID, req.ServiceID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "entitlement consumption failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}
