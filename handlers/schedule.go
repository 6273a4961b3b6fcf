package handlers

import (
	"net/http"
	"time"

	"servihub/models"
	"servihub/services/booking"
	"servihub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ScheduleHandler exposes recurring schedule operations.
type ScheduleHandler struct {
	Engine booking.Engine
	Logger *zap.Logger
}

func NewScheduleHandler(engine booking.Engine, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{Engine: engine, Logger: logger}
}

type createScheduleRequest struct {
	ClientID            string `json:"clientId" binding:"required"`
	ServiceID           string `json:"serviceId" binding:"required"`
	Frequency           string `json:"frequency" binding:"required"`
	DayOfWeek           int    `json:"dayOfWeek"`
	BookingTime         string `json:"bookingTime"`
	StartDate           string `json:"startDate" binding:"required"` // "2006-01-02"
	EndDate             string `json:"endDate"`
	SpecialInstructions string `json:"specialInstructions"`
}

// CreateSchedule handles POST /api/schedules.
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	var req createScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid schedule request", err.Error())
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid start date", err.Error())
		return
	}
	var endDate *time.Time
	if req.EndDate != "" {
		parsed, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid end date", err.Error())
			return
		}
		endDate = &parsed
	}

	schedule := models.RecurringSchedule{
		ClientID:            req.ClientID,
		ServiceID:           req.ServiceID,
		Frequency:           req.Frequency,
		DayOfWeek:           req.DayOfWeek,
		BookingTime:         req.BookingTime,
		StartDate:           startDate,
		EndDate:             endDate,
		SpecialInstructions: req.SpecialInstructions,
	}
	if err := h.Engine.CreateSchedule(c.Request.Context(), &schedule); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "failed to create schedule", err.Error())
		return
	}
	c.JSON(http.StatusCreated, schedule)
}

// ExpandSchedule handles POST /api/schedules/:id/expand.
func (h *ScheduleHandler) ExpandSchedule(c *gin.Context) {
	bookingIDs, err := h.Engine.ExpandSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "schedule expansion failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingIds": bookingIDs})
}

// DeactivateSchedule handles DELETE /api/schedules/:id. Bookings already
// generated from the schedule are unaffected.
func (h *ScheduleHandler) DeactivateSchedule(c *gin.Context) {
	if err := h.Engine.DeactivateSchedule(c.Request.Context(), c.Param("id")); err != nil {
		utils.JSONError(c, http.StatusNotFound, "failed to deactivate schedule", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}
