package routes

import (
	"servihub/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers all endpoints for the booking engine.
func RegisterBookingRoutes(r *gin.Engine, h *handlers.BookingHandler) {
	bookings := r.Group("/api/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/assign", h.AttemptAssignment)
		bookings.POST("/:id/transition", h.Transition)
		bookings.POST("/:id/cancel", h.CancelBooking)
	}

	entitlements := r.Group("/api/entitlements")
	{
		entitlements.POST("/consume", h.ConsumeEntitlement)
	}
}

// RegisterScheduleRoutes registers recurring schedule endpoints.
func RegisterScheduleRoutes(r *gin.Engine, h *handlers.ScheduleHandler) {
	schedules := r.Group("/api/schedules")
	{
		schedules.POST("", h.CreateSchedule)
		schedules.POST("/:id/expand", h.ExpandSchedule)
		schedules.DELETE("/:id", h.DeactivateSchedule)
	}
}
