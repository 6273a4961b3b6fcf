package routes

import (
	"servihub/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every endpoint of the engine.
func RegisterRoutes(
	r *gin.Engine,
	bookingHandler *handlers.BookingHandler,
	scheduleHandler *handlers.ScheduleHandler,
	providerHandler *handlers.ProviderHandler,
	settingsHandler *handlers.SettingsHandler,
) {
	r.GET("/health", handlers.Health)

	RegisterBookingRoutes(r, bookingHandler)
	RegisterScheduleRoutes(r, scheduleHandler)

	providers := r.Group("/api/providers")
	{
		providers.PUT("/:id/availability", providerHandler.SetAvailability)
		providers.PUT("/:id/verified", providerHandler.SetVerified)
		providers.DELETE("/:id", providerHandler.Deactivate)
	}

	settings := r.Group("/api/settings")
	{
		settings.GET("/pricing", settingsHandler.GetPricing)
		settings.PUT("/pricing", settingsHandler.UpdatePricing)
	}
}
