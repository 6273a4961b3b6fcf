package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"servihub/config"
	"servihub/cron"
	"servihub/database"
	bookingRepo "servihub/database/repository/booking"
	catalogRepo "servihub/database/repository/catalog"
	providerRepo "servihub/database/repository/provider"
	scheduleRepo "servihub/database/repository/schedule"
	settingsRepo "servihub/database/repository/settings"
	entitlementRepo "servihub/database/repository/entitlement"
	"servihub/handlers"
	"servihub/middleware"
	"servihub/routes"
	"servihub/services/booking"
	"servihub/services/location"
	"servihub/services/notification"
	"servihub/services/settings"
	"servihub/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	tz, err := time.LoadLocation(config.AppConfig.BookingTimezone)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid booking timezone %q: %v", config.AppConfig.BookingTimezone, err)
	}

	graph, err := location.LoadGraph(config.AppConfig.LocationGraphFile)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to load location graph: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	provRepo := providerRepo.NewMongoProviderRepo()
	bookRepo := bookingRepo.NewMongoBookingRepo()
	entRepo := entitlementRepo.NewMongoEntitlementRepo()
	schedRepo := scheduleRepo.NewMongoScheduleRepo()
	catRepo := catalogRepo.NewMongoCatalogRepo()
	setRepo := settingsRepo.NewMongoSettingsRepo()

	// services.
	settingsSource := settings.NewDefaultSource(setRepo, utils.GetCacheClient(), logger)

	queueClient := cron.NewQueueClient()
	defer queueClient.Close()
	dispatcher := notification.NewAsynqDispatcher(queueClient, logger)

	matchingService := &booking.DefaultMatchingService{
		ProviderRepo: provRepo,
		Graph:        graph,
	}

	engine := &booking.DefaultEngine{
		Bookings:         bookRepo,
		Providers:        provRepo,
		Catalog:          catRepo,
		Schedules:        schedRepo,
		Matcher:          matchingService,
		Ledger:           booking.NewEntitlementLedger(entRepo),
		Settings:         settingsSource,
		Notifier:         dispatcher,
		Logger:           logger,
		TZ:               tz,
		Now:              time.Now,
		AcceptanceWindow: time.Duration(config.AppConfig.AcceptanceWindowHours) * time.Hour,
		HorizonMonths:    config.AppConfig.RecurrenceHorizonMonths,
	}

	bookingHandler := handlers.NewBookingHandler(engine, logger)
	scheduleHandler := handlers.NewScheduleHandler(engine, logger)
	providerHandler := handlers.NewProviderHandler(provRepo, logger)
	settingsHandler := handlers.NewSettingsHandler(settingsSource)

	routes.RegisterRoutes(router, bookingHandler, scheduleHandler, providerHandler, settingsHandler)

	// Background worker: notification handoff, deadline sweep, schedule expansion.
	cron.InitWorker(engine, bookRepo, schedRepo, logger)
	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// Warm the settings document so the first booking does not pay the seed cost.
	if _, err := settingsSource.Current(context.Background()); err != nil {
		logger.Sugar().Warnf("main: failed to warm pricing settings: %v", err)
	}

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
