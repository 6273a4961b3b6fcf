package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"servihub/config"
	"servihub/models"
	"servihub/services/booking"
	"servihub/services/notification"

	bookingRepo "servihub/database/repository/booking"
	scheduleRepo "servihub/database/repository/schedule"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Task types owned by this worker.
const (
	TypeDeadlineSweep  = "booking:deadline_sweep"
	TypeScheduleExpand = "schedule:expand"
)

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewQueueClient returns the asynq client the dispatcher enqueues onto.
func NewQueueClient() *asynq.Client {
	return asynq.NewClient(redisOpts())
}

// InitWorker runs the async worker and its periodic schedule in background.
func InitWorker(engine booking.Engine, bookings bookingRepo.BookingRepository, schedules scheduleRepo.ScheduleRepository, logger *zap.Logger) {
	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TypeNotificationEvent, handleNotificationEvent(logger))
	mux.HandleFunc(TypeDeadlineSweep, handleDeadlineSweep(engine, bookings, logger))
	mux.HandleFunc(TypeScheduleExpand, handleScheduleExpand(engine, schedules, logger))

	go startScheduler(logger)

	// Start async worker with retry logic
	go func() {
		log.Println("[Worker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[Worker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[Worker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// startScheduler registers the periodic sweep and expansion ticks.
func startScheduler(logger *zap.Logger) {
	scheduler := asynq.NewScheduler(redisOpts(), &asynq.SchedulerOpts{})

	if _, err := scheduler.Register("@every 10m", asynq.NewTask(TypeDeadlineSweep, nil)); err != nil {
		logger.Error("failed to register deadline sweep", zap.Error(err))
	}
	if _, err := scheduler.Register("@every 24h", asynq.NewTask(TypeScheduleExpand, nil)); err != nil {
		logger.Error("failed to register schedule expansion", zap.Error(err))
	}

	if err := scheduler.Run(); err != nil {
		logger.Error("scheduler stopped", zap.Error(err))
	}
}

// handleNotificationEvent hands engine events to the surrounding product's
// delivery pipeline. Content templating and transport live there; this
// worker only logs the structured payload.
func handleNotificationEvent(logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var event models.NotificationEvent
		if err := json.Unmarshal(task.Payload(), &event); err != nil {
			logger.Error("invalid notification payload", zap.Error(err))
			return err
		}
		logger.Info("notification event ready for delivery",
			zap.String("type", event.Type),
			zap.String("bookingId", event.BookingID),
			zap.String("clientId", event.ClientID),
			zap.String("providerId", event.ProviderID))
		return nil
	}
}

// handleDeadlineSweep releases assignments whose acceptance deadline passed
// and re-matches each booking, excluding the provider that never responded.
func handleDeadlineSweep(engine booking.Engine, bookings bookingRepo.BookingRepository, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		expired, err := bookings.ExpiredAssignments(ctx, time.Now())
		if err != nil {
			logger.Error("deadline sweep query failed", zap.Error(err))
			return err
		}

		for _, b := range expired {
			result, err := engine.ReassignExpired(ctx, b.ID)
			if err != nil {
				logger.Warn("reassignment failed",
					zap.String("bookingId", b.ID), zap.Error(err))
				continue
			}
			logger.Info("expired assignment swept",
				zap.String("bookingId", b.ID),
				zap.String("newProviderId", result.ProviderID),
				zap.Bool("manualRequired", result.ManualRequired))
		}
		return nil
	}
}

// handleScheduleExpand extends every active recurring schedule up to the
// rolling horizon.
func handleScheduleExpand(engine booking.Engine, schedules scheduleRepo.ScheduleRepository, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		active, err := schedules.Active(ctx)
		if err != nil {
			logger.Error("active schedule query failed", zap.Error(err))
			return err
		}

		for _, s := range active {
			ids, err := engine.ExpandSchedule(ctx, s.ID)
			if err != nil {
				logger.Warn("schedule expansion failed",
					zap.String("scheduleId", s.ID), zap.Error(err))
				continue
			}
			if len(ids) > 0 {
				logger.Info("schedule expanded",
					zap.String("scheduleId", s.ID),
					zap.Int("generated", len(ids)))
			}
		}
		return nil
	}
}
