package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"servihub/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeNotificationEvent is the asynq task type carrying engine events.
const TypeNotificationEvent = "notification:event"

// AsynqDispatcher enqueues events onto the shared task queue. The worker in
// cron/ hands them to the surrounding product's delivery pipeline.
type AsynqDispatcher struct {
	Client *asynq.Client
	Logger *zap.Logger
}

func NewAsynqDispatcher(client *asynq.Client, logger *zap.Logger) *AsynqDispatcher {
	return &AsynqDispatcher{Client: client, Logger: logger}
}

func (d *AsynqDispatcher) Emit(ctx context.Context, event models.NotificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}
	task := asynq.NewTask(TypeNotificationEvent, payload)
	if _, err := d.Client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue notification event: %w", err)
	}
	d.Logger.Debug("notification event enqueued",
		zap.String("type", event.Type),
		zap.String("bookingId", event.BookingID))
	return nil
}

// LogDispatcher only logs events. Used in tests and when no queue is wired.
type LogDispatcher struct {
	Logger *zap.Logger
}

func (d *LogDispatcher) Emit(ctx context.Context, event models.NotificationEvent) error {
	d.Logger.Info("notification event",
		zap.String("type", event.Type),
		zap.String("bookingId", event.BookingID),
		zap.String("clientId", event.ClientID),
		zap.String("providerId", event.ProviderID))
	return nil
}
