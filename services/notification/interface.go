package notification

import (
	"context"

	"servihub/models"
)

// Dispatcher emits engine events for the surrounding product to deliver.
// Emission is fire-and-forget: the engine never blocks a booking on delivery,
// and delivery transport (push/email/SMS) lives outside this service.
type Dispatcher interface {
	Emit(ctx context.Context, event models.NotificationEvent) error
}
