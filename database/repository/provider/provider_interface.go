package providerRepo

import (
	"context"

	"servihub/models"
)

// DirectoryCriteria narrows the provider directory query. Town is mandatory;
// ExcludeIDs removes providers that already failed to respond to the booking
// being (re)assigned.
type DirectoryCriteria struct {
	Town       string
	ExcludeIDs []string
}

// ProviderRepository defines the persistence operations for providers.
type ProviderRepository interface {
	Create(ctx context.Context, provider *models.Provider) error
	GetByID(ctx context.Context, id string) (*models.Provider, error)
	// Directory returns providers matching the criteria that are active,
	// available and verified. Distance filtering happens in the engine.
	Directory(ctx context.Context, criteria DirectoryCriteria) ([]models.Provider, error)
	SetAvailability(ctx context.Context, id string, available bool) error
	SetVerified(ctx context.Context, id string, verified bool) error
	// Deactivate soft-deletes a provider. Records stay in place so
	// historical bookings keep a valid reference.
	Deactivate(ctx context.Context, id string) error
	IncrementJobsCompleted(ctx context.Context, id string) error
}
