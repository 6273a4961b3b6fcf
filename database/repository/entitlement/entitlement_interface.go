package entitlementRepo

import (
	"context"
	"time"

	"servihub/models"
)

// EntitlementRepository persists active packages and the append-only usage
// ledger. Usage records are never updated or deleted; used counts are always
// derived by counting records inside the trailing cycle window.
type EntitlementRepository interface {
	// ActivePackage returns the client's single active package, or nil when
	// the client has none valid on the given day.
	ActivePackage(ctx context.Context, clientID string, today time.Time) (*models.ActivePackage, error)
	GetPackage(ctx context.Context, packageID string) (*models.SubscriptionPackage, error)
	CountUsageSince(ctx context.Context, clientID, packageID, serviceID string, since time.Time) (int, error)
	AppendUsage(ctx context.Context, record *models.UsageRecord) error
	// RemoveUsage compensates a consumption whose booking failed to
	// persist. The one exception to the ledger being append-only.
	RemoveUsage(ctx context.Context, recordID string) error
}
