package catalogRepo

import (
	"context"

	"servihub/models"
)

// CatalogRepository looks up clients and service offerings. These records are
// owned by the surrounding product's directory; the engine only reads them.
type CatalogRepository interface {
	GetClient(ctx context.Context, id string) (*models.Client, error)
	GetService(ctx context.Context, id string) (*models.Service, error)
}
