package settingsRepo

import (
	"context"

	"servihub/models"
)

// SettingsRepository persists the single platform pricing-settings document.
type SettingsRepository interface {
	Get(ctx context.Context) (*models.PricingSettings, error)
	Update(ctx context.Context, settings models.PricingSettings) error
}
