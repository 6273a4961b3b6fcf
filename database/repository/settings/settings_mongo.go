package settingsRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"servihub/config"
	"servihub/database"
	"servihub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const settingsDocID = "pricing"

// MongoSettingsRepo implements SettingsRepository using MongoDB.
type MongoSettingsRepo struct {
	coll *mongo.Collection
}

// NewMongoSettingsRepo creates a new instance of SettingsRepository using MongoDB.
func NewMongoSettingsRepo() SettingsRepository {
	coll := database.DB().Collection("platform_settings")
	return &MongoSettingsRepo{coll: coll}
}

// Get returns the pricing settings document, seeding it from config defaults
// when none exists yet.
func (r *MongoSettingsRepo) Get(ctx context.Context) (*models.PricingSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var settings models.PricingSettings
	err := r.coll.FindOne(ctx, bson.M{"_id": settingsDocID}).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		seeded := models.PricingSettings{
			StandardCommissionPct:  config.AppConfig.StandardCommissionPct,
			EmergencyCommissionPct: config.AppConfig.EmergencyCommissionPct,
			SubscriptionFlatFee:    config.AppConfig.SubscriptionFlatFee,
			WeekendMarkupPct:       config.AppConfig.WeekendMarkupPct,
			WeekendBonusAmount:     config.AppConfig.WeekendBonusAmount,
			UpdatedAt:              time.Now(),
		}
		if err := r.Update(ctx, seeded); err != nil {
			return nil, err
		}
		return &seeded, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pricing settings: %w", err)
	}
	return &settings, nil
}

func (r *MongoSettingsRepo) Update(ctx context.Context, settings models.PricingSettings) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	settings.UpdatedAt = time.Now()
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": settingsDocID}, settings, opts); err != nil {
		return fmt.Errorf("failed to update pricing settings: %w", err)
	}
	return nil
}
