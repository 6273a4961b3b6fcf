package entitlementRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"servihub/database"
	"servihub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoEntitlementRepo implements EntitlementRepository using MongoDB.
type MongoEntitlementRepo struct {
	packagesColl *mongo.Collection
	activeColl   *mongo.Collection
	usageColl    *mongo.Collection
}

// NewMongoEntitlementRepo creates a new instance of EntitlementRepository using MongoDB.
func NewMongoEntitlementRepo() EntitlementRepository {
	db := database.DB()
	return &MongoEntitlementRepo{
		packagesColl: db.Collection("subscription_packages"),
		activeColl:   db.Collection("active_packages"),
		usageColl:    db.Collection("usage_records"),
	}
}

func (r *MongoEntitlementRepo) ActivePackage(ctx context.Context, clientID string, today time.Time) (*models.ActivePackage, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"clientId":   clientID,
		"status":     "active",
		"expiryDate": bson.M{"$gte": today},
	}
	var pkg models.ActivePackage
	err := r.activeColl.FindOne(ctx, filter).Decode(&pkg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active package for client %s: %w", clientID, err)
	}
	return &pkg, nil
}

func (r *MongoEntitlementRepo) GetPackage(ctx context.Context, packageID string) (*models.SubscriptionPackage, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var pkg models.SubscriptionPackage
	if err := r.packagesColl.FindOne(ctx, bson.M{"id": packageID}).Decode(&pkg); err != nil {
		return nil, fmt.Errorf("failed to fetch package %s: %w", packageID, err)
	}
	return &pkg, nil
}

// CountUsageSince counts ledger entries in the trailing window. The window is
// rolling, not calendar-aligned: records at or after `since` count, older
// records have rolled out of the cycle.
func (r *MongoEntitlementRepo) CountUsageSince(ctx context.Context, clientID, packageID, serviceID string, since time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"clientId":  clientID,
		"packageId": packageID,
		"serviceId": serviceID,
		"timestamp": bson.M{"$gte": since},
	}
	n, err := r.usageColl.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count usage records: %w", err)
	}
	return int(n), nil
}

func (r *MongoEntitlementRepo) AppendUsage(ctx context.Context, record *models.UsageRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.usageColl.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to append usage record: %w", err)
	}
	return nil
}

func (r *MongoEntitlementRepo) RemoveUsage(ctx context.Context, recordID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.usageColl.DeleteOne(ctx, bson.M{"id": recordID}); err != nil {
		return fmt.Errorf("failed to remove usage record %s: %w", recordID, err)
	}
	return nil
}
