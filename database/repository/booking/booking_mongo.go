package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"servihub/database"
	"servihub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a new instance of BookingRepository using MongoDB.
func NewMongoBookingRepo() BookingRepository {
	coll := database.DB().Collection("bookings")
	return &MongoBookingRepo{coll: coll}
}

func (r *MongoBookingRepo) Insert(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		return nil, fmt.Errorf("failed to fetch booking with id %s: %w", id, err)
	}
	return &booking, nil
}

// AssignProvider applies the assignment only while providerId is still unset.
// MatchedCount == 0 is the lost-update signal the engine branches on.
func (r *MongoBookingRepo) AssignProvider(ctx context.Context, bookingID, providerID string, deadline time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id": bookingID,
		"$or": bson.A{
			bson.M{"providerId": bson.M{"$exists": false}},
			bson.M{"providerId": ""},
		},
	}
	update := bson.M{"$set": bson.M{
		"providerId":         providerID,
		"status":             models.StatusAssigned,
		"assignmentStatus":   models.AssignmentAuto,
		"acceptanceDeadline": deadline,
		"updatedAt":          time.Now(),
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to assign provider to booking %s: %w", bookingID, err)
	}
	return res.MatchedCount > 0, nil
}

func (r *MongoBookingRepo) ClearAssignment(ctx context.Context, bookingID, failedProviderID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Only an unaccepted assignment may be released.
	filter := bson.M{"id": bookingID, "status": models.StatusAssigned}
	update := bson.M{
		"$set": bson.M{
			"providerId":       "",
			"status":           models.StatusPending,
			"assignmentStatus": models.AssignmentPending,
			"updatedAt":        time.Now(),
		},
		"$addToSet": bson.M{"failedProviderIds": failedProviderID},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to clear assignment on booking %s: %w", bookingID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("booking %s is not in an assigned state", bookingID)
	}
	return nil
}

func (r *MongoBookingRepo) UpdateStatus(ctx context.Context, bookingID string, status models.BookingStatus, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"status": status, "updatedAt": time.Now()}
	if reason != "" {
		set["cancelReason"] = reason
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": bookingID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update status of booking %s: %w", bookingID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("booking %s not found", bookingID)
	}
	return nil
}

func (r *MongoBookingRepo) SetAssignmentStatus(ctx context.Context, bookingID string, status models.AssignmentStatus) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"assignmentStatus": status, "updatedAt": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": bookingID}, update)
	if err != nil {
		return fmt.Errorf("failed to update assignment status of booking %s: %w", bookingID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("booking %s not found", bookingID)
	}
	return nil
}

func (r *MongoBookingRepo) ExpiredAssignments(ctx context.Context, now time.Time) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"status":             models.StatusAssigned,
		"acceptanceDeadline": bson.M{"$lt": now},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("expired assignment query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *MongoBookingRepo) ListByClient(ctx context.Context, clientID string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"clientId": clientID})
	if err != nil {
		return nil, fmt.Errorf("client bookings query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}
