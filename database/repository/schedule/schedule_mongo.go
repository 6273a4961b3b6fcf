package scheduleRepo

import (
	"context"
	"fmt"
	"time"

	"servihub/database"
	"servihub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoScheduleRepo implements ScheduleRepository using MongoDB.
type MongoScheduleRepo struct {
	coll *mongo.Collection
}

// NewMongoScheduleRepo creates a new instance of ScheduleRepository using MongoDB.
func NewMongoScheduleRepo() ScheduleRepository {
	coll := database.DB().Collection("recurring_schedules")
	return &MongoScheduleRepo{coll: coll}
}

func (r *MongoScheduleRepo) Insert(ctx context.Context, schedule *models.RecurringSchedule) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := r.coll.InsertOne(ctx, schedule); err != nil {
		return fmt.Errorf("failed to insert schedule: %w", err)
	}
	return nil
}

func (r *MongoScheduleRepo) GetByID(ctx context.Context, id string) (*models.RecurringSchedule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var schedule models.RecurringSchedule
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&schedule); err != nil {
		return nil, fmt.Errorf("failed to fetch schedule with id %s: %w", id, err)
	}
	return &schedule, nil
}

func (r *MongoScheduleRepo) Deactivate(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to deactivate schedule %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("schedule %s not found", id)
	}
	return nil
}

func (r *MongoScheduleRepo) AppendGeneratedBookings(ctx context.Context, id string, bookingIDs []string, lastDate time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	update := bson.M{
		"$push": bson.M{"generatedBookingIds": bson.M{"$each": bookingIDs}},
		"$set":  bson.M{"lastGeneratedDate": lastDate, "updatedAt": time.Now()},
	}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update); err != nil {
		return fmt.Errorf("failed to record generated bookings on schedule %s: %w", id, err)
	}
	return nil
}

func (r *MongoScheduleRepo) Active(ctx context.Context) ([]models.RecurringSchedule, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"isActive": true})
	if err != nil {
		return nil, fmt.Errorf("active schedule query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var schedules []models.RecurringSchedule
	if err := cursor.All(ctx, &schedules); err != nil {
		return nil, fmt.Errorf("failed to decode schedules: %w", err)
	}
	return schedules, nil
}
