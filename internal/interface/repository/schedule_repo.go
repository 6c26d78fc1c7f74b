package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dispatch-console/internal/domain/entity"
	"dispatch-console/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fields a partial update may never touch
var immutableScheduleFields = []string{"_id", "transactionID", "createdAt"}

// MongoScheduleRepository implements ScheduleRepository
type MongoScheduleRepository struct {
	collection *mongo.Collection
}

// NewMongoScheduleRepository creates a new schedule repository
func NewMongoScheduleRepository(db *mongo.Database) repository.ScheduleRepository {
	collection := db.Collection("schedules")

	ctx := context.Background()
	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.M{"transactionID": 1},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "date", Value: 1},
				{Key: "tripType", Value: 1},
			},
		},
	})

	return &MongoScheduleRepository{
		collection: collection,
	}
}

// FindAll returns every schedule in insertion order
func (r *MongoScheduleRepository) FindAll(ctx context.Context) ([]*entity.Schedule, error) {
	return r.find(ctx, bson.M{})
}

// FindByTransactionID finds one schedule
func (r *MongoScheduleRepository) FindByTransactionID(ctx context.Context, transactionID string) (*entity.Schedule, error) {
	var schedule entity.Schedule
	err := r.collection.FindOne(ctx, bson.M{"transactionID": transactionID}).Decode(&schedule)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

// FindActiveArrivals returns the arrival trips of date that are neither
// completed nor cancelled
func (r *MongoScheduleRepository) FindActiveArrivals(ctx context.Context, date string) ([]*entity.Schedule, error) {
	return r.find(ctx, bson.M{
		"date":     date,
		"tripType": "Arrival",
		"status": bson.M{"$nin": []string{
			entity.Completed.String(),
			entity.Cancelled.String(),
		}},
	})
}

// CreateMany writes each schedule under its transaction ID, replacing any
// record already stored there
func (r *MongoScheduleRepository) CreateMany(ctx context.Context, schedules []*entity.Schedule) ([]string, error) {
	if len(schedules) == 0 {
		return nil, nil
	}

	now := time.Now()
	models := make([]mongo.WriteModel, 0, len(schedules))
	ids := make([]string, 0, len(schedules))
	for _, s := range schedules {
		doc, err := toDocument(s)
		if err != nil {
			return nil, err
		}
		doc["updatedAt"] = now
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"transactionID": s.TransactionID}).
			SetUpdate(bson.M{
				"$set":         doc,
				"$setOnInsert": bson.M{"createdAt": now},
			}).
			SetUpsert(true))
		ids = append(ids, s.TransactionID)
	}

	if _, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return nil, fmt.Errorf("failed to write schedules: %w", err)
	}
	return ids, nil
}

// Update sets the given fields. The transaction ID itself never changes.
func (r *MongoScheduleRepository) Update(ctx context.Context, transactionID string, fields map[string]interface{}) error {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	for _, k := range immutableScheduleFields {
		delete(set, k)
	}
	set["updatedAt"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"transactionID": transactionID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a schedule; a missing one reports ErrNotFound
func (r *MongoScheduleRepository) Delete(ctx context.Context, transactionID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"transactionID": transactionID})
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetETA stores the latest flight ETA on a schedule
func (r *MongoScheduleRepository) SetETA(ctx context.Context, transactionID string, eta entity.ETA) error {
	return r.Update(ctx, transactionID, map[string]interface{}{"ETA": eta})
}

func (r *MongoScheduleRepository) find(ctx context.Context, filter bson.M) ([]*entity.Schedule, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	schedules := make([]*entity.Schedule, 0)
	if err := cursor.All(ctx, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

// toDocument renders a schedule with its bson field names
func toDocument(s *entity.Schedule) (bson.M, error) {
	raw, err := bson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schedule %s: %w", s.TransactionID, err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to encode schedule %s: %w", s.TransactionID, err)
	}
	return doc, nil
}
