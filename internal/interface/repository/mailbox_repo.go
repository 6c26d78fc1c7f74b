package repository

import (
	"context"
	"fmt"
	"time"

	"dispatch-console/internal/domain/entity"
	"dispatch-console/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMailboxRepository implements the MailboxRepository interface
type MongoMailboxRepository struct {
	collection *mongo.Collection
}

// NewMongoMailboxRepository creates a new MongoDB mailbox repository
func NewMongoMailboxRepository(db *mongo.Database) repository.MailboxRepository {
	collection := db.Collection("mailbox_messages")

	ctx := context.Background()
	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.M{"messageId": 1},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "processStatus", Value: 1},
				{Key: "receivedAt", Value: 1},
			},
		},
	})

	return &MongoMailboxRepository{
		collection: collection,
	}
}

// Save inserts a message; saving a known message ID is an error
func (r *MongoMailboxRepository) Save(ctx context.Context, message *entity.MailboxMessage) error {
	if message.ProcessStatus == "" {
		message.ProcessStatus = entity.StatusQueued
	}
	message.SavedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, message); err != nil {
		return fmt.Errorf("failed to save message %s: %w", message.MessageID, err)
	}
	return nil
}

// FindByMessageIDs returns the known messages among messageIDs
func (r *MongoMailboxRepository) FindByMessageIDs(ctx context.Context, messageIDs []string) (map[string]*entity.MailboxMessage, error) {
	result := make(map[string]*entity.MailboxMessage)
	if len(messageIDs) == 0 {
		return result, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"messageId": bson.M{"$in": messageIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var message entity.MailboxMessage
		if err := cursor.Decode(&message); err != nil {
			continue
		}
		result[message.MessageID] = &message
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateStatus sets the process status; PROCESSING also stamps the start time
func (r *MongoMailboxRepository) UpdateStatus(ctx context.Context, messageID, status string) error {
	set := bson.M{"processStatus": status}
	if status == entity.StatusProcessing {
		set["processStartedAt"] = time.Now()
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"messageId": messageID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("message %s: %w", messageID, repository.ErrNotFound)
	}
	return nil
}

// MarkAsProcessed records the final outcome of a message
func (r *MongoMailboxRepository) MarkAsProcessed(ctx context.Context, messageID, status, handlerType, errorDetail string, imported int, targetDate string) error {
	set := bson.M{
		"processedAt":   time.Now(),
		"processStatus": status,
		"handlerType":   handlerType,
		"imported":      imported,
	}
	if targetDate != "" {
		set["targetDate"] = targetDate
	}
	if errorDetail != "" {
		set["errorDetail"] = errorDetail
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"messageId": messageID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to mark as processed: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("message %s: %w", messageID, repository.ErrNotFound)
	}
	return nil
}

// ReleaseStale deletes records left PENDING or PROCESSING for too long.
// Attachments are not stored, so a retry needs a fresh fetch.
func (r *MongoMailboxRepository) ReleaseStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	filter := bson.M{
		"processStatus": bson.M{"$in": []string{entity.StatusQueued, entity.StatusProcessing}},
		"savedAt":       bson.M{"$lt": time.Now().Add(-olderThan)},
	}
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to release stale messages: %w", err)
	}
	return result.DeletedCount, nil
}
