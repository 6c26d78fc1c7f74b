package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"dispatch-console/internal/domain/entity"
	"dispatch-console/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepository implements UserRepository
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new user repository
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &MongoUserRepository{
		collection: db.Collection("users"),
	}
}

// FindAll returns users sorted by last name; an empty role returns everyone
func (r *MongoUserRepository) FindAll(ctx context.Context, role string) ([]*entity.User, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}

	opts := options.Find().SetSort(bson.D{{Key: "lastName", Value: 1}, {Key: "firstName", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make([]*entity.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// MongoTransportUnitRepository implements TransportUnitRepository
type MongoTransportUnitRepository struct {
	collection *mongo.Collection
}

// NewMongoTransportUnitRepository creates a new transport unit repository
func NewMongoTransportUnitRepository(db *mongo.Database) repository.TransportUnitRepository {
	collection := db.Collection("transport_units")

	collection.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.M{"plateNo": 1},
	})

	return &MongoTransportUnitRepository{
		collection: collection,
	}
}

// FindAll returns the whole fleet sorted by name
func (r *MongoTransportUnitRepository) FindAll(ctx context.Context) ([]*entity.TransportUnit, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	units := make([]*entity.TransportUnit, 0)
	if err := cursor.All(ctx, &units); err != nil {
		return nil, err
	}
	return units, nil
}

// FindByPlate finds a unit by plate number, ignoring case
func (r *MongoTransportUnitRepository) FindByPlate(ctx context.Context, plateNo string) (*entity.TransportUnit, error) {
	var unit entity.TransportUnit
	filter := bson.M{"plateNo": bson.M{"$regex": "^" + regexp.QuoteMeta(strings.TrimSpace(plateNo)) + "$", "$options": "i"}}
	err := r.collection.FindOne(ctx, filter).Decode(&unit)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &unit, nil
}
