package mongo

import (
	"context"
	"errors"

	"ironclub/gym-portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const adminRegistryCollectionName = "admin_registry"

// mongoAdminRegistryRepository implements repository.AdminRegistryRepository.
// Rows are written out-of-band by operators; this repo only reads them.
type mongoAdminRegistryRepository struct {
	collection *mongo.Collection
}

// NewMongoAdminRegistryRepository creates a new admin registry repository.
func NewMongoAdminRegistryRepository(db *mongo.Database) repository.AdminRegistryRepository {
	return &mongoAdminRegistryRepository{
		collection: db.Collection(adminRegistryCollectionName),
	}
}

// Contains reports whether the given user is registered as an administrator.
func (r *mongoAdminRegistryRepository) Contains(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	filter := bson.M{"userId": userID}

	err := r.collection.FindOne(ctx, filter).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// EnsureAdminRegistryIndexes creates necessary indexes for the admin registry.
func EnsureAdminRegistryIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
