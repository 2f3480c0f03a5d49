package mongo

import (
	"context"
	"errors"
	"time"

	"ironclub/gym-portal/internal/domain"
	"ironclub/gym-portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const accountCollectionName = "accounts"

// mongoAccountRepository implements repository.AccountRepository using MongoDB.
type mongoAccountRepository struct {
	collection *mongo.Collection
}

// NewMongoAccountRepository creates a new account repository.
// It expects a connected *mongo.Database instance.
func NewMongoAccountRepository(db *mongo.Database) repository.AccountRepository {
	return &mongoAccountRepository{
		collection: db.Collection(accountCollectionName),
	}
}

// GetByID retrieves an account by its ObjectID.
func (r *mongoAccountRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Account, error) {
	var account domain.Account
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// GetByEmail retrieves an account by email address.
func (r *mongoAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var account domain.Account
	filter := bson.M{"email": email}

	err := r.collection.FindOne(ctx, filter).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// List retrieves all accounts, newest first.
func (r *mongoAccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var accounts []domain.Account
	if err = cursor.All(ctx, &accounts); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

// ListByIDs retrieves the accounts whose IDs are in the given set.
func (r *mongoAccountRepository) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Account, error) {
	if len(ids) == 0 {
		return []domain.Account{}, nil
	}
	filter := bson.M{"_id": bson.M{"$in": ids}}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var accounts []domain.Account
	if err = cursor.All(ctx, &accounts); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

// UpdateEntitlement applies the given partial update to an account row.
func (r *mongoAccountRepository) UpdateEntitlement(ctx context.Context, id primitive.ObjectID, upd repository.EntitlementUpdate) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	unset := bson.M{}

	if upd.IsBlocked != nil {
		set["isBlocked"] = *upd.IsBlocked
	}
	if upd.ActiveUntil != nil {
		if *upd.ActiveUntil != nil {
			set["activeUntil"] = (*upd.ActiveUntil).UTC()
		} else {
			unset["activeUntil"] = ""
		}
	}
	if upd.Notes != nil {
		set["notes"] = *upd.Notes
	}
	if upd.Role != nil {
		set["role"] = *upd.Role
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureAccountIndexes creates necessary indexes for the accounts collection.
// Call this once during application startup.
func EnsureAccountIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
