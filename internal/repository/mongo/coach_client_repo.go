package mongo

import (
	"context"
	"errors"
	"time"

	"ironclub/gym-portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const coachClientCollectionName = "coach_client_links"

// mongoCoachClientRepository implements repository.CoachClientRepository.
type mongoCoachClientRepository struct {
	collection *mongo.Collection
}

// NewMongoCoachClientRepository creates a new coach-client link repository.
func NewMongoCoachClientRepository(db *mongo.Database) repository.CoachClientRepository {
	return &mongoCoachClientRepository{
		collection: db.Collection(coachClientCollectionName),
	}
}

// SetCoach replaces the client's coach in a single upsert keyed on clientId.
// Combined with the unique index on clientId this guarantees at most one
// link per client at any externally observable instant.
func (r *mongoCoachClientRepository) SetCoach(ctx context.Context, clientID, coachID primitive.ObjectID) error {
	if clientID == primitive.NilObjectID || coachID == primitive.NilObjectID {
		return errors.New("client ID and coach ID are required")
	}

	filter := bson.M{"clientId": clientID}
	update := bson.M{
		"$set": bson.M{
			"coachId":   coachID,
			"updatedAt": time.Now().UTC(),
		},
		"$setOnInsert": bson.M{"clientId": clientID},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// RemoveCoach deletes the client's link, if any. Missing links are not an error.
func (r *mongoCoachClientRepository) RemoveCoach(ctx context.Context, clientID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"clientId": clientID})
	return err
}

// GetCoachForClient returns the coach linked to the client, or ErrNotFound.
func (r *mongoCoachClientRepository) GetCoachForClient(ctx context.Context, clientID primitive.ObjectID) (primitive.ObjectID, error) {
	var link struct {
		CoachID primitive.ObjectID `bson:"coachId"`
	}
	filter := bson.M{"clientId": clientID}

	err := r.collection.FindOne(ctx, filter).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return primitive.NilObjectID, repository.ErrNotFound
		}
		return primitive.NilObjectID, err
	}
	return link.CoachID, nil
}

// ListClientIDsByCoach returns the IDs of all clients linked to the coach.
func (r *mongoCoachClientRepository) ListClientIDsByCoach(ctx context.Context, coachID primitive.ObjectID) ([]primitive.ObjectID, error) {
	filter := bson.M{"coachId": coachID}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var links []struct {
		ClientID primitive.ObjectID `bson:"clientId"`
	}
	if err = cursor.All(ctx, &links); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.ClientID)
	}
	return ids, nil
}

// EnsureCoachClientIndexes creates necessary indexes for coach-client links.
// The unique clientId index backs the single-coach-per-client invariant.
func EnsureCoachClientIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
