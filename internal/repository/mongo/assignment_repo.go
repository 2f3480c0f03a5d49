package mongo

import (
	"context"
	"fmt"
	"time"

	"ironclub/gym-portal/internal/domain"
	"ironclub/gym-portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	userWorkoutPlanCollectionName   = "user_workout_plans"
	userNutritionPlanCollectionName = "user_nutrition_plans"
)

// mongoAssignmentRepository implements repository.AssignmentRepository over
// the two per-kind link collections.
type mongoAssignmentRepository struct {
	workout   *mongo.Collection
	nutrition *mongo.Collection
}

// NewMongoAssignmentRepository creates a new plan assignment repository.
func NewMongoAssignmentRepository(db *mongo.Database) repository.AssignmentRepository {
	return &mongoAssignmentRepository{
		workout:   db.Collection(userWorkoutPlanCollectionName),
		nutrition: db.Collection(userNutritionPlanCollectionName),
	}
}

func (r *mongoAssignmentRepository) collectionFor(kind domain.PlanKind) (*mongo.Collection, error) {
	switch kind {
	case domain.PlanKindWorkout:
		return r.workout, nil
	case domain.PlanKindNutrition:
		return r.nutrition, nil
	default:
		return nil, fmt.Errorf("unknown plan kind %q", kind)
	}
}

// Upsert assigns a plan to a user. The operation is keyed on (userId, planId)
// and is idempotent: a second call with the same pair changes nothing.
func (r *mongoAssignmentRepository) Upsert(ctx context.Context, userID, planID primitive.ObjectID, kind domain.PlanKind) error {
	coll, err := r.collectionFor(kind)
	if err != nil {
		return err
	}

	filter := bson.M{"userId": userID, "planId": planID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"userId":     userID,
			"planId":     planID,
			"assignedAt": time.Now().UTC(),
		},
	}

	_, err = coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// Delete removes an assignment; a missing row is not an error.
func (r *mongoAssignmentRepository) Delete(ctx context.Context, userID, planID primitive.ObjectID, kind domain.PlanKind) error {
	coll, err := r.collectionFor(kind)
	if err != nil {
		return err
	}

	_, err = coll.DeleteOne(ctx, bson.M{"userId": userID, "planId": planID})
	return err
}

// ListPlanIDs returns the IDs of all plans of the given kind assigned to the user.
func (r *mongoAssignmentRepository) ListPlanIDs(ctx context.Context, userID primitive.ObjectID, kind domain.PlanKind) ([]primitive.ObjectID, error) {
	coll, err := r.collectionFor(kind)
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var links []struct {
		PlanID primitive.ObjectID `bson:"planId"`
	}
	if err = cursor.All(ctx, &links); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.PlanID)
	}
	return ids, nil
}

// EnsureAssignmentIndexes creates the unique (userId, planId) indexes that
// make assignment upserts race-safe.
func EnsureAssignmentIndexes(ctx context.Context, workout, nutrition *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "planId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, _ = workout.Indexes().CreateMany(ctx, indexes)
	_, _ = nutrition.Indexes().CreateMany(ctx, indexes)
}
