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

const (
	workoutPlanCollectionName     = "workout_plans"
	workoutPlanItemCollectionName = "workout_plan_items"
)

// mongoWorkoutPlanRepository implements repository.WorkoutPlanRepository.
type mongoWorkoutPlanRepository struct {
	plans *mongo.Collection
	items *mongo.Collection
}

// NewMongoWorkoutPlanRepository creates a new workout plan repository.
func NewMongoWorkoutPlanRepository(db *mongo.Database) repository.WorkoutPlanRepository {
	return &mongoWorkoutPlanRepository{
		plans: db.Collection(workoutPlanCollectionName),
		items: db.Collection(workoutPlanItemCollectionName),
	}
}

// CreatePlan inserts a new plan header.
func (r *mongoWorkoutPlanRepository) CreatePlan(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	if plan.Title == "" || plan.CreatedBy == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("plan title and creator are required")
	}

	plan.ID = primitive.NewObjectID()
	plan.Title = domain.TruncateTitle(plan.Title)
	plan.CreatedAt = time.Now().UTC()

	result, err := r.plans.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

// GetPlan retrieves a plan header by ID.
func (r *mongoWorkoutPlanRepository) GetPlan(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	var plan domain.Plan
	err := r.plans.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// ListPlans retrieves all plan headers, newest first.
func (r *mongoWorkoutPlanRepository) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.plans.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var plans []domain.Plan
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return plans, nil
}

// ListPlansByIDs retrieves the plan headers whose IDs are in the given set.
func (r *mongoWorkoutPlanRepository) ListPlansByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Plan, error) {
	if len(ids) == 0 {
		return []domain.Plan{}, nil
	}
	cursor, err := r.plans.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var plans []domain.Plan
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return plans, nil
}

// InsertItems bulk-inserts plan items. Items carry their own order index;
// inserting an empty slice is a no-op.
func (r *mongoWorkoutPlanRepository) InsertItems(ctx context.Context, items []domain.WorkoutItem) error {
	if len(items) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(items))
	for i := range items {
		items[i].ID = primitive.NewObjectID()
		docs = append(docs, items[i])
	}

	_, err := r.items.InsertMany(ctx, docs)
	return err
}

// GetItems retrieves all items of a plan, ascending by order index.
func (r *mongoWorkoutPlanRepository) GetItems(ctx context.Context, planID primitive.ObjectID) ([]domain.WorkoutItem, error) {
	filter := bson.M{"workoutPlanId": planID}
	findOptions := options.Find().SetSort(bson.D{{Key: "orderIndex", Value: 1}})

	cursor, err := r.items.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []domain.WorkoutItem
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// EnsureWorkoutPlanIndexes creates necessary indexes for workout plans and items.
func EnsureWorkoutPlanIndexes(ctx context.Context, plans, items *mongo.Collection) {
	_, _ = plans.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdBy", Value: 1}}},
	})
	_, _ = items.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "workoutPlanId", Value: 1}, {Key: "orderIndex", Value: 1}}},
	})
}
