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
	nutritionPlanCollectionName     = "nutrition_plans"
	nutritionPlanItemCollectionName = "nutrition_plan_items"
)

// mongoNutritionPlanRepository implements repository.NutritionPlanRepository.
// Structurally parallel to the workout plan repository.
type mongoNutritionPlanRepository struct {
	plans *mongo.Collection
	items *mongo.Collection
}

// NewMongoNutritionPlanRepository creates a new nutrition plan repository.
func NewMongoNutritionPlanRepository(db *mongo.Database) repository.NutritionPlanRepository {
	return &mongoNutritionPlanRepository{
		plans: db.Collection(nutritionPlanCollectionName),
		items: db.Collection(nutritionPlanItemCollectionName),
	}
}

// CreatePlan inserts a new plan header.
func (r *mongoNutritionPlanRepository) CreatePlan(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
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
func (r *mongoNutritionPlanRepository) GetPlan(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
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
func (r *mongoNutritionPlanRepository) ListPlans(ctx context.Context) ([]domain.Plan, error) {
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
func (r *mongoNutritionPlanRepository) ListPlansByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Plan, error) {
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

// InsertItems bulk-inserts plan items; an empty slice is a no-op.
func (r *mongoNutritionPlanRepository) InsertItems(ctx context.Context, items []domain.NutritionItem) error {
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
func (r *mongoNutritionPlanRepository) GetItems(ctx context.Context, planID primitive.ObjectID) ([]domain.NutritionItem, error) {
	filter := bson.M{"nutritionPlanId": planID}
	findOptions := options.Find().SetSort(bson.D{{Key: "orderIndex", Value: 1}})

	cursor, err := r.items.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []domain.NutritionItem
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// EnsureNutritionPlanIndexes creates necessary indexes for nutrition plans and items.
func EnsureNutritionPlanIndexes(ctx context.Context, plans, items *mongo.Collection) {
	_, _ = plans.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdBy", Value: 1}}},
	})
	_, _ = items.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "nutritionPlanId", Value: 1}, {Key: "orderIndex", Value: 1}}},
	})
}
