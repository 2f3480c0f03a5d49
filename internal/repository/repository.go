package repository

import (
	"context"
	"time"

	"ironclub/gym-portal/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// EntitlementUpdate is the set of account fields mutable through the
// resolver's update path. Nil fields are left untouched.
type EntitlementUpdate struct {
	IsBlocked   *bool
	ActiveUntil **time.Time // outer nil = no change, inner nil = clear the date
	Notes       *string
	Role        *string
}

// AccountRepository reads and mutates raw account rows. Account creation is
// owned by the external identity provider, so there is no Create here.
type AccountRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Account, error)
	UpdateEntitlement(ctx context.Context, id primitive.ObjectID, upd EntitlementUpdate) error
}

// AdminRegistryRepository checks membership in the administrators registry.
// The registry is authoritative for admin status and avoids self-referential
// role checks against the accounts collection.
type AdminRegistryRepository interface {
	Contains(ctx context.Context, userID primitive.ObjectID) (bool, error)
}

// CoachClientRepository manages the single-valued coach link per client.
type CoachClientRepository interface {
	// SetCoach atomically replaces the client's coach via an upsert keyed
	// uniquely on clientId, closing the delete-then-insert race.
	SetCoach(ctx context.Context, clientID, coachID primitive.ObjectID) error
	RemoveCoach(ctx context.Context, clientID primitive.ObjectID) error
	GetCoachForClient(ctx context.Context, clientID primitive.ObjectID) (primitive.ObjectID, error)
	ListClientIDsByCoach(ctx context.Context, coachID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// WorkoutPlanRepository persists workout plan headers and their ordered items.
type WorkoutPlanRepository interface {
	CreatePlan(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetPlan(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	ListPlans(ctx context.Context) ([]domain.Plan, error)
	ListPlansByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Plan, error)
	InsertItems(ctx context.Context, items []domain.WorkoutItem) error
	GetItems(ctx context.Context, planID primitive.ObjectID) ([]domain.WorkoutItem, error)
}

// NutritionPlanRepository is the nutrition counterpart of WorkoutPlanRepository.
type NutritionPlanRepository interface {
	CreatePlan(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetPlan(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	ListPlans(ctx context.Context) ([]domain.Plan, error)
	ListPlansByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Plan, error)
	InsertItems(ctx context.Context, items []domain.NutritionItem) error
	GetItems(ctx context.Context, planID primitive.ObjectID) ([]domain.NutritionItem, error)
}

// AssignmentRepository manages user<->plan links for both plan kinds.
type AssignmentRepository interface {
	// Upsert is idempotent on (userId, planId): assigning twice leaves one row.
	Upsert(ctx context.Context, userID, planID primitive.ObjectID, kind domain.PlanKind) error
	// Delete removes a link; deleting a non-existent link is not an error.
	Delete(ctx context.Context, userID, planID primitive.ObjectID, kind domain.PlanKind) error
	ListPlanIDs(ctx context.Context, userID primitive.ObjectID, kind domain.PlanKind) ([]primitive.ObjectID, error)
}
