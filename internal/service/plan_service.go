package service

import (
	"context"
	"errors"

	"ironclub/gym-portal/internal/domain"
	"ironclub/gym-portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutPlanDetails is a plan header with its ordered items.
type WorkoutPlanDetails struct {
	domain.Plan
	Items []domain.WorkoutItem `json:"items"`
}

// NutritionPlanDetails is a plan header with its ordered items.
type NutritionPlanDetails struct {
	domain.Plan
	Items []domain.NutritionItem `json:"items"`
}

// --- Service Interface ---

// PlanService exposes the shared plan library. Coaches and admins browse the
// whole library; clients see only plans assigned to them.
type PlanService interface {
	ListWorkoutPlans(ctx context.Context, actor *domain.Principal) ([]domain.Plan, error)
	GetWorkoutPlan(ctx context.Context, actor *domain.Principal, planID primitive.ObjectID) (*WorkoutPlanDetails, error)
	ListNutritionPlans(ctx context.Context, actor *domain.Principal) ([]domain.Plan, error)
	GetNutritionPlan(ctx context.Context, actor *domain.Principal, planID primitive.ObjectID) (*NutritionPlanDetails, error)
}

// --- Service Implementation ---

type planService struct {
	workoutRepo    repository.WorkoutPlanRepository
	nutritionRepo  repository.NutritionPlanRepository
	assignmentRepo repository.AssignmentRepository
}

// NewPlanService creates a new instance of planService.
func NewPlanService(
	workoutRepo repository.WorkoutPlanRepository,
	nutritionRepo repository.NutritionPlanRepository,
	assignmentRepo repository.AssignmentRepository,
) PlanService {
	return &planService{
		workoutRepo:    workoutRepo,
		nutritionRepo:  nutritionRepo,
		assignmentRepo: assignmentRepo,
	}
}

// assignedToActor reports whether the given plan is assigned to the actor.
func (s *planService) assignedToActor(ctx context.Context, actor *domain.Principal, planID primitive.ObjectID, kind domain.PlanKind) (bool, error) {
	ids, err := s.assignmentRepo.ListPlanIDs(ctx, actor.ID, kind)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == planID {
			return true, nil
		}
	}
	return false, nil
}

// ListWorkoutPlans returns the library (coach/admin) or the actor's assigned
// plans (client).
func (s *planService) ListWorkoutPlans(ctx context.Context, actor *domain.Principal) ([]domain.Plan, error) {
	if actor.IsAdmin() || actor.IsCoach() {
		return s.workoutRepo.ListPlans(ctx)
	}
	ids, err := s.assignmentRepo.ListPlanIDs(ctx, actor.ID, domain.PlanKindWorkout)
	if err != nil {
		return nil, err
	}
	return s.workoutRepo.ListPlansByIDs(ctx, ids)
}

// GetWorkoutPlan returns one plan with items, enforcing client visibility.
func (s *planService) GetWorkoutPlan(ctx context.Context, actor *domain.Principal, planID primitive.ObjectID) (*WorkoutPlanDetails, error) {
	if !actor.IsAdmin() && !actor.IsCoach() {
		assigned, err := s.assignedToActor(ctx, actor, planID, domain.PlanKindWorkout)
		if err != nil {
			return nil, err
		}
		if !assigned {
			return nil, ErrPlanNotFound
		}
	}

	plan, err := s.workoutRepo.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	items, err := s.workoutRepo.GetItems(ctx, planID)
	if err != nil {
		return nil, err
	}

	return &WorkoutPlanDetails{Plan: *plan, Items: items}, nil
}

// ListNutritionPlans mirrors ListWorkoutPlans for the nutrition kind.
func (s *planService) ListNutritionPlans(ctx context.Context, actor *domain.Principal) ([]domain.Plan, error) {
	if actor.IsAdmin() || actor.IsCoach() {
		return s.nutritionRepo.ListPlans(ctx)
	}
	ids, err := s.assignmentRepo.ListPlanIDs(ctx, actor.ID, domain.PlanKindNutrition)
	if err != nil {
		return nil, err
	}
	return s.nutritionRepo.ListPlansByIDs(ctx, ids)
}

// GetNutritionPlan mirrors GetWorkoutPlan for the nutrition kind.
func (s *planService) GetNutritionPlan(ctx context.Context, actor *domain.Principal, planID primitive.ObjectID) (*NutritionPlanDetails, error) {
	if !actor.IsAdmin() && !actor.IsCoach() {
		assigned, err := s.assignedToActor(ctx, actor, planID, domain.PlanKindNutrition)
		if err != nil {
			return nil, err
		}
		if !assigned {
			return nil, ErrPlanNotFound
		}
	}

	plan, err := s.nutritionRepo.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	items, err := s.nutritionRepo.GetItems(ctx, planID)
	if err != nil {
		return nil, err
	}

	return &NutritionPlanDetails{Plan: *plan, Items: items}, nil
}
