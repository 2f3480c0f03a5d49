package service

import (
	"context"
	"errors"

	"ironclub/gym-portal/internal/domain"
	"ironclub/gym-portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound = errors.New("plan not found")
	ErrNotACoach    = errors.New("user is not a coach")
)

// AssignmentList groups a user's assigned plan headers by kind. Order within
// each slice is store-dependent; callers needing stable order must sort.
type AssignmentList struct {
	WorkoutPlans   []domain.Plan `json:"workoutPlans"`
	NutritionPlans []domain.Plan `json:"nutritionPlans"`
}

// --- Service Interface ---

// AssignmentService manages the coach<->client relation and user<->plan links.
// All operations require a resolved, entitled principal; coaches act only on
// clients linked to them, admins on anyone, clients on themselves (reads only).
type AssignmentService interface {
	AssignPlan(ctx context.Context, actor *domain.Principal, userID, planID primitive.ObjectID, kind domain.PlanKind) error
	UnassignPlan(ctx context.Context, actor *domain.Principal, userID, planID primitive.ObjectID, kind domain.PlanKind) error

	// SetCoach replaces the client's coach, or removes it when coachID is nil.
	// Returns the effective coach id (nil after removal). Admin only.
	SetCoach(ctx context.Context, actor *domain.Principal, clientID primitive.ObjectID, coachID *primitive.ObjectID) (*primitive.ObjectID, error)

	// GetCoach returns the coach currently linked to the client, nil if none.
	GetCoach(ctx context.Context, actor *domain.Principal, clientID primitive.ObjectID) (*primitive.ObjectID, error)

	ListAssignments(ctx context.Context, actor *domain.Principal, userID primitive.ObjectID) (*AssignmentList, error)
}

// --- Service Implementation ---

type assignmentService struct {
	accountRepo     repository.AccountRepository
	coachClientRepo repository.CoachClientRepository
	assignmentRepo  repository.AssignmentRepository
	workoutRepo     repository.WorkoutPlanRepository
	nutritionRepo   repository.NutritionPlanRepository
}

// NewAssignmentService creates a new instance of assignmentService.
func NewAssignmentService(
	accountRepo repository.AccountRepository,
	coachClientRepo repository.CoachClientRepository,
	assignmentRepo repository.AssignmentRepository,
	workoutRepo repository.WorkoutPlanRepository,
	nutritionRepo repository.NutritionPlanRepository,
) AssignmentService {
	return &assignmentService{
		accountRepo:     accountRepo,
		coachClientRepo: coachClientRepo,
		assignmentRepo:  assignmentRepo,
		workoutRepo:     workoutRepo,
		nutritionRepo:   nutritionRepo,
	}
}

// ensureManages verifies the actor may act on the given user's assignments.
func (s *assignmentService) ensureManages(ctx context.Context, actor *domain.Principal, userID primitive.ObjectID) error {
	if actor.IsAdmin() {
		return nil
	}
	if !actor.IsCoach() {
		return ErrNotAuthorized
	}
	coachID, err := s.coachClientRepo.GetCoachForClient(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClientNotManaged
		}
		return err
	}
	if coachID != actor.ID {
		return ErrClientNotManaged
	}
	return nil
}

// planExists verifies the plan header before linking to it, so assignments
// never dangle.
func (s *assignmentService) planExists(ctx context.Context, planID primitive.ObjectID, kind domain.PlanKind) error {
	var err error
	switch kind {
	case domain.PlanKindWorkout:
		_, err = s.workoutRepo.GetPlan(ctx, planID)
	case domain.PlanKindNutrition:
		_, err = s.nutritionRepo.GetPlan(ctx, planID)
	default:
		return ErrPlanNotFound
	}
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPlanNotFound
	}
	return err
}

// AssignPlan links a plan to a user. Idempotent: assigning an already
// assigned plan is a no-op, not an error.
func (s *assignmentService) AssignPlan(ctx context.Context, actor *domain.Principal, userID, planID primitive.ObjectID, kind domain.PlanKind) error {
	if userID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return errors.New("user ID and plan ID are required")
	}
	if err := s.ensureManages(ctx, actor, userID); err != nil {
		return err
	}
	if err := s.planExists(ctx, planID, kind); err != nil {
		return err
	}
	return s.assignmentRepo.Upsert(ctx, userID, planID, kind)
}

// UnassignPlan removes the link; removing a non-existent link is not an error.
func (s *assignmentService) UnassignPlan(ctx context.Context, actor *domain.Principal, userID, planID primitive.ObjectID, kind domain.PlanKind) error {
	if userID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return errors.New("user ID and plan ID are required")
	}
	if err := s.ensureManages(ctx, actor, userID); err != nil {
		return err
	}
	return s.assignmentRepo.Delete(ctx, userID, planID, kind)
}

// SetCoach replaces or removes the client's single coach link.
func (s *assignmentService) SetCoach(ctx context.Context, actor *domain.Principal, clientID primitive.ObjectID, coachID *primitive.ObjectID) (*primitive.ObjectID, error) {
	if !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}

	if coachID == nil {
		if err := s.coachClientRepo.RemoveCoach(ctx, clientID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	coach, err := s.accountRepo.GetByID(ctx, *coachID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if coach.Role != string(domain.RoleCoach) {
		return nil, ErrNotACoach
	}

	if err := s.coachClientRepo.SetCoach(ctx, clientID, *coachID); err != nil {
		return nil, err
	}
	return coachID, nil
}

// GetCoach returns the client's current coach, nil when unassigned.
func (s *assignmentService) GetCoach(ctx context.Context, actor *domain.Principal, clientID primitive.ObjectID) (*primitive.ObjectID, error) {
	if !actor.IsAdmin() && !actor.IsCoach() && actor.ID != clientID {
		return nil, ErrNotAuthorized
	}

	coachID, err := s.coachClientRepo.GetCoachForClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coachID, nil
}

// ListAssignments joins the user's assignment rows to plan headers.
func (s *assignmentService) ListAssignments(ctx context.Context, actor *domain.Principal, userID primitive.ObjectID) (*AssignmentList, error) {
	// Clients may always read their own assignments.
	if actor.ID != userID {
		if err := s.ensureManages(ctx, actor, userID); err != nil {
			return nil, err
		}
	}

	workoutIDs, err := s.assignmentRepo.ListPlanIDs(ctx, userID, domain.PlanKindWorkout)
	if err != nil {
		return nil, err
	}
	nutritionIDs, err := s.assignmentRepo.ListPlanIDs(ctx, userID, domain.PlanKindNutrition)
	if err != nil {
		return nil, err
	}

	workoutPlans, err := s.workoutRepo.ListPlansByIDs(ctx, workoutIDs)
	if err != nil {
		return nil, err
	}
	nutritionPlans, err := s.nutritionRepo.ListPlansByIDs(ctx, nutritionIDs)
	if err != nil {
		return nil, err
	}

	return &AssignmentList{
		WorkoutPlans:   workoutPlans,
		NutritionPlans: nutritionPlans,
	}, nil
}
