package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ironclub/gym-portal/internal/domain"
	"ironclub/gym-portal/internal/plangen"
	"ironclub/gym-portal/internal/repository"
	"ironclub/gym-portal/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultGenerateTimeout bounds the external generator call. A hang is
// treated as failure and routed to the fallback, never left unbounded.
const DefaultGenerateTimeout = 30 * time.Second

// PartialGenerationError reports a pipeline run that failed after some rows
// were already durable. Created plan ids are exposed so the caller can retry
// the assignment (idempotent) or clean up; nothing is rolled back.
type PartialGenerationError struct {
	WorkoutPlanID   primitive.ObjectID
	NutritionPlanID primitive.ObjectID
	Err             error
}

func (e *PartialGenerationError) Error() string {
	return fmt.Sprintf("plan generation partially completed (workout=%s nutrition=%s): %v",
		hexOrNone(e.WorkoutPlanID), hexOrNone(e.NutritionPlanID), e.Err)
}

func (e *PartialGenerationError) Unwrap() error { return e.Err }

func hexOrNone(id primitive.ObjectID) string {
	if id == primitive.NilObjectID {
		return "none"
	}
	return id.Hex()
}

// GenerationResult reports a completed pipeline run: which path produced the
// content and the two new plan identifiers.
type GenerationResult struct {
	Source          plangen.Source     `json:"source"`
	WorkoutPlanID   primitive.ObjectID `json:"workoutPlanId"`
	NutritionPlanID primitive.ObjectID `json:"nutritionPlanId"`
}

// --- Service Interface ---

// GenerationService runs the plan generation pipeline:
// REQUEST -> GENERATE -> PARSE -> PERSIST_WORKOUT -> PERSIST_NUTRITION -> ASSIGN.
// Generator failure is absorbed by the deterministic fallback; persistence and
// assignment failures propagate.
type GenerationService interface {
	// GenerateAndAssign produces a plan pair, persists both plans and assigns
	// them to the target user as one logical unit.
	GenerateAndAssign(ctx context.Context, actor *domain.Principal, targetUserID primitive.ObjectID, goal, level string) (*GenerationResult, error)

	// Preview generates a plan pair without persisting anything.
	Preview(ctx context.Context, goal, level string) (*plangen.Document, plangen.Source)
}

// --- Service Implementation ---

type generationService struct {
	workoutRepo     repository.WorkoutPlanRepository
	nutritionRepo   repository.NutritionPlanRepository
	assignmentRepo  repository.AssignmentRepository
	coachClientRepo repository.CoachClientRepository
	generator       plangen.Generator // nil when no credential is configured
	archive         storage.TranscriptArchive
	timeout         time.Duration
}

// NewGenerationService creates a new instance of generationService.
// generator may be nil (no external credential); archive may be nil.
func NewGenerationService(
	workoutRepo repository.WorkoutPlanRepository,
	nutritionRepo repository.NutritionPlanRepository,
	assignmentRepo repository.AssignmentRepository,
	coachClientRepo repository.CoachClientRepository,
	generator plangen.Generator,
	archive storage.TranscriptArchive,
	timeout time.Duration,
) GenerationService {
	if timeout <= 0 {
		timeout = DefaultGenerateTimeout
	}
	return &generationService{
		workoutRepo:     workoutRepo,
		nutritionRepo:   nutritionRepo,
		assignmentRepo:  assignmentRepo,
		coachClientRepo: coachClientRepo,
		generator:       generator,
		archive:         archive,
		timeout:         timeout,
	}
}

// generate runs the GENERATE and PARSE steps. It never fails: any external
// error, timeout or unusable response degrades to the deterministic fallback.
func (s *generationService) generate(ctx context.Context, goal, level string) (*plangen.Document, plangen.Source) {
	if s.generator == nil {
		return plangen.Fallback(goal, level), plangen.SourceFallback
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.generator.Generate(genCtx, goal, level)
	if err != nil {
		log.Printf("WARN: external generator failed, using fallback: %v", err)
		return plangen.Fallback(goal, level), plangen.SourceFallback
	}

	if s.archive != nil {
		key := fmt.Sprintf("transcripts/%s.json", uuid.NewString())
		if err := s.archive.SaveTranscript(ctx, key, []byte(text)); err != nil {
			log.Printf("WARN: failed to archive generator transcript: %v", err)
		}
	}

	doc, outcome := plangen.Parse(text)
	if outcome == plangen.Unparseable {
		log.Printf("WARN: generator response unparseable, using fallback")
		return plangen.Fallback(goal, level), plangen.SourceFallback
	}
	return doc, plangen.SourceOpenAI
}

// flattenWorkout turns days[].exercises[] into item rows with one global
// 1-based order index, incremented per exercise in document order. The
// counter is not reset per day.
func flattenWorkout(planID primitive.ObjectID, doc *plangen.WorkoutDoc) []domain.WorkoutItem {
	var items []domain.WorkoutItem
	idx := 1
	for _, day := range doc.Days {
		for _, ex := range day.Exercises {
			items = append(items, domain.WorkoutItem{
				PlanID:       planID,
				DayLabel:     day.Label,
				ExerciseName: ex.Name,
				Sets:         ex.Sets,
				Reps:         ex.Reps,
				Rest:         ex.Rest,
				OrderIndex:   idx,
			})
			idx++
		}
	}
	return items
}

// flattenNutrition mirrors flattenWorkout with its own independent counter.
func flattenNutrition(planID primitive.ObjectID, doc *plangen.NutritionDoc) []domain.NutritionItem {
	var items []domain.NutritionItem
	idx := 1
	for _, meal := range doc.Meals {
		for _, it := range meal.Items {
			items = append(items, domain.NutritionItem{
				PlanID:     planID,
				MealLabel:  meal.Label,
				Item:       it.Item,
				Calories:   it.Calories,
				ProteinG:   it.ProteinG,
				CarbsG:     it.CarbsG,
				FatsG:      it.FatsG,
				OrderIndex: idx,
			})
			idx++
		}
	}
	return items
}

// GenerateAndAssign runs the whole pipeline for the target user.
//
// There is no multi-statement transaction wrapping the persist and assign
// steps; each statement is atomic on its own. A crash or failure mid-sequence
// can leave a plan persisted without items or without its assignment. That
// exposure is deliberate and reported through PartialGenerationError, whose
// ids let the caller retry (assignment is idempotent) or clean up.
func (s *generationService) GenerateAndAssign(ctx context.Context, actor *domain.Principal, targetUserID primitive.ObjectID, goal, level string) (*GenerationResult, error) {
	if targetUserID == primitive.NilObjectID {
		return nil, errors.New("target user ID is required")
	}

	// Authorization scope mirrors the assignment engine: admins reach any
	// user, coaches only their linked clients.
	if !actor.IsAdmin() {
		if !actor.IsCoach() {
			return nil, ErrNotAuthorized
		}
		coachID, err := s.coachClientRepo.GetCoachForClient(ctx, targetUserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrClientNotManaged
			}
			return nil, err
		}
		if coachID != actor.ID {
			return nil, ErrClientNotManaged
		}
	}

	doc, source := s.generate(ctx, goal, level)
	result := &GenerationResult{Source: source}

	// PERSIST_WORKOUT
	workoutTitle := doc.Workout.Title
	if workoutTitle == "" {
		workoutTitle = "Scheda AI"
	}
	workoutPlanID, err := s.workoutRepo.CreatePlan(ctx, &domain.Plan{
		Title:     domain.TruncateTitle(workoutTitle),
		Notes:     doc.Workout.Notes,
		CreatedBy: actor.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("persist workout plan: %w", err)
	}
	result.WorkoutPlanID = workoutPlanID

	if err := s.workoutRepo.InsertItems(ctx, flattenWorkout(workoutPlanID, doc.Workout)); err != nil {
		return result, &PartialGenerationError{WorkoutPlanID: workoutPlanID, Err: fmt.Errorf("persist workout items: %w", err)}
	}

	// PERSIST_NUTRITION
	nutritionTitle := doc.Nutrition.Title
	if nutritionTitle == "" {
		nutritionTitle = "Piano AI"
	}
	nutritionPlanID, err := s.nutritionRepo.CreatePlan(ctx, &domain.Plan{
		Title:     domain.TruncateTitle(nutritionTitle),
		Notes:     doc.Nutrition.Notes,
		CreatedBy: actor.ID,
	})
	if err != nil {
		return result, &PartialGenerationError{WorkoutPlanID: workoutPlanID, Err: fmt.Errorf("persist nutrition plan: %w", err)}
	}
	result.NutritionPlanID = nutritionPlanID

	if err := s.nutritionRepo.InsertItems(ctx, flattenNutrition(nutritionPlanID, doc.Nutrition)); err != nil {
		return result, &PartialGenerationError{WorkoutPlanID: workoutPlanID, NutritionPlanID: nutritionPlanID, Err: fmt.Errorf("persist nutrition items: %w", err)}
	}

	// ASSIGN: both upserts are attempted even if the first fails, so a
	// partial run leaves as much assigned as possible.
	workoutErr := s.assignmentRepo.Upsert(ctx, targetUserID, workoutPlanID, domain.PlanKindWorkout)
	nutritionErr := s.assignmentRepo.Upsert(ctx, targetUserID, nutritionPlanID, domain.PlanKindNutrition)
	if workoutErr != nil || nutritionErr != nil {
		return result, &PartialGenerationError{
			WorkoutPlanID:   workoutPlanID,
			NutritionPlanID: nutritionPlanID,
			Err:             errors.Join(workoutErr, nutritionErr),
		}
	}

	return result, nil
}

// Preview runs generation only; nothing is persisted or assigned.
func (s *generationService) Preview(ctx context.Context, goal, level string) (*plangen.Document, plangen.Source) {
	return s.generate(ctx, goal, level)
}
