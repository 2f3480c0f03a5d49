package service

import (
	"context"
	"testing"

	"ironclub/gym-portal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type assignmentFixture struct {
	accountRepo     *fakeAccountRepo
	coachClientRepo *fakeCoachClientRepo
	assignmentRepo  *fakeAssignmentRepo
	workoutRepo     *fakeWorkoutPlanRepo
	nutritionRepo   *fakeNutritionPlanRepo
	svc             AssignmentService
}

func newAssignmentFixture() *assignmentFixture {
	f := &assignmentFixture{
		accountRepo:     newFakeAccountRepo(),
		coachClientRepo: newFakeCoachClientRepo(),
		assignmentRepo:  newFakeAssignmentRepo(),
		workoutRepo:     newFakeWorkoutPlanRepo(),
		nutritionRepo:   newFakeNutritionPlanRepo(),
	}
	f.svc = NewAssignmentService(f.accountRepo, f.coachClientRepo, f.assignmentRepo, f.workoutRepo, f.nutritionRepo)
	return f
}

func (f *assignmentFixture) addWorkoutPlan(t *testing.T) primitive.ObjectID {
	t.Helper()
	id, err := f.workoutRepo.CreatePlan(context.Background(), &domain.Plan{Title: "Scheda A", CreatedBy: primitive.NewObjectID()})
	require.NoError(t, err)
	return id
}

func (f *assignmentFixture) addNutritionPlan(t *testing.T) primitive.ObjectID {
	t.Helper()
	id, err := f.nutritionRepo.CreatePlan(context.Background(), &domain.Plan{Title: "Piano A", CreatedBy: primitive.NewObjectID()})
	require.NoError(t, err)
	return id
}

func adminPrincipal() *domain.Principal {
	return &domain.Principal{ID: primitive.NewObjectID(), Role: domain.RoleAdmin}
}

func coachPrincipal() *domain.Principal {
	return &domain.Principal{ID: primitive.NewObjectID(), Role: domain.RoleCoach}
}

func TestAssignPlanIdempotent(t *testing.T) {
	f := newAssignmentFixture()
	admin := adminPrincipal()
	userID := primitive.NewObjectID()
	planID := f.addWorkoutPlan(t)

	require.NoError(t, f.svc.AssignPlan(context.Background(), admin, userID, planID, domain.PlanKindWorkout))
	require.NoError(t, f.svc.AssignPlan(context.Background(), admin, userID, planID, domain.PlanKindWorkout))

	assert.Equal(t, 1, f.assignmentRepo.count())
	ids, err := f.assignmentRepo.ListPlanIDs(context.Background(), userID, domain.PlanKindWorkout)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{planID}, ids)
}

func TestAssignPlanRequiresExistingPlan(t *testing.T) {
	f := newAssignmentFixture()
	err := f.svc.AssignPlan(context.Background(), adminPrincipal(), primitive.NewObjectID(), primitive.NewObjectID(), domain.PlanKindWorkout)
	assert.ErrorIs(t, err, ErrPlanNotFound)
	assert.Zero(t, f.assignmentRepo.count())
}

func TestAssignPlanCoachScope(t *testing.T) {
	f := newAssignmentFixture()
	coach := coachPrincipal()
	linkedClient := primitive.NewObjectID()
	strangerClient := primitive.NewObjectID()
	require.NoError(t, f.coachClientRepo.SetCoach(context.Background(), linkedClient, coach.ID))
	require.NoError(t, f.coachClientRepo.SetCoach(context.Background(), strangerClient, primitive.NewObjectID()))
	planID := f.addWorkoutPlan(t)

	require.NoError(t, f.svc.AssignPlan(context.Background(), coach, linkedClient, planID, domain.PlanKindWorkout))

	err := f.svc.AssignPlan(context.Background(), coach, strangerClient, planID, domain.PlanKindWorkout)
	assert.ErrorIs(t, err, ErrClientNotManaged)

	err = f.svc.AssignPlan(context.Background(), coach, primitive.NewObjectID(), planID, domain.PlanKindWorkout)
	assert.ErrorIs(t, err, ErrClientNotManaged)

	client := &domain.Principal{ID: linkedClient, Role: domain.RoleClient}
	err = f.svc.AssignPlan(context.Background(), client, linkedClient, planID, domain.PlanKindWorkout)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestUnassignPlanMissingLinkIsNoError(t *testing.T) {
	f := newAssignmentFixture()
	admin := adminPrincipal()
	userID := primitive.NewObjectID()
	planID := f.addNutritionPlan(t)

	err := f.svc.UnassignPlan(context.Background(), admin, userID, planID, domain.PlanKindNutrition)
	assert.NoError(t, err)

	require.NoError(t, f.svc.AssignPlan(context.Background(), admin, userID, planID, domain.PlanKindNutrition))
	require.NoError(t, f.svc.UnassignPlan(context.Background(), admin, userID, planID, domain.PlanKindNutrition))
	assert.Zero(t, f.assignmentRepo.count())
}

func TestSetCoachReplacesSingleLink(t *testing.T) {
	f := newAssignmentFixture()
	admin := adminPrincipal()
	clientID := primitive.NewObjectID()
	coachA := primitive.NewObjectID()
	coachB := primitive.NewObjectID()
	f.accountRepo.
		add(&domain.Account{ID: coachA, Email: "a@example.com", Role: "coach"}).
		add(&domain.Account{ID: coachB, Email: "b@example.com", Role: "coach"})

	got, err := f.svc.SetCoach(context.Background(), admin, clientID, &coachA)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, coachA, *got)

	// Reassigning replaces the link in place; the client never has two coaches.
	got, err = f.svc.SetCoach(context.Background(), admin, clientID, &coachB)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, coachB, *got)
	assert.Len(t, f.coachClientRepo.coachByClient, 1)
	assert.Equal(t, coachB, f.coachClientRepo.coachByClient[clientID])
}

func TestSetCoachRemoval(t *testing.T) {
	f := newAssignmentFixture()
	admin := adminPrincipal()
	clientID := primitive.NewObjectID()
	coachID := primitive.NewObjectID()
	f.accountRepo.add(&domain.Account{ID: coachID, Email: "c@example.com", Role: "coach"})

	_, err := f.svc.SetCoach(context.Background(), admin, clientID, &coachID)
	require.NoError(t, err)

	got, err := f.svc.SetCoach(context.Background(), admin, clientID, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, f.coachClientRepo.coachByClient)

	// Removing again is harmless.
	got, err = f.svc.SetCoach(context.Background(), admin, clientID, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetCoachValidation(t *testing.T) {
	f := newAssignmentFixture()
	admin := adminPrincipal()
	clientID := primitive.NewObjectID()
	notACoach := primitive.NewObjectID()
	f.accountRepo.add(&domain.Account{ID: notACoach, Email: "n@example.com", Role: "client"})

	t.Run("admin only", func(t *testing.T) {
		coach := coachPrincipal()
		_, err := f.svc.SetCoach(context.Background(), coach, clientID, &notACoach)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("target must hold the coach role", func(t *testing.T) {
		_, err := f.svc.SetCoach(context.Background(), admin, clientID, &notACoach)
		assert.ErrorIs(t, err, ErrNotACoach)
	})

	t.Run("unknown coach account", func(t *testing.T) {
		unknown := primitive.NewObjectID()
		_, err := f.svc.SetCoach(context.Background(), admin, clientID, &unknown)
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestGetCoach(t *testing.T) {
	f := newAssignmentFixture()
	clientID := primitive.NewObjectID()
	coachID := primitive.NewObjectID()
	require.NoError(t, f.coachClientRepo.SetCoach(context.Background(), clientID, coachID))

	got, err := f.svc.GetCoach(context.Background(), adminPrincipal(), clientID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, coachID, *got)

	t.Run("unassigned client yields nil", func(t *testing.T) {
		got, err := f.svc.GetCoach(context.Background(), adminPrincipal(), primitive.NewObjectID())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("client reads own link", func(t *testing.T) {
		self := &domain.Principal{ID: clientID, Role: domain.RoleClient}
		got, err := f.svc.GetCoach(context.Background(), self, clientID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, coachID, *got)
	})

	t.Run("client cannot read another client's link", func(t *testing.T) {
		other := &domain.Principal{ID: primitive.NewObjectID(), Role: domain.RoleClient}
		_, err := f.svc.GetCoach(context.Background(), other, clientID)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})
}

func TestListAssignments(t *testing.T) {
	f := newAssignmentFixture()
	admin := adminPrincipal()
	userID := primitive.NewObjectID()
	workoutID := f.addWorkoutPlan(t)
	nutritionID := f.addNutritionPlan(t)

	require.NoError(t, f.svc.AssignPlan(context.Background(), admin, userID, workoutID, domain.PlanKindWorkout))
	require.NoError(t, f.svc.AssignPlan(context.Background(), admin, userID, nutritionID, domain.PlanKindNutrition))

	list, err := f.svc.ListAssignments(context.Background(), admin, userID)
	require.NoError(t, err)
	require.Len(t, list.WorkoutPlans, 1)
	require.Len(t, list.NutritionPlans, 1)
	assert.Equal(t, workoutID, list.WorkoutPlans[0].ID)
	assert.Equal(t, nutritionID, list.NutritionPlans[0].ID)

	t.Run("client reads own assignments", func(t *testing.T) {
		self := &domain.Principal{ID: userID, Role: domain.RoleClient}
		list, err := f.svc.ListAssignments(context.Background(), self, userID)
		require.NoError(t, err)
		assert.Len(t, list.WorkoutPlans, 1)
	})

	t.Run("coach needs the link to read", func(t *testing.T) {
		coach := coachPrincipal()
		_, err := f.svc.ListAssignments(context.Background(), coach, userID)
		assert.ErrorIs(t, err, ErrClientNotManaged)

		require.NoError(t, f.coachClientRepo.SetCoach(context.Background(), userID, coach.ID))
		list, err := f.svc.ListAssignments(context.Background(), coach, userID)
		require.NoError(t, err)
		assert.Len(t, list.NutritionPlans, 1)
	})
}
