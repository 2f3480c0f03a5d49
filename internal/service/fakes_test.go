package service

import (
	"context"
	"sort"

	"ironclub/gym-portal/internal/domain"
	"ironclub/gym-portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes shared by the service tests. Each fake mirrors
// the semantics the Mongo implementation guarantees (unique keys, idempotent
// upserts) and exposes error hooks for failure-path tests.

type fakeAccountRepo struct {
	accounts  map[primitive.ObjectID]*domain.Account
	updateErr error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[primitive.ObjectID]*domain.Account)}
}

func (f *fakeAccountRepo) add(acc *domain.Account) *fakeAccountRepo {
	f.accounts[acc.ID] = acc
	return f
}

func (f *fakeAccountRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Account, error) {
	acc, ok := f.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

func (f *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, acc := range f.accounts {
		if acc.Email == email {
			cp := *acc
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAccountRepo) List(_ context.Context) ([]domain.Account, error) {
	out := make([]domain.Account, 0, len(f.accounts))
	for _, acc := range f.accounts {
		out = append(out, *acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeAccountRepo) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Account, error) {
	out := make([]domain.Account, 0, len(ids))
	for _, id := range ids {
		if acc, ok := f.accounts[id]; ok {
			out = append(out, *acc)
		}
	}
	return out, nil
}

func (f *fakeAccountRepo) UpdateEntitlement(_ context.Context, id primitive.ObjectID, upd repository.EntitlementUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	acc, ok := f.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	if upd.IsBlocked != nil {
		acc.IsBlocked = *upd.IsBlocked
	}
	if upd.ActiveUntil != nil {
		acc.ActiveUntil = *upd.ActiveUntil
	}
	if upd.Notes != nil {
		acc.Notes = *upd.Notes
	}
	if upd.Role != nil {
		acc.Role = *upd.Role
	}
	return nil
}

type fakeAdminRegistry struct {
	members map[primitive.ObjectID]bool
}

func newFakeAdminRegistry(ids ...primitive.ObjectID) *fakeAdminRegistry {
	m := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return &fakeAdminRegistry{members: m}
}

func (f *fakeAdminRegistry) Contains(_ context.Context, userID primitive.ObjectID) (bool, error) {
	return f.members[userID], nil
}

// fakeCoachClientRepo keys on clientId just like the unique index does, so an
// upsert for an already-linked client replaces the coach in place.
type fakeCoachClientRepo struct {
	coachByClient map[primitive.ObjectID]primitive.ObjectID
}

func newFakeCoachClientRepo() *fakeCoachClientRepo {
	return &fakeCoachClientRepo{coachByClient: make(map[primitive.ObjectID]primitive.ObjectID)}
}

func (f *fakeCoachClientRepo) SetCoach(_ context.Context, clientID, coachID primitive.ObjectID) error {
	f.coachByClient[clientID] = coachID
	return nil
}

func (f *fakeCoachClientRepo) RemoveCoach(_ context.Context, clientID primitive.ObjectID) error {
	delete(f.coachByClient, clientID)
	return nil
}

func (f *fakeCoachClientRepo) GetCoachForClient(_ context.Context, clientID primitive.ObjectID) (primitive.ObjectID, error) {
	coachID, ok := f.coachByClient[clientID]
	if !ok {
		return primitive.NilObjectID, repository.ErrNotFound
	}
	return coachID, nil
}

func (f *fakeCoachClientRepo) ListClientIDsByCoach(_ context.Context, coachID primitive.ObjectID) ([]primitive.ObjectID, error) {
	var out []primitive.ObjectID
	for clientID, c := range f.coachByClient {
		if c == coachID {
			out = append(out, clientID)
		}
	}
	return out, nil
}

type fakeWorkoutPlanRepo struct {
	plans          map[primitive.ObjectID]*domain.Plan
	items          []domain.WorkoutItem
	createErr      error
	insertItemsErr error
}

func newFakeWorkoutPlanRepo() *fakeWorkoutPlanRepo {
	return &fakeWorkoutPlanRepo{plans: make(map[primitive.ObjectID]*domain.Plan)}
}

func (f *fakeWorkoutPlanRepo) CreatePlan(_ context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	if f.createErr != nil {
		return primitive.NilObjectID, f.createErr
	}
	id := primitive.NewObjectID()
	cp := *plan
	cp.ID = id
	f.plans[id] = &cp
	return id, nil
}

func (f *fakeWorkoutPlanRepo) GetPlan(_ context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *plan
	return &cp, nil
}

func (f *fakeWorkoutPlanRepo) ListPlans(_ context.Context) ([]domain.Plan, error) {
	out := make([]domain.Plan, 0, len(f.plans))
	for _, p := range f.plans {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeWorkoutPlanRepo) ListPlansByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Plan, error) {
	out := make([]domain.Plan, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.plans[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeWorkoutPlanRepo) InsertItems(_ context.Context, items []domain.WorkoutItem) error {
	if f.insertItemsErr != nil {
		return f.insertItemsErr
	}
	f.items = append(f.items, items...)
	return nil
}

func (f *fakeWorkoutPlanRepo) GetItems(_ context.Context, planID primitive.ObjectID) ([]domain.WorkoutItem, error) {
	var out []domain.WorkoutItem
	for _, it := range f.items {
		if it.PlanID == planID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

type fakeNutritionPlanRepo struct {
	plans          map[primitive.ObjectID]*domain.Plan
	items          []domain.NutritionItem
	createErr      error
	insertItemsErr error
}

func newFakeNutritionPlanRepo() *fakeNutritionPlanRepo {
	return &fakeNutritionPlanRepo{plans: make(map[primitive.ObjectID]*domain.Plan)}
}

func (f *fakeNutritionPlanRepo) CreatePlan(_ context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	if f.createErr != nil {
		return primitive.NilObjectID, f.createErr
	}
	id := primitive.NewObjectID()
	cp := *plan
	cp.ID = id
	f.plans[id] = &cp
	return id, nil
}

func (f *fakeNutritionPlanRepo) GetPlan(_ context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *plan
	return &cp, nil
}

func (f *fakeNutritionPlanRepo) ListPlans(_ context.Context) ([]domain.Plan, error) {
	out := make([]domain.Plan, 0, len(f.plans))
	for _, p := range f.plans {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeNutritionPlanRepo) ListPlansByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Plan, error) {
	out := make([]domain.Plan, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.plans[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeNutritionPlanRepo) InsertItems(_ context.Context, items []domain.NutritionItem) error {
	if f.insertItemsErr != nil {
		return f.insertItemsErr
	}
	f.items = append(f.items, items...)
	return nil
}

func (f *fakeNutritionPlanRepo) GetItems(_ context.Context, planID primitive.ObjectID) ([]domain.NutritionItem, error) {
	var out []domain.NutritionItem
	for _, it := range f.items {
		if it.PlanID == planID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

type assignmentKey struct {
	userID primitive.ObjectID
	planID primitive.ObjectID
	kind   domain.PlanKind
}

type fakeAssignmentRepo struct {
	links      map[assignmentKey]bool
	upsertErrs map[domain.PlanKind]error
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{
		links:      make(map[assignmentKey]bool),
		upsertErrs: make(map[domain.PlanKind]error),
	}
}

func (f *fakeAssignmentRepo) Upsert(_ context.Context, userID, planID primitive.ObjectID, kind domain.PlanKind) error {
	if err := f.upsertErrs[kind]; err != nil {
		return err
	}
	f.links[assignmentKey{userID, planID, kind}] = true
	return nil
}

func (f *fakeAssignmentRepo) Delete(_ context.Context, userID, planID primitive.ObjectID, kind domain.PlanKind) error {
	delete(f.links, assignmentKey{userID, planID, kind})
	return nil
}

func (f *fakeAssignmentRepo) ListPlanIDs(_ context.Context, userID primitive.ObjectID, kind domain.PlanKind) ([]primitive.ObjectID, error) {
	var out []primitive.ObjectID
	for key := range f.links {
		if key.userID == userID && key.kind == kind {
			out = append(out, key.planID)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) count() int {
	return len(f.links)
}

// fakeGenerator scripts the external text generator.
type fakeGenerator struct {
	text  string
	err   error
	calls int
}

func (f *fakeGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// fakeArchive records transcript saves.
type fakeArchive struct {
	keys []string
	err  error
}

func (f *fakeArchive) SaveTranscript(_ context.Context, objectKey string, _ []byte) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, objectKey)
	return nil
}
