package service

import (
	"context"
	"testing"
	"time"

	"ironclub/gym-portal/internal/domain"
	"ironclub/gym-portal/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func futureDate() *time.Time {
	t := time.Now().UTC().AddDate(0, 1, 0)
	return &t
}

func pastDate() *time.Time {
	t := time.Now().UTC().AddDate(0, 0, -2)
	return &t
}

func TestResolveRolePrecedence(t *testing.T) {
	registryID := primitive.NewObjectID()

	tests := []struct {
		name       string
		account    domain.Account
		inRegistry bool
		want       domain.Role
	}{
		{
			name:       "registry membership outranks stored coach role",
			account:    domain.Account{Role: "coach"},
			inRegistry: true,
			want:       domain.RoleAdmin,
		},
		{
			name:    "is_admin flag wins without registry entry",
			account: domain.Account{IsAdmin: true, Role: "coach"},
			want:    domain.RoleAdmin,
		},
		{
			name:    "stored admin role wins over default",
			account: domain.Account{Role: "admin"},
			want:    domain.RoleAdmin,
		},
		{
			name:    "stored coach role",
			account: domain.Account{Role: "coach"},
			want:    domain.RoleCoach,
		},
		{
			name:    "no signals resolves to client",
			account: domain.Account{},
			want:    domain.RoleClient,
		},
		{
			name:    "unknown stored role resolves to client",
			account: domain.Account{Role: "trainer"},
			want:    domain.RoleClient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := registryID
			if !tt.inRegistry {
				id = primitive.NewObjectID()
			}
			tt.account.ID = id
			tt.account.Email = "someone@example.com"

			accountRepo := newFakeAccountRepo().add(&tt.account)
			svc := NewResolverService(accountRepo, newFakeAdminRegistry(registryID), newFakeCoachClientRepo())

			p, err := svc.Resolve(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Role)
			assert.Equal(t, "someone@example.com", p.Email)
		})
	}
}

func TestResolveUnprovisioned(t *testing.T) {
	svc := NewResolverService(newFakeAccountRepo(), newFakeAdminRegistry(), newFakeCoachClientRepo())

	_, err := svc.Resolve(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrProfileUnprovisioned)

	_, err = svc.Resolve(context.Background(), primitive.NilObjectID)
	assert.ErrorIs(t, err, ErrProfileUnprovisioned)
}

func TestCheckEntitlement(t *testing.T) {
	svc := NewResolverService(newFakeAccountRepo(), newFakeAdminRegistry(), newFakeCoachClientRepo())

	t.Run("active account passes", func(t *testing.T) {
		err := svc.CheckEntitlement(&domain.Principal{ActiveUntil: futureDate()})
		assert.NoError(t, err)
	})

	t.Run("blocked outranks expired", func(t *testing.T) {
		err := svc.CheckEntitlement(&domain.Principal{IsBlocked: true, ActiveUntil: pastDate()})
		assert.ErrorIs(t, err, ErrAccountBlocked)
	})

	t.Run("expired", func(t *testing.T) {
		err := svc.CheckEntitlement(&domain.Principal{ActiveUntil: pastDate()})
		assert.ErrorIs(t, err, ErrSubscriptionExpired)
	})

	t.Run("never activated counts as expired", func(t *testing.T) {
		err := svc.CheckEntitlement(&domain.Principal{})
		assert.ErrorIs(t, err, ErrSubscriptionExpired)
	})

	t.Run("nil principal", func(t *testing.T) {
		err := svc.CheckEntitlement(nil)
		assert.ErrorIs(t, err, ErrProfileUnprovisioned)
	})
}

func TestListAccountsAdminOnly(t *testing.T) {
	accountRepo := newFakeAccountRepo().
		add(&domain.Account{ID: primitive.NewObjectID(), Email: "a@example.com"}).
		add(&domain.Account{ID: primitive.NewObjectID(), Email: "b@example.com"})
	svc := NewResolverService(accountRepo, newFakeAdminRegistry(), newFakeCoachClientRepo())

	accounts, err := svc.ListAccounts(context.Background(), &domain.Principal{Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	_, err = svc.ListAccounts(context.Background(), &domain.Principal{Role: domain.RoleCoach})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = svc.ListAccounts(context.Background(), &domain.Principal{Role: domain.RoleClient})
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestListClientsScopedToCoach(t *testing.T) {
	coachID := primitive.NewObjectID()
	otherCoachID := primitive.NewObjectID()
	clientA := primitive.NewObjectID()
	clientB := primitive.NewObjectID()

	accountRepo := newFakeAccountRepo().
		add(&domain.Account{ID: clientA, Email: "a@example.com"}).
		add(&domain.Account{ID: clientB, Email: "b@example.com"})
	coachClientRepo := newFakeCoachClientRepo()
	require.NoError(t, coachClientRepo.SetCoach(context.Background(), clientA, coachID))
	require.NoError(t, coachClientRepo.SetCoach(context.Background(), clientB, otherCoachID))

	svc := NewResolverService(accountRepo, newFakeAdminRegistry(), coachClientRepo)

	clients, err := svc.ListClients(context.Background(), &domain.Principal{ID: coachID, Role: domain.RoleCoach})
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "a@example.com", clients[0].Email)

	clients, err = svc.ListClients(context.Background(), &domain.Principal{ID: primitive.NewObjectID(), Role: domain.RoleCoach})
	require.NoError(t, err)
	assert.Empty(t, clients)

	_, err = svc.ListClients(context.Background(), &domain.Principal{ID: clientA, Role: domain.RoleClient})
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestUpdateAccountAdmin(t *testing.T) {
	accountID := primitive.NewObjectID()
	accountRepo := newFakeAccountRepo().add(&domain.Account{ID: accountID, Email: "c@example.com"})
	svc := NewResolverService(accountRepo, newFakeAdminRegistry(), newFakeCoachClientRepo())
	admin := &domain.Principal{ID: primitive.NewObjectID(), Role: domain.RoleAdmin}

	blocked := true
	role := "coach"
	until := futureDate()
	err := svc.UpdateAccount(context.Background(), admin, accountID, repository.EntitlementUpdate{
		IsBlocked:   &blocked,
		Role:        &role,
		ActiveUntil: &until,
	})
	require.NoError(t, err)

	acc := accountRepo.accounts[accountID]
	assert.True(t, acc.IsBlocked)
	assert.Equal(t, "coach", acc.Role)
	require.NotNil(t, acc.ActiveUntil)

	t.Run("clearing the date", func(t *testing.T) {
		var cleared *time.Time
		err := svc.UpdateAccount(context.Background(), admin, accountID, repository.EntitlementUpdate{ActiveUntil: &cleared})
		require.NoError(t, err)
		assert.Nil(t, accountRepo.accounts[accountID].ActiveUntil)
	})

	t.Run("unknown account", func(t *testing.T) {
		err := svc.UpdateAccount(context.Background(), admin, primitive.NewObjectID(), repository.EntitlementUpdate{IsBlocked: &blocked})
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestUpdateAccountCoachScope(t *testing.T) {
	coachID := primitive.NewObjectID()
	ownClient := primitive.NewObjectID()
	otherClient := primitive.NewObjectID()

	accountRepo := newFakeAccountRepo().
		add(&domain.Account{ID: ownClient, Email: "own@example.com"}).
		add(&domain.Account{ID: otherClient, Email: "other@example.com"})
	coachClientRepo := newFakeCoachClientRepo()
	require.NoError(t, coachClientRepo.SetCoach(context.Background(), ownClient, coachID))
	require.NoError(t, coachClientRepo.SetCoach(context.Background(), otherClient, primitive.NewObjectID()))

	svc := NewResolverService(accountRepo, newFakeAdminRegistry(), coachClientRepo)
	coach := &domain.Principal{ID: coachID, Role: domain.RoleCoach}

	blocked := true
	err := svc.UpdateAccount(context.Background(), coach, ownClient, repository.EntitlementUpdate{IsBlocked: &blocked})
	require.NoError(t, err)
	assert.True(t, accountRepo.accounts[ownClient].IsBlocked)

	t.Run("another coach's client is out of scope", func(t *testing.T) {
		err := svc.UpdateAccount(context.Background(), coach, otherClient, repository.EntitlementUpdate{IsBlocked: &blocked})
		assert.ErrorIs(t, err, ErrClientNotManaged)
	})

	t.Run("unlinked user is out of scope", func(t *testing.T) {
		err := svc.UpdateAccount(context.Background(), coach, primitive.NewObjectID(), repository.EntitlementUpdate{IsBlocked: &blocked})
		assert.ErrorIs(t, err, ErrClientNotManaged)
	})

	t.Run("coach may not change roles", func(t *testing.T) {
		role := "admin"
		err := svc.UpdateAccount(context.Background(), coach, ownClient, repository.EntitlementUpdate{Role: &role})
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("client may not update anyone", func(t *testing.T) {
		client := &domain.Principal{ID: ownClient, Role: domain.RoleClient}
		err := svc.UpdateAccount(context.Background(), client, ownClient, repository.EntitlementUpdate{IsBlocked: &blocked})
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})
}
