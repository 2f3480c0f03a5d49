package service

import (
	"context"
	"errors"
	"time"

	"ironclub/gym-portal/internal/domain"
	"ironclub/gym-portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrProfileUnprovisioned = errors.New("account not provisioned")
	ErrAccountBlocked       = errors.New("account is blocked")
	ErrSubscriptionExpired  = errors.New("subscription has expired")
	ErrNotAuthorized        = errors.New("operation not permitted for this role")
	ErrClientNotManaged     = errors.New("client is not managed by this coach")
	ErrAccountNotFound      = errors.New("account not found")
)

// --- Service Interface ---

// ResolverService converts raw account rows into authorized, role-tagged
// principals and owns the entitlement update path.
type ResolverService interface {
	// Resolve loads the account for the authenticated subject and derives the
	// canonical role. Returns ErrProfileUnprovisioned when no row exists.
	Resolve(ctx context.Context, subjectID primitive.ObjectID) (*domain.Principal, error)

	// CheckEntitlement gates a resolved principal. Blocked outranks expired:
	// a blocked-and-expired account must report blocked.
	CheckEntitlement(p *domain.Principal) error

	// ListAccounts returns every account. Admin only.
	ListAccounts(ctx context.Context, actor *domain.Principal) ([]domain.Account, error)

	// ListClients returns the accounts of clients linked to the coach.
	ListClients(ctx context.Context, actor *domain.Principal) ([]domain.Account, error)

	// UpdateAccount mutates entitlement fields. Admins may update any account
	// including its role; coaches only their own clients, never roles.
	UpdateAccount(ctx context.Context, actor *domain.Principal, accountID primitive.ObjectID, upd repository.EntitlementUpdate) error
}

// --- Service Implementation ---

type resolverService struct {
	accountRepo     repository.AccountRepository
	adminRegistry   repository.AdminRegistryRepository
	coachClientRepo repository.CoachClientRepository
}

// NewResolverService creates a new instance of resolverService.
func NewResolverService(
	accountRepo repository.AccountRepository,
	adminRegistry repository.AdminRegistryRepository,
	coachClientRepo repository.CoachClientRepository,
) ResolverService {
	return &resolverService{
		accountRepo:     accountRepo,
		adminRegistry:   adminRegistry,
		coachClientRepo: coachClientRepo,
	}
}

// Resolve loads the account row and collapses the role signals into one Role.
// Precedence, highest wins: admin registry membership, then the is_admin
// flag (or a stored "admin" role), then a stored "coach" role, else client.
func (s *resolverService) Resolve(ctx context.Context, subjectID primitive.ObjectID) (*domain.Principal, error) {
	if subjectID == primitive.NilObjectID {
		return nil, ErrProfileUnprovisioned
	}

	account, err := s.accountRepo.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileUnprovisioned
		}
		return nil, err
	}

	// The registry is checked first so that admin status never depends on a
	// self-referential read of the account's own role fields.
	registered, err := s.adminRegistry.Contains(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	role := domain.RoleClient
	switch {
	case registered || account.IsAdmin || account.Role == string(domain.RoleAdmin):
		role = domain.RoleAdmin
	case account.Role == string(domain.RoleCoach):
		role = domain.RoleCoach
	}

	return &domain.Principal{
		ID:          account.ID,
		Email:       account.Email,
		FullName:    account.FullName,
		Role:        role,
		IsBlocked:   account.IsBlocked,
		ActiveUntil: account.ActiveUntil,
		Notes:       account.Notes,
	}, nil
}

// CheckEntitlement evaluates the block/expiry gates in contract order.
func (s *resolverService) CheckEntitlement(p *domain.Principal) error {
	if p == nil {
		return ErrProfileUnprovisioned
	}
	if p.IsBlocked {
		return ErrAccountBlocked
	}
	if domain.IsExpired(p.ActiveUntil, time.Now()) {
		return ErrSubscriptionExpired
	}
	return nil
}

// ListAccounts returns all accounts, admin only.
func (s *resolverService) ListAccounts(ctx context.Context, actor *domain.Principal) ([]domain.Account, error) {
	if !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	return s.accountRepo.List(ctx)
}

// ListClients returns the accounts linked to the acting coach. Admins get the
// same view for any coach they impersonate via their own account.
func (s *resolverService) ListClients(ctx context.Context, actor *domain.Principal) ([]domain.Account, error) {
	if !actor.IsCoach() && !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}

	ids, err := s.coachClientRepo.ListClientIDsByCoach(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.Account{}, nil
	}
	return s.accountRepo.ListByIDs(ctx, ids)
}

// UpdateAccount applies an entitlement update within the actor's scope.
func (s *resolverService) UpdateAccount(ctx context.Context, actor *domain.Principal, accountID primitive.ObjectID, upd repository.EntitlementUpdate) error {
	switch {
	case actor.IsAdmin():
		// Admin may update anyone, any field.
	case actor.IsCoach():
		// Coaches never change roles, and only touch their own clients.
		if upd.Role != nil {
			return ErrNotAuthorized
		}
		coachID, err := s.coachClientRepo.GetCoachForClient(ctx, accountID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrClientNotManaged
			}
			return err
		}
		if coachID != actor.ID {
			return ErrClientNotManaged
		}
	default:
		return ErrNotAuthorized
	}

	err := s.accountRepo.UpdateEntitlement(ctx, accountID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	return nil
}
