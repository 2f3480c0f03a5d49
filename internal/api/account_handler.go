package api

import (
	"errors"
	"net/http"
	"time"

	"ironclub/gym-portal/internal/domain"
	"ironclub/gym-portal/internal/repository"
	"ironclub/gym-portal/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccountHandler serves account listing and entitlement updates for admins
// and coaches.
type AccountHandler struct {
	resolverService service.ResolverService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(resolverService service.ResolverService) *AccountHandler {
	return &AccountHandler{resolverService: resolverService}
}

// --- DTOs ---

// AccountResponse is the externally visible account row.
type AccountResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	FullName    string  `json:"fullName,omitempty"`
	Role        string  `json:"role,omitempty"`
	IsBlocked   bool    `json:"isBlocked"`
	ActiveUntil *string `json:"activeUntil"` // YYYY-MM-DD, null when never activated
	Notes       string  `json:"notes,omitempty"`
}

// UpdateAccountRequest carries a partial entitlement update. ActiveUntil
// accepts YYYY-MM-DD; an empty string clears the date.
type UpdateAccountRequest struct {
	IsBlocked   *bool   `json:"isBlocked"`
	ActiveUntil *string `json:"activeUntil"`
	Notes       *string `json:"notes"`
	Role        *string `json:"role" binding:"omitempty,oneof=admin coach client"`
}

const dateLayout = "2006-01-02"

// MapAccountToResponse converts a domain.Account to its DTO.
func MapAccountToResponse(a *domain.Account) AccountResponse {
	resp := AccountResponse{
		ID:        a.ID.Hex(),
		Email:     a.Email,
		FullName:  a.FullName,
		Role:      a.Role,
		IsBlocked: a.IsBlocked,
		Notes:     a.Notes,
	}
	if a.ActiveUntil != nil {
		d := a.ActiveUntil.UTC().Format(dateLayout)
		resp.ActiveUntil = &d
	}
	return resp
}

// MapAccountsToResponse converts a slice of accounts to DTOs.
func MapAccountsToResponse(accounts []domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = MapAccountToResponse(&accounts[i])
	}
	return responses
}

func (req *UpdateAccountRequest) toEntitlementUpdate() (repository.EntitlementUpdate, error) {
	upd := repository.EntitlementUpdate{
		IsBlocked: req.IsBlocked,
		Notes:     req.Notes,
		Role:      req.Role,
	}
	if req.ActiveUntil != nil {
		if *req.ActiveUntil == "" {
			var cleared *time.Time
			upd.ActiveUntil = &cleared
		} else {
			parsed, err := time.Parse(dateLayout, *req.ActiveUntil)
			if err != nil {
				return upd, err
			}
			p := &parsed
			upd.ActiveUntil = &p
		}
	}
	return upd, nil
}

// --- Handler Methods ---

// ListAccounts returns every account. Admin only (enforced by route group).
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Unable to identify caller.")
		return
	}

	accounts, err := h.resolverService.ListAccounts(c.Request.Context(), principal)
	if err != nil {
		if errors.Is(err, service.ErrNotAuthorized) {
			abortWithError(c, http.StatusForbidden, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to list accounts.")
		return
	}

	c.JSON(http.StatusOK, MapAccountsToResponse(accounts))
}

// ListClients returns the coach's linked clients.
func (h *AccountHandler) ListClients(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Unable to identify caller.")
		return
	}

	clients, err := h.resolverService.ListClients(c.Request.Context(), principal)
	if err != nil {
		if errors.Is(err, service.ErrNotAuthorized) {
			abortWithError(c, http.StatusForbidden, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to list clients.")
		return
	}

	c.JSON(http.StatusOK, MapAccountsToResponse(clients))
}

// UpdateAccount applies a partial entitlement update to one account.
// Admins may update anyone; coaches only their own clients (and never roles).
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Unable to identify caller.")
		return
	}

	accountID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid account ID format.")
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	upd, err := req.toEntitlementUpdate()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid activeUntil date, expected YYYY-MM-DD.")
		return
	}

	err = h.resolverService.UpdateAccount(c.Request.Context(), principal, accountID, upd)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotAuthorized), errors.Is(err, service.ErrClientNotManaged):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrAccountNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update account.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
