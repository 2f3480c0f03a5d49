package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ironclub/gym-portal/internal/domain"
	"ironclub/gym-portal/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Constants for context keys
const (
	ContextUserIDKey    = "userID"
	ContextPrincipalKey = "principal"
)

// sessionClaims is the token payload minted by the external identity
// provider. Only the subject is consumed here; this service never verifies
// credentials itself.
type sessionClaims struct {
	jwt.RegisteredClaims
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// AuthMiddleware validates the bearer token and extracts the subject id.
// A missing or invalid session is the first refusal in the gate order.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}
		tokenString := parts[1]

		claims := &sessionClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})

		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, "Session has expired")
			} else {
				abortWithError(c, http.StatusUnauthorized, fmt.Sprintf("Invalid token: %v", err))
			}
			return
		}

		if !token.Valid || claims.Subject == "" {
			abortWithError(c, http.StatusUnauthorized, "Invalid token or missing subject")
			return
		}

		c.Set(ContextUserIDKey, claims.Subject)
		c.Next()
	}
}

// PrincipalMiddleware resolves the authenticated subject into a Principal.
// Runs after AuthMiddleware. An account row that does not exist yet (signup
// happened but the admin never activated it) is refused here.
func PrincipalMiddleware(resolver service.ResolverService) gin.HandlerFunc {
	return func(c *gin.Context) {
		subjectIDStr, err := getUserIDFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
			return
		}
		subjectID, err := primitive.ObjectIDFromHex(subjectIDStr)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
			return
		}

		principal, err := resolver.Resolve(c.Request.Context(), subjectID)
		if err != nil {
			if errors.Is(err, service.ErrProfileUnprovisioned) {
				abortWithError(c, http.StatusForbidden, "Account not provisioned. Contact the admin.")
			} else {
				abortWithError(c, http.StatusInternalServerError, "Failed to resolve account.")
			}
			return
		}

		c.Set(ContextPrincipalKey, principal)
		c.Next()
	}
}

// EntitlementMiddleware refuses blocked and expired accounts, in that order.
// Runs after PrincipalMiddleware.
func EntitlementMiddleware(resolver service.ResolverService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := getPrincipalFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "Principal not found in context")
			return
		}

		if err := resolver.CheckEntitlement(principal); err != nil {
			switch {
			case errors.Is(err, service.ErrAccountBlocked):
				abortWithError(c, http.StatusForbidden, "Account blocked. Contact the admin.")
			case errors.Is(err, service.ErrSubscriptionExpired):
				abortWithError(c, http.StatusForbidden, "Subscription expired. Contact the admin.")
			default:
				abortWithError(c, http.StatusForbidden, "Access denied.")
			}
			return
		}

		c.Next()
	}
}

// RoleMiddleware checks that the resolved principal has one of the allowed
// roles. Must run AFTER PrincipalMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := getPrincipalFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "Principal not found in context")
			return
		}

		allowed := false
		for _, role := range allowedRoles {
			if principal.Role == role {
				allowed = true
				break
			}
		}

		if !allowed {
			abortWithError(c, http.StatusForbidden, fmt.Sprintf("Access denied: Role '%s' does not have permission", principal.Role))
			return
		}

		c.Next()
	}
}

// Helper function to get the raw subject ID from context.
func getUserIDFromContext(c *gin.Context) (string, error) {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", errors.New("user ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok {
		return "", errors.New("invalid user ID type in context")
	}
	return idStr, nil
}

// Helper function to get the resolved Principal from context.
func getPrincipalFromContext(c *gin.Context) (*domain.Principal, error) {
	raw, exists := c.Get(ContextPrincipalKey)
	if !exists {
		return nil, errors.New("principal not found in context")
	}
	principal, ok := raw.(*domain.Principal)
	if !ok {
		return nil, errors.New("invalid principal type in context")
	}
	return principal, nil
}
