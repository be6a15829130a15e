package handlers

import (
	"context"
	"errors"

	"feedbackhub/internal/middleware"
	contextutils "feedbackhub/internal/utils"

	"github.com/gin-gonic/gin"
)

var (
	// ErrUnauthenticated indicates no current account could be determined
	ErrUnauthenticated = errors.New("account not authenticated")
	// ErrInvalidAccountID indicates the stored account identifier is malformed
	ErrInvalidAccountID = errors.New("invalid account id")
	// ErrForbidden indicates the account lacks permissions for the operation
	ErrForbidden = errors.New("forbidden")
)

// GetCurrentAccountID returns the current authenticated account's ID.
// It first checks the Gin context (set by RequireAuth/RequireAdmin), then
// the request context the auth middleware threads the ID through, then
// falls back to the session store. Returns an error if unauthenticated
// or if the stored value is invalid.
func GetCurrentAccountID(c *gin.Context) (string, error) {
	if rawID, exists := c.Get(middleware.AccountIDKey); exists {
		if id, ok := rawID.(string); ok && id != "" {
			return id, nil
		}
		return "", ErrInvalidAccountID
	}

	if id := contextutils.GetAccountIDFromContext(c.Request.Context()); id != "" {
		return id, nil
	}

	// Fallback to session lookup if neither context is populated
	if id, ok := GetAccountIDFromSession(c); ok {
		return id, nil
	}
	return "", ErrUnauthenticated
}

// authzAdminChecker is the minimal capability needed from the identity service
// for admin checks.
type authzAdminChecker interface {
	IsAdmin(ctx context.Context, accountID string) (bool, error)
}

// RequireSelfOrAdmin permits the action if the current account is the target
// account or has admin privileges. Returns ErrForbidden when neither condition
// is met.
func RequireSelfOrAdmin(ctx context.Context, svc authzAdminChecker, currentID, targetID string) error {
	if currentID == "" {
		return ErrUnauthenticated
	}
	if currentID == targetID {
		return nil
	}

	isAdmin, err := svc.IsAdmin(ctx, currentID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return ErrForbidden
	}
	return nil
}
