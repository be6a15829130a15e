// Package serviceinterfaces defines service interfaces for dependency injection and testing.
package serviceinterfaces

import (
	"context"

	"feedbackhub/internal/models"
)

// IdentityServiceInterface defines operations over the account set.
// Per-client session state lives in the HTTP session, not here.
type IdentityServiceInterface interface {
	// SignUp creates a new user-role account bound to an organization
	SignUp(ctx context.Context, username, email, password, organization string) (*models.Account, error)

	// Login resolves an account for a login attempt. A known username wins
	// regardless of the requested role/organization; an unknown username
	// synthesizes an ephemeral account when permissive logins are enabled.
	Login(ctx context.Context, username, password string, role models.Role, organization string) (*models.Account, error)

	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)

	// IsAdmin reports whether the account has the admin role
	IsAdmin(ctx context.Context, accountID string) (bool, error)
}
