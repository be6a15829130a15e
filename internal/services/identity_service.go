// Package services contains the in-memory stores behind the HTTP API.
package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"feedbackhub/internal/config"
	"feedbackhub/internal/models"
	"feedbackhub/internal/observability"
	contextutils "feedbackhub/internal/utils"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// IdentityService implements IdentityServiceInterface over an in-memory
// account set. All access goes through the mutex; returned accounts are
// copies, never pointers into the store.
type IdentityService struct {
	mu         sync.RWMutex
	byID       map[string]*models.Account
	byUsername map[string]*models.Account

	cfg    *config.Config
	logger *observability.Logger
}

// NewIdentityService creates a new IdentityService instance.
func NewIdentityService(cfg *config.Config, logger *observability.Logger) *IdentityService {
	if cfg == nil {
		panic("NewIdentityService: cfg is nil")
	}
	if logger == nil {
		panic("NewIdentityService: logger is nil")
	}
	return &IdentityService{
		byID:       make(map[string]*models.Account),
		byUsername: make(map[string]*models.Account),
		cfg:        cfg,
		logger:     logger,
	}
}

// SignUp creates a new user-role account bound to an organization.
func (s *IdentityService) SignUp(ctx context.Context, username, email, password, organization string) (result0 *models.Account, err error) {
	ctx, span := observability.TraceIdentityFunction(ctx, "sign_up", attribute.String("username", username))
	defer observability.FinishSpan(span, &err)

	if s.cfg.IsSignupDisabled() {
		return nil, contextutils.ErrSignupsDisabled
	}

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	organization = strings.TrimSpace(organization)

	if username == "" {
		return nil, contextutils.WrapError(contextutils.ErrMissingRequired, "username is required")
	}
	if email == "" {
		return nil, contextutils.WrapError(contextutils.ErrMissingRequired, "email is required")
	}
	if password == "" {
		return nil, contextutils.WrapError(contextutils.ErrMissingRequired, "password is required")
	}
	if organization == "" {
		return nil, contextutils.WrapError(contextutils.ErrMissingRequired, "organization is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[strings.ToLower(username)]; exists {
		return nil, contextutils.WrapErrorf(contextutils.ErrRecordExists, "username %q is taken", username)
	}

	account := &models.Account{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        models.NullString(email),
		Role:         models.RoleUser,
		Organization: models.NullString(organization),
		CreatedAt:    time.Now(),
	}
	s.byID[account.ID] = account
	s.byUsername[strings.ToLower(username)] = account

	s.logger.Info(ctx, "Account created", map[string]interface{}{
		"account_id":   account.ID,
		"username":     account.Username,
		"organization": organization,
	})

	clone := *account
	return &clone, nil
}

// Login resolves the account for a login attempt. A known username always
// wins: the stored role and organization are authoritative and the requested
// ones are ignored. Unknown usernames synthesize an ephemeral account when
// permissive logins are enabled, otherwise the attempt fails.
func (s *IdentityService) Login(ctx context.Context, username, password string, role models.Role, organization string) (result0 *models.Account, err error) {
	ctx, span := observability.TraceIdentityFunction(ctx, "login", attribute.String("username", username))
	defer observability.FinishSpan(span, &err)

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, contextutils.WrapError(contextutils.ErrMissingRequired, "username is required")
	}
	if password == "" {
		return nil, contextutils.WrapError(contextutils.ErrMissingRequired, "password is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if account, exists := s.byUsername[strings.ToLower(username)]; exists {
		clone := *account
		return &clone, nil
	}

	if !s.cfg.Auth.AllowEphemeralLogins {
		return nil, contextutils.ErrInvalidCredentials
	}

	if !role.Valid() {
		role = models.RoleUser
	}

	account := &models.Account{
		ID:           uuid.NewString(),
		Username:     username,
		Role:         role,
		Organization: models.NullString(strings.TrimSpace(organization)),
		Ephemeral:    true,
		CreatedAt:    time.Now(),
	}
	s.byID[account.ID] = account
	s.byUsername[strings.ToLower(username)] = account

	s.logger.Info(ctx, "Ephemeral account synthesized for unknown username", map[string]interface{}{
		"account_id": account.ID,
		"username":   account.Username,
		"role":       string(account.Role),
	})

	clone := *account
	return &clone, nil
}

// GetAccountByID fetches a single account by its identifier.
func (s *IdentityService) GetAccountByID(ctx context.Context, id string) (result0 *models.Account, err error) {
	_, span := observability.TraceIdentityFunction(ctx, "get_account_by_id", attribute.String("account_id", id))
	defer observability.FinishSpan(span, &err)

	s.mu.RLock()
	defer s.mu.RUnlock()

	account, exists := s.byID[id]
	if !exists {
		return nil, contextutils.ErrRecordNotFound
	}
	clone := *account
	return &clone, nil
}

// GetAccountByUsername fetches a single account by username.
// Lookup is case-insensitive.
func (s *IdentityService) GetAccountByUsername(ctx context.Context, username string) (result0 *models.Account, err error) {
	_, span := observability.TraceIdentityFunction(ctx, "get_account_by_username", attribute.String("username", username))
	defer observability.FinishSpan(span, &err)

	s.mu.RLock()
	defer s.mu.RUnlock()

	account, exists := s.byUsername[strings.ToLower(username)]
	if !exists {
		return nil, contextutils.ErrRecordNotFound
	}
	clone := *account
	return &clone, nil
}

// ListAccounts returns every account, sorted by username.
func (s *IdentityService) ListAccounts(ctx context.Context) (result0 []models.Account, err error) {
	_, span := observability.TraceIdentityFunction(ctx, "list_accounts")
	defer observability.FinishSpan(span, &err)

	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]models.Account, 0, len(s.byID))
	for _, account := range s.byID {
		accounts = append(accounts, *account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Username < accounts[j].Username
	})
	return accounts, nil
}

// IsAdmin reports whether the account has the admin role.
func (s *IdentityService) IsAdmin(ctx context.Context, accountID string) (result0 bool, err error) {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return false, err
	}
	return account.IsAdmin(), nil
}

// CreateAccount inserts a fully-specified account, used by seeding to build
// admin and super-admin fixtures that SignUp cannot create.
func (s *IdentityService) CreateAccount(ctx context.Context, account *models.Account) (result0 *models.Account, err error) {
	_, span := observability.TraceIdentityFunction(ctx, "create_account", attribute.String("username", account.Username))
	defer observability.FinishSpan(span, &err)

	if account.Username == "" {
		return nil, contextutils.WrapError(contextutils.ErrMissingRequired, "username is required")
	}
	if !account.Role.Valid() {
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "invalid role %q", account.Role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[strings.ToLower(account.Username)]; exists {
		return nil, contextutils.WrapErrorf(contextutils.ErrRecordExists, "username %q is taken", account.Username)
	}

	stored := *account
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.byID[stored.ID] = &stored
	s.byUsername[strings.ToLower(stored.Username)] = &stored

	clone := stored
	return &clone, nil
}
