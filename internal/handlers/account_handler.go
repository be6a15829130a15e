package handlers

import (
	"errors"
	"net/http"

	"feedbackhub/internal/config"
	"feedbackhub/internal/models"
	"feedbackhub/internal/observability"
	"feedbackhub/internal/serviceinterfaces"
	contextutils "feedbackhub/internal/utils"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// AccountListResponse carries the full account directory
type AccountListResponse struct {
	Accounts []models.Account `json:"accounts"`
	Total    int              `json:"total"`
}

// AccountHandler handles account related HTTP requests
type AccountHandler struct {
	identityService serviceinterfaces.IdentityServiceInterface
	config          *config.Config
	logger          *observability.Logger
}

// NewAccountHandler creates a new AccountHandler instance
func NewAccountHandler(identityService serviceinterfaces.IdentityServiceInterface, cfg *config.Config, logger *observability.Logger) *AccountHandler {
	return &AccountHandler{
		identityService: identityService,
		config:          cfg,
		logger:          logger,
	}
}

// Get returns a single account. Accounts may fetch themselves; admins may
// fetch anyone.
func (h *AccountHandler) Get(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_account")
	defer observability.FinishSpan(span, nil)

	currentID, err := GetCurrentAccountID(c)
	if err != nil {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}

	targetID := c.Param("id")
	span.SetAttributes(attribute.String("account.id", targetID))

	if err := RequireSelfOrAdmin(c.Request.Context(), h.identityService, currentID, targetID); err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			HandleAppError(c, contextutils.WrapError(contextutils.ErrForbidden, "not authorized to view this account"))
		case errors.Is(err, ErrUnauthenticated):
			HandleAppError(c, contextutils.ErrUnauthorized)
		default:
			HandleAppError(c, err)
		}
		return
	}

	account, err := h.identityService.GetAccountByID(c.Request.Context(), targetID)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// List returns all accounts, sorted by username. Admin surface.
func (h *AccountHandler) List(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "list_accounts")
	defer observability.FinishSpan(span, nil)

	accounts, err := h.identityService.ListAccounts(c.Request.Context())
	if err != nil {
		HandleAppError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("accounts.count", len(accounts)))
	c.JSON(http.StatusOK, AccountListResponse{
		Accounts: accounts,
		Total:    len(accounts),
	})
}
