package handlers

import (
	"net/http"

	"feedbackhub/internal/config"
	"feedbackhub/internal/middleware"
	"feedbackhub/internal/models"
	"feedbackhub/internal/observability"
	"feedbackhub/internal/serviceinterfaces"
	contextutils "feedbackhub/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"go.opentelemetry.io/otel/attribute"
)

// LoginRequest is the body of a login attempt. Role and organization only
// matter for unknown usernames; known accounts keep their stored values.
type LoginRequest struct {
	Username     string `json:"username" binding:"required"`
	Password     string `json:"password" binding:"required"`
	Role         string `json:"role" binding:"omitempty,oneof=user admin"`
	Organization string `json:"organization"`
}

// SignupRequest is the body of a signup attempt
type SignupRequest struct {
	Username     string              `json:"username" binding:"required"`
	Email        openapi_types.Email `json:"email" binding:"required"`
	Password     string              `json:"password" binding:"required"`
	Organization string              `json:"organization" binding:"required"`
}

// SessionResponse reports authentication state and the current account
type SessionResponse struct {
	Authenticated bool            `json:"authenticated"`
	Account       *models.Account `json:"account"`
}

// AuthHandler handles authentication related HTTP requests
type AuthHandler struct {
	identityService serviceinterfaces.IdentityServiceInterface
	config          *config.Config
	logger          *observability.Logger
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(identityService serviceinterfaces.IdentityServiceInterface, cfg *config.Config, logger *observability.Logger) *AuthHandler {
	return &AuthHandler{
		identityService: identityService,
		config:          cfg,
		logger:          logger,
	}
}

// Login handles login requests
func (h *AuthHandler) Login(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "login")
	defer observability.FinishSpan(span, nil)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleAppError(c, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn,
			"Invalid request body",
			"",
			err,
		))
		return
	}

	span.SetAttributes(
		attribute.String("auth.username", req.Username),
		attribute.Bool("auth.password_provided", req.Password != ""),
	)

	account, err := h.identityService.Login(c.Request.Context(), req.Username, req.Password, models.Role(req.Role), req.Organization)
	if err != nil {
		h.logger.Error(c.Request.Context(), "Login failed", err, map[string]interface{}{"username": req.Username})
		HandleAppError(c, err)
		return
	}

	span.SetAttributes(
		attribute.String("account.id", account.ID),
		attribute.String("account.role", string(account.Role)),
		attribute.Bool("account.ephemeral", account.Ephemeral),
	)

	session := sessions.Default(c)
	session.Set(middleware.AccountIDKey, account.ID)
	session.Set(middleware.UsernameKey, account.Username)

	if err := session.Save(); err != nil {
		h.logger.Error(c.Request.Context(), "Failed to save session", err, map[string]interface{}{"error": err.Error()})
		HandleAppError(c, contextutils.WrapError(err, "failed to create session"))
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		Authenticated: true,
		Account:       account,
	})
}

// Signup handles registration requests and logs the new account in
func (h *AuthHandler) Signup(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "signup")
	defer observability.FinishSpan(span, nil)

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleAppError(c, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn,
			"Invalid request body",
			"",
			err,
		))
		return
	}

	span.SetAttributes(
		attribute.String("auth.username", req.Username),
		attribute.String("auth.organization", req.Organization),
	)

	account, err := h.identityService.SignUp(c.Request.Context(), req.Username, string(req.Email), req.Password, req.Organization)
	if err != nil {
		h.logger.Warn(c.Request.Context(), "Signup failed", map[string]interface{}{
			"username": req.Username,
			"error":    err.Error(),
		})
		HandleAppError(c, err)
		return
	}

	// Signup logs the new account in immediately
	session := sessions.Default(c)
	session.Set(middleware.AccountIDKey, account.ID)
	session.Set(middleware.UsernameKey, account.Username)

	if err := session.Save(); err != nil {
		h.logger.Error(c.Request.Context(), "Failed to save session", err, map[string]interface{}{"error": err.Error()})
		HandleAppError(c, contextutils.WrapError(err, "failed to create session"))
		return
	}

	c.JSON(http.StatusCreated, SessionResponse{
		Authenticated: true,
		Account:       account,
	})
}

// Logout handles logout requests
func (h *AuthHandler) Logout(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "logout")
	defer observability.FinishSpan(span, nil)

	session := sessions.Default(c)
	if accountID, ok := session.Get(middleware.AccountIDKey).(string); ok {
		span.SetAttributes(attribute.String("account.id", accountID))
	}

	session.Clear()

	if err := session.Save(); err != nil {
		HandleAppError(c, contextutils.WrapError(err, "failed to clear session"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logout successful",
	})
}

// Status returns the current authentication status and account
func (h *AuthHandler) Status(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "status")
	defer observability.FinishSpan(span, nil)

	session := sessions.Default(c)
	accountID, ok := session.Get(middleware.AccountIDKey).(string)
	if !ok || accountID == "" {
		span.SetAttributes(attribute.Bool("auth.authenticated", false))
		c.JSON(http.StatusOK, SessionResponse{Authenticated: false})
		return
	}

	account, err := h.identityService.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		if contextutils.IsError(err, contextutils.ErrRecordNotFound) {
			// Stale session for an account that no longer exists
			session.Clear()
			if err := session.Save(); err != nil {
				h.logger.Error(c.Request.Context(), "Error saving session", err, map[string]interface{}{"error": err.Error()})
			}
			span.SetAttributes(attribute.Bool("auth.account_found", false))
			c.JSON(http.StatusOK, SessionResponse{Authenticated: false})
			return
		}
		h.logger.Error(c.Request.Context(), "Error getting account by ID", err, map[string]interface{}{"account_id": accountID})
		HandleAppError(c, contextutils.ErrInternalError)
		return
	}

	span.SetAttributes(
		attribute.Bool("auth.authenticated", true),
		attribute.String("account.id", account.ID),
		attribute.String("account.role", string(account.Role)),
	)

	c.JSON(http.StatusOK, SessionResponse{
		Authenticated: true,
		Account:       account,
	})
}

// Check is a lightweight auth-check endpoint intended for reverse proxy auth_request.
// It requires authentication via middleware and returns 204 when authenticated.
// Unauthenticated requests are rejected by the RequireAuth middleware with 401.
func (h *AuthHandler) Check(c *gin.Context) {
	// If we reached here, authentication succeeded in middleware
	c.Status(http.StatusNoContent)
}
