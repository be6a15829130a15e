package handlers

import (
	"net/http"

	"feedbackhub/internal/config"
	"feedbackhub/internal/models"
	"feedbackhub/internal/observability"
	"feedbackhub/internal/serviceinterfaces"
	contextutils "feedbackhub/internal/utils"

	"github.com/gin-gonic/gin"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"go.opentelemetry.io/otel/attribute"
)

// SubmitFeedbackRequest is the body of a feedback submission
type SubmitFeedbackRequest struct {
	Entity       string              `json:"entity" binding:"required"`
	Organization string              `json:"organization" binding:"required"`
	Category     string              `json:"category" binding:"required,oneof=complaint suggestion compliment"`
	Description  string              `json:"description" binding:"required"`
	ContactEmail openapi_types.Email `json:"contact_email,omitempty" binding:"omitempty"`
}

// UpdateStatusRequest is the body of an admin status transition
type UpdateStatusRequest struct {
	Status   string `json:"status" binding:"required,oneof=pending reviewed resolved"`
	Response string `json:"response"`
}

// FeedbackListResponse carries a page of records plus the total
type FeedbackListResponse struct {
	Feedback []models.FeedbackRecord `json:"feedback"`
	Total    int                     `json:"total"`
}

// FeedbackStatsResponse carries derived counts over the visible set
type FeedbackStatsResponse struct {
	Total      int                             `json:"total"`
	ByStatus   map[models.FeedbackStatus]int   `json:"by_status"`
	ByCategory map[models.FeedbackCategory]int `json:"by_category"`
}

// FeedbackHandler handles feedback related HTTP requests
type FeedbackHandler struct {
	feedbackService serviceinterfaces.FeedbackServiceInterface
	identityService serviceinterfaces.IdentityServiceInterface
	emailService    serviceinterfaces.EmailService
	config          *config.Config
	logger          *observability.Logger
}

// NewFeedbackHandler creates a new FeedbackHandler instance
func NewFeedbackHandler(
	feedbackService serviceinterfaces.FeedbackServiceInterface,
	identityService serviceinterfaces.IdentityServiceInterface,
	emailService serviceinterfaces.EmailService,
	cfg *config.Config,
	logger *observability.Logger,
) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
		identityService: identityService,
		emailService:    emailService,
		config:          cfg,
		logger:          logger,
	}
}

// currentAccount resolves the authenticated account for the request
func (h *FeedbackHandler) currentAccount(c *gin.Context) (*models.Account, error) {
	accountID, err := GetCurrentAccountID(c)
	if err != nil {
		return nil, contextutils.ErrUnauthorized
	}
	account, err := h.identityService.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		if contextutils.IsError(err, contextutils.ErrRecordNotFound) {
			return nil, contextutils.ErrSessionExpired
		}
		return nil, err
	}
	return account, nil
}

// Submit handles new feedback submissions
func (h *FeedbackHandler) Submit(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "submit_feedback")
	defer observability.FinishSpan(span, nil)

	account, err := h.currentAccount(c)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	var req SubmitFeedbackRequest
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
		attribute.String("feedback.organization", req.Organization),
		attribute.String("feedback.category", req.Category),
	)

	record, err := h.feedbackService.SubmitFeedback(
		c.Request.Context(),
		account,
		req.Entity,
		req.Organization,
		models.FeedbackCategory(req.Category),
		req.Description,
		string(req.ContactEmail),
	)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	// Forward to the organization's contact address. A send failure is
	// logged but never fails the submission.
	contact := h.config.ContactForOrganization(record.Organization)
	if err := h.emailService.SendFeedbackNotification(c.Request.Context(), record, contact); err != nil {
		h.logger.Warn(c.Request.Context(), "Failed to forward feedback notification", map[string]interface{}{
			"feedback_id": record.ID,
			"to":          contact,
			"error":       err.Error(),
		})
	}

	c.JSON(http.StatusCreated, record)
}

// List returns the feedback visible to the current account, optionally
// narrowed by organization, status and category query parameters.
func (h *FeedbackHandler) List(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "list_feedback")
	defer observability.FinishSpan(span, nil)

	account, err := h.currentAccount(c)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	records, err := h.visibleRecords(c, account)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("feedback.count", len(records)))
	c.JSON(http.StatusOK, FeedbackListResponse{
		Feedback: records,
		Total:    len(records),
	})
}

// Stats returns derived counts over the feedback visible to the current
// account, honoring the same query parameters as List. Counts are computed
// per request; there is no stored aggregate.
func (h *FeedbackHandler) Stats(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "feedback_stats")
	defer observability.FinishSpan(span, nil)

	account, err := h.currentAccount(c)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	records, err := h.visibleRecords(c, account)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, FeedbackStatsResponse{
		Total:      len(records),
		ByStatus:   models.StatusCounts(records),
		ByCategory: models.CategoryCounts(records),
	})
}

// visibleRecords applies the scope plus optional query-param narrowing
func (h *FeedbackHandler) visibleRecords(c *gin.Context, account *models.Account) ([]models.FeedbackRecord, error) {
	organizationFilter := c.Query("organization")

	records, err := h.feedbackService.VisibleFeedback(c.Request.Context(), account.Scope(), organizationFilter)
	if err != nil {
		return nil, err
	}

	status := c.Query("status")
	if status != "" && !models.FeedbackStatus(status).Valid() {
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "invalid status %q", status)
	}
	category := c.Query("category")
	if category != "" && !models.FeedbackCategory(category).Valid() {
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "invalid category %q", category)
	}

	if status == "" && category == "" {
		return records, nil
	}

	filtered := make([]models.FeedbackRecord, 0, len(records))
	for _, r := range records {
		if status != "" && r.Status != models.FeedbackStatus(status) {
			continue
		}
		if category != "" && r.Category != models.FeedbackCategory(category) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

// GetByID returns a single record if the current account may see it
func (h *FeedbackHandler) GetByID(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_feedback_by_id")
	defer observability.FinishSpan(span, nil)

	account, err := h.currentAccount(c)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	id := c.Param("id")
	span.SetAttributes(attribute.String("feedback.id", id))

	record, err := h.feedbackService.GetFeedbackByID(c.Request.Context(), id)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	if !mayViewRecord(account, record) {
		// 404 instead of 403 to avoid confirming the record exists
		HandleAppError(c, contextutils.ErrRecordNotFound)
		return
	}

	c.JSON(http.StatusOK, record)
}

// mayViewRecord applies the visibility table to one record
func mayViewRecord(account *models.Account, record *models.FeedbackRecord) bool {
	switch {
	case account.IsSuperAdmin():
		return true
	case account.IsAdmin():
		return account.Organization.Valid && account.Organization.String == record.Organization
	default:
		return record.AuthorID == account.ID
	}
}

// UpdateStatus handles admin status transitions. Company admins may only
// transition records in their own organization.
func (h *FeedbackHandler) UpdateStatus(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "update_feedback_status")
	defer observability.FinishSpan(span, nil)

	account, err := h.currentAccount(c)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	var req UpdateStatusRequest
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

	id := c.Param("id")
	span.SetAttributes(
		attribute.String("feedback.id", id),
		attribute.String("feedback.status", req.Status),
	)

	record, err := h.feedbackService.GetFeedbackByID(c.Request.Context(), id)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	if !account.IsSuperAdmin() {
		if !account.Organization.Valid || account.Organization.String != record.Organization {
			HandleAppError(c, contextutils.WrapErrorf(contextutils.ErrForbidden, "not authorized for organization %q", record.Organization))
			return
		}
	}

	updated, err := h.feedbackService.UpdateStatus(c.Request.Context(), id, models.FeedbackStatus(req.Status), req.Response)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Organizations returns the distinct organizations present in the
// feedback collection plus any configured in the contact directory.
func (h *FeedbackHandler) Organizations(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "organizations")
	defer observability.FinishSpan(span, nil)

	if _, err := h.currentAccount(c); err != nil {
		HandleAppError(c, err)
		return
	}

	orgs, err := h.feedbackService.Organizations(c.Request.Context())
	if err != nil {
		HandleAppError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("organizations.count", len(orgs)))
	c.JSON(http.StatusOK, gin.H{"organizations": orgs})
}

// OrganizationContact returns the configured contact address for an
// organization, falling back to the default contact.
func (h *FeedbackHandler) OrganizationContact(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "organization_contact")
	defer observability.FinishSpan(span, nil)

	name := c.Query("name")
	if name == "" {
		HandleAppError(c, contextutils.WrapError(contextutils.ErrMissingRequired, "name query parameter is required"))
		return
	}

	span.SetAttributes(attribute.String("organization.name", name))
	c.JSON(http.StatusOK, gin.H{
		"organization": name,
		"contact":      h.config.ContactForOrganization(name),
	})
}
