package services

import (
	"context"
	"database/sql"
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

// FeedbackService implements FeedbackServiceInterface over an in-memory
// record collection. Records are stored in insertion order; recency ordering
// is computed per query. Authorization is enforced here via AccessScope, not
// left to handlers.
type FeedbackService struct {
	mu      sync.RWMutex
	records []*models.FeedbackRecord
	byID    map[string]*models.FeedbackRecord

	cfg    *config.Config
	logger *observability.Logger
}

// NewFeedbackService creates a new FeedbackService instance.
func NewFeedbackService(cfg *config.Config, logger *observability.Logger) *FeedbackService {
	if cfg == nil {
		panic("NewFeedbackService: cfg is nil")
	}
	if logger == nil {
		panic("NewFeedbackService: logger is nil")
	}
	return &FeedbackService{
		byID:   make(map[string]*models.FeedbackRecord),
		cfg:    cfg,
		logger: logger,
	}
}

// SubmitFeedback creates a pending record authored by the given account.
func (s *FeedbackService) SubmitFeedback(ctx context.Context, author *models.Account, entity, organization string, category models.FeedbackCategory, description, contactEmail string) (result0 *models.FeedbackRecord, err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "submit_feedback", attribute.String("organization", organization))
	defer observability.FinishSpan(span, &err)

	if author == nil {
		return nil, contextutils.ErrUnauthorized
	}

	entity = strings.TrimSpace(entity)
	organization = strings.TrimSpace(organization)
	description = strings.TrimSpace(description)

	if entity == "" {
		return nil, contextutils.WrapError(contextutils.ErrMissingRequired, "entity is required")
	}
	if organization == "" {
		return nil, contextutils.WrapError(contextutils.ErrMissingRequired, "organization is required")
	}
	if description == "" {
		return nil, contextutils.WrapError(contextutils.ErrMissingRequired, "description is required")
	}
	if !category.Valid() {
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "invalid category %q", category)
	}

	record := &models.FeedbackRecord{
		ID:             uuid.NewString(),
		AuthorID:       author.ID,
		AuthorUsername: author.Username,
		Entity:         entity,
		Organization:   organization,
		Category:       category,
		Description:    description,
		ContactEmail:   strings.TrimSpace(contactEmail),
		Status:         models.StatusPending,
		CreatedAt:      time.Now(),
	}

	s.mu.Lock()
	s.records = append(s.records, record)
	s.byID[record.ID] = record
	s.mu.Unlock()

	s.logger.Info(ctx, "Feedback submitted", map[string]interface{}{
		"feedback_id":  record.ID,
		"author_id":    record.AuthorID,
		"organization": record.Organization,
		"category":     string(record.Category),
	})

	clone := *record
	return &clone, nil
}

// GetFeedbackByID fetches a single record.
func (s *FeedbackService) GetFeedbackByID(ctx context.Context, id string) (result0 *models.FeedbackRecord, err error) {
	_, span := observability.TraceFeedbackFunction(ctx, "get_feedback_by_id", attribute.String("feedback_id", id))
	defer observability.FinishSpan(span, &err)

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.byID[id]
	if !exists {
		return nil, contextutils.WrapErrorf(contextutils.ErrRecordNotFound, "feedback %s not found", id)
	}
	clone := *record
	return &clone, nil
}

// GetFeedbackByAuthor returns the records authored by the given account,
// most recent first.
func (s *FeedbackService) GetFeedbackByAuthor(ctx context.Context, accountID string) (result0 []models.FeedbackRecord, err error) {
	_, span := observability.TraceFeedbackFunction(ctx, "get_feedback_by_author", attribute.String("account_id", accountID))
	defer observability.FinishSpan(span, &err)

	return s.collect(func(r *models.FeedbackRecord) bool {
		return r.AuthorID == accountID
	}), nil
}

// GetFeedbackByOrganization returns the records targeting an organization,
// most recent first.
func (s *FeedbackService) GetFeedbackByOrganization(ctx context.Context, organization string) (result0 []models.FeedbackRecord, err error) {
	_, span := observability.TraceFeedbackFunction(ctx, "get_feedback_by_organization", attribute.String("organization", organization))
	defer observability.FinishSpan(span, &err)

	return s.collect(func(r *models.FeedbackRecord) bool {
		return r.Organization == organization
	}), nil
}

// GetAllFeedbackSortedByRecency returns every record, most recent first.
func (s *FeedbackService) GetAllFeedbackSortedByRecency(ctx context.Context) (result0 []models.FeedbackRecord, err error) {
	_, span := observability.TraceFeedbackFunction(ctx, "get_all_feedback")
	defer observability.FinishSpan(span, &err)

	return s.collect(func(*models.FeedbackRecord) bool { return true }), nil
}

// VisibleFeedback returns the records the scope may see, most recent first.
// Users see only their own submissions. Company admins see their own
// organization and cannot widen the filter past it. Super-admins see
// everything and may narrow to one organization.
func (s *FeedbackService) VisibleFeedback(ctx context.Context, scope models.AccessScope, organizationFilter string) (result0 []models.FeedbackRecord, err error) {
	_, span := observability.TraceFeedbackFunction(ctx, "visible_feedback",
		attribute.String("account_id", scope.AccountID),
		attribute.String("role", string(scope.Role)))
	defer observability.FinishSpan(span, &err)

	if scope.AccountID == "" {
		return nil, contextutils.ErrUnauthorized
	}

	switch {
	case scope.Role != models.RoleAdmin:
		return s.collect(func(r *models.FeedbackRecord) bool {
			return r.AuthorID == scope.AccountID
		}), nil
	case scope.IsSuperAdmin():
		if organizationFilter == "" {
			return s.collect(func(*models.FeedbackRecord) bool { return true }), nil
		}
		return s.collect(func(r *models.FeedbackRecord) bool {
			return r.Organization == organizationFilter
		}), nil
	default:
		if organizationFilter != "" && organizationFilter != scope.Organization {
			return nil, contextutils.WrapErrorf(contextutils.ErrForbidden, "not authorized for organization %q", organizationFilter)
		}
		return s.collect(func(r *models.FeedbackRecord) bool {
			return r.Organization == scope.Organization
		}), nil
	}
}

// UpdateStatus transitions a record to a new status, optionally recording an
// admin response. The resolution timestamp marks the first time a record
// reached resolved and is never cleared by later transitions; whether a
// re-resolution refreshes it is a config policy.
func (s *FeedbackService) UpdateStatus(ctx context.Context, id string, status models.FeedbackStatus, response string) (result0 *models.FeedbackRecord, err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "update_status",
		attribute.String("feedback_id", id),
		attribute.String("status", string(status)))
	defer observability.FinishSpan(span, &err)

	if !status.Valid() {
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "invalid status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.byID[id]
	if !exists {
		return nil, contextutils.WrapErrorf(contextutils.ErrRecordNotFound, "feedback %s not found", id)
	}

	previous := record.Status
	record.Status = status

	if status == models.StatusResolved && (!record.ResolvedAt.Valid || s.cfg.Feedback.OverwriteResolutionTimestamp) {
		record.ResolvedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}

	// An empty response leaves any earlier response in place.
	if strings.TrimSpace(response) != "" {
		record.AdminResponse = models.NullString(response)
	}

	s.logger.Info(ctx, "Feedback status updated", map[string]interface{}{
		"feedback_id": record.ID,
		"from":        string(previous),
		"to":          string(status),
	})

	clone := *record
	return &clone, nil
}

// Organizations returns the distinct organizations present in the
// collection, sorted.
func (s *FeedbackService) Organizations(ctx context.Context) (result0 []string, err error) {
	_, span := observability.TraceFeedbackFunction(ctx, "organizations")
	defer observability.FinishSpan(span, &err)

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	orgs := []string{}
	for _, record := range s.records {
		if _, ok := seen[record.Organization]; ok {
			continue
		}
		seen[record.Organization] = struct{}{}
		orgs = append(orgs, record.Organization)
	}
	sort.Strings(orgs)
	return orgs, nil
}

// ImportRecord inserts a fully-specified record, used by seeding to build
// fixtures with historical timestamps and non-pending statuses that
// SubmitFeedback cannot create.
func (s *FeedbackService) ImportRecord(ctx context.Context, record *models.FeedbackRecord) (result0 *models.FeedbackRecord, err error) {
	_, span := observability.TraceFeedbackFunction(ctx, "import_record", attribute.String("feedback_id", record.ID))
	defer observability.FinishSpan(span, &err)

	if !record.Category.Valid() {
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "invalid category %q", record.Category)
	}
	if !record.Status.Valid() {
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "invalid status %q", record.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *record
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if _, exists := s.byID[stored.ID]; exists {
		return nil, contextutils.WrapErrorf(contextutils.ErrRecordExists, "feedback %s already exists", stored.ID)
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.records = append(s.records, &stored)
	s.byID[stored.ID] = &stored

	clone := stored
	return &clone, nil
}

// collect copies out the matching records sorted most recent first.
// Ties fall back to insertion order, newest first.
func (s *FeedbackService) collect(match func(*models.FeedbackRecord) bool) []models.FeedbackRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.FeedbackRecord{}
	for i := len(s.records) - 1; i >= 0; i-- {
		if match(s.records[i]) {
			out = append(out, *s.records[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
