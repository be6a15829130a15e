package serviceinterfaces

import (
	"context"

	"feedbackhub/internal/models"
)

// FeedbackServiceInterface defines operations over the feedback collection.
// Query results are copies; callers never hold a mutable reference into the
// store.
type FeedbackServiceInterface interface {
	// SubmitFeedback creates a pending record with a fresh identifier
	SubmitFeedback(ctx context.Context, author *models.Account, entity, organization string, category models.FeedbackCategory, description, contactEmail string) (*models.FeedbackRecord, error)

	GetFeedbackByID(ctx context.Context, id string) (*models.FeedbackRecord, error)
	GetFeedbackByAuthor(ctx context.Context, accountID string) ([]models.FeedbackRecord, error)
	GetFeedbackByOrganization(ctx context.Context, organization string) ([]models.FeedbackRecord, error)
	GetAllFeedbackSortedByRecency(ctx context.Context) ([]models.FeedbackRecord, error)

	// VisibleFeedback returns the records the scope may see, optionally
	// narrowed to one organization. The visibility table is enforced here,
	// not by caller discipline.
	VisibleFeedback(ctx context.Context, scope models.AccessScope, organizationFilter string) ([]models.FeedbackRecord, error)

	// UpdateStatus transitions a record; a non-empty response overwrites the
	// stored admin response, an empty one leaves it untouched.
	UpdateStatus(ctx context.Context, id string, status models.FeedbackStatus, response string) (*models.FeedbackRecord, error)

	// Organizations returns the distinct organizations present in the
	// collection, sorted.
	Organizations(ctx context.Context) ([]string, error)
}
