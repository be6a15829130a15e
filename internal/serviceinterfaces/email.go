package serviceinterfaces

import (
	"context"

	"feedbackhub/internal/models"
)

// EmailService defines the interface for email functionality
type EmailService interface {
	// SendFeedbackNotification forwards a new feedback record to the
	// organization's contact address
	SendFeedbackNotification(ctx context.Context, record *models.FeedbackRecord, to string) error

	// SendEmail sends a generic email with the given parameters
	SendEmail(ctx context.Context, to, subject, body string) error

	// IsEnabled returns whether email functionality is enabled
	IsEnabled() bool
}
