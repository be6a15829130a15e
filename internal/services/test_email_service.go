package services

import (
	"context"
	"fmt"
	"sync"

	"feedbackhub/internal/config"
	"feedbackhub/internal/models"
	"feedbackhub/internal/observability"
	"feedbackhub/internal/serviceinterfaces"

	"go.opentelemetry.io/otel/attribute"
)

// SentEmail records one email the test service would have sent
type SentEmail struct {
	To      string
	Subject string
	Body    string
}

// TestEmailService implements serviceinterfaces.EmailService for testing.
// It records sends instead of dialing SMTP.
type TestEmailService struct {
	cfg    *config.Config
	logger *observability.Logger

	mu   sync.Mutex
	sent []SentEmail
}

var _ serviceinterfaces.EmailService = (*TestEmailService)(nil)

// NewTestEmailService creates a new TestEmailService instance
func NewTestEmailService(cfg *config.Config, logger *observability.Logger) *TestEmailService {
	return &TestEmailService{
		cfg:    cfg,
		logger: logger,
	}
}

// SendFeedbackNotification records a would-be feedback notification
func (e *TestEmailService) SendFeedbackNotification(ctx context.Context, record *models.FeedbackRecord, to string) (err error) {
	ctx, span := observability.TraceEmailFunction(ctx, "send_feedback_notification",
		attribute.String("feedback_id", record.ID),
		attribute.Bool("test_mode", true),
	)
	defer observability.FinishSpan(span, &err)

	e.logger.Info(ctx, "TEST MODE: Would send feedback notification", map[string]interface{}{
		"feedback_id": record.ID,
		"to":          to,
	})

	e.mu.Lock()
	e.sent = append(e.sent, SentEmail{
		To:      to,
		Subject: fmt.Sprintf("New %s for %s", record.Category, record.Organization),
		Body:    record.Description,
	})
	e.mu.Unlock()
	return nil
}

// SendEmail records a would-be email send
func (e *TestEmailService) SendEmail(ctx context.Context, to, subject, body string) (err error) {
	ctx, span := observability.TraceEmailFunction(ctx, "send_email",
		attribute.Bool("test_mode", true),
	)
	defer observability.FinishSpan(span, &err)

	e.logger.Info(ctx, "TEST MODE: Would send email", map[string]interface{}{
		"to":      to,
		"subject": subject,
	})

	e.mu.Lock()
	e.sent = append(e.sent, SentEmail{To: to, Subject: subject, Body: body})
	e.mu.Unlock()
	return nil
}

// IsEnabled always reports true so callers exercise the send path
func (e *TestEmailService) IsEnabled() bool {
	return true
}

// SentEmails returns a copy of the recorded sends
func (e *TestEmailService) SentEmails() []SentEmail {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]SentEmail, len(e.sent))
	copy(out, e.sent)
	return out
}
