package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"feedbackhub/internal/config"
	"feedbackhub/internal/models"
	"feedbackhub/internal/observability"
	"feedbackhub/internal/serviceinterfaces"
	contextutils "feedbackhub/internal/utils"

	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/mail.v2"
)

// EmailService implements serviceinterfaces.EmailService using gomail
type EmailService struct {
	cfg    *config.Config
	logger *observability.Logger
	dialer *mail.Dialer
}

var _ serviceinterfaces.EmailService = (*EmailService)(nil)

var feedbackNotificationTemplate = template.Must(template.New("feedback_notification").Parse(`
<html>
<body style="font-family: Arial, sans-serif;">
  <h2>New feedback for {{.Organization}}</h2>
  <p><strong>{{.AuthorUsername}}</strong> submitted a {{.Category}} about <strong>{{.Entity}}</strong>.</p>
  <blockquote>{{.Description}}</blockquote>
  {{if .ContactEmail}}<p>Reply-to contact: {{.ContactEmail}}</p>{{end}}
  <p>Submitted at {{.CreatedAt.Format "January 2, 2006 15:04 MST"}}</p>
</body>
</html>
`))

// NewEmailService creates a new EmailService instance
func NewEmailService(cfg *config.Config, logger *observability.Logger) *EmailService {
	var dialer *mail.Dialer
	if cfg.Email.Enabled && cfg.Email.SMTP.Host != "" {
		dialer = mail.NewDialer(
			cfg.Email.SMTP.Host,
			cfg.Email.SMTP.Port,
			cfg.Email.SMTP.Username,
			cfg.Email.SMTP.Password,
		)
	}

	return &EmailService{
		cfg:    cfg,
		logger: logger,
		dialer: dialer,
	}
}

// SendFeedbackNotification forwards a new feedback record to the
// organization's contact address.
func (e *EmailService) SendFeedbackNotification(ctx context.Context, record *models.FeedbackRecord, to string) (err error) {
	ctx, span := observability.TraceEmailFunction(ctx, "send_feedback_notification",
		attribute.String("feedback_id", record.ID),
		attribute.String("email.to", to),
	)
	defer observability.FinishSpan(span, &err)

	if !e.IsEnabled() {
		e.logger.Info(ctx, "Email disabled, skipping feedback notification", map[string]interface{}{
			"feedback_id": record.ID,
			"to":          to,
		})
		return nil
	}

	var buf bytes.Buffer
	if err := feedbackNotificationTemplate.Execute(&buf, record); err != nil {
		return contextutils.WrapError(err, "failed to render feedback notification")
	}

	subject := fmt.Sprintf("New %s for %s", record.Category, record.Organization)
	if err := e.SendEmail(ctx, to, subject, buf.String()); err != nil {
		return contextutils.WrapError(err, "failed to send feedback notification")
	}

	e.logger.Info(ctx, "Feedback notification sent", map[string]interface{}{
		"feedback_id": record.ID,
		"to":          to,
	})
	return nil
}

// SendEmail sends a generic email with the given parameters
func (e *EmailService) SendEmail(ctx context.Context, to, subject, body string) (err error) {
	ctx, span := observability.TraceEmailFunction(ctx, "send_email",
		attribute.String("email.to", to),
		attribute.String("email.subject", subject),
	)
	defer observability.FinishSpan(span, &err)

	if !e.IsEnabled() {
		e.logger.Info(ctx, "Email disabled, skipping email send", map[string]interface{}{
			"to": to,
		})
		return nil
	}

	if e.dialer == nil {
		return contextutils.ErrorWithContextf("email service not properly configured")
	}

	m := mail.NewMessage()
	m.SetHeader("From", e.cfg.Email.SMTP.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err = e.dialer.DialAndSend(m); err != nil {
		e.logger.Error(ctx, "Failed to send email", err, map[string]interface{}{
			"to":      to,
			"subject": subject,
		})
		return contextutils.WrapError(err, "failed to send email")
	}

	e.logger.Info(ctx, "Email sent successfully", map[string]interface{}{
		"to":      to,
		"subject": subject,
	})
	return nil
}

// IsEnabled returns whether email functionality is enabled
func (e *EmailService) IsEnabled() bool {
	return e.cfg.Email.Enabled
}
