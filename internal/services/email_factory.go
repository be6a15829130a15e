package services

import (
	"context"

	"feedbackhub/internal/config"
	"feedbackhub/internal/observability"
	"feedbackhub/internal/serviceinterfaces"
)

// CreateEmailService creates an appropriate email service based on configuration.
// In test mode it returns a recording TestEmailService, otherwise the real
// SMTP-backed EmailService.
func CreateEmailService(cfg *config.Config, logger *observability.Logger) serviceinterfaces.EmailService {
	if cfg.IsTest {
		logger.Info(context.Background(), "Using test email service", map[string]interface{}{
			"test_mode": true,
		})
		return NewTestEmailService(cfg, logger)
	}

	return NewEmailService(cfg, logger)
}
