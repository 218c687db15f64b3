package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventregistration/internal/domain"
)

const reminderTemplate = "reminder"

type notificationService struct {
	mailer    domain.Mailer
	renderer  domain.EmailTemplateRenderer
	portalURL string
	logger    *slog.Logger
}

// NewNotificationService returns a NotificationService that renders the "reminder" template
// and sends it through the given Mailer.
func NewNotificationService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, portalURL string, logger *slog.Logger) domain.NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &notificationService{mailer: mailer, renderer: renderer, portalURL: portalURL, logger: logger}
}

// SendBulk sends one reminder per recipient, in order, and stops at the first failure.
func (s *notificationService) SendBulk(ctx context.Context, recipients []*domain.Registrant) (int, error) {
	sent := 0
	for _, r := range recipients {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		subject, htmlBody, textBody, err := s.renderer.Render(reminderTemplate, domain.NewReminderEmailData(r, s.portalURL))
		if err != nil {
			return sent, fmt.Errorf("failed to render reminder template for %s: %w", r.Email, err)
		}
		if err := s.mailer.Send(ctx, r.Email, subject, htmlBody, textBody); err != nil {
			return sent, fmt.Errorf("failed to send reminder to %s: %w", r.Email, err)
		}
		sent++
		s.logger.DebugContext(ctx, "reminder sent", "to", r.Email)
	}
	s.logger.InfoContext(ctx, "reminders sent", "count", sent)
	return sent, nil
}
