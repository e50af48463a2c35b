// Package services рассылает письма со сводкой задач, сгенерированных из отзыва.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/feedbackfix/internal/lib/sl"
	"github.com/magabrotheeeer/feedbackfix/internal/models"
)

// Transport отправляет одно текстовое письмо.
type Transport interface {
	Send(ctx context.Context, toEmail, toName, subject, body string) error
}

// SenderService формирует и отправляет письма-сводки.
type SenderService struct {
	transport Transport
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport Transport, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendTaskDigest обрабатывает событие feedback.translated из очереди
// notification.digest. Событие без задач или без адреса пропускается.
func (s *SenderService) SendTaskDigest(ctx context.Context, body []byte) error {
	const op = "services.sender.SendTaskDigest"
	var event models.FeedbackTranslatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if event.Email == "" || len(event.Tasks) == 0 {
		s.log.Debug("digest skipped", slog.String("input_id", event.InputID))
		return nil
	}

	subject := fmt.Sprintf("FeedbackFix: %d new tasks for %s", len(event.Tasks), projectTitle(event))
	if err := s.transport.Send(ctx, event.Email, "", subject, digestBody(event)); err != nil {
		s.log.Error("failed to send digest", slog.String("input_id", event.InputID), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("digest sent", slog.String("user_id", event.UserID), slog.String("input_id", event.InputID))
	return nil
}

func projectTitle(event models.FeedbackTranslatedEvent) string {
	if event.ProjectName != "" {
		return event.ProjectName
	}
	return "your project"
}

func digestBody(event models.FeedbackTranslatedEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello!\n\nYour feedback for %s was translated into these tasks:\n\n", projectTitle(event))
	for i, task := range event.Tasks {
		fmt.Fprintf(&b, "%d. %s\n", i+1, task)
	}
	b.WriteString("\nOpen FeedbackFix to track their progress.\n")
	return b.String()
}
