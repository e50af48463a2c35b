// Package mailer отправляет письма через SendGrid.
package mailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/magabrotheeeer/feedbackfix/internal/config"
)

// Transport — отправитель писем через SendGrid API.
type Transport struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

// NewTransport создаёт транспорт по настройкам SendGrid.
func NewTransport(cfg config.SendGrid) *Transport {
	return &Transport{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

// Send отправляет текстовое письмо одному получателю.
func (t *Transport) Send(ctx context.Context, toEmail, toName, subject, body string) error {
	const op = "mailer.Send"
	from := mail.NewEmail(t.fromName, t.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	resp, err := t.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s: sendgrid status %d: %s", op, resp.StatusCode, resp.Body)
	}
	return nil
}
