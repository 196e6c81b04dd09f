package mail

import (
	"context"
	"fmt"

	"remindly/internal/config"
	"remindly/internal/ports"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var _ ports.NotificationSender = (*SendGridSender)(nil)

type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendGridSender(cfg config.Mail) *SendGridSender {
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.SendGridAPIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

// Send delivers the reminder notification. Provider refusals come back
// as a failed result; the error return is reserved for transport
// faults, so callers never see a panic or an untyped refusal.
func (s *SendGridSender) Send(ctx context.Context, recipient, subject string) (ports.SendResult, error) {
	from := sgmail.NewEmail(s.fromName, s.fromEmail)
	to := sgmail.NewEmail("", recipient)

	plainContent := fmt.Sprintf("Your session \"%s\" starts in 10 minutes.", subject)
	htmlContent := fmt.Sprintf("<p>Your session <strong>%s</strong> starts in 10 minutes.</p>", subject)

	message := sgmail.NewSingleEmail(from, fmt.Sprintf("Reminder: %s", subject), to, plainContent, htmlContent)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return ports.SendResult{}, err
	}
	if response.StatusCode >= 400 {
		return ports.SendResult{
			Success: false,
			Message: fmt.Sprintf("mail provider rejected send to %s: %d", recipient, response.StatusCode),
		}, nil
	}
	return ports.SendResult{Success: true, Message: "sent"}, nil
}
