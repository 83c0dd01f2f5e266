package notification

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"rental-ledger-backend/internal/domain"
)

// SendFunc submits a message and reports the provider's HTTP status and body
type SendFunc func(ctx context.Context, message *mail.SGMailV3) (int, string, error)

type emailChannel struct {
	fromEmail string
	fromName  string
	send      SendFunc
}

// NewEmailChannel sends through the SendGrid v3 API
func NewEmailChannel(apiKey, fromEmail, fromName string) Channel {
	client := sendgrid.NewSendClient(apiKey)
	return NewEmailChannelWithSender(fromEmail, fromName, func(ctx context.Context, message *mail.SGMailV3) (int, string, error) {
		resp, err := client.SendWithContext(ctx, message)
		if err != nil {
			return 0, "", err
		}
		return resp.StatusCode, resp.Body, nil
	})
}

func NewEmailChannelWithSender(fromEmail, fromName string, send SendFunc) Channel {
	return &emailChannel{fromEmail: fromEmail, fromName: fromName, send: send}
}

func (c *emailChannel) Name() string { return "sendgrid" }

func (c *emailChannel) Deliver(ctx context.Context, recipient *domain.User, n domain.Notification) error {
	if recipient.Email == "" {
		return nil
	}

	from := mail.NewEmail(c.fromName, c.fromEmail)
	to := mail.NewEmail(recipient.Name, recipient.Email)

	plainText := n.Message
	htmlContent := fmt.Sprintf("<p>%s</p>", n.Message)
	if n.URL != "" {
		plainText += "\n\n" + n.URL
		htmlContent += fmt.Sprintf(`<p><a href="%s">View details</a></p>`, n.URL)
	}

	message := mail.NewSingleEmail(from, n.Title, to, plainText, htmlContent)
	status, body, err := c.send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if status >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", status, body)
	}
	return nil
}
