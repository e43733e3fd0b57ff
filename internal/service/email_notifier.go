package service

import (
	"context"

	"github.com/noah-isme/content-review-api/pkg/mailer"
)

// MailSender is the transport behind EmailNotifier.
type MailSender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// EmailNotifier delivers notifications as multipart email.
type EmailNotifier struct {
	sender MailSender
}

// NewEmailNotifier wraps sender.
func NewEmailNotifier(sender MailSender) *EmailNotifier {
	return &EmailNotifier{sender: sender}
}

// Send implements Notifier.
func (n *EmailNotifier) Send(ctx context.Context, notification Notification) error {
	return n.sender.Send(ctx, mailer.Message{
		From:     notification.From,
		To:       []string{notification.Owner.Email},
		Subject:  notification.Subject,
		HTMLBody: notification.Body,
		TextBody: notification.Text,
	})
}
