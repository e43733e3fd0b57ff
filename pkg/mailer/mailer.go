// Package mailer delivers review notification emails over SMTP.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/content-review-api/pkg/config"
)

// ErrNotConfigured is returned when no SMTP host is set.
var ErrNotConfigured = errors.New("smtp not configured")

// Message is a single outgoing email. TextBody is optional.
type Message struct {
	From     string
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends multipart messages through an SMTP relay.
type SMTPMailer struct {
	addr     string
	host     string
	fromName string
	auth     smtp.Auth
	send     sendFunc
	logger   *zap.Logger
}

// NewSMTPMailer builds a mailer from configuration. Auth is only used when a username is set.
func NewSMTPMailer(cfg config.SMTPConfig, logger *zap.Logger) *SMTPMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPMailer{
		addr:     cfg.Host + ":" + strconv.Itoa(cfg.Port),
		host:     cfg.Host,
		fromName: cfg.FromName,
		auth:     auth,
		send:     smtp.SendMail,
		logger:   logger,
	}
}

// Send delivers msg. The context is only checked before dialling; net/smtp has no cancellation.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m.host == "" {
		return ErrNotConfigured
	}
	if len(msg.To) == 0 {
		return errors.New("message has no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := m.build(msg)
	if err != nil {
		return err
	}
	if err := m.send(m.addr, m.auth, msg.From, msg.To, raw); err != nil {
		return fmt.Errorf("smtp send to %s: %w", strings.Join(msg.To, ", "), err)
	}
	m.logger.Debug("email sent", zap.Strings("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

func (m *SMTPMailer) build(msg Message) ([]byte, error) {
	for _, v := range append([]string{msg.From, msg.Subject}, msg.To...) {
		if strings.ContainsAny(v, "\r\n") {
			return nil, errors.New("header value contains a line break")
		}
	}

	from := msg.From
	if m.fromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", m.fromName), msg.From)
	}
	text := msg.TextBody
	if text == "" {
		text = "Please view this email in an HTML-capable email client."
	}
	boundary := "content-review-" + uuid.NewString()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary)

	fmt.Fprintf(&buf, "--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n\r\n", boundary, text)
	fmt.Fprintf(&buf, "--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n\r\n", boundary, msg.HTMLBody)
	fmt.Fprintf(&buf, "--%s--\r\n", boundary)
	return buf.Bytes(), nil
}
