package notification

import (
	"context"
	"fmt"
	"net/smtp"

	"booktime-be/internal/config"
)

// Sender delivers a single email. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

type smtpSender struct {
	from     string
	password string
	host     string
	port     string
}

func NewSMTPSender(cfg *config.Config) Sender {
	return &smtpSender{
		from:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
	}
}

func (s *smtpSender) Send(
	ctx context.Context,
	to []string,
	subject, body string,
) error {

	msg := []byte(fmt.Sprintf(
		"Subject: %s\nMIME-version: 1.0;\nContent-Type: text/plain; charset=\"UTF-8\";\n\n%s",
		subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	auth := smtp.PlainAuth("", s.from, s.password, s.host)

	if err := smtp.SendMail(addr, auth, s.from, to, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	return nil
}
