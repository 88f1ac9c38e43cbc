package notification

import (
	"gopkg.in/gomail.v2"

	"tutorlink/internal/config"
)

// Mailer sends a single email. Implementations make exactly one
// delivery attempt; retrying is the caller's problem and no caller
// retries.
type Mailer interface {
	Send(to, subject, body string) error
}

type smtpMailer struct {
	cfg config.SMTPConfig
}

// NewSMTPMailer creates a Mailer backed by an SMTP dialer.
func NewSMTPMailer(cfg config.SMTPConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Pass)
	return dialer.DialAndSend(msg)
}
