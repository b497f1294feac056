// Package notify scans for soon-to-expire subscriptions and dispatches
// best-effort notifications over email and chat webhooks.
package notify

import (
	"errors"

	"github.com/JiBrAN123456/Company-subscription-service/internal/config"
	"gopkg.in/gomail.v2"
)

// EmailSender delivers a notification email to a recipient list.
type EmailSender interface {
	Send(to []string, subject, textBody, htmlBody string) error
}

// SMTPSender implements EmailSender over SMTP via gomail.
type SMTPSender struct {
	cfg config.SMTPConfig
}

// NewSMTPSender constructs an SMTPSender.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers the message with a plain-text body and an HTML alternative.
func (s *SMTPSender) Send(to []string, subject, textBody, htmlBody string) error {
	if len(to) == 0 {
		return errors.New("notify: empty recipient list")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	if htmlBody != "" {
		m.AddAlternative("text/html", htmlBody)
	}

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(m)
}
