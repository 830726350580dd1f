package mailer

import (
	"context"
	"fmt"
	"time"

	mail "github.com/go-mail/mail"
)

type SMTPMailer struct {
	dialer       *mail.Dialer
	from         string
	resetURLBase string
	resetExpiry  time.Duration
}

func NewSMTPMailer(host string, port int, user, password, from, resetURLBase string, resetExpiry time.Duration) *SMTPMailer {
	return &SMTPMailer{
		dialer:       mail.NewDialer(host, port, user, password),
		from:         from,
		resetURLBase: resetURLBase,
		resetExpiry:  resetExpiry,
	}
}

func (m *SMTPMailer) SendWelcome(_ context.Context, to string) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Welcome")
	msg.SetBody("text/plain", "Your account has been created. You can now sign in.")

	return m.dialer.DialAndSend(msg)
}

func (m *SMTPMailer) SendPasswordReset(_ context.Context, to, token string) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Password reset")
	msg.SetBody("text/plain", m.resetBody(token))

	return m.dialer.DialAndSend(msg)
}

func (m *SMTPMailer) resetBody(token string) string {
	return fmt.Sprintf(
		"A password reset was requested for your account.\n\n"+
			"Open %s?token=%s to choose a new password. The link expires in %d minutes.\n\n"+
			"If you did not request this, you can ignore this message.",
		m.resetURLBase, token, int(m.resetExpiry.Minutes()))
}
