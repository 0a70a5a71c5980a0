package service

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer delivers the verification link to a freshly registered client
type Mailer interface {
	SendVerification(to, link string) error
}

type SMTPOptions struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
	// How long the links are valid for, only used in the mail text
	LinkTTL time.Duration
}

type SMTPMailer struct {
	o      SMTPOptions
	dialer *gomail.Dialer
}

func NewSMTPMailer(o SMTPOptions) *SMTPMailer {
	username := o.Username
	if username == "" {
		username = o.Sender
	}

	return &SMTPMailer{
		o:      o,
		dialer: gomail.NewDialer(o.Host, o.Port, username, o.Password),
	}
}

func (m *SMTPMailer) SendVerification(to, link string) error {
	if to == m.o.Sender {
		return errors.New("invalid email address")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.o.Sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Verify your email to start downloading files")
	msg.SetBody("text/html", verificationBody(link, m.o.LinkTTL))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("%w, %w", ErrMailSend, err)
	}

	return nil
}

func verificationBody(link string, ttl time.Duration) string {
	return fmt.Sprintf("Click <a href='%v'>here</a> to verify your account.\n\nThis link will expire in %v minutes", link, int(ttl.Minutes()))
}

// LogMailer is used when no SMTP server is configured, the link only ends up
// in the logs
type LogMailer struct{}

func (LogMailer) SendVerification(to, link string) error {
	zap.L().Info("Verification email not sent, mail is disabled", zap.String("to", to), zap.String("link", link))
	return nil
}

// VerificationLink builds the address the email points to
func VerificationLink(baseURL, token string) string {
	return baseURL + "/auth/verify-email?token=" + url.QueryEscape(token)
}
