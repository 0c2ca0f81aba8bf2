package email

import (
	"context"
	"fmt"

	"paytrust-gateway/config"
	"paytrust-gateway/internal/core/ports"

	"gopkg.in/gomail.v2"
)

// GomailSender implements ports.EmailSender over SMTP.
type GomailSender struct {
	dialer      *gomail.Dialer
	from        string
	frontendURL string
}

// NewGomailSender creates an SMTP email sender.
func NewGomailSender(cfg config.SMTPConfig) *GomailSender {
	return &GomailSender{
		dialer:      gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:        cfg.From,
		frontendURL: cfg.FrontendURL,
	}
}

// SendVerificationEmail sends the account verification link.
func (s *GomailSender) SendVerificationEmail(ctx context.Context, to string, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/verify-email?token=%s", s.frontendURL, token)

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Verify your email address")
	m.SetBody("text/html", fmt.Sprintf(
		`<p>Welcome! Please verify your email address by clicking the link below.</p>
<p><a href="%s">Verify email</a></p>
<p>The link expires in 24 hours. If you did not create an account, ignore this message.</p>`,
		link,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("sending verification email: %w", err)
	}
	return nil
}

var _ ports.EmailSender = (*GomailSender)(nil)
