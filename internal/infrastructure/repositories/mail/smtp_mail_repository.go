package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

// SMTPMailRepository sends notification mail through one relay, choosing
// between plain, SSL, and STARTTLS delivery from the configuration.
type SMTPMailRepository struct {
	cfg repositories.SMTPConfig
}

func NewSMTPMailRepository(cfg repositories.SMTPConfig) repositories.MailRepository {
	return &SMTPMailRepository{cfg: cfg}
}

func (it *SMTPMailRepository) Send(ctx context.Context, input repositories.MailInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := email.NewEmail()
	msg.From = input.From
	msg.To = []string{input.To}
	msg.Subject = input.Subject
	msg.Text = []byte(input.Body)

	addr := fmt.Sprintf("%s:%d", it.cfg.Host, it.cfg.Port)
	var auth smtp.Auth
	if it.cfg.User != "" {
		auth = smtp.PlainAuth("", it.cfg.User, it.cfg.Password, it.cfg.Host)
	}

	var err error
	switch {
	case it.cfg.SSL:
		err = msg.SendWithTLS(addr, auth, &tls.Config{ServerName: it.cfg.Host})
	case it.cfg.StartTLS:
		err = msg.SendWithStartTLS(addr, auth, &tls.Config{ServerName: it.cfg.Host})
	default:
		err = msg.Send(addr, auth)
	}
	if err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", input.To, err)
	}
	return nil
}
