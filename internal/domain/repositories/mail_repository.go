package repositories

import "context"

// MailInput is one outgoing notification message.
type MailInput struct {
	From    string
	To      string
	Subject string
	Body    string
}

// SMTPConfig carries the mail relay parameters.
type SMTPConfig struct {
	Host     string
	Port     int
	SSL      bool
	StartTLS bool
	User     string
	Password string
}

// MailRepository sends notification mail.
type MailRepository interface {
	Send(ctx context.Context, input MailInput) error
}

// MailFactory builds a mail repository for one relay.
type MailFactory func(cfg SMTPConfig) MailRepository
