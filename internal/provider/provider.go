package provider

import (
	"context"
	"fmt"
	"strings"
)

// Message is one fully-rendered outbound email.
type Message struct {
	To       string
	ToName   string
	From     string
	FromName string
	ReplyTo  string
	Subject  string
	HTML     string
	Text     string
}

func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return fmt.Errorf("recipient address is required")
	}
	if strings.TrimSpace(m.From) == "" {
		return fmt.Errorf("sender address is required")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("subject is required")
	}
	return nil
}

// EmailProvider is the outbound email delivery port. Implementations are
// interchangeable; the variant is chosen once at startup from explicit
// configuration.
type EmailProvider interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// Config selects and parameterizes an email provider variant.
type Config struct {
	Provider string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	BrevoAPIKey string

	MailgunAPIKey  string
	MailgunDomain  string
	MailgunEURegio bool

	ResendAPIKey string
}

// New builds the configured provider. Selection is driven purely by
// Config.Provider, never inferred from credential shapes.
func New(cfg Config) (EmailProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "smtp":
		return NewSMTPProvider(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	case "brevo":
		return NewBrevoProvider(cfg.BrevoAPIKey)
	case "mailgun":
		return NewMailgunProvider(cfg.MailgunAPIKey, cfg.MailgunDomain, cfg.MailgunEURegio)
	case "resend":
		return NewResendProvider(cfg.ResendAPIKey)
	}
	return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
}
