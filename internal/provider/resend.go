package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"
)

// ResendProvider sends transactional email through the Resend API.
type ResendProvider struct {
	client *resend.Client
}

func NewResendProvider(apiKey string) (*ResendProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	return &ResendProvider{client: resend.NewClient(apiKey)}, nil
}

func (p *ResendProvider) Name() string { return "resend" }

func (p *ResendProvider) Send(ctx context.Context, msg Message) error {
	if p == nil || p.client == nil {
		return fmt.Errorf("provider is not initialized")
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    formatAddress(msg.FromName, msg.From),
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	if msg.ReplyTo != "" {
		params.ReplyTo = msg.ReplyTo
	}

	if _, err := p.client.Emails.SendWithContext(ctx, params); err != nil {
		return &ProviderError{
			Message:   "resend request failed",
			Transient: true,
			Cause:     err,
		}
	}

	return nil
}
