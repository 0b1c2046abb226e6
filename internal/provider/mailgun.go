package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

const (
	mailgunBaseUS = "https://api.mailgun.net/v3"
	mailgunBaseEU = "https://api.eu.mailgun.net/v3"
)

// MailgunProvider sends transactional email through the Mailgun HTTP API.
type MailgunProvider struct {
	client  *resty.Client
	baseURL string
	domain  string
	apiKey  string
}

func NewMailgunProvider(apiKey, domain string, euRegion bool) (*MailgunProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("mailgun api key is required")
	}
	if strings.TrimSpace(domain) == "" {
		return nil, fmt.Errorf("mailgun domain is required")
	}

	baseURL := mailgunBaseUS
	if euRegion {
		baseURL = mailgunBaseEU
	}

	client := resty.New()
	client.SetTimeout(defaultEmailTimeout)
	client.SetRetryCount(0)

	return &MailgunProvider{
		client:  client,
		baseURL: baseURL,
		domain:  domain,
		apiKey:  apiKey,
	}, nil
}

func (p *MailgunProvider) Name() string { return "mailgun" }

func (p *MailgunProvider) Send(ctx context.Context, msg Message) error {
	if p == nil || p.client == nil {
		return fmt.Errorf("provider is not initialized")
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}

	form := map[string]string{
		"from":    formatAddress(msg.FromName, msg.From),
		"to":      formatAddress(msg.ToName, msg.To),
		"subject": msg.Subject,
		"html":    msg.HTML,
	}
	if msg.Text != "" {
		form["text"] = msg.Text
	}
	if msg.ReplyTo != "" {
		form["h:Reply-To"] = msg.ReplyTo
	}

	response, err := p.client.R().
		SetContext(ctx).
		SetBasicAuth("api", p.apiKey).
		SetFormData(form).
		Post(fmt.Sprintf("%s/%s/messages", p.baseURL, p.domain))
	if err != nil {
		return &ProviderError{
			Message:   "mailgun request failed",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}

	statusCode := response.StatusCode()
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return nil
	}

	return httpError(statusCode, response.String())
}

func formatAddress(name, email string) string {
	if strings.TrimSpace(name) == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
