package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	brevoEndpoint       = "https://api.brevo.com/v3/smtp/email"
	defaultEmailTimeout = 30 * time.Second
)

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoRequest struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	ReplyTo     *brevoAddress  `json:"replyTo,omitempty"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
	TextContent string         `json:"textContent,omitempty"`
}

// BrevoProvider sends transactional email through the Brevo HTTP API.
type BrevoProvider struct {
	client   *resty.Client
	endpoint string
	apiKey   string
}

func NewBrevoProvider(apiKey string) (*BrevoProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("brevo api key is required")
	}

	client := resty.New()
	client.SetTimeout(defaultEmailTimeout)
	client.SetRetryCount(0)

	return &BrevoProvider{
		client:   client,
		endpoint: brevoEndpoint,
		apiKey:   apiKey,
	}, nil
}

func (p *BrevoProvider) Name() string { return "brevo" }

func (p *BrevoProvider) Send(ctx context.Context, msg Message) error {
	if p == nil || p.client == nil {
		return fmt.Errorf("provider is not initialized")
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}

	reqBody := brevoRequest{
		Sender:      brevoAddress{Email: msg.From, Name: msg.FromName},
		To:          []brevoAddress{{Email: msg.To, Name: msg.ToName}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
		TextContent: msg.Text,
	}
	if msg.ReplyTo != "" {
		reqBody.ReplyTo = &brevoAddress{Email: msg.ReplyTo}
	}

	response, err := p.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetHeader("api-key", p.apiKey).
		SetBody(reqBody).
		Post(p.endpoint)
	if err != nil {
		return &ProviderError{
			Message:   "brevo request failed",
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
