package domain

import (
	"fmt"
	"strings"
	"time"
)

// OutboxStatus is the lifecycle state of a WhatsApp outbox item. The
// worker moves rows queued -> sent|failed; delivered/read are written
// later from provider delivery callbacks.
type OutboxStatus string

const (
	OutboxQueued    OutboxStatus = "queued"
	OutboxSent      OutboxStatus = "sent"
	OutboxDelivered OutboxStatus = "delivered"
	OutboxRead      OutboxStatus = "read"
	OutboxFailed    OutboxStatus = "failed"
)

func (s OutboxStatus) String() string { return string(s) }

func (s OutboxStatus) IsValid() bool {
	switch s {
	case OutboxQueued, OutboxSent, OutboxDelivered, OutboxRead, OutboxFailed:
		return true
	}
	return false
}

// FailureReason is the recorded cause of a WhatsApp dispatch failure.
type FailureReason string

const (
	ReasonRateLimited          FailureReason = "rate_limited"
	ReasonBusinessNotConnected FailureReason = "business_not_connected"
	ReasonTemplateRejected     FailureReason = "template_rejected"
	ReasonConsentMissing       FailureReason = "consent_missing"
	ReasonInvalidPhone         FailureReason = "invalid_phone"
	ReasonNetworkError         FailureReason = "network_error"
	ReasonPolicyViolation      FailureReason = "policy_violation"
	ReasonProviderError        FailureReason = "provider_error"
)

func (r FailureReason) String() string { return string(r) }

// Permanent reports whether retrying can never succeed for this reason.
func (r FailureReason) Permanent() bool {
	switch r {
	case ReasonInvalidPhone, ReasonTemplateRejected, ReasonPolicyViolation:
		return true
	}
	return false
}

// MaxOutboxAttempts bounds WhatsApp delivery retries per item.
const MaxOutboxAttempts = 5

// RetryBackoff returns the wait before the given attempt number is retried.
// Doubles per attempt, capped at 32 minutes.
func RetryBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 5 {
		attempt = 5
	}
	return time.Duration(1<<attempt) * time.Minute
}

// OutboxItem is a persisted unit of outbound WhatsApp intent.
type OutboxItem struct {
	ID                string
	BusinessID        int64
	CustomerID        int64
	EventType         string
	TemplateName      string
	PayloadJSON       string
	Status            OutboxStatus
	RetryCount        int
	LastError         *string
	NextRetryAt       *time.Time
	ProviderMessageID *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (o *OutboxItem) Validate() error {
	if o.BusinessID == 0 {
		return fmt.Errorf("%w: business id is required", ErrValidation)
	}
	if o.CustomerID == 0 {
		return fmt.Errorf("%w: customer id is required", ErrValidation)
	}
	if strings.TrimSpace(o.TemplateName) == "" {
		return fmt.Errorf("%w: template name is required", ErrValidation)
	}
	return nil
}

// TemplatePayload is the structured content of an outbox row.
type TemplatePayload struct {
	LanguageCode string `json:"language_code"`
	Components   []any  `json:"components"`
}

// ChannelConfig is a business's WhatsApp Cloud API connection. The access
// token is stored encrypted and must only be decrypted immediately before
// use.
type ChannelConfig struct {
	BusinessID           int64
	Status               string
	PhoneNumberID        string
	AccessTokenEncrypted string
}

func (c *ChannelConfig) Active() bool {
	return c != nil && c.Status == "active"
}

// MessageLog is one append-only entry in the WhatsApp message audit log.
type MessageLog struct {
	ID                string
	BusinessID        int64
	CustomerID        int64
	Direction         string
	MessageType       string
	ContentSnapshot   string
	ProviderMessageID string
	DeliveryStatus    string
	CreatedAt         time.Time
}
