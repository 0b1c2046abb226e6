package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle state of an email queue item.
// Transitions are monotone: pending -> processing -> sent|failed.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusSent, StatusFailed:
		return true
	}
	return false
}

// IsEffective reports whether a row in this state counts against the
// (channel, booking_id) dedup key. Failed rows do not block a re-enqueue.
func (s Status) IsEffective() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusSent:
		return true
	}
	return false
}

func ParseStatusFromString(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid status %q", ErrValidation, s)
	}
	return st, nil
}

// Channel identifies the booking event a notification is about.
type Channel string

const (
	ChannelBookingConfirmed   Channel = "booking_confirmed"
	ChannelBookingCancelled   Channel = "booking_cancelled"
	ChannelBookingRescheduled Channel = "booking_rescheduled"
	ChannelBookingReminder    Channel = "booking_reminder"
)

func (c Channel) String() string { return string(c) }

func (c Channel) IsValid() bool {
	switch c {
	case ChannelBookingConfirmed, ChannelBookingCancelled, ChannelBookingRescheduled, ChannelBookingReminder:
		return true
	}
	return false
}

func ParseChannelFromString(s string) (Channel, error) {
	ch := Channel(strings.ToLower(strings.TrimSpace(s)))
	if !ch.IsValid() {
		return "", fmt.Errorf("%w: invalid channel %q", ErrValidation, s)
	}
	return ch, nil
}

// RecipientType distinguishes platform operators from booking clients.
// Notifications target clients only.
type RecipientType string

const (
	RecipientUser   RecipientType = "user"
	RecipientClient RecipientType = "client"
)

// Dispatch ordering: lower is dispatched first.
const (
	PriorityConfirmation = 1
	PriorityChange       = 2
	PriorityReminder     = 5
)

// QueueItem is a persisted unit of outbound email intent: one recipient,
// one channel, one booking event.
type QueueItem struct {
	ID             int64
	Type           string
	Channel        Channel
	RecipientType  RecipientType
	RecipientID    int64
	RecipientEmail string
	RecipientName  string
	Subject        string
	Payload        string
	Priority       int
	Status         Status
	ScheduledAt    *time.Time
	BusinessID     int64
	BookingID      int64
	CreatedAt      time.Time
	ProcessedAt    *time.Time
	Error          *string
}

func (q *QueueItem) Validate() error {
	if q.RecipientEmail == "" {
		return fmt.Errorf("%w: recipient email is required", ErrValidation)
	}
	if !q.Channel.IsValid() {
		return fmt.Errorf("%w: invalid channel %q", ErrValidation, q.Channel)
	}
	if q.BookingID == 0 {
		return fmt.Errorf("%w: booking id is required", ErrValidation)
	}
	if q.BusinessID == 0 {
		return fmt.Errorf("%w: business id is required", ErrValidation)
	}
	return nil
}

// QueuePayload is the opaque JSON stored in a queue row. The dispatch
// worker re-renders final content from it.
type QueuePayload struct {
	Template     string            `json:"template"`
	Locale       string            `json:"locale"`
	WithLocation bool              `json:"with_location,omitempty"`
	Variables    map[string]string `json:"variables"`
}

func (p QueuePayload) Encode() (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode queue payload: %w", err)
	}
	return string(raw), nil
}

func DecodeQueuePayload(raw string) (QueuePayload, error) {
	var p QueuePayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return QueuePayload{}, fmt.Errorf("%w: malformed queue payload: %v", ErrValidation, err)
	}
	if strings.TrimSpace(p.Template) == "" {
		return QueuePayload{}, fmt.Errorf("%w: queue payload has no template", ErrValidation)
	}
	if p.Variables == nil {
		p.Variables = map[string]string{}
	}
	return p, nil
}
