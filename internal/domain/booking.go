package domain

import "time"

// BookingContext is the flattened booking record an event source hands to
// the notification builders. Timestamps carry the location's timezone.
type BookingContext struct {
	BookingID  int64
	BusinessID int64
	LocationID int64

	// ClientID is zero when the booking belongs to a legacy operator
	// account; such bookings are never notified.
	ClientID    int64
	ClientName  string
	ClientEmail string

	BusinessName  string
	BusinessEmail string
	BusinessSlug  string

	LocationName    string
	LocationAddress string
	LocationCity    string
	LocationPhone   string
	LocationEmail   string

	Services   string
	TotalPrice float64

	StartTime    time.Time
	OldStartTime *time.Time

	// Timezone is the location's IANA zone identifier. Temporal guards
	// compute "now" in this zone, never the server's.
	Timezone string

	// Locale is the booking's explicit locale hint; BusinessLocale is the
	// next link in the fallback chain.
	Locale         string
	BusinessLocale string

	CancellationHours int

	ManageURL  string
	BookingURL string
}

// NotificationSettings are the per-business notification toggles. Owned by
// business configuration management; read-only here.
type NotificationSettings struct {
	BusinessID              int64
	EmailBookingConfirmed   bool
	EmailBookingCancelled   bool
	EmailBookingRescheduled bool
	EmailReminderEnabled    bool
	EmailReminderHours      int
}

// ChannelEnabled reports whether the settings allow email for the event.
func (s *NotificationSettings) ChannelEnabled(channel Channel) bool {
	if s == nil {
		// No settings row means the business never opted out.
		return true
	}
	switch channel {
	case ChannelBookingConfirmed:
		return s.EmailBookingConfirmed
	case ChannelBookingCancelled:
		return s.EmailBookingCancelled
	case ChannelBookingRescheduled:
		return s.EmailBookingRescheduled
	case ChannelBookingReminder:
		return s.EmailReminderEnabled
	}
	return false
}

// Client is the projection of a booking client this core reads.
type Client struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

func (c *Client) FullName() string {
	if c == nil {
		return ""
	}
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
