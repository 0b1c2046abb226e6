package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/romeolab/agenda-notify/internal/domain"
	"github.com/romeolab/agenda-notify/internal/repository"
	"github.com/romeolab/agenda-notify/internal/template"
	"go.uber.org/zap"
)

const (
	dateFormat     = "02/01/2006"
	timeFormat     = "15:04"
	deadlineFormat = "02/01/2006 15:04"
)

// Notifier turns booking events into queue rows. Every QueueX method
// returns the number of rows enqueued, 0 or 1; a skip is not an error.
type Notifier struct {
	queue    repository.QueueRepository
	settings repository.SettingsRepository
	clients  repository.ClientRepository
	logger   *zap.Logger

	defaultTimezone string
	defaultLocale   string
	frontendURL     string

	now func() time.Time
}

func NewNotifier(
	queue repository.QueueRepository,
	settings repository.SettingsRepository,
	clients repository.ClientRepository,
	defaultTimezone, defaultLocale, frontendURL string,
	logger *zap.Logger,
) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Notifier{
		queue:           queue,
		settings:        settings,
		clients:         clients,
		logger:          logger,
		defaultTimezone: defaultTimezone,
		defaultLocale:   defaultLocale,
		frontendURL:     frontendURL,
		now:             time.Now,
	}
}

func (n *Notifier) QueueConfirmation(ctx context.Context, bctx *domain.BookingContext) (int, error) {
	return n.enqueue(ctx, bctx, domain.ChannelBookingConfirmed, domain.PriorityConfirmation, nil)
}

func (n *Notifier) QueueCancellation(ctx context.Context, bctx *domain.BookingContext) (int, error) {
	return n.enqueue(ctx, bctx, domain.ChannelBookingCancelled, domain.PriorityChange, nil)
}

func (n *Notifier) QueueRescheduled(ctx context.Context, bctx *domain.BookingContext) (int, error) {
	return n.enqueue(ctx, bctx, domain.ChannelBookingRescheduled, domain.PriorityChange, nil)
}

// QueueReminder schedules the reminder at start minus the business's lead
// time. A reminder whose send moment already passed is dropped, not sent
// late.
func (n *Notifier) QueueReminder(ctx context.Context, bctx *domain.BookingContext, leadHours int) (int, error) {
	if leadHours <= 0 {
		leadHours = 24
	}
	scheduledAt := bctx.StartTime.Add(-time.Duration(leadHours) * time.Hour)
	return n.enqueue(ctx, bctx, domain.ChannelBookingReminder, domain.PriorityReminder, &scheduledAt)
}

func (n *Notifier) enqueue(ctx context.Context, bctx *domain.BookingContext, channel domain.Channel, priority int, scheduledAt *time.Time) (int, error) {
	if bctx == nil {
		return 0, fmt.Errorf("%w: booking context is required", domain.ErrValidation)
	}

	log := n.logger.With(
		zap.Int64("bookingId", bctx.BookingID),
		zap.String("channel", channel.String()),
	)

	now := n.localNow(bctx.Timezone)

	// Temporal guard runs in the location's timezone, never the server's.
	switch channel {
	case domain.ChannelBookingCancelled, domain.ChannelBookingRescheduled:
		if !bctx.StartTime.After(now) {
			log.Debug("skipping notification for past appointment")
			return 0, nil
		}
	case domain.ChannelBookingReminder:
		if !bctx.StartTime.After(now) {
			log.Debug("skipping reminder for started appointment")
			return 0, nil
		}
		if scheduledAt != nil && !scheduledAt.After(now) {
			log.Debug("skipping reminder whose window already passed")
			return 0, nil
		}
	}

	exists, err := n.queue.HasEffective(ctx, channel, bctx.BookingID)
	if err != nil {
		return 0, fmt.Errorf("failed to check existing queue rows: %w", err)
	}
	if exists {
		log.Debug("skipping duplicate notification")
		return 0, nil
	}

	settings, err := n.settings.Get(ctx, bctx.BusinessID)
	if err != nil {
		return 0, fmt.Errorf("failed to load notification settings: %w", err)
	}
	if !settings.ChannelEnabled(channel) {
		log.Debug("skipping notification disabled by business settings")
		return 0, nil
	}

	email, name, err := n.resolveRecipient(ctx, bctx)
	if err != nil {
		return 0, err
	}
	if email == "" {
		log.Debug("skipping notification with no resolvable client email")
		return 0, nil
	}

	locale := template.ResolveLocale(bctx.Locale, bctx.BusinessLocale, n.defaultLocale)

	withLocation := false
	if channel == domain.ChannelBookingReminder || channel == domain.ChannelBookingRescheduled {
		activeLocations, err := n.settings.CountActiveLocations(ctx, bctx.BusinessID)
		if err != nil {
			return 0, fmt.Errorf("failed to count active locations: %w", err)
		}
		withLocation = activeLocations > 1
	}

	variables := n.buildVariables(bctx, name, locale)

	tmpl, err := template.Lookup(channel, locale, withLocation)
	if err != nil {
		return 0, err
	}
	subject := template.Render(tmpl.Subject, variables)

	payload, err := domain.QueuePayload{
		Template:     channel.String(),
		Locale:       locale,
		WithLocation: withLocation,
		Variables:    variables,
	}.Encode()
	if err != nil {
		return 0, err
	}

	item := &domain.QueueItem{
		Type:           "email",
		Channel:        channel,
		RecipientType:  domain.RecipientClient,
		RecipientID:    bctx.ClientID,
		RecipientEmail: email,
		RecipientName:  name,
		Subject:        subject,
		Payload:        payload,
		Priority:       priority,
		Status:         domain.StatusPending,
		ScheduledAt:    scheduledAt,
		BusinessID:     bctx.BusinessID,
		BookingID:      bctx.BookingID,
	}
	if err := item.Validate(); err != nil {
		return 0, err
	}

	if err := n.queue.Create(ctx, item); err != nil {
		// A concurrent builder won the dedup race; same outcome as the
		// dedup guard.
		if errors.Is(err, domain.ErrConflict) {
			log.Debug("skipping duplicate notification lost at insert")
			return 0, nil
		}
		return 0, fmt.Errorf("failed to enqueue notification: %w", err)
	}

	log.Info("notification enqueued",
		zap.Int64("queueId", item.ID),
		zap.Int("priority", priority),
	)

	return 1, nil
}

// resolveRecipient targets the client identity only. Falls back to a
// client lookup when the event payload carries no email.
func (n *Notifier) resolveRecipient(ctx context.Context, bctx *domain.BookingContext) (email, name string, err error) {
	if bctx.ClientID == 0 {
		return "", "", nil
	}

	email = strings.TrimSpace(bctx.ClientEmail)
	name = strings.TrimSpace(bctx.ClientName)
	if email != "" {
		return email, name, nil
	}

	client, err := n.clients.FindByID(ctx, bctx.ClientID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to look up client: %w", err)
	}

	email = strings.TrimSpace(client.Email)
	if name == "" {
		name = client.FullName()
	}

	return email, name, nil
}

func (n *Notifier) buildVariables(bctx *domain.BookingContext, recipientName, locale string) map[string]string {
	clientName := template.FirstName(recipientName)
	if clientName == "" {
		clientName = template.GenericClientName(locale)
	}

	start := bctx.StartTime

	variables := map[string]string{
		"client_name":      clientName,
		"business_name":    bctx.BusinessName,
		"business_email":   bctx.BusinessEmail,
		"location_name":    bctx.LocationName,
		"location_address": bctx.LocationAddress,
		"location_city":    bctx.LocationCity,
		"location_phone":   bctx.LocationPhone,
		"location_email":   bctx.LocationEmail,
		"date":             start.Format(dateFormat),
		"time":             start.Format(timeFormat),
		"services":         bctx.Services,
		"total_price":      strconv.FormatFloat(bctx.TotalPrice, 'f', 2, 64),
		"manage_url":       n.manageURL(bctx),
		"booking_url":      n.bookingURL(bctx),
	}

	if bctx.CancellationHours > 0 {
		deadline := start.Add(-time.Duration(bctx.CancellationHours) * time.Hour)
		variables["cancel_deadline"] = deadline.Format(deadlineFormat)
	}

	if bctx.OldStartTime != nil {
		variables["old_date"] = bctx.OldStartTime.Format(dateFormat)
		variables["old_time"] = bctx.OldStartTime.Format(timeFormat)
	}

	return variables
}

func (n *Notifier) manageURL(bctx *domain.BookingContext) string {
	if bctx.ManageURL != "" {
		return bctx.ManageURL
	}
	return fmt.Sprintf("%s/%s/my-bookings", strings.TrimRight(n.frontendURL, "/"), bctx.BusinessSlug)
}

func (n *Notifier) bookingURL(bctx *domain.BookingContext) string {
	if bctx.BookingURL != "" {
		return bctx.BookingURL
	}
	return fmt.Sprintf("%s/%s", strings.TrimRight(n.frontendURL, "/"), bctx.BusinessSlug)
}

func (n *Notifier) localNow(timezone string) time.Time {
	for _, zone := range []string{timezone, n.defaultTimezone} {
		if zone == "" {
			continue
		}
		if loc, err := time.LoadLocation(zone); err == nil {
			return n.now().In(loc)
		}
	}
	return n.now().UTC()
}
