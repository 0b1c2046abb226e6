package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/romeolab/agenda-notify/internal/domain"
	"go.uber.org/zap"
)

func fixedClock(t *testing.T) (time.Time, *time.Location) {
	t.Helper()
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Fatalf("failed to load timezone: %v", err)
	}
	return time.Date(2026, 5, 10, 10, 0, 0, 0, rome), rome
}

func testBookingContext(start time.Time) *domain.BookingContext {
	return &domain.BookingContext{
		BookingID:         42,
		BusinessID:        7,
		LocationID:        3,
		ClientID:          11,
		ClientName:        "Maria Rossi",
		ClientEmail:       "maria@example.com",
		BusinessName:      "Studio Uno",
		BusinessEmail:     "studio@romeolab.it",
		BusinessSlug:      "studio-uno",
		LocationName:      "Sede Centro",
		LocationAddress:   "Via Roma 1",
		LocationCity:      "Milano",
		LocationPhone:     "+39 02 1234567",
		LocationEmail:     "centro@romeolab.it",
		Services:          "Taglio, Piega",
		TotalPrice:        45.50,
		StartTime:         start,
		Timezone:          "Europe/Rome",
		Locale:            "it",
		CancellationHours: 24,
	}
}

func newTestNotifier(queue *fakeQueueRepo, settings *fakeSettingsRepo, clients *fakeClientRepo, now time.Time) *Notifier {
	if settings == nil {
		settings = &fakeSettingsRepo{
			getFn: func(context.Context, int64) (*domain.NotificationSettings, error) {
				return nil, nil
			},
			countActiveLocationsFn: func(context.Context, int64) (int64, error) {
				return 1, nil
			},
		}
	}
	if clients == nil {
		clients = &fakeClientRepo{
			findByIDFn: func(context.Context, int64) (*domain.Client, error) {
				return nil, domain.ErrNotFound
			},
		}
	}

	n := NewNotifier(queue, settings, clients, "Europe/Rome", "it", "https://prenota.romeolab.it", zap.NewNop())
	n.now = func() time.Time { return now }
	return n
}

func noDedup(context.Context, domain.Channel, int64) (bool, error) { return false, nil }

func TestQueueConfirmationEnqueuesPendingRow(t *testing.T) {
	t.Parallel()

	now, rome := fixedClock(t)

	var created *domain.QueueItem
	queue := &fakeQueueRepo{
		hasEffectiveFn: noDedup,
		createFn: func(_ context.Context, item *domain.QueueItem) error {
			created = item
			item.ID = 101
			return nil
		},
	}

	n := newTestNotifier(queue, nil, nil, now)

	count, err := n.QueueConfirmation(context.Background(), testBookingContext(now.Add(26*time.Hour).In(rome)))
	if err != nil {
		t.Fatalf("QueueConfirmation() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	if created == nil {
		t.Fatal("expected a queue insert")
	}

	if created.Channel != domain.ChannelBookingConfirmed {
		t.Fatalf("channel = %q", created.Channel)
	}
	if created.Priority != domain.PriorityConfirmation {
		t.Fatalf("priority = %d", created.Priority)
	}
	if created.Status != domain.StatusPending {
		t.Fatalf("status = %q", created.Status)
	}
	if created.RecipientEmail != "maria@example.com" {
		t.Fatalf("recipient = %q", created.RecipientEmail)
	}
	if created.ScheduledAt != nil {
		t.Fatal("confirmation should send immediately")
	}
	if !strings.Contains(created.Subject, "Studio Uno") {
		t.Fatalf("subject = %q", created.Subject)
	}

	payload, err := domain.DecodeQueuePayload(created.Payload)
	if err != nil {
		t.Fatalf("payload did not decode: %v", err)
	}
	if payload.Variables["client_name"] != "Maria" {
		t.Fatalf("client_name = %q, want first name only", payload.Variables["client_name"])
	}
	if payload.Locale != "it" {
		t.Fatalf("locale = %q", payload.Locale)
	}
}

func TestQueueCancellationSkipsPastAppointment(t *testing.T) {
	t.Parallel()

	now, rome := fixedClock(t)

	queue := &fakeQueueRepo{
		hasEffectiveFn: noDedup,
		createFn: func(context.Context, *domain.QueueItem) error {
			t.Fatal("nothing should be enqueued for a past appointment")
			return nil
		},
	}

	n := newTestNotifier(queue, nil, nil, now)

	count, err := n.QueueCancellation(context.Background(), testBookingContext(now.Add(-time.Hour).In(rome)))
	if err != nil {
		t.Fatalf("QueueCancellation() error = %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
}

func TestEnqueueSkipsDuplicate(t *testing.T) {
	t.Parallel()

	now, rome := fixedClock(t)

	queue := &fakeQueueRepo{
		hasEffectiveFn: func(context.Context, domain.Channel, int64) (bool, error) {
			return true, nil
		},
		createFn: func(context.Context, *domain.QueueItem) error {
			t.Fatal("duplicate should not be enqueued")
			return nil
		},
	}

	n := newTestNotifier(queue, nil, nil, now)

	count, err := n.QueueConfirmation(context.Background(), testBookingContext(now.Add(26*time.Hour).In(rome)))
	if err != nil {
		t.Fatalf("QueueConfirmation() error = %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
}

func TestEnqueueSkipsWhenInsertLosesDedupRace(t *testing.T) {
	t.Parallel()

	now, rome := fixedClock(t)

	queue := &fakeQueueRepo{
		hasEffectiveFn: noDedup,
		createFn: func(context.Context, *domain.QueueItem) error {
			return domain.ErrConflict
		},
	}

	n := newTestNotifier(queue, nil, nil, now)

	count, err := n.QueueConfirmation(context.Background(), testBookingContext(now.Add(26*time.Hour).In(rome)))
	if err != nil {
		t.Fatalf("QueueConfirmation() error = %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
}

func TestEnqueueSkipsWhenSettingsDisableChannel(t *testing.T) {
	t.Parallel()

	now, rome := fixedClock(t)

	queue := &fakeQueueRepo{
		hasEffectiveFn: noDedup,
		createFn: func(context.Context, *domain.QueueItem) error {
			t.Fatal("disabled channel should not enqueue")
			return nil
		},
	}
	settings := &fakeSettingsRepo{
		getFn: func(context.Context, int64) (*domain.NotificationSettings, error) {
			return &domain.NotificationSettings{BusinessID: 7, EmailBookingConfirmed: false}, nil
		},
		countActiveLocationsFn: func(context.Context, int64) (int64, error) {
			return 1, nil
		},
	}

	n := newTestNotifier(queue, settings, nil, now)

	count, err := n.QueueConfirmation(context.Background(), testBookingContext(now.Add(26*time.Hour).In(rome)))
	if err != nil {
		t.Fatalf("QueueConfirmation() error = %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
}

func TestEnqueueFallsBackToClientLookupForEmail(t *testing.T) {
	t.Parallel()

	now, rome := fixedClock(t)

	var created *domain.QueueItem
	queue := &fakeQueueRepo{
		hasEffectiveFn: noDedup,
		createFn: func(_ context.Context, item *domain.QueueItem) error {
			created = item
			return nil
		},
	}
	clients := &fakeClientRepo{
		findByIDFn: func(_ context.Context, id int64) (*domain.Client, error) {
			if id != 11 {
				t.Fatalf("looked up client %d", id)
			}
			return &domain.Client{ID: 11, Email: "fallback@example.com", FirstName: "Maria", LastName: "Rossi"}, nil
		},
	}

	n := newTestNotifier(queue, nil, clients, now)

	bctx := testBookingContext(now.Add(26 * time.Hour).In(rome))
	bctx.ClientEmail = ""

	count, err := n.QueueConfirmation(context.Background(), bctx)
	if err != nil {
		t.Fatalf("QueueConfirmation() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	if created.RecipientEmail != "fallback@example.com" {
		t.Fatalf("recipient = %q", created.RecipientEmail)
	}
}

func TestEnqueueSkipsWithoutResolvableClient(t *testing.T) {
	t.Parallel()

	now, rome := fixedClock(t)

	queue := &fakeQueueRepo{
		hasEffectiveFn: noDedup,
		createFn: func(context.Context, *domain.QueueItem) error {
			t.Fatal("missing recipient should not enqueue")
			return nil
		},
	}

	n := newTestNotifier(queue, nil, nil, now)

	bctx := testBookingContext(now.Add(26 * time.Hour).In(rome))
	bctx.ClientEmail = ""

	count, err := n.QueueConfirmation(context.Background(), bctx)
	if err != nil {
		t.Fatalf("QueueConfirmation() error = %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
}

func TestQueueReminderSchedulesAtStartMinusLead(t *testing.T) {
	t.Parallel()

	now, rome := fixedClock(t)

	var created *domain.QueueItem
	queue := &fakeQueueRepo{
		hasEffectiveFn: noDedup,
		createFn: func(_ context.Context, item *domain.QueueItem) error {
			created = item
			return nil
		},
	}

	n := newTestNotifier(queue, nil, nil, now)

	start := now.Add(30 * time.Hour).In(rome)
	count, err := n.QueueReminder(context.Background(), testBookingContext(start), 24)
	if err != nil {
		t.Fatalf("QueueReminder() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	if created.Priority != domain.PriorityReminder {
		t.Fatalf("priority = %d", created.Priority)
	}
	if created.ScheduledAt == nil {
		t.Fatal("reminder must carry a scheduled time")
	}
	if want := start.Add(-24 * time.Hour); !created.ScheduledAt.Equal(want) {
		t.Fatalf("scheduled_at = %v, want %v", created.ScheduledAt, want)
	}
}

func TestQueueReminderSkipsMissedWindow(t *testing.T) {
	t.Parallel()

	now, rome := fixedClock(t)

	queue := &fakeQueueRepo{
		hasEffectiveFn: noDedup,
		createFn: func(context.Context, *domain.QueueItem) error {
			t.Fatal("missed reminder window should not enqueue")
			return nil
		},
	}

	n := newTestNotifier(queue, nil, nil, now)

	// Starts in 6 hours with a 24 hour lead: the send moment already passed.
	count, err := n.QueueReminder(context.Background(), testBookingContext(now.Add(6*time.Hour).In(rome)), 24)
	if err != nil {
		t.Fatalf("QueueReminder() error = %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
}

func TestLocationBlockFollowsActiveLocationCount(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		locations int64
		want      bool
	}{
		{name: "single location omits block", locations: 1, want: false},
		{name: "multiple locations include block", locations: 3, want: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			now, rome := fixedClock(t)

			var created *domain.QueueItem
			queue := &fakeQueueRepo{
				hasEffectiveFn: noDedup,
				createFn: func(_ context.Context, item *domain.QueueItem) error {
					created = item
					return nil
				},
			}
			settings := &fakeSettingsRepo{
				getFn: func(context.Context, int64) (*domain.NotificationSettings, error) {
					return nil, nil
				},
				countActiveLocationsFn: func(context.Context, int64) (int64, error) {
					return tc.locations, nil
				},
			}

			n := newTestNotifier(queue, settings, nil, now)

			bctx := testBookingContext(now.Add(26 * time.Hour).In(rome))
			old := now.Add(20 * time.Hour).In(rome)
			bctx.OldStartTime = &old

			count, err := n.QueueRescheduled(context.Background(), bctx)
			if err != nil {
				t.Fatalf("QueueRescheduled() error = %v", err)
			}
			if count != 1 {
				t.Fatalf("count = %d, want 1", count)
			}

			payload, err := domain.DecodeQueuePayload(created.Payload)
			if err != nil {
				t.Fatalf("payload did not decode: %v", err)
			}
			if payload.WithLocation != tc.want {
				t.Fatalf("with_location = %v, want %v", payload.WithLocation, tc.want)
			}
		})
	}
}
