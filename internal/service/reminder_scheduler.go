package service

import (
	"context"
	"time"

	"github.com/romeolab/agenda-notify/internal/repository"
	"go.uber.org/zap"
)

const defaultLookaheadHours = 48

// ReminderScheduler materializes reminder queue rows for bookings starting
// inside the lookahead window. Per-business lead times come from
// notification settings; the builder's guards handle dedup and timing.
type ReminderScheduler struct {
	bookings repository.BookingRepository
	settings repository.SettingsRepository
	notifier *Notifier
	logger   *zap.Logger

	lookaheadHours int
	dryRun         bool

	now func() time.Time
}

func NewReminderScheduler(
	bookings repository.BookingRepository,
	settings repository.SettingsRepository,
	notifier *Notifier,
	lookaheadHours int,
	dryRun bool,
	logger *zap.Logger,
) *ReminderScheduler {
	if lookaheadHours <= 0 {
		lookaheadHours = defaultLookaheadHours
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ReminderScheduler{
		bookings:       bookings,
		settings:       settings,
		notifier:       notifier,
		logger:         logger,
		lookaheadHours: lookaheadHours,
		dryRun:         dryRun,
		now:            time.Now,
	}
}

// Run returns the candidate and enqueued counts. In dry-run mode it only
// reports candidates.
func (s *ReminderScheduler) Run(ctx context.Context) (candidates, enqueued int, err error) {
	now := s.now()
	until := now.Add(time.Duration(s.lookaheadHours) * time.Hour)

	contexts, err := s.bookings.FindReminderCandidates(ctx, now, until)
	if err != nil {
		return 0, 0, err
	}

	candidates = len(contexts)
	s.logger.Info("reminder candidates found",
		zap.Int("count", candidates),
		zap.Bool("dryRun", s.dryRun),
	)

	if s.dryRun {
		return candidates, 0, nil
	}

	for i := range contexts {
		bctx := &contexts[i]

		leadHours := s.leadHours(ctx, bctx.BusinessID)

		count, err := s.notifier.QueueReminder(ctx, bctx, leadHours)
		if err != nil {
			// One booking must not abort the sweep.
			s.logger.Warn("failed to enqueue reminder",
				zap.Int64("bookingId", bctx.BookingID),
				zap.Error(err),
			)
			continue
		}
		enqueued += count
	}

	s.logger.Info("reminder sweep done",
		zap.Int("candidates", candidates),
		zap.Int("enqueued", enqueued),
	)

	return candidates, enqueued, nil
}

func (s *ReminderScheduler) leadHours(ctx context.Context, businessID int64) int {
	settings, err := s.settings.Get(ctx, businessID)
	if err != nil || settings == nil {
		return 24
	}
	if settings.EmailReminderHours <= 0 {
		return 24
	}
	return settings.EmailReminderHours
}
