package ratelimit

import (
	"context"
	"time"
)

// SendCounter exposes a business's recent delivery history.
type SendCounter interface {
	CountRecentSends(ctx context.Context, businessID int64, since time.Time) (int64, error)
	CountDailySends(ctx context.Context, businessID int64, dayStart time.Time) (int64, error)
}

// SendBudget decides whether a business may send another message now.
type SendBudget interface {
	Allow(ctx context.Context, businessID int64) (bool, error)
}

// HistoryBudget enforces per-minute and per-day caps by counting what was
// actually sent. Deriving from history instead of a separate counter
// keeps one source of truth across worker restarts.
type HistoryBudget struct {
	counter   SendCounter
	perMinute int
	perDay    int
	now       func() time.Time
}

func NewHistoryBudget(counter SendCounter, perMinute, perDay int) *HistoryBudget {
	return &HistoryBudget{
		counter:   counter,
		perMinute: perMinute,
		perDay:    perDay,
		now:       time.Now,
	}
}

func (b *HistoryBudget) Allow(ctx context.Context, businessID int64) (bool, error) {
	now := b.now()

	if b.perMinute > 0 {
		recent, err := b.counter.CountRecentSends(ctx, businessID, now.Add(-time.Minute))
		if err != nil {
			return false, err
		}
		if recent >= int64(b.perMinute) {
			return false, nil
		}
	}

	if b.perDay > 0 {
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		daily, err := b.counter.CountDailySends(ctx, businessID, dayStart)
		if err != nil {
			return false, err
		}
		if daily >= int64(b.perDay) {
			return false, nil
		}
	}

	return true, nil
}
