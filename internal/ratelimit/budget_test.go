package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeCounter struct {
	recentFn func(ctx context.Context, businessID int64, since time.Time) (int64, error)
	dailyFn  func(ctx context.Context, businessID int64, dayStart time.Time) (int64, error)
}

func (f *fakeCounter) CountRecentSends(ctx context.Context, businessID int64, since time.Time) (int64, error) {
	return f.recentFn(ctx, businessID, since)
}

func (f *fakeCounter) CountDailySends(ctx context.Context, businessID int64, dayStart time.Time) (int64, error) {
	return f.dailyFn(ctx, businessID, dayStart)
}

func TestHistoryBudgetAllow(t *testing.T) {
	t.Parallel()

	fixedNow := time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)

	testCases := []struct {
		name   string
		recent int64
		daily  int64
		want   bool
	}{
		{name: "under both caps", recent: 10, daily: 400, want: true},
		{name: "minute cap reached", recent: 60, daily: 400, want: false},
		{name: "daily cap reached", recent: 0, daily: 1000, want: false},
		{name: "exactly one below minute cap", recent: 59, daily: 0, want: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			counter := &fakeCounter{
				recentFn: func(_ context.Context, _ int64, since time.Time) (int64, error) {
					if got := fixedNow.Sub(since); got != time.Minute {
						t.Fatalf("minute window = %v", got)
					}
					return tc.recent, nil
				},
				dailyFn: func(_ context.Context, _ int64, dayStart time.Time) (int64, error) {
					want := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
					if !dayStart.Equal(want) {
						t.Fatalf("day start = %v", dayStart)
					}
					return tc.daily, nil
				},
			}

			budget := NewHistoryBudget(counter, 60, 1000)
			budget.now = func() time.Time { return fixedNow }

			got, err := budget.Allow(context.Background(), 7)
			if err != nil {
				t.Fatalf("Allow() error = %v", err)
			}
			if got != tc.want {
				t.Fatalf("Allow() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHistoryBudgetDisabledCaps(t *testing.T) {
	t.Parallel()

	counter := &fakeCounter{
		recentFn: func(context.Context, int64, time.Time) (int64, error) {
			t.Fatal("recent count should not be consulted when cap is disabled")
			return 0, nil
		},
		dailyFn: func(context.Context, int64, time.Time) (int64, error) {
			t.Fatal("daily count should not be consulted when cap is disabled")
			return 0, nil
		},
	}

	budget := NewHistoryBudget(counter, 0, 0)

	got, err := budget.Allow(context.Background(), 7)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !got {
		t.Fatal("Allow() = false with caps disabled")
	}
}

func TestHistoryBudgetCounterError(t *testing.T) {
	t.Parallel()

	counterErr := errors.New("connection reset")
	counter := &fakeCounter{
		recentFn: func(context.Context, int64, time.Time) (int64, error) {
			return 0, counterErr
		},
		dailyFn: func(context.Context, int64, time.Time) (int64, error) {
			return 0, nil
		},
	}

	budget := NewHistoryBudget(counter, 60, 1000)

	if _, err := budget.Allow(context.Background(), 7); !errors.Is(err, counterErr) {
		t.Fatalf("Allow() error = %v, want %v", err, counterErr)
	}
}
