package repository

import (
	"strings"
	"testing"
)

// The candidate query runs against platform-owned tables no test database
// here provisions, so its contract is pinned structurally.
func TestReminderCandidatesQueryShape(t *testing.T) {
	t.Parallel()

	q := reminderCandidatesQuery

	if got := strings.Count(q, "?"); got != 2 {
		t.Fatalf("placeholder count = %d, want the two window bounds", got)
	}

	for _, clause := range []string{
		`b.status IN ('pending', 'confirmed')`,
		`b.client_id IS NOT NULL`,
		`NOT EXISTS`,
		`q.channel = 'booking_reminder'`,
		`q.status IN ('pending', 'processing', 'sent')`,
		`ORDER BY b.start_time ASC`,
	} {
		if !strings.Contains(q, clause) {
			t.Fatalf("query is missing %q", clause)
		}
	}
}
