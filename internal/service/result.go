package service

// Outcome is the terminal disposition of one processed item.
type Outcome int

const (
	OutcomeSent Outcome = iota
	OutcomeFailed
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	}
	return "unknown"
}

// ItemResult is what a worker records for one queue item. Failures carry
// the reason; they never abort the batch.
type ItemResult struct {
	Outcome Outcome
	Reason  string
}

func sent() ItemResult                 { return ItemResult{Outcome: OutcomeSent} }
func failed(reason string) ItemResult  { return ItemResult{Outcome: OutcomeFailed, Reason: reason} }
func skipped(reason string) ItemResult { return ItemResult{Outcome: OutcomeSkipped, Reason: reason} }

// Summary is one worker invocation's tally.
type Summary struct {
	Sent    int
	Failed  int
	Skipped int
}

func (s *Summary) record(r ItemResult) {
	switch r.Outcome {
	case OutcomeSent:
		s.Sent++
	case OutcomeFailed:
		s.Failed++
	case OutcomeSkipped:
		s.Skipped++
	}
}

// AllAttemptedFailed reports the cron-visible failure condition: at least
// one item was attempted and none went out. Partial failure is exit 0.
func (s Summary) AllAttemptedFailed() bool {
	return s.Sent == 0 && s.Failed > 0
}
