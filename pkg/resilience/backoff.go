package resilience

import "time"

// BackoffStrategy defines retry delay behavior
type BackoffStrategy interface {
	NextDelay(attempt int) time.Duration
}

// FixedBackoff returns the same delay for every attempt.
type FixedBackoff struct {
	Delay time.Duration
}

// NextDelay returns the fixed delay regardless of attempt number
func (fb *FixedBackoff) NextDelay(attempt int) time.Duration {
	return fb.Delay
}

// PendingPollBackoff is the delay between status polls while the backend
// reports the side channel still pending.
func PendingPollBackoff() *FixedBackoff {
	return &FixedBackoff{Delay: 1 * time.Second}
}

// FailurePollBackoff is the delay before re-polling after a transport or
// server failure. Longer than the pending delay so a struggling backend is
// not hammered.
func FailurePollBackoff() *FixedBackoff {
	return &FixedBackoff{Delay: 3 * time.Second}
}
