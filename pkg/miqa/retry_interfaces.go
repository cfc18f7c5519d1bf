package miqa

import "time"

// ErrorClassifier determines whether an error is transient (retryable)
// or fatal (non-retryable).
type ErrorClassifier interface {
	// IsTransient returns true if the error is temporary and the operation
	// should be retried.
	IsTransient(err error) bool
}

// BackoffStrategy controls the timing of retry attempts.
type BackoffStrategy interface {
	// NextDelay returns the delay before the given retry attempt (0-based).
	NextDelay(attempt int) time.Duration

	// MaxAttempts returns the maximum number of retry attempts.
	// Negative means unlimited; zero means no retries.
	MaxAttempts() int
}
