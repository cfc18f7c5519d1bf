package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClassifier marks every error transient or fatal.
type stubClassifier struct {
	transient bool
}

func (c stubClassifier) IsTransient(err error) bool { return c.transient }

func fastBackoff(maxAttempts int) *ExponentialBackoff {
	return NewExponentialBackoff(maxAttempts,
		WithInitialDelay(time.Millisecond),
		WithMaxDelay(2*time.Millisecond),
		WithJitter(0),
	)
}

func TestExecutor_SuccessOnFirstAttempt(t *testing.T) {
	executor := NewExecutor(stubClassifier{transient: true}, fastBackoff(3))

	calls := 0
	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecutor_RetriesTransientThenSucceeds(t *testing.T) {
	executor := NewExecutor(stubClassifier{transient: true}, fastBackoff(5))

	calls := 0
	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecutor_FatalErrorNotRetried(t *testing.T) {
	executor := NewExecutor(stubClassifier{transient: false}, fastBackoff(5))

	fatal := errors.New("fatal")
	calls := 0
	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return fatal
	})

	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestExecutor_ExhaustsAttempts(t *testing.T) {
	executor := NewExecutor(stubClassifier{transient: true}, fastBackoff(3))

	transient := errors.New("still failing")
	calls := 0
	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return transient
	})

	assert.ErrorIs(t, err, transient)
	// 1 initial attempt + 3 retries
	assert.Equal(t, 4, calls)
}

func TestExecutor_ZeroAttemptsMeansNoRetries(t *testing.T) {
	executor := NewExecutor(stubClassifier{transient: true}, fastBackoff(0))

	calls := 0
	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("transient")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecutor_ContextCancelledDuringBackoff(t *testing.T) {
	strategy := NewExponentialBackoff(3,
		WithInitialDelay(time.Hour), // force a long wait
		WithJitter(0),
	)
	executor := NewExecutor(stubClassifier{transient: true}, strategy)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := executor.Execute(ctx, func(ctx context.Context) error {
		return errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecutor_OnRetryCallback(t *testing.T) {
	base := NewExecutor(stubClassifier{transient: true}, fastBackoff(2))

	var attempts []int
	executor := base.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
	})

	_ = executor.Execute(context.Background(), func(ctx context.Context) error {
		return errors.New("transient")
	})

	assert.Equal(t, []int{0, 1}, attempts)
	// WithOnRetry must not mutate the original executor.
	assert.Nil(t, base.onRetry)
}

func TestNewExecutor_PanicsOnNilDependencies(t *testing.T) {
	assert.Panics(t, func() { NewExecutor(nil, fastBackoff(1)) })
	assert.Panics(t, func() { NewExecutor(stubClassifier{}, nil) })
}
