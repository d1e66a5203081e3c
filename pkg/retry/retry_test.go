package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/salesops/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTemporary = errors.New("temporary")

func fastPolicy(attempts int) retry.Policy {
	return retry.Policy{
		MaxAttempts: attempts,
		Backoff:     retry.LinearBackoff(time.Millisecond),
	}
}

func TestDoWithResult(t *testing.T) {
	t.Run("SucceedsAfterRetries", func(t *testing.T) {
		var calls int
		v, err := retry.DoWithResult(t.Context(), fastPolicy(3),
			func() (string, error) {
				calls++
				if calls < 3 {
					return "", errTemporary
				}
				return "ok", nil
			},
		)
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
		assert.Equal(t, 3, calls)
	})

	t.Run("AttemptsExhausted", func(t *testing.T) {
		var calls int
		_, err := retry.DoWithResult(t.Context(), fastPolicy(2),
			func() (int, error) {
				calls++
				return 0, errTemporary
			},
		)
		assert.ErrorIs(t, err, errTemporary)
		assert.Equal(t, 2, calls)
	})

	t.Run("ZeroAttemptsCallsOnce", func(t *testing.T) {
		var calls int
		err := retry.Do(t.Context(), retry.Policy{}, func() error {
			calls++
			return errTemporary
		})
		assert.ErrorIs(t, err, errTemporary)
		assert.Equal(t, 1, calls)
	})

	t.Run("Permanent", func(t *testing.T) {
		rejected := errors.New("rejected")

		var calls int
		_, err := retry.DoWithResult(t.Context(), fastPolicy(5),
			func() (int, error) {
				calls++
				return 0, retry.Permanent(rejected)
			},
		)
		assert.ErrorIs(t, err, rejected)
		assert.True(t, retry.IsPermanent(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("ShouldRetry", func(t *testing.T) {
		rejected := errors.New("rejected")
		p := fastPolicy(5)
		p.ShouldRetry = func(err error) bool {
			return !errors.Is(err, rejected)
		}

		var calls int
		err := retry.Do(t.Context(), p, func() error {
			calls++
			return rejected
		})
		assert.ErrorIs(t, err, rejected)
		assert.Equal(t, 1, calls)
	})

	t.Run("OnRetry", func(t *testing.T) {
		var attempts []int
		p := fastPolicy(3)
		p.OnRetry = func(attempt int, err error) {
			assert.ErrorIs(t, err, errTemporary)
			attempts = append(attempts, attempt)
		}

		_ = retry.Do(t.Context(), p, func() error { return errTemporary })
		assert.Equal(t, []int{1, 2}, attempts)
	})

	t.Run("ContextCanceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		p := retry.Policy{
			MaxAttempts: 3,
			Backoff:     retry.LinearBackoff(time.Hour),
		}

		_, err := retry.DoWithResult(ctx, p, func() (int, error) {
			cancel()
			return 0, errTemporary
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.ErrorIs(t, err, errTemporary)
	})

	t.Run("ContextDoneBeforeStart", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		err := retry.Do(ctx, fastPolicy(3), func() error {
			t.Fatal("fn must not be called")
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("MaxDelay", func(t *testing.T) {
		p := retry.Policy{
			MaxAttempts: 2,
			Backoff:     retry.LinearBackoff(time.Hour),
			MaxDelay:    time.Millisecond,
		}

		start := time.Now()
		_ = retry.Do(t.Context(), p, func() error { return errTemporary })
		assert.Less(t, time.Since(start), time.Minute)
	})
}

func TestExponentialBackoff(t *testing.T) {
	b := retry.ExponentialBackoff(10 * time.Millisecond)

	for attempt := 1; attempt <= 4; attempt++ {
		base := time.Duration(1<<attempt) * 10 * time.Millisecond
		d := b(attempt)
		assert.GreaterOrEqual(t, d, base)
		assert.LessOrEqual(t, d, base+base/2)
	}
}

func TestPermanentNil(t *testing.T) {
	assert.NoError(t, retry.Permanent(nil))
	assert.False(t, retry.IsPermanent(errTemporary))
}
