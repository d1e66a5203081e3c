// Package retry calls a function until it succeeds, the attempts run
// out or the context is done.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

const defaultDelay = 100 * time.Millisecond

type Backoff func(attempt int) time.Duration

type ShouldRetry func(error) bool

// A Policy describes how to retry.
//
// Zero MaxAttempts means one attempt. Zero MaxDelay means no cap.
type Policy struct {
	MaxAttempts int
	Backoff     Backoff
	MaxDelay    time.Duration
	ShouldRetry ShouldRetry
	// OnRetry is called before waiting for the next attempt.
	OnRetry func(attempt int, err error)
}

func (p *Policy) normalize() {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.Backoff == nil {
		p.Backoff = ExponentialBackoff(defaultDelay)
	}
	if p.ShouldRetry == nil {
		p.ShouldRetry = notPermanent
	}
	if p.OnRetry == nil {
		p.OnRetry = func(int, error) {}
	}
}

func (p Policy) delay(attempt int) time.Duration {
	d := p.Backoff(attempt)
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }

func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err}
}

func IsPermanent(err error) bool {
	var pe permanentError
	return errors.As(err, &pe)
}

func notPermanent(err error) bool {
	return !IsPermanent(err)
}

// ExponentialBackoff doubles delay on every attempt and adds up to
// a half of it as jitter.
func ExponentialBackoff(delay time.Duration) Backoff {
	return func(attempt int) time.Duration {
		base := delay << attempt
		if base < 2 {
			return base
		}
		jitter := time.Duration(rand.Int64N(int64(base/2)) + 1)
		return base + jitter
	}
}

func LinearBackoff(delay time.Duration) Backoff {
	return func(int) time.Duration {
		return delay
	}
}

func Do(ctx context.Context, p Policy, fn func() error) error {
	_, err := DoWithResult(ctx, p, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

func DoWithResult[T any](
	ctx context.Context, p Policy, fn func() (T, error),
) (T, error) {
	var zero T

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	p.normalize()
	timer := time.NewTimer(0)
	<-timer.C
	defer timer.Stop()

	var err error
	for attempt := 1; ; attempt++ {
		var result T
		result, err = fn()
		if err == nil {
			return result, nil
		}
		if attempt == p.MaxAttempts || !p.ShouldRetry(err) {
			break
		}

		p.OnRetry(attempt, err)

		timer.Reset(p.delay(attempt))
		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("%w: %w", ctx.Err(), err)
		case <-timer.C:
		}
	}

	return zero, err
}
