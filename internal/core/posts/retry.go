package posts

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryPolicy bounds how often a mutation is retried after a version conflict
type RetryPolicy struct {
	MaxRetries uint64
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryPolicy is used when no policy is configured
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries: 5,
	BaseDelay:  5 * time.Millisecond,
	MaxDelay:   100 * time.Millisecond,
}

func (p RetryPolicy) backoff() retry.Backoff {
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultRetryPolicy.BaseDelay
	}
	b := retry.NewExponential(base)
	b = retry.WithJitterPercent(20, b)
	if p.MaxDelay > 0 {
		b = retry.WithCappedDuration(p.MaxDelay, b)
	}
	return retry.WithMaxRetries(p.MaxRetries, b)
}

// withConflictRetry runs attempt until it succeeds, fails with a non-conflict
// error, or the policy gives up. Exhaustion is reported as ErrConflict.
func withConflictRetry(ctx context.Context, p RetryPolicy, onConflict func(attempt int), attempt func(ctx context.Context) error) error {
	n := 0
	err := retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		n++
		err := attempt(ctx)
		if errors.Is(err, ErrVersionConflict) {
			if onConflict != nil {
				onConflict(n)
			}
			return retry.RetryableError(err)
		}
		return err
	})
	if errors.Is(err, ErrVersionConflict) {
		return ErrConflict
	}
	return err
}
