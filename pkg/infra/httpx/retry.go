package httpx

import (
	"context"
	"math/rand"
	"time"
)

// RetryPolicy is an explicit, testable retry schedule: MaxRetries additional
// attempts after the first, exponential backoff with jitter between them.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	Factor     float64
	Jitter     float64

	// sleep is swappable so tests do not wait out real backoff.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRetryPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries: maxRetries,
		BaseDelay:  500 * time.Millisecond,
		Factor:     2,
		Jitter:     0.2,
		sleep:      sleepCtx,
	}
}

// Do runs fn, retrying while retryable reports the error as transient and
// the retry budget lasts. The last error is returned as-is; Do never wraps.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error, retryable func(error) bool) error {
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = fn(ctx)
		if err == nil || !retryable(err) || attempt >= p.MaxRetries {
			return err
		}
		if sleepErr := sleep(ctx, p.backoff(attempt)); sleepErr != nil {
			return err
		}
	}
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	d := float64(p.BaseDelay)
	for i := 0; i < attempt; i++ {
		d *= p.Factor
	}
	if p.Jitter > 0 {
		d *= 1 + p.Jitter*(2*rand.Float64()-1) // #nosec G404
	}
	return time.Duration(d)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
