package httpx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testPolicy(maxRetries int, slept *[]time.Duration) RetryPolicy {
	p := NewRetryPolicy(maxRetries)
	p.sleep = func(ctx context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return p
}

func TestRetryPolicy_SucceedsFirstAttempt(t *testing.T) {
	var slept []time.Duration
	p := testPolicy(2, &slept)

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	}, func(error) bool { return true })

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, slept)
}

func TestRetryPolicy_RetriesTransientThenSucceeds(t *testing.T) {
	var slept []time.Duration
	p := testPolicy(2, &slept)

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, func(error) bool { return true })

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, slept, 2)
}

func TestRetryPolicy_ExhaustsBudget(t *testing.T) {
	var slept []time.Duration
	p := testPolicy(2, &slept)

	calls := 0
	lastErr := errors.New("still failing")
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return lastErr
	}, func(error) bool { return true })

	assert.Equal(t, lastErr, err)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicy_DoesNotRetryPermanentErrors(t *testing.T) {
	var slept []time.Duration
	p := testPolicy(2, &slept)

	permanent := errors.New("bad request")
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return permanent
	}, func(err error) bool { return !errors.Is(err, permanent) })

	assert.Equal(t, permanent, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, slept)
}

func TestRetryPolicy_BackoffGrowsExponentially(t *testing.T) {
	p := NewRetryPolicy(3)
	p.Jitter = 0

	assert.Equal(t, 500*time.Millisecond, p.backoff(0))
	assert.Equal(t, 1*time.Second, p.backoff(1))
	assert.Equal(t, 2*time.Second, p.backoff(2))
}

func TestRetryPolicy_BackoffJitterStaysInBounds(t *testing.T) {
	p := NewRetryPolicy(2)

	for i := 0; i < 100; i++ {
		d := p.backoff(0)
		assert.GreaterOrEqual(t, d, 400*time.Millisecond)
		assert.LessOrEqual(t, d, 600*time.Millisecond)
	}
}

func TestRetryPolicy_CancelledContextStopsRetrying(t *testing.T) {
	p := NewRetryPolicy(5)
	p.sleep = sleepCtx

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transient := errors.New("transient")
	calls := 0
	err := p.Do(ctx, func(ctx context.Context) error {
		calls++
		return transient
	}, func(error) bool { return true })

	assert.Equal(t, transient, err)
	assert.Equal(t, 1, calls)
}
