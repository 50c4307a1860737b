package httpx

import (
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerSettings configures one upstream breaker. Zero values fall back to
// defaults so callers only set what their config carries.
type BreakerSettings struct {
	// Name tags the breaker in wrapped errors.
	Name string
	// Cooldown is how long an open breaker waits before probing again.
	Cooldown time.Duration
	// MaxFailures is the consecutive-failure count that trips the breaker.
	MaxFailures uint32
	// HalfOpenProbes is how many requests may pass while half-open.
	HalfOpenProbes uint32
}

type CircuitBreaker interface {
	Execute(fn func() error) error
}

type breakerWrapper struct {
	cb *gobreaker.CircuitBreaker
}

func NewCircuitBreaker(settings BreakerSettings) CircuitBreaker {
	if settings.Cooldown <= 0 {
		settings.Cooldown = 30 * time.Second
	}
	if settings.MaxFailures == 0 {
		settings.MaxFailures = 5
	}
	if settings.HalfOpenProbes == 0 {
		settings.HalfOpenProbes = 1
	}

	return &breakerWrapper{
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        settings.Name,
			MaxRequests: settings.HalfOpenProbes,
			Timeout:     settings.Cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= settings.MaxFailures
			},
		}),
	}
}

func (b *breakerWrapper) Execute(fn func() error) error {
	if _, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	}); err != nil {
		return fmt.Errorf("breaker (%s): %w", b.cb.Name(), err)
	}
	return nil
}
