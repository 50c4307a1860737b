package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/promptgate/promptgate/pkg/config"
	"github.com/promptgate/promptgate/pkg/domain/usage"
	"github.com/sirupsen/logrus"
)

// RateLimitedError is a recoverable admission denial: the caller may retry
// once RetryAfter has elapsed.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

//go:generate mockery --name=Limiter --dir=. --output=./mocks --filename=rate_limiter_mock.go --case=underscore
type Limiter interface {
	// Check admits or denies one request for the identity before it reaches
	// the upstream.
	Check(ctx context.Context, identity string) error

	// RecordUsage charges actual consumption after the upstream call. Only
	// meaningful in token accounting mode; a no-op otherwise.
	RecordUsage(ctx context.Context, identity string, tokens int64) error
}

type limiter struct {
	ledger usage.Ledger
	cfg    config.RateLimitConfig
	logger *logrus.Logger
}

func NewLimiter(ledger usage.Ledger, cfg config.RateLimitConfig, logger *logrus.Logger) Limiter {
	return &limiter{
		ledger: ledger,
		cfg:    cfg,
		logger: logger,
	}
}

func (l *limiter) Check(ctx context.Context, identity string) error {
	var (
		decision usage.Decision
		err      error
	)

	switch l.cfg.Mode {
	case config.ModeTokens:
		// Token budgets are charged after the fact, so admission only needs
		// to know whether the window is already exhausted.
		decision, err = l.ledger.Peek(ctx, identity)
		if err == nil && decision.Count >= decision.Limit {
			decision.Allowed = false
		}
	default:
		decision, err = l.ledger.RecordAndCheck(ctx, identity, 1)
	}

	if err != nil {
		if errors.Is(err, usage.ErrStorageUnavailable) && l.cfg.FailOpen {
			l.logger.WithError(err).Warn("usage ledger unreachable, admitting request (fail_open)")
			return nil
		}
		return err
	}

	if !decision.Allowed {
		return &RateLimitedError{RetryAfter: decision.RetryAfter}
	}
	return nil
}

func (l *limiter) RecordUsage(ctx context.Context, identity string, tokens int64) error {
	if l.cfg.Mode != config.ModeTokens {
		return nil
	}
	// The request was already served; a denial here only closes the window
	// for subsequent requests.
	_, err := l.ledger.RecordAndCheck(ctx, identity, tokens)
	if err != nil {
		l.logger.WithError(err).Warn("failed to record token usage")
		return err
	}
	return nil
}
