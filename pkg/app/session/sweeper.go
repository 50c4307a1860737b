package session

import (
	"context"
	"time"

	domain "github.com/promptgate/promptgate/pkg/domain/session"
	"github.com/sirupsen/logrus"
)

// Sweeper prunes expired sessions so client identities are garbage-collected
// with the sessions that produced them.
type Sweeper struct {
	repo     domain.Repository
	logger   *logrus.Logger
	interval time.Duration
}

func NewSweeper(repo domain.Repository, logger *logrus.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		repo:     repo,
		logger:   logger,
		interval: interval,
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	pruned, err := s.repo.DeleteExpiredBefore(ctx, time.Now())
	if err != nil {
		s.logger.WithError(err).Warn("session sweep failed")
		return
	}
	if pruned > 0 {
		s.logger.WithField("pruned", pruned).Debug("expired sessions pruned")
	}
}
