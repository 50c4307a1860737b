package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
	domain "github.com/promptgate/promptgate/pkg/domain/session"
	"github.com/promptgate/promptgate/pkg/infra/auth/jwt"
	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=Revoker --dir=. --output=./mocks --filename=session_revoker_mock.go --case=underscore
type Revoker interface {
	Revoke(ctx context.Context, token string) error
}

type revoker struct {
	repo       domain.Repository
	jwtManager jwt.Manager
	logger     *logrus.Logger
}

func NewRevoker(repo domain.Repository, jwtManager jwt.Manager, logger *logrus.Logger) Revoker {
	return &revoker{
		repo:       repo,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// Revoke marks the token's session revoked regardless of its current state.
// Revoking an already revoked or expired session succeeds; a session the
// store has already pruned counts as revoked too.
func (r *revoker) Revoke(ctx context.Context, token string) error {
	claims, err := r.jwtManager.DecodeToken(token)
	if err != nil {
		return domain.ErrUnauthorized
	}

	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return domain.ErrUnauthorized
	}

	if err := r.repo.MarkRevoked(ctx, sessionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		r.logger.WithError(err).Error("failed to revoke session")
		return err
	}

	r.logger.WithField("session_id", sessionID).Info("session revoked")
	return nil
}
