package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	domain "github.com/promptgate/promptgate/pkg/domain/session"
	"github.com/promptgate/promptgate/pkg/infra/auth/jwt"
	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=Validator --dir=. --output=./mocks --filename=session_validator_mock.go --case=underscore
type Validator interface {
	Validate(ctx context.Context, token string) (*domain.Session, error)
}

type validator struct {
	repo       domain.Repository
	jwtManager jwt.Manager
	logger     *logrus.Logger
	now        func() time.Time
}

func NewValidator(repo domain.Repository, jwtManager jwt.Manager, logger *logrus.Logger) Validator {
	return &validator{
		repo:       repo,
		jwtManager: jwtManager,
		logger:     logger,
		now:        time.Now,
	}
}

// Validate resolves a bearer token to its live session. Order matters:
// revocation wins over expiry, so a revoked session reports ErrRevoked even
// past its natural expiry.
func (v *validator) Validate(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := v.jwtManager.DecodeToken(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	entity, err := v.repo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		v.logger.WithError(err).Error("failed to fetch session")
		return nil, err
	}

	if entity.Revoked {
		return nil, domain.ErrRevoked
	}
	if !entity.Active(v.now()) {
		return nil, domain.ErrExpired
	}

	return entity, nil
}
