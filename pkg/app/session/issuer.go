package session

import (
	"context"
	"crypto/subtle"

	"github.com/promptgate/promptgate/pkg/config"
	domain "github.com/promptgate/promptgate/pkg/domain/session"
	"github.com/promptgate/promptgate/pkg/infra/auth/jwt"
	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=Issuer --dir=. --output=./mocks --filename=session_issuer_mock.go --case=underscore
type Issuer interface {
	Issue(ctx context.Context, clientKey string) (*domain.Session, string, error)
}

type issuer struct {
	repo       domain.Repository
	jwtManager jwt.Manager
	authCfg    config.AuthConfig
	logger     *logrus.Logger
}

func NewIssuer(
	repo domain.Repository,
	jwtManager jwt.Manager,
	authCfg config.AuthConfig,
	logger *logrus.Logger,
) Issuer {
	return &issuer{
		repo:       repo,
		jwtManager: jwtManager,
		authCfg:    authCfg,
		logger:     logger,
	}
}

// Issue exchanges a configured API key for a fresh session and its bearer
// token. Prior sessions for the same key stay valid until they expire or are
// revoked; reconciling concurrent sessions is the client's business.
func (i *issuer) Issue(ctx context.Context, clientKey string) (*domain.Session, string, error) {
	if !i.keyAllowed(clientKey) {
		return nil, "", domain.ErrUnauthorized
	}

	entity := domain.NewSession(DeriveIdentity(clientKey), i.authCfg.TokenTTL())
	if err := i.repo.Save(ctx, entity); err != nil {
		i.logger.WithError(err).Error("failed to persist session")
		return nil, "", err
	}

	token, err := i.jwtManager.CreateToken(entity)
	if err != nil {
		i.logger.WithError(err).Error("failed to sign session token")
		return nil, "", err
	}

	i.logger.WithFields(logrus.Fields{
		"session_id":      entity.ID,
		"client_identity": entity.ClientIdentity,
		"expires_at":      entity.ExpiresAt,
	}).Info("session issued")

	return entity, token, nil
}

func (i *issuer) keyAllowed(clientKey string) bool {
	if clientKey == "" {
		return false
	}
	allowed := false
	for _, key := range i.authCfg.APIKeys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(clientKey)) == 1 {
			allowed = true
		}
	}
	return allowed
}
