package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	appsession "github.com/promptgate/promptgate/pkg/app/session"
	"github.com/promptgate/promptgate/pkg/config"
	domain "github.com/promptgate/promptgate/pkg/domain/session"
	"github.com/promptgate/promptgate/pkg/domain/session/mocks"
	"github.com/promptgate/promptgate/pkg/infra/auth/jwt"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		SecretKey:       "test-secret",
		TokenTTLMinutes: 60,
		APIKeys:         []string{"key-alpha", "key-beta"},
	}
}

func TestIssuer_UnknownKey(t *testing.T) {
	repo := new(mocks.MockSessionRepository)
	cfg := testAuthConfig()
	issuer := appsession.NewIssuer(repo, jwt.NewJwtManager(cfg), cfg, logrus.New())

	_, _, err := issuer.Issue(context.Background(), "not-configured")

	assert.Equal(t, domain.ErrUnauthorized, err)
	repo.AssertNotCalled(t, "Save")
}

func TestIssuer_EmptyKey(t *testing.T) {
	repo := new(mocks.MockSessionRepository)
	cfg := testAuthConfig()
	issuer := appsession.NewIssuer(repo, jwt.NewJwtManager(cfg), cfg, logrus.New())

	_, _, err := issuer.Issue(context.Background(), "")

	assert.Equal(t, domain.ErrUnauthorized, err)
}

func TestIssuer_Success(t *testing.T) {
	repo := new(mocks.MockSessionRepository)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*session.Session")).Return(nil)

	cfg := testAuthConfig()
	manager := jwt.NewJwtManager(cfg)
	issuer := appsession.NewIssuer(repo, manager, cfg, logrus.New())

	entity, token, err := issuer.Issue(context.Background(), "key-alpha")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.False(t, entity.Revoked)
	assert.WithinDuration(t, entity.IssuedAt.Add(time.Hour), entity.ExpiresAt, time.Second)

	claims, err := manager.DecodeToken(token)
	assert.NoError(t, err)
	assert.Equal(t, entity.ID.String(), claims.SessionID)
	repo.AssertExpectations(t)
}

func TestIssuer_IdentityStableAcrossSessions(t *testing.T) {
	repo := new(mocks.MockSessionRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	cfg := testAuthConfig()
	issuer := appsession.NewIssuer(repo, jwt.NewJwtManager(cfg), cfg, logrus.New())

	first, _, err := issuer.Issue(context.Background(), "key-alpha")
	assert.NoError(t, err)
	second, _, err := issuer.Issue(context.Background(), "key-alpha")
	assert.NoError(t, err)

	assert.Equal(t, first.ClientIdentity, second.ClientIdentity)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestIssuer_RepositoryError(t *testing.T) {
	repo := new(mocks.MockSessionRepository)
	storageErr := errors.New("database down")
	repo.On("Save", mock.Anything, mock.Anything).Return(storageErr)

	cfg := testAuthConfig()
	issuer := appsession.NewIssuer(repo, jwt.NewJwtManager(cfg), cfg, logrus.New())

	_, _, err := issuer.Issue(context.Background(), "key-alpha")

	assert.Equal(t, storageErr, err)
}

func TestDeriveIdentity_Deterministic(t *testing.T) {
	a := appsession.DeriveIdentity("key-alpha")
	b := appsession.DeriveIdentity("key-alpha")
	c := appsession.DeriveIdentity("key-beta")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotContains(t, a, "key-alpha")
}
