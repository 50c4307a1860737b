package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	appsession "github.com/promptgate/promptgate/pkg/app/session"
	domain "github.com/promptgate/promptgate/pkg/domain/session"
	"github.com/promptgate/promptgate/pkg/domain/session/mocks"
)

func TestRevoker_Success(t *testing.T) {
	entity, token, manager := issuedSession(t, time.Hour)

	repo := new(mocks.MockSessionRepository)
	repo.On("MarkRevoked", mock.Anything, entity.ID).Return(nil)

	revoker := appsession.NewRevoker(repo, manager, logrus.New())
	err := revoker.Revoke(context.Background(), token)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRevoker_ExpiredTokenStillRevocable(t *testing.T) {
	entity, token, manager := issuedSession(t, -time.Hour)

	repo := new(mocks.MockSessionRepository)
	repo.On("MarkRevoked", mock.Anything, entity.ID).Return(nil)

	revoker := appsession.NewRevoker(repo, manager, logrus.New())
	err := revoker.Revoke(context.Background(), token)

	assert.NoError(t, err)
}

func TestRevoker_PrunedSessionCountsAsRevoked(t *testing.T) {
	entity, token, manager := issuedSession(t, time.Hour)

	repo := new(mocks.MockSessionRepository)
	repo.On("MarkRevoked", mock.Anything, entity.ID).Return(domain.ErrNotFound)

	revoker := appsession.NewRevoker(repo, manager, logrus.New())
	err := revoker.Revoke(context.Background(), token)

	assert.NoError(t, err)
}

func TestRevoker_InvalidToken(t *testing.T) {
	_, _, manager := issuedSession(t, time.Hour)

	repo := new(mocks.MockSessionRepository)
	revoker := appsession.NewRevoker(repo, manager, logrus.New())

	err := revoker.Revoke(context.Background(), "garbage")

	assert.Equal(t, domain.ErrUnauthorized, err)
	repo.AssertNotCalled(t, "MarkRevoked")
}
