package mocks

import (
	"context"

	"github.com/promptgate/promptgate/pkg/domain/session"
	"github.com/stretchr/testify/mock"
)

type MockIssuer struct {
	mock.Mock
}

func (m *MockIssuer) Issue(ctx context.Context, clientKey string) (*session.Session, string, error) {
	args := m.Called(ctx, clientKey)
	entity, _ := args.Get(0).(*session.Session)
	return entity, args.String(1), args.Error(2)
}

type MockValidator struct {
	mock.Mock
}

func (m *MockValidator) Validate(ctx context.Context, token string) (*session.Session, error) {
	args := m.Called(ctx, token)
	entity, _ := args.Get(0).(*session.Session)
	return entity, args.Error(1)
}

type MockRevoker struct {
	mock.Mock
}

func (m *MockRevoker) Revoke(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
