package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/promptgate/promptgate/pkg/domain/session"
	"github.com/stretchr/testify/mock"
)

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Save(ctx context.Context, entity *session.Session) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	args := m.Called(ctx, id)
	entity, _ := args.Get(0).(*session.Session)
	return entity, args.Error(1)
}

func (m *MockSessionRepository) MarkRevoked(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
