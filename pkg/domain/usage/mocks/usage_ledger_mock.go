package mocks

import (
	"context"

	"github.com/promptgate/promptgate/pkg/domain/usage"
	"github.com/stretchr/testify/mock"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) RecordAndCheck(ctx context.Context, identity string, cost int64) (usage.Decision, error) {
	args := m.Called(ctx, identity, cost)
	return args.Get(0).(usage.Decision), args.Error(1)
}

func (m *MockLedger) Peek(ctx context.Context, identity string) (usage.Decision, error) {
	args := m.Called(ctx, identity)
	return args.Get(0).(usage.Decision), args.Error(1)
}

func (m *MockLedger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
