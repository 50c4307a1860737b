package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Check(ctx context.Context, identity string) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *MockLimiter) RecordUsage(ctx context.Context, identity string, tokens int64) error {
	args := m.Called(ctx, identity, tokens)
	return args.Error(0)
}
