package mocks

import (
	"context"

	"github.com/promptgate/promptgate/pkg/infra/providers"
	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Complete(ctx context.Context, req providers.CompletionRequest) (*providers.Completion, error) {
	args := m.Called(ctx, req)
	completion, _ := args.Get(0).(*providers.Completion)
	return completion, args.Error(1)
}
