package providers

import (
	"context"
	"fmt"
	"time"
)

type CompletionRequest struct {
	Prompt    string
	Model     string
	MaxTokens int
}

type Completion struct {
	ID           string
	Model        string
	Text         string
	InputTokens  int
	OutputTokens int
	Latency      time.Duration
}

func (c *Completion) TokensUsed() int {
	return c.InputTokens + c.OutputTokens
}

// UpstreamError is the terminal failure of a completion call, after the
// client's retry budget is spent. Timeout distinguishes a deadline from a
// remote failure so the gateway can answer 504 instead of 502.
type UpstreamError struct {
	Code    int
	Message string
	Timeout bool
}

func (e *UpstreamError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("upstream timeout: %s", e.Message)
	}
	return fmt.Sprintf("upstream error (status %d): %s", e.Code, e.Message)
}

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=provider_client_mock.go --case=underscore
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}
