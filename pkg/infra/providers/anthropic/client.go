package anthropic

import (
	"context"
	"errors"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/promptgate/promptgate/pkg/config"
	"github.com/promptgate/promptgate/pkg/infra/httpx"
	"github.com/promptgate/promptgate/pkg/infra/providers"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

type client struct {
	anthropic anthropic.Client
	cfg       config.ProviderConfig
	retry     httpx.RetryPolicy
	breaker   httpx.CircuitBreaker
	logger    *logrus.Logger
}

// NewClient wraps the Anthropic Messages API with an explicit retry policy
// and a circuit breaker. The SDK's built-in retries are disabled so the
// schedule configured here is the only one in play.
func NewClient(cfg config.ProviderConfig, logger *logrus.Logger) providers.Client {
	return &client{
		anthropic: anthropic.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithMaxRetries(0),
		),
		cfg:   cfg,
		retry: httpx.NewRetryPolicy(cfg.MaxRetries),
		breaker: httpx.NewCircuitBreaker(httpx.BreakerSettings{
			Name:        "anthropic",
			Cooldown:    cfg.BreakerCooldown(),
			MaxFailures: uint32(cfg.BreakerMaxFailures),
		}),
		logger: logger,
	}
}

func (c *client) Complete(ctx context.Context, req providers.CompletionRequest) (*providers.Completion, error) {
	model := c.cfg.Model
	if req.Model != "" {
		model = req.Model
	}

	// max_tokens is a hard cap handed to the remote API, never a local
	// truncation of the response.
	maxTokens := req.MaxTokens
	if maxTokens <= 0 || maxTokens > c.cfg.MaxTokens {
		maxTokens = c.cfg.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}

	var message *anthropic.Message
	start := time.Now()

	err := c.retry.Do(ctx, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout())
		defer cancel()

		return c.breaker.Execute(func() error {
			msg, err := c.anthropic.Messages.New(attemptCtx, params)
			if err != nil {
				return err
			}
			message = msg
			return nil
		})
	}, isTransient)

	if err != nil {
		upstreamErr := classify(err)
		c.logger.WithError(err).WithFields(logrus.Fields{
			"model":   model,
			"timeout": upstreamErr.Timeout,
			"code":    upstreamErr.Code,
		}).Error("upstream completion failed")
		return nil, upstreamErr
	}

	var text string
	for _, content := range message.Content {
		if content.Type == "text" {
			text = content.Text
			break
		}
	}

	return &providers.Completion{
		ID:           message.ID,
		Model:        model,
		Text:         text,
		InputTokens:  int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
		Latency:      time.Since(start),
	}, nil
}

// isTransient reports whether an attempt is worth retrying: network errors,
// 5xx responses and timeouts are; 4xx responses and an open breaker are not.
func isTransient(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return true
}

func classify(err error) *providers.UpstreamError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &providers.UpstreamError{Timeout: true, Message: "upstream call exceeded deadline"}
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &providers.UpstreamError{Code: apiErr.StatusCode, Message: apiErr.Error()}
	}
	return &providers.UpstreamError{Code: 502, Message: err.Error()}
}
