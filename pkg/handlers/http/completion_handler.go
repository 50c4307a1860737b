package http

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/promptgate/promptgate/pkg/app/health"
	"github.com/promptgate/promptgate/pkg/app/ratelimit"
	"github.com/promptgate/promptgate/pkg/common"
	"github.com/promptgate/promptgate/pkg/domain/usage"
	"github.com/promptgate/promptgate/pkg/handlers/http/request"
	"github.com/promptgate/promptgate/pkg/infra/prometheus"
	"github.com/promptgate/promptgate/pkg/infra/providers"
	"github.com/sirupsen/logrus"
)

type completionHandler struct {
	logger   *logrus.Logger
	limiter  ratelimit.Limiter
	provider providers.Client
	monitor  *health.Monitor
}

func NewCompletionHandler(
	logger *logrus.Logger,
	limiter ratelimit.Limiter,
	provider providers.Client,
	monitor *health.Monitor,
) Handler {
	return &completionHandler{
		logger:   logger,
		limiter:  limiter,
		provider: provider,
		monitor:  monitor,
	}
}

// Handle drives one request through admission, forwarding and usage
// accounting. Authentication already happened in the middleware chain; every
// terminal outcome emits one structured log record and one health sample.
func (h *completionHandler) Handle(ctx *fiber.Ctx) error {
	start := time.Now()

	identity, ok := ctx.Locals(common.ClientIdentityContextKey).(string)
	if !ok || identity == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthenticated"})
	}

	var req request.CompleteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.limiter.Check(ctx.Context(), identity); err != nil {
		return h.rejectAdmission(ctx, identity, start, err)
	}

	completion, err := h.provider.Complete(ctx.Context(), providers.CompletionRequest{
		Prompt:    req.Prompt,
		Model:     req.ModelID,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return h.rejectUpstream(ctx, identity, start, err)
	}

	if err := h.limiter.RecordUsage(ctx.Context(), identity, int64(completion.TokensUsed())); err != nil {
		// The response was already produced; usage accounting must not
		// turn a served request into a failure.
		h.logger.WithError(err).WithField("client_identity", identity).Warn("usage recording failed")
	}

	prometheus.UpstreamLatency.Observe(float64(completion.Latency.Milliseconds()))
	prometheus.TokensUsedTotal.Add(float64(completion.TokensUsed()))
	h.monitor.Observe(time.Since(start), false)

	requestID, _ := ctx.Locals(common.RequestIDContextKey).(string)
	h.logger.WithFields(logrus.Fields{
		"request_id":      requestID,
		"client_identity": identity,
		"model":           completion.Model,
		"tokens_used":     completion.TokensUsed(),
		"latency_ms":      time.Since(start).Milliseconds(),
		"state":           "completed",
	}).Info("completion served")

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"completion": completion.Text,
		"tokensUsed": completion.TokensUsed(),
		"model":      completion.Model,
	})
}

func (h *completionHandler) rejectAdmission(ctx *fiber.Ctx, identity string, start time.Time, err error) error {
	h.monitor.Observe(time.Since(start), true)

	var limited *ratelimit.RateLimitedError
	if errors.As(err, &limited) {
		retryAfter := int(math.Ceil(limited.RetryAfter.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		prometheus.RateLimitedTotal.Inc()
		h.logger.WithFields(logrus.Fields{
			"client_identity": identity,
			"retry_after_s":   retryAfter,
			"state":           "rejected",
			"reason":          "rate_limited",
		}).Info("request rejected")
		ctx.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
		return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":       "rate limit exceeded",
			"retry_after": retryAfter,
		})
	}

	if errors.Is(err, usage.ErrStorageUnavailable) {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"client_identity": identity,
			"state":           "rejected",
			"reason":          "storage_unavailable",
		}).Error("request rejected")
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "usage ledger unavailable"})
	}

	h.logger.WithError(err).Error("admission check failed")
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

func (h *completionHandler) rejectUpstream(ctx *fiber.Ctx, identity string, start time.Time, err error) error {
	h.monitor.Observe(time.Since(start), true)

	status := fiber.StatusBadGateway
	reason := "upstream_error"

	var upstreamErr *providers.UpstreamError
	if errors.As(err, &upstreamErr) && upstreamErr.Timeout {
		status = fiber.StatusGatewayTimeout
		reason = "upstream_timeout"
	}

	h.logger.WithError(err).WithFields(logrus.Fields{
		"client_identity": identity,
		"state":           "rejected",
		"reason":          reason,
	}).Error("request rejected")

	return ctx.Status(status).JSON(fiber.Map{"error": err.Error()})
}
