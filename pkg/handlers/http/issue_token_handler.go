package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	appsession "github.com/promptgate/promptgate/pkg/app/session"
	domain "github.com/promptgate/promptgate/pkg/domain/session"
	"github.com/sirupsen/logrus"
)

const apiKeyHeader = "X-API-Key"

type issueTokenHandler struct {
	logger *logrus.Logger
	issuer appsession.Issuer
}

func NewIssueTokenHandler(logger *logrus.Logger, issuer appsession.Issuer) Handler {
	return &issueTokenHandler{
		logger: logger,
		issuer: issuer,
	}
}

// Handle exchanges an API key for a bearer token.
func (h *issueTokenHandler) Handle(ctx *fiber.Ctx) error {
	clientKey := ctx.Get(apiKeyHeader)
	if clientKey == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "API key required"})
	}

	entity, token, err := h.issuer.Issue(ctx.Context(), clientKey)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unknown API key"})
		}
		h.logger.WithError(err).Error("failed to issue session")
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "session store unavailable"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token":      token,
		"expires_at": entity.ExpiresAt,
	})
}
