package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	appsession "github.com/promptgate/promptgate/pkg/app/session"
	domain "github.com/promptgate/promptgate/pkg/domain/session"
	"github.com/sirupsen/logrus"
)

type revokeTokenHandler struct {
	logger  *logrus.Logger
	revoker appsession.Revoker
}

func NewRevokeTokenHandler(logger *logrus.Logger, revoker appsession.Revoker) Handler {
	return &revokeTokenHandler{
		logger:  logger,
		revoker: revoker,
	}
}

// Handle revokes the presented bearer token's session. Idempotent: revoking
// twice answers 204 both times.
func (h *revokeTokenHandler) Handle(ctx *fiber.Ctx) error {
	header := ctx.Get(fiber.HeaderAuthorization)
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" || token == header {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "bearer token required"})
	}

	if err := h.revoker.Revoke(ctx.Context(), token); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}
		h.logger.WithError(err).Error("failed to revoke session")
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "session store unavailable"})
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}
