package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	appsession "github.com/promptgate/promptgate/pkg/app/session"
	"github.com/promptgate/promptgate/pkg/common"
	domain "github.com/promptgate/promptgate/pkg/domain/session"
	"github.com/sirupsen/logrus"
)

type authMiddleware struct {
	logger    *logrus.Logger
	validator appsession.Validator
}

func NewAuthMiddleware(logger *logrus.Logger, validator appsession.Validator) Middleware {
	return &authMiddleware{
		logger:    logger,
		validator: validator,
	}
}

func (m *authMiddleware) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		token := bearerToken(ctx)
		if token == "" {
			m.logger.Debug("no bearer token provided")
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "bearer token required"})
		}

		entity, err := m.validator.Validate(ctx.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrExpired):
				return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "session expired"})
			case errors.Is(err, domain.ErrRevoked):
				return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "session revoked"})
			case errors.Is(err, domain.ErrUnauthorized):
				return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
			default:
				m.logger.WithError(err).Error("session validation failed")
				return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "session store unavailable"})
			}
		}

		ctx.Locals(common.ClientIdentityContextKey, entity.ClientIdentity)
		ctx.Locals(common.SessionIDContextKey, entity.ID.String())

		return ctx.Next()
	}
}

func bearerToken(ctx *fiber.Ctx) string {
	header := ctx.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
