package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/promptgate/promptgate/pkg/app/health"
)

type healthHandler struct {
	monitor *health.Monitor
}

func NewHealthHandler(monitor *health.Monitor) Handler {
	return &healthHandler{
		monitor: monitor,
	}
}

// Handle always answers 200; a degraded ledger is reported in the body, not
// as an HTTP failure.
func (h *healthHandler) Handle(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusOK).JSON(h.monitor.Snapshot())
}
