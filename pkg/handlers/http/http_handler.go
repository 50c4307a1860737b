package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	CompletionHandler  Handler
	IssueTokenHandler  Handler
	RevokeTokenHandler Handler
	HealthHandler      Handler
}
