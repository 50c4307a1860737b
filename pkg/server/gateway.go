package server

import (
	"fmt"

	"github.com/promptgate/promptgate/pkg/config"
	handlers "github.com/promptgate/promptgate/pkg/handlers/http"
	"github.com/promptgate/promptgate/pkg/middleware"
	"github.com/sirupsen/logrus"
)

type (
	GatewayServerDI struct {
		MiddlewareTransport middleware.Transport
		HandlerTransport    handlers.HandlerTransport
		Config              *config.Config
		Logger              *logrus.Logger
	}
	GatewayServer struct {
		*BaseServer
		middlewareTransport middleware.Transport
		handlerTransport    handlers.HandlerTransport
	}
)

func NewGatewayServer(di GatewayServerDI) *GatewayServer {
	s := &GatewayServer{
		BaseServer:          NewBaseServer(di.Config, di.Logger),
		middlewareTransport: di.MiddlewareTransport,
		handlerTransport:    di.HandlerTransport,
	}
	s.setupRoutes()
	s.setupMetricsEndpoint()
	return s
}

func (s *GatewayServer) setupRoutes() {
	s.router.Get("/health", s.handlerTransport.HealthHandler.Handle)

	tokens := s.router.Group("/api/v1/tokens")
	{
		tokens.Post("", s.handlerTransport.IssueTokenHandler.Handle)
		tokens.Delete("", s.handlerTransport.RevokeTokenHandler.Handle)
	}

	// Middleware is attached per route: a prefix group on /api would also
	// shield token issuance behind the auth it is meant to establish.
	s.router.Post("/api/complete",
		s.middlewareTransport.MetricsMiddleware.Middleware(),
		s.middlewareTransport.AuthMiddleware.Middleware(),
		s.handlerTransport.CompletionHandler.Handle,
	)
}

func (s *GatewayServer) Run() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.WithField("addr", addr).Info("starting gateway server")
	return s.router.Listen(addr)
}

func (s *GatewayServer) Shutdown() error {
	return s.router.Shutdown()
}
