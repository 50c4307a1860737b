package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/promptgate/promptgate/pkg/app/health"
	"github.com/promptgate/promptgate/pkg/app/ratelimit"
	appsession "github.com/promptgate/promptgate/pkg/app/session"
	"github.com/promptgate/promptgate/pkg/config"
	handlers "github.com/promptgate/promptgate/pkg/handlers/http"
	"github.com/promptgate/promptgate/pkg/infra/auth/jwt"
	"github.com/promptgate/promptgate/pkg/infra/cache"
	"github.com/promptgate/promptgate/pkg/infra/database"
	"github.com/promptgate/promptgate/pkg/infra/ledger"
	infraLogger "github.com/promptgate/promptgate/pkg/infra/logger"
	"github.com/promptgate/promptgate/pkg/infra/providers/anthropic"
	"github.com/promptgate/promptgate/pkg/infra/repository"
	"github.com/promptgate/promptgate/pkg/middleware"
	"github.com/promptgate/promptgate/pkg/server"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger, closeLogs := infraLogger.NewLogger()
	defer closeLogs()

	cfg, err := config.Load("./config")
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewDB(cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close()

	redisClient, err := cache.NewClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatalf("failed to initialize redis: %v", err)
	}
	defer redisClient.Close()

	// infra
	sessionRepository := repository.NewSessionRepository(db.DB)
	jwtManager := jwt.NewJwtManager(cfg.Auth)
	usageLedger := ledger.NewRedisLedger(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window())
	providerClient := anthropic.NewClient(cfg.Provider, logger)

	// application
	sessionIssuer := appsession.NewIssuer(sessionRepository, jwtManager, cfg.Auth, logger)
	sessionValidator := appsession.NewValidator(sessionRepository, jwtManager, logger)
	sessionRevoker := appsession.NewRevoker(sessionRepository, jwtManager, logger)
	sessionSweeper := appsession.NewSweeper(sessionRepository, logger, 10*time.Minute)
	limiter := ratelimit.NewLimiter(usageLedger, cfg.RateLimit, logger)
	monitor := health.NewMonitor(usageLedger, cfg.Health, logger)

	middlewareTransport := middleware.Transport{
		AuthMiddleware:    middleware.NewAuthMiddleware(logger, sessionValidator),
		MetricsMiddleware: middleware.NewMetricsMiddleware(logger),
	}

	handlerTransport := handlers.HandlerTransport{
		CompletionHandler:  handlers.NewCompletionHandler(logger, limiter, providerClient, monitor),
		IssueTokenHandler:  handlers.NewIssueTokenHandler(logger, sessionIssuer),
		RevokeTokenHandler: handlers.NewRevokeTokenHandler(logger, sessionRevoker),
		HealthHandler:      handlers.NewHealthHandler(monitor),
	}

	srv := server.NewGatewayServer(server.GatewayServerDI{
		MiddlewareTransport: middlewareTransport,
		HandlerTransport:    handlerTransport,
		Config:              cfg,
		Logger:              logger,
	})

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return srv.Run()
	})
	group.Go(func() error {
		monitor.Run(groupCtx)
		return nil
	})
	group.Go(func() error {
		sessionSweeper.Run(groupCtx)
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down gateway")
		return srv.Shutdown()
	})

	if err := group.Wait(); err != nil {
		logger.WithError(err).Error("gateway terminated with error")
		os.Exit(1)
	}
	logger.Info("gateway stopped")
}
