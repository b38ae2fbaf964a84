package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"llmsaas/internal/caching"
	"llmsaas/internal/config"
	"llmsaas/internal/handlers"
	"llmsaas/internal/jobs/background"
	"llmsaas/internal/llm"
	"llmsaas/internal/middleware"
	"llmsaas/internal/repositories"
	"llmsaas/internal/services"
	"llmsaas/internal/telemetry"
	"llmsaas/pkg/database"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	cache := caching.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		// Telemetry events degrade to metrics-only; the service still runs.
		logger.Warn("redis unreachable, telemetry event buffer disabled", zap.Error(err))
		cache = nil
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	sink := telemetry.NewInferenceSink(registry, cache, logger)
	poolStats := telemetry.NewPoolStats(registry)

	gateway := llm.NewGateway(cfg.LLM, sink, logger)

	tenantRepo := repositories.NewTenantRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	messageRepo := repositories.NewMessageRepo(pool)

	authSvc, err := services.NewAuthService(cfg.Auth.SecretKey, cfg.Auth.Algorithm, cfg.Auth.AccessTokenTTL)
	if err != nil {
		logger.Fatal("failed to build auth service", zap.Error(err))
	}
	tenantSvc := services.NewTenantService(tenantRepo, logger)
	userSvc := services.NewUserService(userRepo, tenantRepo, logger)
	messageSvc := services.NewMessageService(messageRepo, gateway, logger)

	authHandlers := handlers.NewAuthHandlers(userSvc, authSvc)
	adminHandlers := handlers.NewAdminHandlers(userSvc)
	tenantHandlers := handlers.NewTenantHandlers(tenantSvc, userSvc)
	messageHandlers := handlers.NewMessageHandlers(messageSvc)
	healthHandlers := handlers.NewHealthHandlers(cfg.App.Name, cfg.App.Env)

	scheduler, err := background.NewJobScheduler(pool, poolStats, cache, logger)
	if err != nil {
		logger.Fatal("failed to build job scheduler", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	e := newEcho(cfg, logger)

	// Deadline for every non-streaming route. The request context carries it
	// into pool acquires and queries, so an exhausted pool fails the request
	// with a 503 instead of queuing callers indefinitely. The SSE route stays
	// unbounded: its lifetime is the client connection.
	reqTimeout := echoMiddleware.ContextTimeoutWithConfig(echoMiddleware.ContextTimeoutConfig{
		Timeout: cfg.App.RequestTimeout,
	})

	e.GET("/health", healthHandlers.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	e.POST("/create-tenant", tenantHandlers.CreateTenant, reqTimeout)
	e.POST("/register", authHandlers.Register, reqTimeout)
	e.POST("/login", authHandlers.Login, reqTimeout)

	// Timeout precedes Auth so the middleware's own user lookup is bounded too.
	authed := e.Group("", reqTimeout, middleware.Auth(userRepo, authSvc))
	authed.GET("/me", authHandlers.Me)
	authed.POST("/messages", messageHandlers.SendMessage)
	authed.GET("/messages", messageHandlers.ListMessages)

	stream := e.Group("", middleware.Auth(userRepo, authSvc))
	stream.GET("/messages/stream", messageHandlers.StreamMessage)

	admin := authed.Group("", middleware.RequireAdmin())
	admin.POST("/admin/users", adminHandlers.CreateUser)
	admin.GET("/tenants/:id/users", tenantHandlers.ListUsers)
	admin.DELETE("/tenants/:id", tenantHandlers.DeleteTenant)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		logger.Info("server starting",
			zap.String("app", cfg.App.Name),
			zap.String("env", cfg.App.Env),
			zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped unexpectedly", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func newEcho(cfg *config.Config, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: cfg.App.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		detail := any("Internal server error")
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			code = httpErr.Code
			detail = httpErr.Message
		} else {
			// Unhandled errors are logged with detail but returned opaque.
			logger.Error("unhandled error",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, map[string]any{"detail": detail})
	}

	return e
}
