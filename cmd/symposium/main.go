// Command symposium runs the debate service: one question, several LLM
// providers answering in parallel rounds, one moderator verdict, all
// streamed live over SSE or WebSocket.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/symposium-ai/symposium/internal/config"
	"github.com/symposium-ai/symposium/internal/debate"
	"github.com/symposium-ai/symposium/internal/handlers"
	"github.com/symposium-ai/symposium/internal/history"
	"github.com/symposium-ai/symposium/internal/llm"
	"github.com/symposium-ai/symposium/internal/middleware"
	"github.com/symposium-ai/symposium/internal/observability/metrics"
)

const version = "1.0.0"

func main() {
	// Missing .env is fine; the environment may be set another way.
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	registry := llm.NewRegistry(&cfg.LLM, logger)
	if len(registry.Available()) == 0 {
		logger.Warn("No LLM providers configured; debate requests will be rejected")
	} else {
		logger.WithField("providers", registry.Available()).Info("Providers configured")
	}

	limiter := llm.NewCallLimiter(cfg.LLM.MaxConcurrentCalls)
	collector := metrics.NewCollector()
	orchestrator := debate.NewOrchestrator(registry, limiter, collector, logger, cfg.Debate)

	var store *history.Store
	if cfg.History.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err = history.NewStore(ctx, cfg.History.DBPath, logger)
		cancel()
		if err != nil {
			logger.WithError(err).Fatal("Failed to open history store")
		}
		defer store.Close()
	}

	gin.SetMode(serverMode(cfg.Server.Mode))
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	if cfg.Server.EnableCORS {
		router.Use(middleware.CORS())
	}

	health := handlers.NewHealthHandler(version)
	router.GET("/health", health.HandleHealth)

	if cfg.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(collector.Handler()))
	}

	debateHandler := handlers.NewDebateHandler(orchestrator, registry, store, collector, logger)
	v1 := router.Group("/v1")
	v1.Use(middleware.NewRateLimiter(30, time.Minute).Middleware())
	debateHandler.RegisterRoutes(v1)

	srv := &http.Server{
		Addr:        cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:     router,
		ReadTimeout: cfg.Server.ReadTimeout,
		// WriteTimeout stays zero so long-lived streams are not cut off.
	}

	go func() {
		logger.WithField("addr", srv.Addr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
	logger.Info("Server stopped")
}

func serverMode(mode string) string {
	if mode == "debug" {
		return gin.DebugMode
	}
	return gin.ReleaseMode
}
