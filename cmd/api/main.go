package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medreportai/companion/internal/adapters/cache"
	"github.com/medreportai/companion/internal/adapters/events"
	"github.com/medreportai/companion/internal/api/handlers"
	"github.com/medreportai/companion/internal/api/middleware"
	"github.com/medreportai/companion/internal/api/routes"
	"github.com/medreportai/companion/internal/application/services"
	"github.com/medreportai/companion/internal/domain/providers"
	"github.com/medreportai/companion/internal/infrastructure/clients/insight"
	"github.com/medreportai/companion/internal/infrastructure/clients/redis"
	"github.com/medreportai/companion/internal/infrastructure/identity"
	"github.com/medreportai/companion/internal/infrastructure/notifications"
	"github.com/medreportai/companion/internal/infrastructure/observability"
	"github.com/medreportai/companion/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	observability.InitLogger("medreport-companion", cfg.Server.Env)
	logger := observability.GetLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Redis is optional: without it the event bus runs in-process and
	// response caching is disabled.
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, using in-process event bus")
		eventBus = events.NewMemoryEventBus()
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		logger.Info().Msg("Redis client initialized")
	}
	defer eventBus.Close()

	exportSink := events.NewBusExportSink(eventBus)

	insightClient, err := insight.NewClient(&cfg.Insight)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize insight client")
	}

	var notifier providers.NotificationSender
	if emailSender, err := notifications.NewEmailJSSender(&cfg.Notifier); err != nil {
		logger.Warn().Err(err).Msg("notification service not configured, logging notifications instead")
		notifier = notifications.NewLogSender()
	} else {
		notifier = notifications.NewReliableSender(emailSender)
		logger.Info().Msg("EmailJS sender initialized")
	}

	identityProvider := identity.NewContextProvider(&cfg.Identity)

	// Core sessions and the orchestrator
	analysisService := services.NewAnalysisService(insightClient, eventBus, metrics, *logger)
	chatService := services.NewChatService(insightClient, metrics, *logger)
	bookingService := services.NewBookingService(
		identityProvider,
		notifier,
		exportSink,
		eventBus,
		analysisService,
		metrics,
		cfg.Notifier.DoctorEmail,
		*logger,
	)
	workflowService := services.NewWorkflowService(
		analysisService,
		chatService,
		bookingService,
		cfg.Workflow.AutoSubmitAnalysis,
		cfg.Workflow.DefaultLanguage,
		*logger,
	)

	// Handlers
	uploadHandler := handlers.NewUploadHandler(&cfg.Upload)
	workflowHandler := handlers.NewWorkflowHandler(workflowService)
	analysisHandler := handlers.NewAnalysisHandler(workflowService)
	chatHandler := handlers.NewChatHandler(workflowService)
	bookingHandler := handlers.NewBookingHandler(workflowService)
	streamHandler := handlers.NewStreamHandler(eventBus)

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
		logger.Info().Msg("cache middleware initialized")
	}

	router := routes.NewRouter(
		uploadHandler,
		workflowHandler,
		analysisHandler,
		chatHandler,
		bookingHandler,
		streamHandler,
		cacheMiddleware,
		metrics,
	)

	serverAddr := cfg.Server.ServerAddr()
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router.SetupRoutes(),
		ReadTimeout: 30 * time.Second,
		// No write timeout: analysis submissions and the event stream
		// hold the response open longer than any fixed deadline.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}

	logger.Info().Msg("server stopped")
}
