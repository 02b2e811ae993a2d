package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/scoutx/analytics-service/internal/api"
	"github.com/scoutx/analytics-service/internal/api/handlers"
	"github.com/scoutx/analytics-service/internal/services"
	"github.com/scoutx/analytics-service/internal/similarity"
	"github.com/scoutx/analytics-service/internal/valuation"
	"github.com/scoutx/analytics-service/pkg/config"
	"github.com/scoutx/analytics-service/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Initialize structured logger with service context
	structuredLogger := logger.InitLogger("info", cfg.IsDevelopment())
	logger.WithService("analytics-service").WithFields(logrus.Fields{
		"version":     "1.0.0",
		"environment": cfg.Env,
		"port":        cfg.Port,
	}).Info("Starting Football Analytics Service")

	// Setup Gin mode
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to Redis
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.WithService("analytics-service").Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.WithService("analytics-service").Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize services
	cacheService := services.NewCacheService(redisClient, structuredLogger)
	circuitBreakerService := services.NewCircuitBreakerService(
		cfg.CircuitBreakerThreshold,
		cfg.ExternalAPITimeout,
		structuredLogger,
	)

	// Analytics core: similarity engine over the player snapshot,
	// valuation store over the predictions snapshot. Both build
	// lazily on first query.
	engine := similarity.NewEngine(cfg.DatasetPaths, structuredLogger)
	valuationStore := valuation.NewStore(cfg.PredictionsPaths, structuredLogger)

	// External collaborators
	geminiClient := services.NewGeminiClient(
		cfg.GeminiAPIKey,
		cfg.GeminiModel,
		60*time.Second,
		cacheService,
		circuitBreakerService,
		structuredLogger,
	)
	if !geminiClient.Enabled() {
		logger.WithService("analytics-service").Warn("GEMINI_API_KEY not set, AI reports and chat generation disabled")
	}
	liveDataClient := services.NewLiveDataClient(
		cfg.APIFootballKey,
		cfg.APIFootballBase,
		cfg.ExternalAPITimeout,
		cacheService,
		circuitBreakerService,
		structuredLogger,
	)
	if !liveDataClient.Enabled() {
		logger.WithService("analytics-service").Warn("API_FOOTBALL_KEY not set, live data endpoints disabled")
	}

	chatService := services.NewChatService(
		valuationStore,
		geminiClient,
		cacheService,
		cfg.ChatHistoryTTL,
		structuredLogger,
	)

	// Keep snapshots fresh without restarts
	refresher := services.NewRefresherService(
		cfg.RefreshSchedule,
		cfg.WatchDataset,
		append(append([]string{}, cfg.DatasetPaths...), cfg.PredictionsPaths...),
		structuredLogger,
		engine,
		valuationStore,
	)
	if err := refresher.Start(); err != nil {
		logger.WithService("analytics-service").Fatalf("Failed to start refresher: %v", err)
	}
	defer refresher.Stop()

	// Initialize router
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), api.CORS(cfg.CorsOrigins), api.Metrics())

	// Initialize handlers
	playerHandler := handlers.NewPlayerHandler(engine, geminiClient, structuredLogger)
	undervaluedHandler := handlers.NewUndervaluedHandler(valuationStore, structuredLogger)
	chatHandler := handlers.NewChatHandler(chatService, structuredLogger)
	liveHandler := handlers.NewLiveHandler(liveDataClient, structuredLogger)
	healthHandler := handlers.NewHealthHandler(redisClient, engine, structuredLogger)
	adminHandler := handlers.NewAdminHandler(structuredLogger, engine, valuationStore)

	// Setup API routes
	apiV1 := router.Group("/api/v1")
	{
		// Player search, detail and similarity endpoints
		apiV1.GET("/players/search", playerHandler.SearchPlayers)
		apiV1.GET("/players/:id", playerHandler.GetPlayer)
		apiV1.GET("/players/:id/similar", playerHandler.GetSimilarPlayers)
		apiV1.GET("/players/:id/radar", playerHandler.GetPlayerRadar)
		apiV1.POST("/players/compare", playerHandler.ComparePlayers)
		apiV1.GET("/meta", playerHandler.GetMeta)
		apiV1.GET("/features", playerHandler.GetFeatureDescriptions)

		// Market valuation endpoints
		apiV1.POST("/undervalued", undervaluedHandler.GetUndervalued)
		apiV1.GET("/undervalued/filters", undervaluedHandler.GetFilterOptions)

		// Conversational assistant
		apiV1.POST("/chat", chatHandler.Chat)
		apiV1.POST("/chat/reset", chatHandler.Reset)

		// Live data proxy
		apiV1.GET("/live/tv-countries", liveHandler.GetTVCountries)
		apiV1.GET("/live/player-summary", liveHandler.GetPlayerLiveSummary)

		// Operator endpoints
		apiV1.POST("/admin/rebuild", adminHandler.Rebuild)
	}

	// Health check endpoints (support both GET and HEAD)
	router.GET("/health", healthHandler.GetHealth)
	router.HEAD("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)
	router.HEAD("/ready", healthHandler.GetReady)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.WithService("analytics-service").WithField("port", cfg.Port).Info("Analytics service started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithService("analytics-service").Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.WithService("analytics-service").Info("Shutting down analytics service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithService("analytics-service").Fatalf("Analytics service forced to shutdown: %v", err)
	}

	logger.WithService("analytics-service").Info("Analytics service exited")
}
