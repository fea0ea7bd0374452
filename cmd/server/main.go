package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/nutrisense/store-service/config"
	_ "github.com/nutrisense/store-service/docs"
	"github.com/nutrisense/store-service/internal/app"
	"github.com/nutrisense/store-service/internal/handlers"
	"github.com/nutrisense/store-service/internal/middleware"
	"github.com/nutrisense/store-service/internal/sweepers"
	"github.com/nutrisense/store-service/internal/telemetry"
)

// @title                       Store Service API
// @version                     1.0
// @description                 Store recommendation API: ranks nearby stores for a shopping list by price and travel distance.
// @BasePath                    /
// @securityDefinitions.apikey  InternalAPIKey
// @in                          header
// @name                        X-Internal-API-Key
func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Str("catalog_source", cfg.Catalog.Source).Msg("Starting store service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize recommendation stack")
	}
	defer a.Close()

	// Warm the catalog in the background; requests never wait for it.
	go func() {
		if err := a.Catalog.Refresh(ctx); err != nil {
			logger.Warn().Err(err).Msg("Initial catalog load failed, will retry on first request")
		}
	}()

	var catalogSweeper *sweepers.CatalogSweeper
	if cfg.Catalog.BackgroundRefresh {
		catalogSweeper = sweepers.NewCatalogSweeper(a.Catalog, logger, cfg.Catalog.TTL)
		go catalogSweeper.Start(ctx)
	}

	handlers.InitRecommender(a.Recommend)
	handlers.InitCatalog(a.Catalog)
	handlers.InitHealth(a.DatabaseCheck())

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	setupMiddleware(router, logger, cfg.CORS)

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api/stores")
	api.Use(middleware.RateLimitMiddleware(ctx, middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.Burst,
	}))
	{
		api.GET("/ping", handlers.Ping)
		api.POST("/recommend", handlers.RecommendStores)
	}

	internal := router.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware(cfg.Auth.InternalAPIKey))
	internal.Use(middleware.ServiceRateLimitMiddleware(50, 100))
	{
		internal.GET("/health", handlers.HealthCheck)

		cat := internal.Group("/catalog")
		{
			cat.GET("/health", handlers.CatalogHealth)
			cat.POST("/refresh", handlers.RefreshCatalog)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(router, "store-service"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")
	if catalogSweeper != nil {
		catalogSweeper.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to flush telemetry")
	}

	logger.Info().Msg("Server exited")
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "store-service").Logger()
	log.Logger = logger
	zerolog.DefaultContextLogger = &logger
	return &logger
}

func setupMiddleware(router *gin.Engine, logger *zerolog.Logger, corsCfg config.CORSConfig) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", middleware.RequestIDHeader)
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	if len(corsCfg.AllowedOrigins) == 0 || (len(corsCfg.AllowedOrigins) == 1 && corsCfg.AllowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = corsCfg.AllowedOrigins
	}

	router.Use(cors.New(corsConfig))
	router.Use(middleware.RequestID(logger))
	router.Use(middleware.AccessLog())
}
