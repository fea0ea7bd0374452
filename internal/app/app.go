// Package app builds the recommendation stack from configuration. It is
// shared by the server and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/nutrisense/store-service/config"
	"github.com/nutrisense/store-service/internal/catalog"
	"github.com/nutrisense/store-service/internal/database"
	"github.com/nutrisense/store-service/internal/distance"
	"github.com/nutrisense/store-service/internal/metrics"
	"github.com/nutrisense/store-service/internal/pricing"
	"github.com/nutrisense/store-service/internal/ranking"
	"github.com/nutrisense/store-service/internal/recommend"
)

// App holds the wired components.
type App struct {
	Pool      *pgxpool.Pool // nil unless the catalog source is postgres
	Catalog   *catalog.Cache
	Resolver  *distance.Resolver
	Pricing   *pricing.Engine
	Recommend *recommend.Service
	Metrics   *metrics.Recorder
}

// New wires the stack. Nothing is fetched from the catalog source yet.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := log.With().Str("component", "app").Logger()
	m := metrics.NewRecorder()

	a := &App{Metrics: m}

	source, err := a.catalogSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("source", source.Name()).Msg("Catalog source configured")

	a.Catalog = catalog.NewCache(source, catalog.CacheConfig{
		TTL:          cfg.Catalog.TTL,
		LoadTimeout:  cfg.Catalog.LoadTimeout,
		RetryBackoff: cfg.Catalog.RetryBackoff,
	}, m)

	router := distance.NewMatrixClient(distance.MatrixConfig{
		BaseURL:           cfg.Routing.BaseURL,
		APIKey:            cfg.Routing.APIKey,
		Mode:              cfg.Routing.Mode,
		Timeout:           cfg.Routing.Timeout,
		RequestsPerSecond: cfg.Routing.RequestsPerSecond,
	})
	if cfg.Routing.APIKey == "" {
		logger.Warn().Msg("Routing API key not set, distances will be estimated")
	}
	a.Resolver = distance.NewResolver(router, distance.ResolverConfig{
		Timeout:         cfg.Routing.Timeout,
		BreakerFailures: cfg.Routing.BreakerFailures,
		BreakerTimeout:  cfg.Routing.BreakerTimeout,
	}, m)

	a.Pricing = pricing.NewEngine(decimal.NewFromFloat(cfg.Scoring.MissingItemPenalty))

	a.Recommend = recommend.NewService(a.Catalog, a.Resolver, a.Pricing, recommend.Config{
		Weights: ranking.Weights{
			Price:    cfg.Scoring.PriceWeight,
			Distance: cfg.Scoring.DistanceWeight,
		},
		TopK:                cfg.Scoring.TopK,
		DistanceConcurrency: cfg.Recommend.DistanceConcurrency,
	}, m)

	return a, nil
}

func (a *App) catalogSource(ctx context.Context, cfg *config.Config) (catalog.Source, error) {
	switch cfg.Catalog.Source {
	case config.SourcePostgres:
		pool, err := database.Open(ctx, database.Config{
			URL:             cfg.Database.URL,
			MaxConnections:  cfg.Database.MaxConnections,
			MinConnections:  cfg.Database.MinConnections,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to catalog database: %w", err)
		}
		a.Pool = pool
		return catalog.NewPostgresSource(pool), nil
	case config.SourceREST:
		return catalog.NewRESTSource(catalog.RESTConfig{
			BaseURL: cfg.Catalog.RestURL,
			APIKey:  cfg.Catalog.RestKey,
			Timeout: cfg.Catalog.LoadTimeout,
		}), nil
	case config.SourceXLSX:
		return catalog.NewXLSXSource(cfg.Catalog.XLSXPath), nil
	default:
		return nil, config.ErrInvalidConfig{Field: "catalog.source", Reason: fmt.Sprintf("unknown source %q", cfg.Catalog.Source)}
	}
}

// DatabaseCheck returns a health check for the catalog database, or nil
// when the source does not use one.
func (a *App) DatabaseCheck() func(ctx context.Context) error {
	if a.Pool == nil {
		return nil
	}
	return func(ctx context.Context) error {
		return database.Status(ctx, a.Pool)
	}
}

// Close releases the database pool, if any.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}
