// Package recommend composes the catalog, pricing, distance and ranking
// packages into one recommendation per request.
package recommend

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/nutrisense/store-service/internal/catalog"
	"github.com/nutrisense/store-service/internal/distance"
	"github.com/nutrisense/store-service/internal/geo"
	"github.com/nutrisense/store-service/internal/metrics"
	"github.com/nutrisense/store-service/internal/pricing"
	"github.com/nutrisense/store-service/internal/ranking"
)

var tracer = otel.Tracer("github.com/nutrisense/store-service/internal/recommend")

// Catalog provides the current snapshot.
type Catalog interface {
	EnsureFresh(ctx context.Context)
	Current() *catalog.Snapshot
}

// DistanceResolver resolves a travel distance and never fails.
type DistanceResolver interface {
	Resolve(ctx context.Context, origin, destination geo.Coordinate) distance.Distance
}

// Config holds the recommendation settings.
type Config struct {
	Weights ranking.Weights
	TopK    int

	// DistanceConcurrency caps in-flight distance resolutions per request.
	DistanceConcurrency int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Weights:             ranking.DefaultWeights(),
		TopK:                ranking.DefaultTopK,
		DistanceConcurrency: 8,
	}
}

// Request is a recommendation request.
type Request struct {
	Location geo.Coordinate
	Items    []string

	// Optional, used for the walking estimates only.
	Gender   string
	WeightKg float64
}

// StoreResult is one ranked store with rounded presentation values.
type StoreResult struct {
	Store            catalog.Store
	TotalPrice       float64
	DistanceKm       float64
	DistanceMeasured bool
	NormPrice        float64
	NormDist         float64
	Score            float64
	MatchedItems     int
	MissingItems     int
	WalkingSteps     int
	WalkingCalories  int
}

// Result is the ranked display list and the three personas. Personas are nil
// when there were no stores.
type Result struct {
	Stores      []StoreResult
	BestOverall *StoreResult
	Cheapest    *StoreResult
	Closest     *StoreResult
}

// Service produces recommendations. Safe for concurrent use.
type Service struct {
	catalog  Catalog
	resolver DistanceResolver
	pricing  *pricing.Engine
	config   Config
	metrics  *metrics.Recorder
	logger   zerolog.Logger
}

// NewService creates a recommendation service.
func NewService(cat Catalog, resolver DistanceResolver, engine *pricing.Engine, config Config, m *metrics.Recorder) *Service {
	if config.TopK <= 0 {
		config.TopK = ranking.DefaultTopK
	}
	if config.DistanceConcurrency <= 0 {
		config.DistanceConcurrency = DefaultConfig().DistanceConcurrency
	}
	return &Service{
		catalog:  cat,
		resolver: resolver,
		pricing:  engine,
		config:   config,
		metrics:  m,
		logger:   log.With().Str("component", "recommend").Logger(),
	}
}

// Recommend ranks every store in the current catalog for the request. It
// never fails: an empty or unavailable catalog yields an empty result, and
// routing failures fall back to estimated distances per store.
func (s *Service) Recommend(ctx context.Context, req Request) Result {
	ctx, span := tracer.Start(ctx, "recommend.Service.Recommend")
	defer span.End()
	start := time.Now()

	s.catalog.EnsureFresh(ctx)
	snap := s.catalog.Current()
	stores := snap.Stores()
	basket := pricing.NewBasket(req.Items)

	span.SetAttributes(
		attribute.Int("recommend.stores", len(stores)),
		attribute.Int("recommend.items", basket.Len()),
	)

	if len(stores) == 0 {
		s.logger.Warn().Msg("Catalog is empty, returning no recommendations")
		s.metrics.RecordRecommendation(time.Since(start), 0, basket.Len())
		return Result{}
	}

	quotes := make([]pricing.Quote, len(stores))
	for i, st := range stores {
		quotes[i] = s.pricing.Quote(snap.Inventory(st.ID), basket)
	}

	// Each store writes only its own slot, and Resolve never returns an error,
	// so one slow or failing store cannot affect the others.
	distances := make([]distance.Distance, len(stores))
	var g errgroup.Group
	g.SetLimit(s.config.DistanceConcurrency)
	for i, st := range stores {
		g.Go(func() error {
			distances[i] = s.resolver.Resolve(ctx, req.Location, st.Location)
			return nil
		})
	}
	_ = g.Wait()

	candidates := make([]ranking.Candidate, len(stores))
	measured := 0
	for i, st := range stores {
		candidates[i] = ranking.Candidate{
			Store:      st,
			Price:      quotes[i].Total,
			DistanceKm: distances[i].Km,
		}
		if distances[i].Measured {
			measured++
		}
	}

	ranked := ranking.Rank(candidates, s.config.Weights, s.config.TopK)

	toResult := func(sc *ranking.Scored) StoreResult {
		km := sc.RoundedDistance()
		q := quotes[sc.Index]
		return StoreResult{
			Store:            sc.Store,
			TotalPrice:       sc.RoundedPrice(),
			DistanceKm:       km,
			DistanceMeasured: distances[sc.Index].Measured,
			NormPrice:        sc.RoundedNormPrice(),
			NormDist:         sc.RoundedNormDist(),
			Score:            sc.RoundedScore(),
			MatchedItems:     q.Matched,
			MissingItems:     q.Missing,
			WalkingSteps:     WalkingSteps(sc.DistanceKm, req.Gender),
			WalkingCalories:  WalkingCalories(sc.DistanceKm, req.WeightKg),
		}
	}
	persona := func(sc *ranking.Scored) *StoreResult {
		r := toResult(sc)
		return &r
	}

	res := Result{
		Stores:      make([]StoreResult, len(ranked.Top)),
		BestOverall: persona(ranked.BestOverall),
		Cheapest:    persona(ranked.Cheapest),
		Closest:     persona(ranked.Closest),
	}
	for i := range ranked.Top {
		res.Stores[i] = toResult(&ranked.Top[i])
	}

	duration := time.Since(start)
	s.metrics.RecordRecommendation(duration, len(candidates), basket.Len())
	s.logger.Debug().
		Int("stores", len(candidates)).
		Int("measured_distances", measured).
		Int("items", basket.Len()).
		Str("best_overall", res.BestOverall.Store.ID).
		Dur("duration", duration).
		Msg("Ranked stores")

	return res
}
