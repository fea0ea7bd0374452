package distance

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nutrisense/store-service/internal/geo"
	"github.com/nutrisense/store-service/internal/metrics"
)

var tracer = otel.Tracer("github.com/nutrisense/store-service/internal/distance")

// Router measures travel distance between two points.
type Router interface {
	Distance(ctx context.Context, origin, destination geo.Coordinate) (float64, error)
}

// Distance is a resolved distance. Measured is false when the value is a
// haversine estimate; Reason then names the routing failure.
type Distance struct {
	Km       float64
	Measured bool
	Reason   string
}

// ResolverConfig holds per-call and breaker settings.
type ResolverConfig struct {
	// Timeout bounds each routing call.
	Timeout time.Duration

	// BreakerFailures is the number of consecutive service failures that opens the breaker.
	BreakerFailures uint32

	// BreakerTimeout is how long the breaker stays open before probing again.
	BreakerTimeout time.Duration
}

// DefaultResolverConfig returns production defaults.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		Timeout:         5 * time.Second,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

// Resolver resolves distances through a Router and falls back to the
// great-circle distance on any failure. Safe for concurrent use.
type Resolver struct {
	router  Router
	config  ResolverConfig
	breaker *gobreaker.CircuitBreaker[float64]
	metrics *metrics.Recorder
	logger  zerolog.Logger
}

// NewResolver creates a resolver around router.
func NewResolver(router Router, config ResolverConfig, m *metrics.Recorder) *Resolver {
	if config.Timeout <= 0 {
		config.Timeout = DefaultResolverConfig().Timeout
	}
	if config.BreakerFailures == 0 {
		config.BreakerFailures = DefaultResolverConfig().BreakerFailures
	}

	r := &Resolver{
		router:  router,
		config:  config,
		metrics: m,
		logger:  log.With().Str("component", "distance_resolver").Logger(),
	}

	r.breaker = gobreaker.NewCircuitBreaker[float64](gobreaker.Settings{
		Name:        "routing",
		MaxRequests: 1,
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var routingErr *RoutingError
			if errors.As(err, &routingErr) {
				return !routingErr.countsAgainstService()
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Routing circuit breaker state change")
			r.metrics.RecordBreakerState(int(to))
		},
	})

	return r
}

// Measure asks the router for a distance. The error is always a *RoutingError.
func (r *Resolver) Measure(ctx context.Context, origin, destination geo.Coordinate) (float64, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	km, err := r.breaker.Execute(func() (float64, error) {
		return r.router.Distance(callCtx, origin, destination)
	})
	if err == nil {
		return km, nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return 0, &RoutingError{Reason: ReasonCircuitOpen, Err: err}
	}

	var routingErr *RoutingError
	if errors.As(err, &routingErr) {
		return 0, routingErr
	}
	return 0, &RoutingError{Reason: ReasonTransport, Err: err}
}

// Resolve never fails: it returns the measured distance, or the haversine
// estimate when measuring is not possible.
func (r *Resolver) Resolve(ctx context.Context, origin, destination geo.Coordinate) Distance {
	ctx, span := tracer.Start(ctx, "distance.Resolve")
	defer span.End()

	start := time.Now()
	km, err := r.Measure(ctx, origin, destination)
	if err == nil {
		r.metrics.RecordRouting(time.Since(start))
		span.SetAttributes(attribute.Bool("distance.measured", true))
		return Distance{Km: km, Measured: true}
	}

	reason := ReasonTransport
	var routingErr *RoutingError
	if errors.As(err, &routingErr) {
		reason = routingErr.Reason
	}

	event := r.logger.Warn()
	if reason == ReasonNoCredential {
		event = r.logger.Debug()
	}
	event.Err(err).
		Str("reason", reason).
		Str("origin", origin.String()).
		Str("destination", destination.String()).
		Msg("Routing failed, using haversine distance")

	r.metrics.RecordFallback(reason)
	span.SetAttributes(
		attribute.Bool("distance.measured", false),
		attribute.String("distance.fallback_reason", reason),
	)

	return Distance{Km: geo.HaversineKm(origin, destination), Reason: reason}
}

// BreakerState returns the routing breaker state name.
func (r *Resolver) BreakerState() string {
	return r.breaker.State().String()
}
