package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"github.com/nutrisense/store-service/internal/metrics"
)

var tracer = otel.Tracer("github.com/nutrisense/store-service/internal/catalog")

// CacheConfig holds cache settings.
type CacheConfig struct {
	// TTL is the maximum snapshot age before the next EnsureFresh reloads it.
	TTL time.Duration

	// LoadTimeout bounds a single refresh, independent of the caller's context.
	LoadTimeout time.Duration

	// RetryBackoff is the quiet period after a failed refresh during which
	// EnsureFresh serves the live snapshot without contacting the source.
	RetryBackoff time.Duration
}

// DefaultCacheConfig returns production defaults.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:          60 * time.Second,
		LoadTimeout:  15 * time.Second,
		RetryBackoff: 10 * time.Second,
	}
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// Freshness describes the live snapshot.
type Freshness struct {
	Source    string
	Ready     bool
	LoadedAt  time.Time
	Age       time.Duration
	Stale     bool
	Stores    int
	Prices    int
	LastError string
}

// Cache holds the current catalog snapshot and refreshes it from a Source.
// Readers never block on a refresh and always see a complete snapshot.
type Cache struct {
	source Source
	config CacheConfig
	now    func() time.Time

	snapshot atomic.Pointer[Snapshot]
	sf       singleflight.Group

	errMu    sync.Mutex
	lastErr  error
	failedAt time.Time

	warmupGate *WarmupGate
	metrics    *metrics.Recorder
	logger     *zerolog.Logger
}

// NewCache creates a cache holding an empty snapshot. Nothing is fetched
// until the first EnsureFresh or Refresh.
func NewCache(source Source, config CacheConfig, m *metrics.Recorder, opts ...Option) *Cache {
	if config.TTL <= 0 {
		config.TTL = DefaultCacheConfig().TTL
	}
	if config.LoadTimeout <= 0 {
		config.LoadTimeout = DefaultCacheConfig().LoadTimeout
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = DefaultCacheConfig().RetryBackoff
	}

	logger := log.With().Str("component", "catalog_cache").Str("source", source.Name()).Logger()

	c := &Cache{
		source:     source,
		config:     config,
		now:        time.Now,
		warmupGate: NewWarmupGate(&logger),
		metrics:    m,
		logger:     &logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.snapshot.Store(EmptySnapshot())
	return c
}

// Current returns the live snapshot. Never nil.
func (c *Cache) Current() *Snapshot {
	return c.snapshot.Load()
}

// Stale reports whether the live snapshot is older than the TTL or was never loaded.
func (c *Cache) Stale() bool {
	loadedAt := c.Current().LoadedAt()
	return loadedAt.IsZero() || c.now().Sub(loadedAt) >= c.config.TTL
}

// EnsureFresh refreshes the snapshot when it is stale. A failed refresh is
// logged and the previous snapshot stays live.
//
// After a failure the source is left alone for RetryBackoff. Past that, a
// cache holding a loaded snapshot retries in the background and the caller
// gets the stale snapshot at once; only a cache that never loaded waits.
func (c *Cache) EnsureFresh(ctx context.Context) {
	if !c.Stale() {
		return
	}

	failedAt, failing := c.lastFailure()
	if failing && c.now().Sub(failedAt) < c.config.RetryBackoff {
		return
	}

	if failing && !c.Current().LoadedAt().IsZero() {
		go c.refreshAndLog(context.WithoutCancel(ctx))
		return
	}
	c.refreshAndLog(ctx)
}

func (c *Cache) refreshAndLog(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		c.logger.Error().Err(err).
			Time("loaded_at", c.Current().LoadedAt()).
			Msg("Catalog refresh failed, keeping previous snapshot")
	}
}

// Refresh fetches and publishes a new snapshot. Concurrent calls share one
// fetch. On error the live snapshot is left untouched.
func (c *Cache) Refresh(ctx context.Context) error {
	ch := c.sf.DoChan("catalog", func() (interface{}, error) {
		// A caller going away must not cancel the fetch the others wait on.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.LoadTimeout)
		defer cancel()
		return nil, c.load(loadCtx)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Cache) load(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "catalog.Cache.Refresh")
	defer span.End()
	defer c.warmupGate.Ready()

	start := time.Now()
	rows, err := c.source.Fetch(ctx)
	duration := time.Since(start)
	if err != nil {
		c.metrics.RecordCatalogRefresh(c.source.Name(), duration, false)
		c.setLastErr(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return err
	}

	snap, stats := Build(rows, c.now())
	stats.log(c.logger, c.source.Name())

	c.snapshot.Store(snap)
	c.setLastErr(nil)

	c.metrics.RecordCatalogRefresh(c.source.Name(), duration, true)
	c.metrics.RecordCatalogSnapshot(snap.StoreCount(), 0)
	span.SetAttributes(
		attribute.Int("catalog.stores", snap.StoreCount()),
		attribute.Int("catalog.prices", snap.PriceCount()),
	)

	c.logger.Info().
		Int("stores", snap.StoreCount()).
		Int("prices", snap.PriceCount()).
		Int("dropped_rows", stats.Dropped()).
		Dur("duration", duration).
		Msg("Loaded catalog snapshot")

	return nil
}

// Freshness reports the state of the live snapshot.
func (c *Cache) Freshness() Freshness {
	snap := c.Current()
	f := Freshness{
		Source:   c.source.Name(),
		Ready:    c.warmupGate.IsReady(),
		LoadedAt: snap.LoadedAt(),
		Stale:    c.Stale(),
		Stores:   snap.StoreCount(),
		Prices:   snap.PriceCount(),
	}
	if !f.LoadedAt.IsZero() {
		f.Age = c.now().Sub(f.LoadedAt)
		c.metrics.RecordCatalogSnapshot(f.Stores, f.Age)
	}

	c.errMu.Lock()
	if c.lastErr != nil {
		f.LastError = c.lastErr.Error()
	}
	c.errMu.Unlock()

	return f
}

// WaitReady blocks until the first load has been attempted or ctx is done.
func (c *Cache) WaitReady(ctx context.Context) bool {
	return c.warmupGate.Wait(ctx)
}

func (c *Cache) setLastErr(err error) {
	c.errMu.Lock()
	c.lastErr = err
	c.failedAt = time.Time{}
	if err != nil {
		c.failedAt = c.now()
	}
	c.errMu.Unlock()
}

// lastFailure returns when the most recent refresh failed, and false if it
// succeeded or none has run.
func (c *Cache) lastFailure() (time.Time, bool) {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.failedAt, c.lastErr != nil
}
