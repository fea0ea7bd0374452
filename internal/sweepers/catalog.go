package sweepers

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// CatalogRefresher is the part of the catalog cache the sweeper drives.
type CatalogRefresher interface {
	Stale() bool
	Refresh(ctx context.Context) error
}

// CatalogSweeper periodically reloads a stale catalog so requests rarely
// pay for the refresh themselves.
type CatalogSweeper struct {
	catalog  CatalogRefresher
	logger   *zerolog.Logger
	interval time.Duration
	stopChan chan struct{}
}

// NewCatalogSweeper creates a new sweeper for catalog freshness
func NewCatalogSweeper(catalog CatalogRefresher, logger *zerolog.Logger, interval time.Duration) *CatalogSweeper {
	return &CatalogSweeper{
		catalog:  catalog,
		logger:   logger,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start runs the periodic sweep until ctx is done or Stop is called.
func (s *CatalogSweeper) Start(ctx context.Context) {
	s.logger.Info().
		Dur("interval", s.interval).
		Msg("Starting catalog sweeper")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Catalog sweeper stopping (context cancelled)")
			return
		case <-s.stopChan:
			s.logger.Info().Msg("Catalog sweeper stopping (stop signal)")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Stop signals the sweeper to stop
func (s *CatalogSweeper) Stop() {
	close(s.stopChan)
}

// Sweep refreshes the catalog if it is stale. It reports whether a refresh
// was attempted. Failures are logged and the previous snapshot stays live.
func (s *CatalogSweeper) Sweep(ctx context.Context) bool {
	if !s.catalog.Stale() {
		return false
	}
	s.logger.Debug().Msg("Catalog stale, refreshing")
	if err := s.catalog.Refresh(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Background catalog refresh failed")
	}
	return true
}
