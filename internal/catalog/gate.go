package catalog

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// WarmupGate records whether the first catalog load has been attempted.
type WarmupGate struct {
	mu       sync.RWMutex
	ready    bool
	warmedCh chan struct{}
	logger   *zerolog.Logger
}

// NewWarmupGate creates a closed gate.
func NewWarmupGate(logger *zerolog.Logger) *WarmupGate {
	if logger == nil {
		nopLogger := zerolog.Nop()
		logger = &nopLogger
	}

	return &WarmupGate{
		warmedCh: make(chan struct{}),
		logger:   logger,
	}
}

// Wait blocks until the gate opens or ctx is done.
// Returns false if the context finished first.
func (wg *WarmupGate) Wait(ctx context.Context) bool {
	wg.mu.RLock()
	ready, ch := wg.ready, wg.warmedCh
	wg.mu.RUnlock()

	if ready {
		return true
	}

	select {
	case <-ch:
		return true
	case <-ctx.Done():
		wg.logger.Debug().Msg("Warmup gate: context done while waiting for first catalog load")
		return false
	}
}

// Ready opens the gate. Calling it again has no effect.
func (wg *WarmupGate) Ready() {
	wg.mu.Lock()
	defer wg.mu.Unlock()

	if !wg.ready {
		wg.ready = true
		close(wg.warmedCh)
		wg.logger.Info().Msg("Warmup gate: first catalog load attempted")
	}
}

// IsReady reports whether the gate is open without blocking.
func (wg *WarmupGate) IsReady() bool {
	wg.mu.RLock()
	defer wg.mu.RUnlock()
	return wg.ready
}
