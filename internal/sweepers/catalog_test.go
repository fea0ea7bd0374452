package sweepers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakeCatalog struct {
	stale     atomic.Bool
	refreshes atomic.Int32
	err       error
}

func (f *fakeCatalog) Stale() bool { return f.stale.Load() }

func (f *fakeCatalog) Refresh(context.Context) error {
	f.refreshes.Add(1)
	f.stale.Store(false)
	return f.err
}

func TestSweepRefreshesOnlyWhenStale(t *testing.T) {
	logger := zerolog.Nop()
	cat := &fakeCatalog{}
	s := NewCatalogSweeper(cat, &logger, time.Minute)

	assert.False(t, s.Sweep(context.Background()))
	assert.Equal(t, int32(0), cat.refreshes.Load())

	cat.stale.Store(true)
	assert.True(t, s.Sweep(context.Background()))
	assert.Equal(t, int32(1), cat.refreshes.Load())
}

func TestSweepSwallowsRefreshError(t *testing.T) {
	logger := zerolog.Nop()
	cat := &fakeCatalog{err: errors.New("source down")}
	cat.stale.Store(true)

	assert.True(t, NewCatalogSweeper(cat, &logger, time.Minute).Sweep(context.Background()))
}

func TestStartRunsUntilStopped(t *testing.T) {
	logger := zerolog.Nop()
	cat := &fakeCatalog{}
	cat.stale.Store(true)
	s := NewCatalogSweeper(cat, &logger, 5*time.Millisecond)

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool { return cat.refreshes.Load() >= 1 }, time.Second, 5*time.Millisecond)
	s.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestStartStopsOnContextCancel(t *testing.T) {
	logger := zerolog.Nop()
	ctx, cancel := context.WithCancel(context.Background())
	s := NewCatalogSweeper(&fakeCatalog{}, &logger, time.Hour)

	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
