package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nutrisense/store-service/internal/catalog"
)

// ============================================================================
// Internal Catalog Endpoints
// ============================================================================

// CatalogState exposes the catalog cache to the internal endpoints.
type CatalogState interface {
	Freshness() catalog.Freshness
	Refresh(ctx context.Context) error
}

var catalogState CatalogState

// InitCatalog sets the catalog cache used by the catalog and health endpoints.
func InitCatalog(state CatalogState) {
	catalogState = state
}

// CatalogHealthResponse describes the live catalog snapshot.
type CatalogHealthResponse struct {
	Source     string     `json:"source"`
	Ready      bool       `json:"ready"`
	Stale      bool       `json:"stale"`
	LoadedAt   *time.Time `json:"loaded_at"`
	AgeSeconds float64    `json:"age_seconds"`
	Stores     int        `json:"stores"`
	Prices     int        `json:"prices"`
	LastError  string     `json:"last_error,omitempty"`
}

func toCatalogHealthResponse(f catalog.Freshness) *CatalogHealthResponse {
	resp := &CatalogHealthResponse{
		Source:     f.Source,
		Ready:      f.Ready,
		Stale:      f.Stale,
		AgeSeconds: f.Age.Seconds(),
		Stores:     f.Stores,
		Prices:     f.Prices,
		LastError:  f.LastError,
	}
	if !f.LoadedAt.IsZero() {
		loaded := f.LoadedAt.UTC()
		resp.LoadedAt = &loaded
	}
	return resp
}

// CatalogHealth godoc
// @Summary      Catalog snapshot state
// @Tags         catalog
// @Produce      json
// @Security     InternalAPIKey
// @Success      200  {object}  CatalogHealthResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /internal/catalog/health [get]
func CatalogHealth(c *gin.Context) {
	if catalogState == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Catalog not initialized"})
		return
	}
	c.JSON(http.StatusOK, toCatalogHealthResponse(catalogState.Freshness()))
}

// RefreshCatalog godoc
// @Summary      Reload the catalog now
// @Description  Fetches a new snapshot regardless of its age. On failure the previous snapshot stays live.
// @Tags         catalog
// @Produce      json
// @Security     InternalAPIKey
// @Success      200  {object}  CatalogHealthResponse
// @Failure      502  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Failure      504  {object}  ErrorResponse
// @Router       /internal/catalog/refresh [post]
func RefreshCatalog(c *gin.Context) {
	if catalogState == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Catalog not initialized"})
		return
	}

	if err := catalogState.Refresh(c.Request.Context()); err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("Manual catalog refresh failed")
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, toCatalogHealthResponse(catalogState.Freshness()))
}
