package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Catalog  string `json:"catalog"`
}

// DatabaseCheck reports whether the catalog database is reachable.
type DatabaseCheck func(ctx context.Context) error

var databaseCheck DatabaseCheck

// InitHealth sets the database check. A nil check reports the database as
// not configured, which is the case for the rest and xlsx catalog sources.
func InitHealth(check DatabaseCheck) {
	databaseCheck = check
}

// HealthCheck godoc
// @Summary      Service health
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /health [get]
func HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Catalog: "not configured",
	}

	if catalogState != nil {
		f := catalogState.Freshness()
		switch {
		case !f.Ready:
			response.Catalog = "warming"
		case f.Stale:
			response.Catalog = "stale"
		default:
			response.Catalog = "fresh"
		}
	}

	// Check database connection
	if databaseCheck != nil {
		if err := databaseCheck(c.Request.Context()); err != nil {
			response.Status = "degraded"
			response.Database = "disconnected"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response.Database = "connected"
	} else {
		response.Database = "not configured"
	}

	c.JSON(http.StatusOK, response)
}
