package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nutrisense/store-service/internal/geo"
	"github.com/nutrisense/store-service/internal/recommend"
)

// ============================================================================
// Store Recommendation Endpoints
// ============================================================================

// StockStatusInStock is reported for every listed store.
const StockStatusInStock = "In Stock"

// Distance sources reported per store.
const (
	DistanceSourceRouting  = "routing"
	DistanceSourceEstimate = "estimate"
)

// UserLocation is the shopper's position.
type UserLocation struct {
	Lat *float64 `json:"lat" binding:"required,min=-90,max=90" jsonschema:"minimum=-90,maximum=90"`
	Lng *float64 `json:"lng" binding:"required,min=-180,max=180" jsonschema:"minimum=-180,maximum=180"`
}

// RecommendRequest represents the store recommendation request
type RecommendRequest struct {
	UserLocation *UserLocation `json:"user_location" binding:"required"`
	Items        []string      `json:"items" binding:"required,max=100,dive,max=200" jsonschema:"maxItems=100"`
	Gender       string        `json:"gender,omitempty" binding:"max=32"`
	WeightKg     float64       `json:"weight_kg,omitempty" binding:"omitempty,gt=0,lte=500"`
}

// StoreRecommendation is one ranked store.
type StoreRecommendation struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Chain           string  `json:"chain"`
	Address         string  `json:"address"`
	Lat             float64 `json:"lat"`
	Lng             float64 `json:"lng"`
	TotalPrice      float64 `json:"total_price"`
	DistanceKm      float64 `json:"distance_km"`
	DistanceSource  string  `json:"distance_source" jsonschema:"enum=routing,enum=estimate"`
	NormPrice       float64 `json:"norm_price"`
	NormDist        float64 `json:"norm_dist"`
	Score           float64 `json:"score"`
	MatchedItems    int     `json:"matched_items"`
	MissingItems    int     `json:"missing_items"`
	WalkingSteps    int     `json:"walking_steps"`
	WalkingCalories int     `json:"walking_calories"`
	StockStatus     string  `json:"stock_status"`
}

// RecommendResponse carries the top stores and the three personas. Personas
// are null when no store could be ranked.
type RecommendResponse struct {
	Stores      []*StoreRecommendation `json:"stores"`
	BestOverall *StoreRecommendation   `json:"best_overall"`
	Cheapest    *StoreRecommendation   `json:"cheapest"`
	Closest     *StoreRecommendation   `json:"closest"`
}

// Recommender produces recommendations.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) recommend.Result
}

// Global recommender instance (initialized by the application)
var recommender Recommender

// InitRecommender sets the recommender used by the recommendation endpoint.
// This should be called during application startup
func InitRecommender(r Recommender) {
	recommender = r
}

// Ping godoc
// @Summary      Liveness of the store API
// @Tags         stores
// @Produce      plain
// @Success      200  {string}  string  "ok"
// @Router       /api/stores/ping [get]
func Ping(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// RecommendStores godoc
// @Summary      Recommend stores for a shopping list
// @Description  Prices the list at every store, resolves travel distance and ranks stores by a weighted price/distance score.
// @Tags         stores
// @Accept       json
// @Produce      json
// @Param        request  body      RecommendRequest  true  "Location and items"
// @Success      200      {object}  RecommendResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      503      {object}  ErrorResponse
// @Router       /api/stores/recommend [post]
func RecommendStores(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if recommender == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Recommender not initialized"})
		return
	}

	result := recommender.Recommend(c.Request.Context(), recommend.Request{
		Location: geo.Coordinate{Lat: *req.UserLocation.Lat, Lng: *req.UserLocation.Lng},
		Items:    req.Items,
		Gender:   req.Gender,
		WeightKg: req.WeightKg,
	})

	zerolog.Ctx(c.Request.Context()).Debug().
		Int("items", len(req.Items)).
		Int("stores", len(result.Stores)).
		Msg("Served recommendation")

	c.JSON(http.StatusOK, NewRecommendResponse(result))
}

// NewRecommendResponse converts a recommendation to its wire form.
func NewRecommendResponse(r recommend.Result) *RecommendResponse {
	resp := &RecommendResponse{
		Stores:      make([]*StoreRecommendation, len(r.Stores)),
		BestOverall: toStoreRecommendation(r.BestOverall),
		Cheapest:    toStoreRecommendation(r.Cheapest),
		Closest:     toStoreRecommendation(r.Closest),
	}
	for i := range r.Stores {
		resp.Stores[i] = toStoreRecommendation(&r.Stores[i])
	}
	return resp
}

func toStoreRecommendation(s *recommend.StoreResult) *StoreRecommendation {
	if s == nil {
		return nil
	}
	source := DistanceSourceEstimate
	if s.DistanceMeasured {
		source = DistanceSourceRouting
	}
	return &StoreRecommendation{
		ID:              s.Store.ID,
		Name:            s.Store.Name,
		Chain:           s.Store.Chain,
		Address:         s.Store.Address,
		Lat:             s.Store.Location.Lat,
		Lng:             s.Store.Location.Lng,
		TotalPrice:      s.TotalPrice,
		DistanceKm:      s.DistanceKm,
		DistanceSource:  source,
		NormPrice:       s.NormPrice,
		NormDist:        s.NormDist,
		Score:           s.Score,
		MatchedItems:    s.MatchedItems,
		MissingItems:    s.MissingItems,
		WalkingSteps:    s.WalkingSteps,
		WalkingCalories: s.WalkingCalories,
		StockStatus:     StockStatusInStock,
	}
}
