// Package ranking scores stores on normalized price and distance and picks
// the best overall, cheapest and closest.
package ranking

import (
	"cmp"
	"math"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/nutrisense/store-service/internal/catalog"
)

// DefaultTopK is the number of stores in the display list.
const DefaultTopK = 5

// Weights balances the two normalized axes. Lower composite score is better.
type Weights struct {
	Price    float64
	Distance float64
}

// DefaultWeights weighs price and distance equally.
func DefaultWeights() Weights {
	return Weights{Price: 0.5, Distance: 0.5}
}

// Candidate is one store with its basket total and distance.
type Candidate struct {
	Store      catalog.Store
	Price      decimal.Decimal
	DistanceKm float64
}

// Scored is a candidate with its normalized axes and composite score.
type Scored struct {
	Candidate
	Index     int // position in the input slice
	NormPrice float64
	NormDist  float64
	Score     float64
}

// RoundedPrice returns the price at 2 decimals.
func (s *Scored) RoundedPrice() float64 {
	return s.Price.Round(2).InexactFloat64()
}

// RoundedDistance returns the distance at 2 decimals.
func (s *Scored) RoundedDistance() float64 {
	return Round(s.DistanceKm, 2)
}

// RoundedNormPrice returns the normalized price at 3 decimals.
func (s *Scored) RoundedNormPrice() float64 {
	return Round(s.NormPrice, 3)
}

// RoundedNormDist returns the normalized distance at 3 decimals.
func (s *Scored) RoundedNormDist() float64 {
	return Round(s.NormDist, 3)
}

// RoundedScore returns the score at 3 decimals.
func (s *Scored) RoundedScore() float64 {
	return Round(s.Score, 3)
}

// Result is one ranking pass. Top and the personas point into Ranked.
type Result struct {
	Ranked      []Scored
	Top         []Scored
	BestOverall *Scored
	Cheapest    *Scored
	Closest     *Scored
}

// Empty reports whether there was nothing to rank.
func (r Result) Empty() bool {
	return len(r.Ranked) == 0
}

// Rank scores and sorts candidates. Scores are compared at their displayed
// precision of 3 decimals and sorting is stable, so scores that display equal
// keep input order, and the output is deterministic for a given input.
func Rank(candidates []Candidate, w Weights, topK int) Result {
	if len(candidates) == 0 {
		return Result{}
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	minPrice, maxPrice := candidates[0].Price, candidates[0].Price
	minDist, maxDist := candidates[0].DistanceKm, candidates[0].DistanceKm
	for _, c := range candidates[1:] {
		minPrice = decimal.Min(minPrice, c.Price)
		maxPrice = decimal.Max(maxPrice, c.Price)
		minDist = min(minDist, c.DistanceKm)
		maxDist = max(maxDist, c.DistanceKm)
	}
	priceSpan := maxPrice.Sub(minPrice)

	ranked := make([]Scored, len(candidates))
	for i, c := range candidates {
		np := 0.0
		if priceSpan.IsPositive() {
			np = c.Price.Sub(minPrice).Div(priceSpan).InexactFloat64()
		}
		nd := normalize(c.DistanceKm, minDist, maxDist)
		ranked[i] = Scored{
			Candidate: c,
			Index:     i,
			NormPrice: np,
			NormDist:  nd,
			Score:     w.Price*np + w.Distance*nd,
		}
	}

	slices.SortStableFunc(ranked, func(a, b Scored) int {
		return cmp.Compare(a.RoundedScore(), b.RoundedScore())
	})

	res := Result{
		Ranked:      ranked,
		Top:         ranked[:min(topK, len(ranked))],
		BestOverall: &ranked[0],
		Cheapest:    &ranked[0],
		Closest:     &ranked[0],
	}
	// ranked is in score order, so the first minimum found is also the
	// lowest-score one, and among equal scores the earliest input.
	for i := range ranked[1:] {
		s := &ranked[i+1]
		if s.Price.LessThan(res.Cheapest.Price) {
			res.Cheapest = s
		}
		if s.DistanceKm < res.Closest.DistanceKm {
			res.Closest = s
		}
	}
	return res
}

// normalize maps x into [0,1] over [lo,hi]. A degenerate range maps to 0.
func normalize(x, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return (x - lo) / (hi - lo)
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
