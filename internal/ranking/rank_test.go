package ranking

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrisense/store-service/internal/catalog"
)

func candidate(id, price string, km float64) Candidate {
	return Candidate{
		Store:      catalog.Store{ID: id, Name: "Store " + id},
		Price:      decimal.RequireFromString(price),
		DistanceKm: km,
	}
}

func ids(scored []Scored) []string {
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.Store.ID
	}
	return out
}

func TestRankThreeStoreScenario(t *testing.T) {
	res := Rank([]Candidate{
		candidate("A", "20.00", 2),
		candidate("B", "15.00", 5),
		candidate("C", "25.00", 1),
	}, DefaultWeights(), DefaultTopK)

	require.Len(t, res.Top, 3)
	assert.Equal(t, []string{"A", "B", "C"}, ids(res.Top))

	a, b, c := res.Top[0], res.Top[1], res.Top[2]
	assert.Equal(t, 0.5, a.RoundedNormPrice())
	assert.Equal(t, 0.25, a.RoundedNormDist())
	assert.Equal(t, 0.375, a.RoundedScore())
	assert.Equal(t, 0.0, b.RoundedNormPrice())
	assert.Equal(t, 1.0, b.RoundedNormDist())
	assert.Equal(t, 0.5, b.RoundedScore())
	assert.Equal(t, 1.0, c.RoundedNormPrice())
	assert.Equal(t, 0.0, c.RoundedNormDist())
	assert.Equal(t, 0.5, c.RoundedScore())

	assert.Equal(t, "A", res.BestOverall.Store.ID)
	assert.Equal(t, "B", res.Cheapest.Store.ID)
	assert.Equal(t, "C", res.Closest.Store.ID)
}

func TestRankEqualDisplayedScoresKeepInputOrder(t *testing.T) {
	// X and Y both score 0.15, but float noise puts Y a hair below X.
	res := Rank([]Candidate{
		candidate("X", "1", 2),
		candidate("Y", "3", 0),
		candidate("Z", "10", 10),
		candidate("W", "0", 10),
	}, DefaultWeights(), DefaultTopK)

	require.Len(t, res.Ranked, 4)
	x, y := res.Ranked[0], res.Ranked[1]
	assert.Equal(t, 0.15, x.RoundedScore())
	assert.Equal(t, 0.15, y.RoundedScore())
	assert.Equal(t, []string{"X", "Y", "W", "Z"}, ids(res.Ranked))
	assert.Equal(t, "X", res.BestOverall.Store.ID)
	assert.Equal(t, "W", res.Cheapest.Store.ID)
	assert.Equal(t, "Y", res.Closest.Store.ID)
}

func TestRankEmpty(t *testing.T) {
	res := Rank(nil, DefaultWeights(), DefaultTopK)
	assert.True(t, res.Empty())
	assert.Empty(t, res.Top)
	assert.Nil(t, res.BestOverall)
	assert.Nil(t, res.Cheapest)
	assert.Nil(t, res.Closest)
}

func TestRankDegenerateAxes(t *testing.T) {
	res := Rank([]Candidate{
		candidate("x", "10.00", 3),
		candidate("y", "10.00", 3),
		candidate("z", "10.00", 3),
	}, DefaultWeights(), DefaultTopK)

	for _, s := range res.Ranked {
		assert.Zero(t, s.NormPrice)
		assert.Zero(t, s.NormDist)
		assert.Zero(t, s.Score)
	}
	assert.Equal(t, []string{"x", "y", "z"}, ids(res.Ranked), "ties keep input order")
	assert.Equal(t, "x", res.BestOverall.Store.ID)
	assert.Equal(t, "x", res.Cheapest.Store.ID)
	assert.Equal(t, "x", res.Closest.Store.ID)
}

func TestRankSingleCandidate(t *testing.T) {
	res := Rank([]Candidate{candidate("solo", "12.345", 1.005)}, DefaultWeights(), DefaultTopK)

	require.Len(t, res.Top, 1)
	assert.Same(t, res.BestOverall, res.Cheapest)
	assert.Same(t, res.BestOverall, res.Closest)
	assert.Equal(t, 12.35, res.BestOverall.RoundedPrice())
	assert.Zero(t, res.BestOverall.Score)
}

func TestRankTopK(t *testing.T) {
	var cands []Candidate
	for i := range 8 {
		cands = append(cands, candidate(fmt.Sprint(i), fmt.Sprintf("%d.00", 10+i), float64(10-i)))
	}

	res := Rank(cands, DefaultWeights(), 5)
	assert.Len(t, res.Top, 5)
	assert.Len(t, res.Ranked, 8)

	res = Rank(cands, DefaultWeights(), 0)
	assert.Len(t, res.Top, DefaultTopK)
}

func TestPersonaTieBreaks(t *testing.T) {
	// P and Q share the lowest price; Q has the lower score, so it is cheapest.
	// R and S share the shortest distance and the same score; R comes first.
	res := Rank([]Candidate{
		candidate("P", "10.00", 8),
		candidate("Q", "10.00", 4),
		candidate("R", "20.00", 1),
		candidate("S", "20.00", 1),
	}, DefaultWeights(), DefaultTopK)

	assert.Equal(t, "Q", res.Cheapest.Store.ID)
	assert.Equal(t, "R", res.Closest.Store.ID)
}

func TestPersonasPointIntoRankedSet(t *testing.T) {
	var cands []Candidate
	for i := range 10 {
		cands = append(cands, candidate(fmt.Sprint(i), fmt.Sprintf("%d.50", 30-i), float64(i+1)))
	}
	res := Rank(cands, DefaultWeights(), 3)

	inRanked := func(p *Scored) bool {
		for i := range res.Ranked {
			if &res.Ranked[i] == p {
				return true
			}
		}
		return false
	}
	assert.True(t, inRanked(res.BestOverall))
	assert.True(t, inRanked(res.Cheapest))
	assert.True(t, inRanked(res.Closest))
	assert.Same(t, &res.Ranked[0], res.BestOverall)
}

func TestNormalizationIsBounded(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 50 {
		n := 1 + r.IntN(20)
		cands := make([]Candidate, n)
		for i := range cands {
			cands[i] = Candidate{
				Store:      catalog.Store{ID: fmt.Sprint(i)},
				Price:      decimal.NewFromFloat(r.Float64() * 100).Round(2),
				DistanceKm: r.Float64() * 50,
			}
		}
		for _, s := range Rank(cands, DefaultWeights(), DefaultTopK).Ranked {
			assert.GreaterOrEqual(t, s.NormPrice, 0.0)
			assert.LessOrEqual(t, s.NormPrice, 1.0)
			assert.GreaterOrEqual(t, s.NormDist, 0.0)
			assert.LessOrEqual(t, s.NormDist, 1.0)
		}
	}
}

func TestScoreMonotonicity(t *testing.T) {
	base := []Candidate{
		candidate("A", "20.00", 2),
		candidate("B", "15.00", 5),
		candidate("C", "25.00", 1),
		candidate("D", "18.00", 3),
	}
	scoreOf := func(cands []Candidate, id string) float64 {
		for _, s := range Rank(cands, DefaultWeights(), DefaultTopK).Ranked {
			if s.Store.ID == id {
				return s.Score
			}
		}
		t.Fatalf("store %s not ranked", id)
		return 0
	}

	for i := range base {
		id := base[i].Store.ID
		prev := scoreOf(base, id)
		for step := 1; step <= 10; step++ {
			cands := slicesClone(base)
			cands[i].Price = cands[i].Price.Add(decimal.NewFromInt(int64(step * 2)))
			s := scoreOf(cands, id)
			assert.GreaterOrEqual(t, s, prev, "raising price of %s lowered its score", id)
			prev = s
		}

		prev = scoreOf(base, id)
		for step := 1; step <= 10; step++ {
			cands := slicesClone(base)
			cands[i].DistanceKm += float64(step)
			s := scoreOf(cands, id)
			assert.GreaterOrEqual(t, s, prev, "raising distance of %s lowered its score", id)
			prev = s
		}
	}
}

func TestRankIsDeterministic(t *testing.T) {
	cands := []Candidate{
		candidate("A", "10.00", 5),
		candidate("B", "20.00", 0),
		candidate("C", "15.00", 2.5),
		candidate("D", "10.00", 5),
	}
	first := Rank(cands, DefaultWeights(), DefaultTopK)
	for range 25 {
		again := Rank(cands, DefaultWeights(), DefaultTopK)
		assert.Equal(t, ids(first.Ranked), ids(again.Ranked))
		assert.Equal(t, first.BestOverall.Store.ID, again.BestOverall.Store.ID)
		assert.Equal(t, first.Cheapest.Store.ID, again.Cheapest.Store.ID)
		assert.Equal(t, first.Closest.Store.ID, again.Closest.Store.ID)
	}
}

func TestCustomWeights(t *testing.T) {
	cands := []Candidate{
		candidate("cheap-far", "10.00", 10),
		candidate("pricey-near", "30.00", 1),
	}
	assert.Equal(t, "cheap-far", Rank(cands, Weights{Price: 1, Distance: 0}, 5).BestOverall.Store.ID)
	assert.Equal(t, "pricey-near", Rank(cands, Weights{Price: 0, Distance: 1}, 5).BestOverall.Store.ID)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.375, Round(0.3745, 3))
	assert.Equal(t, 2.35, Round(2.345, 2))
	assert.Equal(t, 999.0, Round(999, 2))
}

func slicesClone(c []Candidate) []Candidate {
	return append([]Candidate(nil), c...)
}
