package catalog

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nutrisense/store-service/internal/geo"
)

// BuildStats counts rows dropped while joining the relations.
type BuildStats struct {
	InvalidStores   int
	DuplicateStores int
	InvalidFoods    int
	InvalidPrices   int
	UnknownFoods    int
	UnknownStores   int
}

// Dropped returns the total number of dropped rows.
func (s BuildStats) Dropped() int {
	return s.InvalidStores + s.DuplicateStores + s.InvalidFoods +
		s.InvalidPrices + s.UnknownFoods + s.UnknownStores
}

// Build joins raw rows into a snapshot. Rows that would break the snapshot
// invariants are dropped and counted, never fatal: every inventory belongs to
// a store of the same snapshot and every price is non-negative.
func Build(rows *Rows, loadedAt time.Time) (*Snapshot, BuildStats) {
	var stats BuildStats
	snap := &Snapshot{
		inventories: make(map[string]*Inventory),
		loadedAt:    loadedAt,
	}
	if rows == nil {
		return snap, stats
	}

	known := make(map[string]struct{}, len(rows.Stores))
	snap.stores = make([]Store, 0, len(rows.Stores))
	for _, r := range rows.Stores {
		id := strings.TrimSpace(string(r.ID))
		name := strings.TrimSpace(r.Name)
		if id == "" || name == "" || r.Lat == nil || r.Lng == nil {
			stats.InvalidStores++
			continue
		}
		loc := geo.Coordinate{Lat: *r.Lat, Lng: *r.Lng}
		if !loc.Valid() {
			stats.InvalidStores++
			continue
		}
		if _, dup := known[id]; dup {
			stats.DuplicateStores++
			continue
		}
		known[id] = struct{}{}
		snap.stores = append(snap.stores, Store{
			ID:       id,
			Name:     name,
			Chain:    strings.TrimSpace(r.Chain),
			Address:  strings.TrimSpace(r.Address),
			Location: loc,
		})
	}

	foodNames := make(map[string]string, len(rows.Foods))
	for _, f := range rows.Foods {
		id := strings.TrimSpace(string(f.ID))
		key := NormalizeItem(f.Name)
		if id == "" || key == "" {
			stats.InvalidFoods++
			continue
		}
		foodNames[id] = key
	}

	for _, p := range rows.Prices {
		if !p.Price.Valid || p.Price.Decimal.IsNegative() {
			stats.InvalidPrices++
			continue
		}
		key, ok := foodNames[strings.TrimSpace(string(p.FoodID))]
		if !ok {
			stats.UnknownFoods++
			continue
		}
		storeID := strings.TrimSpace(string(p.StoreID))
		if _, ok := known[storeID]; !ok {
			stats.UnknownStores++
			continue
		}

		inv := snap.inventories[storeID]
		if inv == nil {
			inv = newInventory()
			snap.inventories[storeID] = inv
		}
		inv.set(key, p.Price.Decimal)
	}

	for _, inv := range snap.inventories {
		snap.priceCount += inv.Len()
	}

	return snap, stats
}

func (s BuildStats) log(logger *zerolog.Logger, source string) {
	if s.Dropped() == 0 {
		return
	}
	logger.Warn().
		Str("source", source).
		Int("invalid_stores", s.InvalidStores).
		Int("duplicate_stores", s.DuplicateStores).
		Int("invalid_foods", s.InvalidFoods).
		Int("invalid_prices", s.InvalidPrices).
		Int("unknown_foods", s.UnknownFoods).
		Int("unknown_stores", s.UnknownStores).
		Msg("Dropped inconsistent catalog rows")
}
