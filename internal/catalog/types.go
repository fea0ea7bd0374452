package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nutrisense/store-service/internal/geo"
)

// Store is a physical store. Immutable for the lifetime of a snapshot.
type Store struct {
	ID       string
	Name     string
	Chain    string
	Address  string
	Location geo.Coordinate
}

// RowID is an identifier column that may arrive as a JSON string or number.
type RowID string

// UnmarshalJSON accepts "abc", 42 and null.
func (id *RowID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = RowID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = RowID(n.String())
	return nil
}

// StoreRow is a row of the stores relation.
type StoreRow struct {
	ID      RowID    `json:"id"`
	Name    string   `json:"name"`
	Chain   string   `json:"chain"`
	Address string   `json:"address"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

// PriceRow is a row of the store_prices relation.
type PriceRow struct {
	StoreID RowID               `json:"store_id"`
	FoodID  RowID               `json:"food_id"`
	Price   decimal.NullDecimal `json:"price_usd"`
}

// FoodRow is a row of the foods relation.
type FoodRow struct {
	ID   RowID  `json:"id"`
	Name string `json:"name"`
}

// Rows is the raw content of the three catalog relations.
type Rows struct {
	Stores []StoreRow
	Prices []PriceRow
	Foods  []FoodRow
}

// Inventory is the priced item set of one store. Keys keep the order in
// which their rows were first seen.
type Inventory struct {
	keys   []string
	prices map[string]decimal.Decimal
}

func newInventory() *Inventory {
	return &Inventory{prices: make(map[string]decimal.Decimal)}
}

func (inv *Inventory) set(key string, price decimal.Decimal) {
	if _, ok := inv.prices[key]; !ok {
		inv.keys = append(inv.keys, key)
	}
	inv.prices[key] = price
}

// Price returns the price stored under the exact key.
func (inv *Inventory) Price(key string) (decimal.Decimal, bool) {
	if inv == nil {
		return decimal.Decimal{}, false
	}
	p, ok := inv.prices[key]
	return p, ok
}

// Keys returns the item keys in insertion order. The slice must not be modified.
func (inv *Inventory) Keys() []string {
	if inv == nil {
		return nil
	}
	return inv.keys
}

// Len returns the number of priced items.
func (inv *Inventory) Len() int {
	if inv == nil {
		return 0
	}
	return len(inv.keys)
}

// Snapshot is an immutable view of the catalog. It is built completely
// before being published and is never modified afterwards.
type Snapshot struct {
	stores      []Store
	inventories map[string]*Inventory
	loadedAt    time.Time
	priceCount  int
}

// EmptySnapshot returns a snapshot with no stores that has never been loaded.
func EmptySnapshot() *Snapshot {
	return &Snapshot{inventories: map[string]*Inventory{}}
}

// Stores returns the stores in source order. The slice must not be modified.
func (s *Snapshot) Stores() []Store {
	return s.stores
}

// Inventory returns the inventory of a store, or nil when it has none.
func (s *Snapshot) Inventory(storeID string) *Inventory {
	return s.inventories[storeID]
}

// LoadedAt returns when the snapshot was loaded. Zero for the initial empty snapshot.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// StoreCount returns the number of stores.
func (s *Snapshot) StoreCount() int {
	return len(s.stores)
}

// PriceCount returns the number of (store, item) price entries.
func (s *Snapshot) PriceCount() int {
	return s.priceCount
}
