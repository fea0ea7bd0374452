// Package pricing totals a shopping list against one store's inventory.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nutrisense/store-service/internal/catalog"
)

// DefaultMissingItemPenalty is charged for each item a store cannot supply.
var DefaultMissingItemPenalty = decimal.RequireFromString("6.00")

// Match describes how a requested item was priced.
type Match int

const (
	MatchMissing Match = iota
	MatchExact
	MatchSubstring
)

func (m Match) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchSubstring:
		return "substring"
	default:
		return "missing"
	}
}

// Basket is a normalized shopping list. Blank items are dropped.
type Basket struct {
	keys []string
}

// NewBasket normalizes the requested item names.
func NewBasket(items []string) Basket {
	keys := make([]string, 0, len(items))
	for _, item := range items {
		if key := catalog.NormalizeItem(item); key != "" {
			keys = append(keys, key)
		}
	}
	return Basket{keys: keys}
}

// Keys returns the normalized items in request order.
func (b Basket) Keys() []string {
	return b.keys
}

// Len returns the number of priced items.
func (b Basket) Len() int {
	return len(b.keys)
}

// Line is the price of one requested item.
type Line struct {
	Item       string
	MatchedKey string
	Match      Match
	Price      decimal.Decimal
}

// Quote is the total for a basket at one store.
type Quote struct {
	Total   decimal.Decimal
	Matched int
	Missing int
	Lines   []Line
}

// Engine prices baskets. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	penalty decimal.Decimal
}

// NewEngine creates an engine with the given missing-item penalty.
// A negative penalty is replaced by the default.
func NewEngine(penalty decimal.Decimal) *Engine {
	if penalty.IsNegative() {
		penalty = DefaultMissingItemPenalty
	}
	return &Engine{penalty: penalty}
}

// Penalty returns the per-item missing penalty.
func (e *Engine) Penalty() decimal.Decimal {
	return e.penalty
}

// Quote prices the basket against inv. A nil inventory prices every item at
// the penalty.
func (e *Engine) Quote(inv *catalog.Inventory, basket Basket) Quote {
	q := Quote{
		Total: decimal.Zero,
		Lines: make([]Line, 0, basket.Len()),
	}
	for _, key := range basket.keys {
		line := e.priceItem(inv, key)
		if line.Match == MatchMissing {
			q.Missing++
		} else {
			q.Matched++
		}
		q.Total = q.Total.Add(line.Price)
		q.Lines = append(q.Lines, line)
	}
	return q
}

// PriceFor totals raw item names at a store of snap.
func (e *Engine) PriceFor(snap *catalog.Snapshot, storeID string, items []string) decimal.Decimal {
	return e.Quote(snap.Inventory(storeID), NewBasket(items)).Total
}

func (e *Engine) priceItem(inv *catalog.Inventory, key string) Line {
	if p, ok := inv.Price(key); ok {
		return Line{Item: key, MatchedKey: key, Match: MatchExact, Price: p}
	}
	// First stored key containing the requested name wins.
	for _, stored := range inv.Keys() {
		if strings.Contains(stored, key) {
			p, _ := inv.Price(stored)
			return Line{Item: key, MatchedKey: stored, Match: MatchSubstring, Price: p}
		}
	}
	return Line{Item: key, Match: MatchMissing, Price: e.penalty}
}
