package pricing

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrisense/store-service/internal/catalog"
)

func f64(v float64) *float64 { return &v }

func snapshot(t *testing.T, prices map[string]string, order ...string) *catalog.Snapshot {
	t.Helper()
	rows := &catalog.Rows{
		Stores: []catalog.StoreRow{{ID: "s1", Name: "Store", Lat: f64(1), Lng: f64(1)}},
	}
	for i, name := range order {
		id := catalog.RowID(fmt.Sprintf("f%d", i))
		rows.Foods = append(rows.Foods, catalog.FoodRow{ID: id, Name: name})
		rows.Prices = append(rows.Prices, catalog.PriceRow{
			StoreID: "s1",
			FoodID:  id,
			Price:   decimal.NewNullDecimal(decimal.RequireFromString(prices[name])),
		})
	}
	snap, stats := catalog.Build(rows, time.Now())
	require.Zero(t, stats.Dropped())
	return snap
}

func TestSubstringFallback(t *testing.T) {
	snap := snapshot(t, map[string]string{"whole milk": "3.49", "bread": "2.00"}, "whole milk", "bread")
	e := NewEngine(DefaultMissingItemPenalty)

	total := e.PriceFor(snap, "s1", []string{"milk"})
	assert.Equal(t, "3.49", total.StringFixed(2))

	q := e.Quote(snap.Inventory("s1"), NewBasket([]string{"Milk"}))
	require.Len(t, q.Lines, 1)
	assert.Equal(t, MatchSubstring, q.Lines[0].Match)
	assert.Equal(t, "whole milk", q.Lines[0].MatchedKey)
}

func TestExactMatchWinsOverSubstring(t *testing.T) {
	snap := snapshot(t, map[string]string{"whole milk": "3.49", "milk": "2.99"}, "whole milk", "milk")
	e := NewEngine(DefaultMissingItemPenalty)

	q := e.Quote(snap.Inventory("s1"), NewBasket([]string{" MILK "}))
	assert.Equal(t, MatchExact, q.Lines[0].Match)
	assert.Equal(t, "2.99", q.Total.StringFixed(2))
}

func TestSubstringUsesInsertionOrder(t *testing.T) {
	snap := snapshot(t,
		map[string]string{"skim milk": "1.10", "whole milk": "3.49", "milk chocolate": "4.00"},
		"skim milk", "whole milk", "milk chocolate")
	e := NewEngine(DefaultMissingItemPenalty)

	for range 20 {
		assert.Equal(t, "1.10", e.PriceFor(snap, "s1", []string{"milk"}).StringFixed(2))
	}
}

func TestSubstringIsOneDirectional(t *testing.T) {
	snap := snapshot(t, map[string]string{"milk": "2.99"}, "milk")
	e := NewEngine(DefaultMissingItemPenalty)

	q := e.Quote(snap.Inventory("s1"), NewBasket([]string{"whole milk"}))
	assert.Equal(t, MatchMissing, q.Lines[0].Match)
	assert.Equal(t, "6.00", q.Total.StringFixed(2))
}

func TestMissingItemsArePenalized(t *testing.T) {
	snap := snapshot(t, map[string]string{"bread": "2.00"}, "bread")
	e := NewEngine(DefaultMissingItemPenalty)

	items := []string{"caviar", "truffle", "saffron", "caviar"}
	q := e.Quote(snap.Inventory("s1"), NewBasket(items))
	assert.Equal(t, 4, q.Missing)
	assert.Zero(t, q.Matched)
	assert.True(t, decimal.NewFromInt(int64(len(items))).Mul(DefaultMissingItemPenalty).Equal(q.Total))
}

func TestUnknownStorePricesEverythingAtPenalty(t *testing.T) {
	e := NewEngine(decimal.RequireFromString("2.50"))

	total := e.PriceFor(catalog.EmptySnapshot(), "nope", []string{"milk", "eggs", "bread"})
	assert.Equal(t, "7.50", total.StringFixed(2))
}

func TestBlankItemsAreSkipped(t *testing.T) {
	snap := snapshot(t, map[string]string{"bread": "2.00"}, "bread")
	e := NewEngine(DefaultMissingItemPenalty)

	basket := NewBasket([]string{"", "  ", "bread", "\t"})
	assert.Equal(t, []string{"bread"}, basket.Keys())
	assert.Equal(t, "2.00", e.Quote(snap.Inventory("s1"), basket).Total.StringFixed(2))
}

func TestEmptyBasketCostsNothing(t *testing.T) {
	e := NewEngine(DefaultMissingItemPenalty)
	q := e.Quote(nil, NewBasket(nil))
	assert.True(t, q.Total.IsZero())
	assert.Empty(t, q.Lines)
}

func TestNegativePenaltyFallsBackToDefault(t *testing.T) {
	e := NewEngine(decimal.NewFromInt(-1))
	assert.True(t, DefaultMissingItemPenalty.Equal(e.Penalty()))
}

func TestDecimalSumIsExact(t *testing.T) {
	snap := snapshot(t, map[string]string{"a item": "0.10", "b item": "0.20"}, "a item", "b item")
	e := NewEngine(DefaultMissingItemPenalty)

	total := e.PriceFor(snap, "s1", []string{"a item", "b item"})
	assert.True(t, decimal.RequireFromString("0.30").Equal(total))
}
