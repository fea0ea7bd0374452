package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgRESTServer(t *testing.T, bodies map[string]string, status map[string]int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.URL.Query().Get("select"))

		if code, ok := status[r.URL.Path]; ok {
			w.WriteHeader(code)
			return
		}
		body, ok := bodies[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

var restBodies = map[string]string{
	"/rest/v1/stores": `[
		{"id": 1, "name": "Corner Market", "chain": "Corner", "address": null, "lat": 40.71, "lng": -74.0},
		{"id": 2, "name": "Big Grocer", "chain": null, "address": "2 Side St", "lat": 40.73, "lng": -73.93}
	]`,
	"/rest/v1/store_prices": `[
		{"store_id": 1, "food_id": "a", "price_usd": 3.49},
		{"store_id": 2, "food_id": "a", "price_usd": "2.99"}
	]`,
	"/rest/v1/foods": `[{"id": "a", "name": "Whole Milk"}]`,
}

func TestRESTSourceFetch(t *testing.T) {
	srv := newPostgRESTServer(t, restBodies, nil)
	src := NewRESTSource(RESTConfig{BaseURL: srv.URL + "/", APIKey: "service-key", Timeout: time.Second})

	rows, err := src.Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, rows.Stores, 2)
	assert.Equal(t, RowID("1"), rows.Stores[0].ID)
	assert.Empty(t, rows.Stores[0].Address)
	require.Len(t, rows.Prices, 2)
	assert.Equal(t, "2.99", rows.Prices[1].Price.Decimal.String())

	snap, _ := Build(rows, time.Now())
	p, ok := snap.Inventory("2").Price("whole milk")
	require.True(t, ok)
	assert.Equal(t, "2.99", p.String())
}

func TestRESTSourceRelationFailure(t *testing.T) {
	srv := newPostgRESTServer(t, restBodies, map[string]int{"/rest/v1/store_prices": http.StatusUnauthorized})
	src := NewRESTSource(RESTConfig{BaseURL: srv.URL, APIKey: "service-key", Timeout: time.Second})

	_, err := src.Fetch(context.Background())
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "rest", fetchErr.Source)
	assert.Equal(t, RelationStorePrices, fetchErr.Relation)
}

func TestRESTSourceMalformedBody(t *testing.T) {
	bodies := map[string]string{"/rest/v1/stores": `{"message": "not an array"}`}
	srv := newPostgRESTServer(t, bodies, nil)
	src := NewRESTSource(RESTConfig{BaseURL: srv.URL, APIKey: "service-key", Timeout: time.Second})

	_, err := src.Fetch(context.Background())
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, RelationStores, fetchErr.Relation)
	assert.Contains(t, err.Error(), "decode")
}

func TestRESTSourceWithoutURL(t *testing.T) {
	_, err := NewRESTSource(RESTConfig{}).Fetch(context.Background())
	var fetchErr *FetchError
	assert.ErrorAs(t, err, &fetchErr)
}

// newCappedPostgRESTServer pages store_prices like PostgREST under a max-rows
// cap, reporting the full count in Content-Range. served limits how many rows
// it will ever return, to simulate a table that shrinks mid-read.
func newCappedPostgRESTServer(t *testing.T, prices []map[string]any, maxRows, served int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "count=exact", r.Header.Get("Prefer"))
		assert.NotEmpty(t, q.Get("order"))

		var rows []map[string]any
		if r.URL.Path == "/rest/v1/store_prices" {
			rows = prices
		}
		limit, err := strconv.Atoi(q.Get("limit"))
		assert.NoError(t, err)
		offset, err := strconv.Atoi(q.Get("offset"))
		assert.NoError(t, err)

		end := min(offset+limit, offset+maxRows, len(rows), served)
		page := []map[string]any{}
		if offset < end {
			page = rows[offset:end]
		}
		w.Header().Set("Content-Type", "application/json")
		if len(page) == 0 {
			w.Header().Set("Content-Range", fmt.Sprintf("*/%d", len(rows)))
		} else {
			w.Header().Set("Content-Range", fmt.Sprintf("%d-%d/%d", offset, offset+len(page)-1, len(rows)))
		}
		assert.NoError(t, json.NewEncoder(w).Encode(page))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func priceRows(n int) []map[string]any {
	rows := make([]map[string]any, n)
	for i := range rows {
		rows[i] = map[string]any{"store_id": 1, "food_id": strconv.Itoa(i), "price_usd": 1.25}
	}
	return rows
}

func TestRESTSourcePagesPastServerCap(t *testing.T) {
	srv := newCappedPostgRESTServer(t, priceRows(2500), 1000, 2500)
	src := NewRESTSource(RESTConfig{BaseURL: srv.URL, APIKey: "service-key", Timeout: time.Second, PageSize: 5000})

	rows, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows.Prices, 2500)
	assert.Equal(t, RowID("2499"), rows.Prices[2499].FoodID)
	assert.Empty(t, rows.Stores)
}

func TestRESTSourceTruncatedReadIsError(t *testing.T) {
	srv := newCappedPostgRESTServer(t, priceRows(30), 10, 20)
	src := NewRESTSource(RESTConfig{BaseURL: srv.URL, APIKey: "service-key", Timeout: time.Second, PageSize: 10})

	_, err := src.Fetch(context.Background())
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, RelationStorePrices, fetchErr.Relation)
	assert.Contains(t, err.Error(), "20 of 30")
}

func TestContentRangeTotal(t *testing.T) {
	assert.Equal(t, 2500, contentRangeTotal("0-999/2500"))
	assert.Equal(t, 0, contentRangeTotal("*/0"))
	assert.Equal(t, -1, contentRangeTotal("0-999/*"))
	assert.Equal(t, -1, contentRangeTotal(""))
}
