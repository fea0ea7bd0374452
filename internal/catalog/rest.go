package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	httpclient "github.com/nutrisense/store-service/internal/http"
	"github.com/nutrisense/store-service/internal/http/ratelimit"
)

// DefaultRESTPageSize matches the default max-rows of hosted PostgREST.
const DefaultRESTPageSize = 1000

// RESTConfig configures a PostgREST-compatible source (e.g. Supabase).
type RESTConfig struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	PageSize int
}

// RESTSource reads the catalog relations over the PostgREST HTTP API.
// Relations are paged with limit/offset in a fixed key order.
type RESTSource struct {
	baseURL  string
	apiKey   string
	pageSize int
	client   *httpclient.Client
}

// NewRESTSource creates a REST source. The shared HTTP client retries
// transient failures with backoff.
func NewRESTSource(cfg RESTConfig) *RESTSource {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultRESTPageSize
	}
	return &RESTSource{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		pageSize: pageSize,
		client:   httpclient.NewClient(ratelimit.DefaultConfig(), timeout),
	}
}

// Name implements Source.
func (s *RESTSource) Name() string {
	return "rest"
}

// Fetch implements Source.
func (s *RESTSource) Fetch(ctx context.Context) (*Rows, error) {
	if s.baseURL == "" {
		return nil, &FetchError{Source: s.Name(), Err: fmt.Errorf("base url is not configured")}
	}

	var (
		rows = &Rows{}
		err  error
	)
	if rows.Stores, err = fetchRelation[StoreRow](ctx, s, RelationStores, "id,name,chain,address,lat,lng", "id"); err != nil {
		return nil, err
	}
	if rows.Prices, err = fetchRelation[PriceRow](ctx, s, RelationStorePrices, "store_id,food_id,price_usd", "store_id,food_id"); err != nil {
		return nil, err
	}
	if rows.Foods, err = fetchRelation[FoodRow](ctx, s, RelationFoods, "id,name", "id"); err != nil {
		return nil, err
	}
	return rows, nil
}

// fetchRelation reads every row of a relation page by page. When the server
// reports a total count, reading fewer rows than that is an error; otherwise
// a short page ends the read. The server may cap a page below the requested
// limit, so the offset advances by what actually came back.
func fetchRelation[T any](ctx context.Context, s *RESTSource, relation, columns, order string) ([]T, error) {
	headers := map[string]string{
		"apikey":        s.apiKey,
		"Authorization": "Bearer " + s.apiKey,
		"Prefer":        "count=exact",
	}

	var out []T
	for {
		q := url.Values{}
		q.Set("select", columns)
		q.Set("order", order)
		q.Set("limit", strconv.Itoa(s.pageSize))
		q.Set("offset", strconv.Itoa(len(out)))
		u := fmt.Sprintf("%s/rest/v1/%s?%s", s.baseURL, relation, q.Encode())

		page, total, err := s.fetchPage(ctx, u, headers, relation)
		if err != nil {
			return nil, err
		}
		var rows []T
		if err := json.Unmarshal(page, &rows); err != nil {
			return nil, &FetchError{Source: s.Name(), Relation: relation, Err: fmt.Errorf("decode: %w", err)}
		}
		out = append(out, rows...)

		switch {
		case total >= 0 && len(out) >= total:
			return out, nil
		case total >= 0 && len(rows) == 0:
			return nil, &FetchError{Source: s.Name(), Relation: relation,
				Err: fmt.Errorf("partial read: got %d of %d rows", len(out), total)}
		case total < 0 && len(rows) < s.pageSize:
			return out, nil
		}
	}
}

// fetchPage returns the body and the total row count from Content-Range, or
// -1 when the server did not report one.
func (s *RESTSource) fetchPage(ctx context.Context, u string, headers map[string]string, relation string) ([]byte, int, error) {
	resp, err := s.client.Get(ctx, u, headers)
	if err != nil {
		return nil, 0, &FetchError{Source: s.Name(), Relation: relation, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &FetchError{Source: s.Name(), Relation: relation, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, contentRangeTotal(resp.Header.Get("Content-Range")), nil
}

// contentRangeTotal parses the total from "0-999/2500" or "*/0". An absent or
// "*" total yields -1.
func contentRangeTotal(header string) int {
	_, total, ok := strings.Cut(header, "/")
	if !ok {
		return -1
	}
	n, err := strconv.Atoi(strings.TrimSpace(total))
	if err != nil || n < 0 {
		return -1
	}
	return n
}
