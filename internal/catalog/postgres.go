package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresSource reads the catalog relations straight from Postgres.
type PostgresSource struct {
	db *pgxpool.Pool
}

// NewPostgresSource creates a source on an open pool.
func NewPostgresSource(db *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{db: db}
}

// Name implements Source.
func (s *PostgresSource) Name() string {
	return "postgres"
}

// Fetch implements Source. All three relations are read in one read-only
// transaction so the rows are mutually consistent.
func (s *PostgresSource) Fetch(ctx context.Context) (*Rows, error) {
	if s.db == nil {
		return nil, &FetchError{Source: s.Name(), Err: fmt.Errorf("database not initialized")}
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, &FetchError{Source: s.Name(), Err: fmt.Errorf("begin transaction: %w", err)}
	}
	defer tx.Rollback(ctx)

	rows := &Rows{}

	rows.Stores, err = s.fetchStores(ctx, tx)
	if err != nil {
		return nil, &FetchError{Source: s.Name(), Relation: RelationStores, Err: err}
	}
	rows.Prices, err = s.fetchPrices(ctx, tx)
	if err != nil {
		return nil, &FetchError{Source: s.Name(), Relation: RelationStorePrices, Err: err}
	}
	rows.Foods, err = s.fetchFoods(ctx, tx)
	if err != nil {
		return nil, &FetchError{Source: s.Name(), Relation: RelationFoods, Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &FetchError{Source: s.Name(), Err: fmt.Errorf("commit transaction: %w", err)}
	}
	return rows, nil
}

func (s *PostgresSource) fetchStores(ctx context.Context, tx pgx.Tx) ([]StoreRow, error) {
	rs, err := tx.Query(ctx, `
		SELECT id::text, name, chain, address, lat::float8, lng::float8
		FROM stores
	`)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rs.Close()

	var out []StoreRow
	for rs.Next() {
		var (
			id          string
			name        *string
			chain, addr *string
			lat, lng    *float64
		)
		if err := rs.Scan(&id, &name, &chain, &addr, &lat, &lng); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, StoreRow{
			ID:      RowID(id),
			Name:    deref(name),
			Chain:   deref(chain),
			Address: deref(addr),
			Lat:     lat,
			Lng:     lng,
		})
	}
	return out, rs.Err()
}

func (s *PostgresSource) fetchPrices(ctx context.Context, tx pgx.Tx) ([]PriceRow, error) {
	// ctid order approximates insertion order and keeps inventory key order
	// stable across refreshes of an unchanged table.
	rs, err := tx.Query(ctx, `
		SELECT store_id::text, food_id::text, price_usd::text
		FROM store_prices
		ORDER BY ctid
	`)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rs.Close()

	var out []PriceRow
	for rs.Next() {
		var storeID, foodID string
		var price *string
		if err := rs.Scan(&storeID, &foodID, &price); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		row := PriceRow{StoreID: RowID(storeID), FoodID: RowID(foodID)}
		if price != nil {
			if d, err := decimal.NewFromString(*price); err == nil {
				row.Price = decimal.NewNullDecimal(d)
			}
		}
		out = append(out, row)
	}
	return out, rs.Err()
}

func (s *PostgresSource) fetchFoods(ctx context.Context, tx pgx.Tx) ([]FoodRow, error) {
	rs, err := tx.Query(ctx, `SELECT id::text, name FROM foods`)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rs.Close()

	var out []FoodRow
	for rs.Next() {
		var id string
		var name *string
		if err := rs.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, FoodRow{ID: RowID(id), Name: deref(name)})
	}
	return out, rs.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
