package catalog

import (
	"context"
	"fmt"
)

// Relation names read by every source.
const (
	RelationStores      = "stores"
	RelationStorePrices = "store_prices"
	RelationFoods       = "foods"
)

// Source reads the raw catalog relations from an external tabular store.
type Source interface {
	// Name identifies the source in logs and metrics.
	Name() string

	// Fetch returns all rows of the three relations. A partial read is an error.
	Fetch(ctx context.Context) (*Rows, error)
}

// FetchError is returned when a source cannot read a relation.
type FetchError struct {
	Source   string
	Relation string
	Err      error
}

func (e *FetchError) Error() string {
	if e.Relation == "" {
		return fmt.Sprintf("catalog %s fetch: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("catalog %s fetch %s: %v", e.Source, e.Relation, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
