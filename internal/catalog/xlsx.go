package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// XLSXSource reads the catalog from a workbook with one sheet per relation
// (stores, store_prices, foods). The first row of each sheet is a header.
type XLSXSource struct {
	path string
}

// NewXLSXSource creates a source for the workbook at path. The file is
// re-read on every fetch.
func NewXLSXSource(path string) *XLSXSource {
	return &XLSXSource{path: path}
}

// Name implements Source.
func (s *XLSXSource) Name() string {
	return "xlsx"
}

// Fetch implements Source.
func (s *XLSXSource) Fetch(ctx context.Context) (*Rows, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, &FetchError{Source: s.Name(), Err: fmt.Errorf("open workbook: %w", err)}
	}
	defer f.Close()

	rows := &Rows{}

	storeSheet, err := s.readSheet(f, RelationStores, "id", "name", "lat", "lng")
	if err != nil {
		return nil, err
	}
	for _, r := range storeSheet {
		rows.Stores = append(rows.Stores, StoreRow{
			ID:      RowID(r.get("id")),
			Name:    r.get("name"),
			Chain:   r.get("chain"),
			Address: r.get("address"),
			Lat:     parseFloat(r.get("lat")),
			Lng:     parseFloat(r.get("lng")),
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Source: s.Name(), Err: err}
	}

	priceSheet, err := s.readSheet(f, RelationStorePrices, "store_id", "food_id", "price_usd")
	if err != nil {
		return nil, err
	}
	for _, r := range priceSheet {
		row := PriceRow{StoreID: RowID(r.get("store_id")), FoodID: RowID(r.get("food_id"))}
		if d, err := decimal.NewFromString(r.get("price_usd")); err == nil {
			row.Price = decimal.NewNullDecimal(d)
		}
		rows.Prices = append(rows.Prices, row)
	}

	foodSheet, err := s.readSheet(f, RelationFoods, "id", "name")
	if err != nil {
		return nil, err
	}
	for _, r := range foodSheet {
		rows.Foods = append(rows.Foods, FoodRow{ID: RowID(r.get("id")), Name: r.get("name")})
	}

	return rows, nil
}

type sheetRow struct {
	cells   []string
	columns map[string]int
}

func (r sheetRow) get(column string) string {
	i, ok := r.columns[column]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

// readSheet returns the data rows of a sheet keyed by lowercased header.
// Empty rows are skipped.
func (s *XLSXSource) readSheet(f *excelize.File, sheet string, required ...string) ([]sheetRow, error) {
	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, &FetchError{Source: s.Name(), Relation: sheet, Err: fmt.Errorf("read worksheet: %w", err)}
	}
	if len(raw) == 0 {
		return nil, &FetchError{Source: s.Name(), Relation: sheet, Err: fmt.Errorf("worksheet has no header row")}
	}

	columns := make(map[string]int, len(raw[0]))
	for i, h := range raw[0] {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range required {
		if _, ok := columns[col]; !ok {
			return nil, &FetchError{Source: s.Name(), Relation: sheet, Err: fmt.Errorf("missing column %q", col)}
		}
	}

	out := make([]sheetRow, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		if isEmptyRow(cells) {
			continue
		}
		out = append(out, sheetRow{cells: cells, columns: columns})
	}
	return out, nil
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseFloat(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
