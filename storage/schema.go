package storage

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"listings-analytics/models"
)

// ErrUnknownTable is returned when a table name is not part of the shared schema.
var ErrUnknownTable = errors.New("unknown table")

// ColumnType is the logical type of a column, mapped to SQL per dialect.
type ColumnType int

const (
	Text ColumnType = iota
	Float
	Int
)

// Column describes one column of a shared table.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// Table is the contract between the fetchers, the loader and the dashboard.
// Rows exchanged with a Table hold, per column, nil, a string (Text),
// a float64 (Float) or an int64 (Int), in column order.
type Table struct {
	Name    string
	Columns []Column
}

// ColumnNames returns the column names in schema order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

var (
	ComplexRatings = Table{
		Name: "complex_ratings",
		Columns: []Column{
			{Name: "residential_complex", Type: Text},
			{Name: "rating", Type: Text, Nullable: true},
		},
	}

	Listings = Table{
		Name: "listings",
		Columns: []Column{
			{Name: "details", Type: Text, Nullable: true},
			{Name: "link", Type: Text, Nullable: true},
		},
	}

	JoinedListings = Table{
		Name: "joined_listings",
		Columns: []Column{
			{Name: "price_kzt", Type: Float, Nullable: true},
			{Name: "area_m2", Type: Float, Nullable: true},
			{Name: "rooms", Type: Int, Nullable: true},
			{Name: "floor", Type: Int, Nullable: true},
			{Name: "year_built", Type: Int, Nullable: true},
			{Name: "region", Type: Text, Nullable: true},
			{Name: "link", Type: Text, Nullable: true},
			{Name: "rating_2gis", Type: Float, Nullable: true},
		},
	}
)

// TableByName resolves one of the shared tables.
func TableByName(name string) (Table, error) {
	for _, t := range []Table{ComplexRatings, Listings, JoinedListings} {
		if t.Name == name {
			return t, nil
		}
	}
	return Table{}, fmt.Errorf("%w: %q", ErrUnknownTable, name)
}

// naTokens are the missing-value spellings written by spreadsheet and
// dataframe exports.
var naTokens = map[string]bool{
	"nan": true, "na": true, "n/a": true, "none": true, "null": true, "<na>": true,
}

// ParseValue converts a raw CSV cell into the typed value stored for col.
// Empty cells of nullable columns become nil; so does the literal "null"
// in nullable text columns, the way the rating placeholder is loaded, and
// any missing-value token in nullable numeric columns. Numbers must be finite.
func ParseValue(col Column, raw string) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if col.Nullable && (trimmed == "" || (col.Type == Text && trimmed == models.UnknownRating)) {
		return nil, nil
	}
	if col.Nullable && col.Type != Text && naTokens[strings.ToLower(trimmed)] {
		return nil, nil
	}

	switch col.Type {
	case Float:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("column %s: %q is not a number", col.Name, raw)
		}
		return f, nil
	case Int:
		// integer columns with gaps are often written as floats ("3.0")
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return nil, fmt.Errorf("column %s: %q is not an integer", col.Name, raw)
		}
		return int64(f), nil
	default:
		return raw, nil
	}
}

// NormaliseRows applies the CSV cell rules to rows built in memory, so a
// table loaded straight from scraped records holds the same values as one
// loaded from their CSV file.
func NormaliseRows(table Table, rows [][]any) ([][]any, error) {
	out := make([][]any, len(rows))
	for i, row := range rows {
		if len(row) != len(table.Columns) {
			return nil, fmt.Errorf("row %d has %d values, table %s has %d columns",
				i, len(row), table.Name, len(table.Columns))
		}
		normalised := make([]any, len(row))
		for j, v := range row {
			s, ok := v.(string)
			if !ok {
				normalised[j] = v
				continue
			}
			parsed, err := ParseValue(table.Columns[j], s)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			normalised[j] = parsed
		}
		out[i] = normalised
	}
	return out, nil
}

// FormatValue renders a typed value as a CSV cell.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *string:
		if x == nil {
			return ""
		}
		return *x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}

// RatingRows converts 2GIS records into rows of ComplexRatings.
func RatingRows(records []models.RatingRecord) [][]any {
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{r.ResidentialComplex, r.Rating}
	}
	return rows
}

// ListingRows converts krisha records into rows of Listings.
func ListingRows(records []models.ListingRecord) [][]any {
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{optional(r.Details), optional(r.Link)}
	}
	return rows
}

// JoinedFromRow builds a JoinedListing from a row of JoinedListings.
func JoinedFromRow(row []any) (models.JoinedListing, error) {
	if len(row) != len(JoinedListings.Columns) {
		return models.JoinedListing{}, fmt.Errorf("joined row has %d values, want %d",
			len(row), len(JoinedListings.Columns))
	}
	l := models.JoinedListing{
		PriceKZT:   floatValue(row[0]),
		AreaM2:     floatValue(row[1]),
		Rooms:      intValue(row[2]),
		Floor:      intValue(row[3]),
		YearBuilt:  intValue(row[4]),
		Region:     stringValue(row[5]),
		Rating2GIS: floatValue(row[7]),
	}
	if link := stringValue(row[6]); link != nil {
		l.Link = *link
	}
	return l, nil
}

func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func floatValue(v any) *float64 {
	switch x := v.(type) {
	case float64:
		return &x
	case int64:
		f := float64(x)
		return &f
	}
	return nil
}

func intValue(v any) *int {
	switch x := v.(type) {
	case int64:
		n := int(x)
		return &n
	case float64:
		n := int(math.Round(x))
		return &n
	}
	return nil
}

func stringValue(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}
