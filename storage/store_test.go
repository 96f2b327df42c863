package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemoryStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), "sqlite://:memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestParseDatabaseURL(t *testing.T) {
	d, dsn, err := ParseDatabaseURL("postgres://u:p@localhost:5432/db?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name)
	assert.Equal(t, "postgres://u:p@localhost:5432/db?sslmode=disable", dsn)

	d, dsn, err = ParseDatabaseURL("mysql://u:p@db.local/listings")
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name)
	assert.True(t, strings.HasPrefix(dsn, "u:p@tcp(db.local:3306)/listings"), dsn)

	d, dsn, err = ParseDatabaseURL("sqlite:///tmp/listings.db")
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", d.Name)
	assert.Equal(t, "/tmp/listings.db", dsn)

	_, _, err = ParseDatabaseURL("oracle://x")
	assert.True(t, errors.Is(err, ErrUnknownDriver))

	_, _, err = ParseDatabaseURL("just-a-path")
	assert.True(t, errors.Is(err, ErrUnknownDriver))
}

func TestReplaceWritesExactRows(t *testing.T) {
	s := openMemoryStore(t)
	ctx := context.Background()
	rows := [][]any{
		{"a", "https://krisha.kz/a/show/1"},
		{"b", nil},
		{nil, "https://krisha.kz/a/show/3"},
	}

	n, err := s.Replace(ctx, Listings, rows)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := s.ReadTable(ctx, Listings)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestReplaceIsNotAppend(t *testing.T) {
	s := openMemoryStore(t)
	ctx := context.Background()
	first := [][]any{{"ЖК А", "4.5"}, {"ЖК Б", nil}}
	second := [][]any{{"ЖК В", "3.9"}}

	_, err := s.Replace(ctx, ComplexRatings, first)
	require.NoError(t, err)
	_, err = s.Replace(ctx, ComplexRatings, second)
	require.NoError(t, err)
	_, err = s.Replace(ctx, ComplexRatings, second)
	require.NoError(t, err)

	got, err := s.ReadTable(ctx, ComplexRatings)
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestReplaceManyRowsAcrossBatches(t *testing.T) {
	s := openMemoryStore(t)
	ctx := context.Background()
	rows := make([][]any, 0, 120)
	for i := 0; i < 120; i++ {
		rows = append(rows, []any{"d", "l"})
	}
	n, err := s.Replace(ctx, Listings, rows)
	require.NoError(t, err)
	assert.Equal(t, 120, n)

	got, err := s.ReadTable(ctx, Listings)
	require.NoError(t, err)
	assert.Len(t, got, 120)
}

func TestReplaceRejectsWrongWidthBeforeWriting(t *testing.T) {
	s := openMemoryStore(t)
	ctx := context.Background()
	_, err := s.Replace(ctx, Listings, [][]any{{"keep", "me"}})
	require.NoError(t, err)

	_, err = s.Replace(ctx, Listings, [][]any{{"too", "many", "values"}})
	require.Error(t, err)

	got, err := s.ReadTable(ctx, Listings)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"keep", "me"}}, got)
}

func TestReadJoinedTypes(t *testing.T) {
	s := openMemoryStore(t)
	ctx := context.Background()
	rows := [][]any{{25e6, 54.5, int64(2), int64(5), int64(2015), "Есиль", "https://krisha.kz/a/show/1", 4.6}}
	_, err := s.Replace(ctx, JoinedListings, rows)
	require.NoError(t, err)

	got, err := s.ReadTable(ctx, JoinedListings)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestReadMissingTable(t *testing.T) {
	s := openMemoryStore(t)
	_, err := s.ReadTable(context.Background(), JoinedListings)
	assert.Error(t, err)
}
