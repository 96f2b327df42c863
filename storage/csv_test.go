package storage

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRoundTripListings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "listings.csv")
	rows := [][]any{
		{"3-комнатная | 90 м²", "https://krisha.kz/a/show/1"},
		{nil, "https://krisha.kz/a/show/2"},
		{"студия", nil},
	}
	require.NoError(t, WriteTableCSV(path, Listings, rows))

	got, err := ReadTableCSV(path, Listings)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestReadTableReordersColumns(t *testing.T) {
	in := "link,extra,details\nhttps://krisha.kz/a/show/9,x,описание\n"
	got, err := ReadTable(strings.NewReader(in), Listings)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"описание", "https://krisha.kz/a/show/9"}}, got)
}

func TestReadTableMissingColumn(t *testing.T) {
	_, err := ReadTable(strings.NewReader("details\nfoo\n"), Listings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns link")
}

func TestReadTableEmptyInput(t *testing.T) {
	_, err := ReadTable(strings.NewReader(""), Listings)
	assert.Error(t, err)
}

func TestReadTableRatingPlaceholderBecomesNull(t *testing.T) {
	in := "residential_complex,rating\nЖК Хайвил,4.8\nне указано,null\n"
	got, err := ReadTable(strings.NewReader(in), ComplexRatings)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"ЖК Хайвил", "4.8"}, {"не указано", nil}}, got)
}

func TestReadTableBadNumber(t *testing.T) {
	in := "price_kzt,area_m2,rooms,floor,year_built,region,link,rating_2gis\nlots,1,1,1,2000,r,l,\n"
	_, err := ReadTable(strings.NewReader(in), JoinedListings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestCSVWriterRejectsWrongWidth(t *testing.T) {
	w, err := NewCSVWriter(filepath.Join(t.TempDir(), "r.csv"), ComplexRatings)
	require.NoError(t, err)
	defer w.Close()
	assert.Error(t, w.Write([][]any{{"only one"}}))
}

func TestReadTableMissingValueTokens(t *testing.T) {
	in := "price_kzt,area_m2,rooms,floor,year_built,region,link,rating_2gis\n" +
		"nan,45,NA,2,None,Есиль,https://krisha.kz/a/show/1,NaN\n"
	got, err := ReadTable(strings.NewReader(in), JoinedListings)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{nil, 45.0, nil, int64(2), nil, "Есиль", "https://krisha.kz/a/show/1", nil}}, got)
}

func TestReadTableRejectsInfinitePrice(t *testing.T) {
	in := "price_kzt,area_m2,rooms,floor,year_built,region,link,rating_2gis\ninf,1,1,1,2000,r,l,\n"
	_, err := ReadTable(strings.NewReader(in), JoinedListings)
	assert.ErrorContains(t, err, "line 2")
}
