package twogis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listings-analytics/models"
)

const resultsMarkup = `<html><body>
<div class="_1kf6gff">
  <span class="_lvwrwt"><span> ЖК <b>Хайвил</b> </span></span>
  <div class="_y10azs"> 4.8 </div>
</div>
<div class="_1kf6gff">
  <span class="_lvwrwt"><span>ЖК Нурлы Жол</span></span>
</div>
<div class="_1kf6gff">
  <div class="_y10azs">4.1</div>
</div>
<div class="_1kf6gff"></div>
</body></html>`

func TestParseCardsPlaceholders(t *testing.T) {
	records, err := ParseCards(resultsMarkup)
	require.NoError(t, err)
	assert.Equal(t, []models.RatingRecord{
		{ResidentialComplex: "ЖКХайвил", Rating: "4.8"},
		{ResidentialComplex: "ЖК Нурлы Жол", Rating: "null"},
		{ResidentialComplex: "не указано", Rating: "4.1"},
		{ResidentialComplex: "не указано", Rating: "null"},
	}, records)
}

func TestParseCardsNoCards(t *testing.T) {
	records, err := ParseCards("<html><body><p>пусто</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseResultCount(t *testing.T) {
	n, err := ParseResultCount("1 234")
	require.NoError(t, err)
	assert.Equal(t, 1234, n)

	n, err = ParseResultCount("48")
	require.NoError(t, err)
	assert.Equal(t, 48, n)

	_, err = ParseResultCount("нет")
	assert.True(t, errors.Is(err, ErrNoResultCount))
}

func TestPageBudget(t *testing.T) {
	assert.Equal(t, 3, PageBudget(0))
	assert.Equal(t, 3, PageBudget(11))
	assert.Equal(t, 4, PageBudget(12))
	assert.Equal(t, 12, PageBudget(110))
	assert.Equal(t, 10, expectedPages(110))
}
