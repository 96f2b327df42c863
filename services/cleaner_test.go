package services

import (
	"testing"

	"listings-analytics/models"
	"listings-analytics/utils"
)

func newTestLogger() *utils.Logger { return utils.NewDiscardLogger() }

func TestCleanerParseRating(t *testing.T) {
	c := NewCleaner(newTestLogger())

	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"4.8", "4.8", true},
		{"5", "5", true},
		{" 3,9 ", "3.9", true},
		{"4.50", "4.5", true},
		{"", "", false},
		{"null", "", false},
		{"6.0", "", false},
		{"12 оценок", "", false},
	}

	for _, tt := range tests {
		got, ok := c.parseRating(tt.raw)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("parseRating(%q) = (%q, %v); want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCleanerRatingPlaceholders(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []models.RatingRecord{
		{ResidentialComplex: "  ЖК   Хайвил ", Rating: "4.8"},
		{ResidentialComplex: "", Rating: ""},
		{ResidentialComplex: "ЖК Нурлы", Rating: "null"},
		{ResidentialComplex: "ЖК Европа", Rating: "мало отзывов"},
	}

	cleaned := c.CleanRatings(raw)
	if len(cleaned) != len(raw) {
		t.Fatalf("expected %d records, got %d", len(raw), len(cleaned))
	}
	want := []models.RatingRecord{
		{ResidentialComplex: "ЖК Хайвил", Rating: "4.8"},
		{ResidentialComplex: models.UnknownComplex, Rating: models.UnknownRating},
		{ResidentialComplex: "ЖК Нурлы", Rating: models.UnknownRating},
		{ResidentialComplex: "ЖК Европа", Rating: models.UnknownRating},
	}
	for i := range want {
		if cleaned[i] != want[i] {
			t.Errorf("record %d: got %+v, want %+v", i, cleaned[i], want[i])
		}
	}
}

func TestCleanerKeepsDuplicates(t *testing.T) {
	c := NewCleaner(newTestLogger())
	link := "https://krisha.kz/a/show/1"
	raw := []models.ListingRecord{
		{Details: models.StringPtr("A"), Link: &link},
		{Details: models.StringPtr("A"), Link: &link},
	}
	if got := c.CleanListings(raw); len(got) != 2 {
		t.Errorf("expected both duplicate listings to be kept, got %d", len(got))
	}
}

func TestCleanerBlankListingFieldsBecomeNil(t *testing.T) {
	c := NewCleaner(newTestLogger())
	cleaned := c.CleanListings([]models.ListingRecord{
		{Details: models.StringPtr("   "), Link: models.StringPtr(" https://krisha.kz/a/show/2 ")},
		{Details: nil, Link: models.StringPtr("")},
	})

	if cleaned[0].Details != nil {
		t.Errorf("blank details should become nil, got %q", *cleaned[0].Details)
	}
	if cleaned[0].Link == nil || *cleaned[0].Link != "https://krisha.kz/a/show/2" {
		t.Errorf("link should be trimmed, got %v", cleaned[0].Link)
	}
	if cleaned[1].Link != nil {
		t.Errorf("empty link should become nil")
	}
}
