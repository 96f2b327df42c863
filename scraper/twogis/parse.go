package twogis

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"listings-analytics/models"
)

// ErrNoResultCount is returned when the result counter holds no number.
var ErrNoResultCount = errors.New("twogis: result count not found")

// ParseCards extracts one RatingRecord per card of a rendered results page.
// Missing elements yield the placeholder values.
func ParseCards(html string) ([]models.RatingRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("twogis: parse html: %w", err)
	}

	cards := doc.Find(cardSelector)
	records := make([]models.RatingRecord, 0, cards.Length())
	cards.Each(func(_ int, card *goquery.Selection) {
		rec := models.RatingRecord{
			ResidentialComplex: models.UnknownComplex,
			Rating:             models.UnknownRating,
		}
		if name := card.Find(nameSelector).First(); name.Length() > 0 {
			rec.ResidentialComplex = strippedText(name)
		}
		if rating := card.Find(ratingSelector).First(); rating.Length() > 0 {
			rec.Rating = strippedText(rating)
		}
		records = append(records, rec)
	})
	return records, nil
}

// ParseResultCount reads the number shown in the result counter, ignoring
// any non-digit characters such as thin spaces between thousands.
func ParseResultCount(text string) (int, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, text)
	if digits == "" {
		return 0, fmt.Errorf("%w: %q", ErrNoResultCount, text)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNoResultCount, text)
	}
	return n, nil
}

// PageBudget is how many pages to walk for count results.
func PageBudget(count int) int {
	return count/cardsPerPage + extraPages
}

// expectedPages is how many pages should really exist for count results.
func expectedPages(count int) int {
	return (count + cardsPerPage - 1) / cardsPerPage
}

// strippedText concatenates the trimmed text nodes under s.
func strippedText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		switch goquery.NodeName(c) {
		case "#text":
			b.WriteString(strings.TrimSpace(c.Text()))
		case "#comment":
		default:
			b.WriteString(strippedText(c))
		}
	})
	return b.String()
}
