package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"listings-analytics/models"
	"listings-analytics/utils"
)

// ratingRegexp captures a numeric rating in the 0.0–5.0 range, with either decimal separator
var ratingRegexp = regexp.MustCompile(`^([0-5](?:[.,]\d{1,2})?)$`)

// Cleaner validates scraped records at the parse boundary. It never drops or
// merges records: every card seen on the site stays one row.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// CleanRatings normalises complex names and ratings. A missing name becomes
// the UnknownComplex placeholder; a missing or malformed rating becomes UnknownRating.
func (c *Cleaner) CleanRatings(raw []models.RatingRecord) []models.RatingRecord {
	result := make([]models.RatingRecord, 0, len(raw))
	replaced := 0

	for _, r := range raw {
		name := normaliseText(r.ResidentialComplex)
		if name == "" {
			name = models.UnknownComplex
		}

		rating := models.UnknownRating
		if v, ok := c.parseRating(r.Rating); ok {
			rating = v
		} else if t := normaliseText(r.Rating); t != "" && t != models.UnknownRating {
			c.logger.Debug("[cleaner] Unrecognised rating %q for %s", r.Rating, name)
			replaced++
		}

		result = append(result, models.RatingRecord{ResidentialComplex: name, Rating: rating})
	}

	if replaced > 0 {
		c.logger.Warn("[cleaner] %d ratings were not numbers and were stored as %q", replaced, models.UnknownRating)
	}
	return result
}

// CleanListings collapses whitespace in details and links; blank values become nil.
func (c *Cleaner) CleanListings(raw []models.ListingRecord) []models.ListingRecord {
	result := make([]models.ListingRecord, 0, len(raw))
	for _, r := range raw {
		result = append(result, models.ListingRecord{
			Details: nonBlank(r.Details, normaliseText),
			Link:    nonBlank(r.Link, strings.TrimSpace),
		})
	}
	c.logger.Debug("[cleaner] Cleaned %d listings", len(result))
	return result
}

// parseRating returns the rating in canonical "4.8" form when raw is a 0–5 number.
func (c *Cleaner) parseRating(raw string) (string, bool) {
	match := ratingRegexp.FindStringSubmatch(strings.TrimSpace(raw))
	if len(match) < 2 {
		return "", false
	}
	val, err := strconv.ParseFloat(strings.Replace(match[1], ",", ".", 1), 64)
	if err != nil || val < 0 || val > 5 {
		return "", false
	}
	return strconv.FormatFloat(val, 'f', -1, 64), true
}

func nonBlank(s *string, norm func(string) string) *string {
	if s == nil {
		return nil
	}
	v := norm(*s)
	if v == "" {
		return nil
	}
	return &v
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.Join(fields, " ")
}
