package krisha

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"listings-analytics/models"
)

// Selectors of the krisha.kz search results page.
const (
	cardSelector    = "div.a-card__inc"
	linkSelector    = "a.a-card__image"
	detailsSelector = "div.a-card__descr"
	detailsSep      = " | "
)

// ParseCards extracts one ListingRecord per result card. A page without
// cards yields an empty slice, which callers treat as the end of results.
func ParseCards(body []byte, apiBase string) ([]models.ListingRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("krisha: parse html: %w", err)
	}

	cards := doc.Find(cardSelector)
	records := make([]models.ListingRecord, 0, cards.Length())
	cards.Each(func(_ int, card *goquery.Selection) {
		var rec models.ListingRecord

		if a := card.Find(linkSelector).First(); a.Length() > 0 {
			href, _ := a.Attr("href")
			rec.Link = ResolveLink(apiBase, href)
		}

		if descr := card.Find(detailsSelector).First(); descr.Length() > 0 {
			var parts []string
			collectText(descr, &parts)
			details := strings.Join(parts, detailsSep)
			rec.Details = &details
		}

		records = append(records, rec)
	})
	return records, nil
}

// ResolveLink makes a site-relative href absolute against apiBase. An empty
// href resolves to nil; anything not starting with "/" is returned unchanged.
func ResolveLink(apiBase, href string) *string {
	if href == "" {
		return nil
	}
	if strings.HasPrefix(href, "/") {
		link := strings.TrimRight(apiBase, "/") + href
		return &link
	}
	return &href
}

// collectText appends every non-blank text node under s, trimmed, in document order.
func collectText(s *goquery.Selection, parts *[]string) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		switch goquery.NodeName(c) {
		case "#text":
			if t := strings.TrimSpace(c.Text()); t != "" {
				*parts = append(*parts, t)
			}
		case "#comment", "script", "style":
		default:
			collectText(c, parts)
		}
	})
}
