package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"listings-analytics/models"
	"listings-analytics/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(listings []models.JoinedListing) *models.SummaryReport {
	report := &models.SummaryReport{
		TopRated:         []models.JoinedListing{},
		ListingsByRegion: make(map[string]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	var rated []models.JoinedListing
	var total float64

	for i, l := range listings {
		if price, ok := l.Price(); ok && price > 0 {
			if report.PricedListings == 0 || price < report.MinPrice {
				report.MinPrice = price
			}
			if report.PricedListings == 0 || price > report.MaxPrice {
				report.MaxPrice = price
				report.MostExpensive = &listings[i]
			}
			report.PricedListings++
			total += price
		}
		if l.Rating2GIS != nil {
			rated = append(rated, l)
		}
		region := l.RegionName()
		if region == "" {
			region = models.UnknownRegion
		}
		report.ListingsByRegion[region]++
	}

	if report.PricedListings > 0 {
		report.AveragePrice = round2(total / float64(report.PricedListings))
	}

	// Top 5 by 2GIS rating, stable so ties keep file order
	sort.SliceStable(rated, func(i, j int) bool {
		return *rated[i].Rating2GIS > *rated[j].Rating2GIS
	})
	if len(rated) > 5 {
		rated = rated[:5]
	}
	report.TopRated = append(report.TopRated, rated...)

	s.logger.Debug("[insights] %d listings, %d priced, %d regions",
		report.TotalListings, report.PricedListings, len(report.ListingsByRegion))
	return report
}

func (s *InsightService) Print(w io.Writer, r *models.SummaryReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n%s\n", sep)
	fmt.Fprintf(w, "  ASTANA LISTINGS SUMMARY\n")
	fmt.Fprintf(w, "%s\n\n", sep)

	fmt.Fprintf(w, "  Overview\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Total listings  : %d\n", r.TotalListings)
	fmt.Fprintf(w, "  With a price    : %d\n", r.PricedListings)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  Price Statistics (KZT)\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.PricedListings > 0 {
		fmt.Fprintf(w, "  Average price : %s\n", formatTenge(r.AveragePrice))
		fmt.Fprintf(w, "  Minimum price : %s\n", formatTenge(r.MinPrice))
		fmt.Fprintf(w, "  Maximum price : %s\n", formatTenge(r.MaxPrice))
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	if r.MostExpensive != nil {
		fmt.Fprintf(w, "  Most Expensive Listing\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %s\n", truncate(r.MostExpensive.Link, 50))
		fmt.Fprintf(w, "  Region : %s\n", r.MostExpensive.RegionName())
		fmt.Fprintf(w, "  Price  : %s\n", formatTenge(*r.MostExpensive.PriceKZT))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "  Top 5 by 2GIS Rating\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.TopRated) == 0 {
		fmt.Fprintf(w, "  No rated listings found\n")
	} else {
		for i, l := range r.TopRated {
			fmt.Fprintf(w, "  %d. %-40s %.1f ★\n", i+1, truncate(l.Link, 38), *l.Rating2GIS)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  Listings by Region\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.ListingsByRegion) == 0 {
		fmt.Fprintf(w, "  No region data\n")
	} else {
		type regionCount struct {
			region string
			count  int
		}
		var regions []regionCount
		for region, cnt := range r.ListingsByRegion {
			regions = append(regions, regionCount{region, cnt})
		}
		sort.Slice(regions, func(i, j int) bool {
			if regions[i].count != regions[j].count {
				return regions[i].count > regions[j].count
			}
			return regions[i].region < regions[j].region
		})
		for _, rc := range regions {
			fmt.Fprintf(w, "  %-30s %d\n", truncate(rc.region, 28), rc.count)
		}
	}

	fmt.Fprintf(w, "\n%s\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}

// formatTenge renders whole tenge with thin-space thousands separators.
func formatTenge(v float64) string {
	digits := fmt.Sprintf("%.0f", v)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return b.String() + " ₸"
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
