package services

import (
	"errors"
	"math"

	"listings-analytics/models"
)

// ErrListingNotFound is returned when no listing has the requested link.
var ErrListingNotFound = errors.New("listing not found")

// Score names, in display order.
const (
	ScorePrice       = "price"
	ScoreYearBuilt   = "year_built"
	ScoreAreaPerRoom = "area_per_room"
	ScoreFloor       = "floor"
	ScoreRating      = "rating_2gis"
)

var ScoreNames = []string{ScorePrice, ScoreYearBuilt, ScoreAreaPerRoom, ScoreFloor, ScoreRating}

// Assess scores the listing with link against the listings of its region.
// Each score places the value on 0..10 between the regional minimum and
// maximum; price and area per room use a log scale. The 2GIS rating is
// placed on its fixed 0..5 range.
func Assess(listings []models.JoinedListing, link string) (*models.Assessment, error) {
	var rec *models.JoinedListing
	for i := range listings {
		if listings[i].Link == link {
			rec = &listings[i]
			break
		}
	}
	if rec == nil {
		return nil, ErrListingNotFound
	}

	var region []models.JoinedListing
	if rec.Region != nil {
		for _, l := range listings {
			if l.Region != nil && *l.Region == *rec.Region {
				region = append(region, l)
			}
		}
	}

	prices := collect(region, func(l models.JoinedListing) *float64 { return l.PriceKZT })
	years := collect(region, func(l models.JoinedListing) *float64 { return intToFloat(l.YearBuilt) })
	perRoom := collect(region, areaPerRoom)
	floors := collect(region, func(l models.JoinedListing) *float64 { return intToFloat(l.Floor) })

	scores := map[string]*float64{
		ScorePrice:       scoreWithin(rec.PriceKZT, prices, true),
		ScoreYearBuilt:   scoreWithin(intToFloat(rec.YearBuilt), years, false),
		ScoreAreaPerRoom: scoreWithin(areaPerRoom(*rec), perRoom, true),
		ScoreFloor:       scoreWithin(intToFloat(rec.Floor), floors, false),
		ScoreRating:      normalise(rec.Rating2GIS, 0, 5, false),
	}

	a := &models.Assessment{Link: link, Region: rec.RegionName(), Scores: scores}
	var sum float64
	var n int
	for _, s := range scores {
		if s != nil {
			sum += *s
			n++
		}
	}
	if n > 0 {
		overall := sum / float64(n)
		a.Overall = &overall
	}
	return a, nil
}

func scoreWithin(v *float64, values []float64, useLog bool) *float64 {
	if len(values) == 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, x := range values {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return normalise(v, lo, hi, useLog)
}

// normalise maps v from [lo, hi] onto [0, 10]. Nil when v is missing, the
// range is empty or a log is undefined.
func normalise(v *float64, lo, hi float64, useLog bool) *float64 {
	if v == nil || math.IsNaN(*v) || hi <= lo {
		return nil
	}
	val := *v
	if useLog {
		if val <= 0 || lo <= 0 {
			return nil
		}
		val, lo, hi = math.Log(val), math.Log(lo), math.Log(hi)
	}
	score := 10 * (val - lo) / (hi - lo)
	return &score
}

func collect(listings []models.JoinedListing, get func(models.JoinedListing) *float64) []float64 {
	var out []float64
	for _, l := range listings {
		if v := get(l); v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) {
			out = append(out, *v)
		}
	}
	return out
}

func areaPerRoom(l models.JoinedListing) *float64 {
	if l.AreaM2 == nil || l.Rooms == nil || *l.Rooms == 0 {
		return nil
	}
	v := *l.AreaM2 / float64(*l.Rooms)
	return &v
}

func intToFloat(n *int) *float64 {
	if n == nil {
		return nil
	}
	f := float64(*n)
	return &f
}
