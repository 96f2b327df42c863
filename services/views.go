package services

import (
	"math"
	"sort"

	"listings-analytics/models"
)

const (
	// PriceCeiling drops outliers from the price distribution only.
	PriceCeiling   = 150_000_000
	histogramBins  = 20
	densityPoints  = 500
	millionsDivide = 1e6
)

// BuildViews computes the three dashboard views for listings.
func BuildViews(listings []models.JoinedListing) models.Views {
	return models.Views{
		Distribution: PriceDistribution(listings),
		RegionPrices: RegionPrices(listings),
		PriceArea:    PriceArea(listings),
	}
}

// PriceDistribution takes prices above zero and at most PriceCeiling, in
// millions, and bins them into a histogram with a density overlay.
func PriceDistribution(listings []models.JoinedListing) models.PriceDistribution {
	prices := make([]float64, 0, len(listings))
	for _, l := range listings {
		if p, ok := l.Price(); ok && p > 0 && p <= PriceCeiling {
			prices = append(prices, p/millionsDivide)
		}
	}

	dist := models.PriceDistribution{Prices: prices, Bins: []models.HistogramBin{}}
	if len(prices) == 0 {
		return dist
	}
	dist.Mean = mean(prices)
	dist.Median = median(prices)
	dist.Bins = histogram(prices, histogramBins)

	binWidth := dist.Bins[0].High - dist.Bins[0].Low
	dist.Density = density(prices, densityPoints, float64(len(prices))*binWidth)
	return dist
}

// RegionPrices averages known prices per known region, highest first.
func RegionPrices(listings []models.JoinedListing) []models.RegionPrice {
	type acc struct {
		sum float64
		n   int
	}
	byRegion := make(map[string]*acc)
	for _, l := range listings {
		price, ok := l.Price()
		if !ok || l.Region == nil {
			continue
		}
		a := byRegion[*l.Region]
		if a == nil {
			a = &acc{}
			byRegion[*l.Region] = a
		}
		a.sum += price
		a.n++
	}

	out := make([]models.RegionPrice, 0, len(byRegion))
	for region, a := range byRegion {
		out = append(out, models.RegionPrice{
			Region:       region,
			AveragePrice: a.sum / float64(a.n),
			Listings:     a.n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AveragePrice != out[j].AveragePrice {
			return out[i].AveragePrice > out[j].AveragePrice
		}
		return out[i].Region < out[j].Region
	})
	return out
}

// PriceArea returns one point per listing with both an area and a price.
func PriceArea(listings []models.JoinedListing) []models.PriceAreaPoint {
	out := make([]models.PriceAreaPoint, 0, len(listings))
	for _, l := range listings {
		if l.AreaM2 == nil || l.PriceKZT == nil {
			continue
		}
		out = append(out, models.PriceAreaPoint{AreaM2: *l.AreaM2, PriceKZT: *l.PriceKZT, Rooms: l.Rooms})
	}
	return out
}

// histogram splits [min, max] into n equal bins, the last one closed.
// A degenerate range is widened by half a unit each side.
func histogram(values []float64, n int) []models.HistogramBin {
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	width := (hi - lo) / float64(n)

	bins := make([]models.HistogramBin, n)
	for i := range bins {
		bins[i].Low = lo + float64(i)*width
		bins[i].High = lo + float64(i+1)*width
	}
	bins[n-1].High = hi

	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= n {
			idx = n - 1
		}
		if idx < 0 {
			idx = 0
		}
		bins[idx].Count++
	}
	return bins
}

// density evaluates a Gaussian kernel density estimate with Scott's
// bandwidth on points evenly spaced over the data range, multiplied by
// scale. Nil when the bandwidth is undefined.
func density(values []float64, points int, scale float64) []models.CurvePoint {
	n := float64(len(values))
	if len(values) < 2 {
		return nil
	}
	sd := stddev(values)
	if sd == 0 || math.IsNaN(sd) {
		return nil
	}
	bw := sd * math.Pow(n, -1.0/5.0)

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	norm := scale / (n * bw * math.Sqrt(2*math.Pi))
	step := (hi - lo) / float64(points-1)
	curve := make([]models.CurvePoint, points)
	for i := range curve {
		x := lo + float64(i)*step
		if i == points-1 {
			x = hi
		}
		var sum float64
		for _, v := range values {
			z := (x - v) / bw
			sum += math.Exp(-0.5 * z * z)
		}
		curve[i] = models.CurvePoint{X: x, Y: sum * norm}
	}
	return curve
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// stddev is the sample standard deviation.
func stddev(values []float64) float64 {
	m := mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
