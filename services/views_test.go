package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listings-analytics/models"
)

func pricedListings(region string, prices ...float64) []models.JoinedListing {
	out := make([]models.JoinedListing, len(prices))
	for i, p := range prices {
		out[i] = models.JoinedListing{
			PriceKZT: models.FloatPtr(p),
			AreaM2:   models.FloatPtr(50 + float64(i)),
			Rooms:    models.IntPtr(i + 1),
			Region:   models.StringPtr(region),
		}
	}
	return out
}

func TestPriceDistributionDropsOutliers(t *testing.T) {
	listings := pricedListings("Есиль", 10, 20, 30, 999_999_999)

	views := BuildViews(listings)
	assert.Equal(t, []float64{10 / 1e6, 20 / 1e6, 30 / 1e6}, views.Distribution.Prices)
	assert.InDelta(t, 20/1e6, views.Distribution.Mean, 1e-12)
	assert.InDelta(t, 20/1e6, views.Distribution.Median, 1e-12)

	// the other views keep every row
	assert.Len(t, views.PriceArea, 4)
	require.Len(t, views.RegionPrices, 1)
	assert.Equal(t, 4, views.RegionPrices[0].Listings)
	assert.InDelta(t, (10+20+30+999_999_999)/4.0, views.RegionPrices[0].AveragePrice, 1e-6)
}

func TestPriceDistributionIgnoresNonPositiveAndNull(t *testing.T) {
	listings := pricedListings("x", 0, -5, 150_000_000, 40_000_000)
	listings = append(listings, models.JoinedListing{})

	dist := PriceDistribution(listings)
	assert.Equal(t, []float64{150, 40}, dist.Prices)
	assert.Equal(t, 95.0, dist.Mean)
	assert.Equal(t, 95.0, dist.Median)
}

func TestHistogramCoversAllPrices(t *testing.T) {
	dist := PriceDistribution(pricedListings("x", 10e6, 12e6, 15e6, 20e6, 30e6))
	require.Len(t, dist.Bins, 20)
	total := 0
	for _, b := range dist.Bins {
		total += b.Count
	}
	assert.Equal(t, 5, total)
	assert.Equal(t, 10.0, dist.Bins[0].Low)
	assert.Equal(t, 30.0, dist.Bins[19].High)
	assert.Equal(t, 1, dist.Bins[19].Count, "max lands in the closed last bin")
}

func TestDensityCurve(t *testing.T) {
	dist := PriceDistribution(pricedListings("x", 10e6, 12e6, 15e6, 20e6, 30e6))
	require.Len(t, dist.Density, 500)
	assert.Equal(t, 10.0, dist.Density[0].X)
	assert.Equal(t, 30.0, dist.Density[499].X)

	// the scaled curve integrates to about n * binWidth over a wide range;
	// over the data range it must stay positive and below that total
	binWidth := dist.Bins[0].High - dist.Bins[0].Low
	var area float64
	for i := 1; i < len(dist.Density); i++ {
		dx := dist.Density[i].X - dist.Density[i-1].X
		area += dx * (dist.Density[i].Y + dist.Density[i-1].Y) / 2
		assert.Greater(t, dist.Density[i].Y, 0.0)
	}
	assert.Less(t, area, 5*binWidth)
	assert.Greater(t, area, 0.5*5*binWidth)
}

func TestDensityNeedsSpread(t *testing.T) {
	assert.Nil(t, PriceDistribution(pricedListings("x", 10e6)).Density)
	dist := PriceDistribution(pricedListings("x", 10e6, 10e6))
	assert.Nil(t, dist.Density)
	require.Len(t, dist.Bins, 20)
	assert.InDelta(t, 9.5, dist.Bins[0].Low, 1e-9)
}

func TestPriceDistributionEmpty(t *testing.T) {
	dist := PriceDistribution(nil)
	assert.Empty(t, dist.Prices)
	assert.Empty(t, dist.Bins)
	assert.Nil(t, dist.Density)
}

func TestRegionPricesSortedDescending(t *testing.T) {
	listings := append(pricedListings("A", 10e6, 20e6), pricedListings("B", 40e6)...)
	listings = append(listings, pricedListings("C", 5e6)...)
	listings = append(listings, models.JoinedListing{PriceKZT: models.FloatPtr(1e9)})
	listings = append(listings, models.JoinedListing{Region: models.StringPtr("A")})

	got := RegionPrices(listings)
	require.Len(t, got, 3)
	assert.Equal(t, "B", got[0].Region)
	assert.Equal(t, "A", got[1].Region)
	assert.Equal(t, 15e6, got[1].AveragePrice)
	assert.Equal(t, 2, got[1].Listings)
	assert.Equal(t, "C", got[2].Region)
}

func TestPriceAreaSkipsIncomplete(t *testing.T) {
	listings := []models.JoinedListing{
		{PriceKZT: models.FloatPtr(1), AreaM2: models.FloatPtr(2)},
		{PriceKZT: models.FloatPtr(1)},
		{AreaM2: models.FloatPtr(2)},
	}
	got := PriceArea(listings)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Rooms)
	assert.False(t, math.IsNaN(got[0].AreaM2))
}
