package models

// SummaryReport holds the computed analytics over the joined listings.
type SummaryReport struct {
	TotalListings    int             `json:"total_listings"`
	PricedListings   int             `json:"priced_listings"`
	AveragePrice     float64         `json:"average_price"`
	MinPrice         float64         `json:"min_price"`
	MaxPrice         float64         `json:"max_price"`
	MostExpensive    *JoinedListing  `json:"most_expensive,omitempty"`
	TopRated         []JoinedListing `json:"top_rated"`
	ListingsByRegion map[string]int  `json:"listings_by_region"`
}

// HistogramBin is one bar of the price distribution.
type HistogramBin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// CurvePoint is one sample of the density overlay.
type CurvePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PriceDistribution is the histogram view, in millions of tenge.
type PriceDistribution struct {
	Prices  []float64      `json:"prices"`
	Bins    []HistogramBin `json:"bins"`
	Density []CurvePoint   `json:"density,omitempty"`
	Mean    float64        `json:"mean"`
	Median  float64        `json:"median"`
}

// RegionPrice is one bar of the average-price-by-region view.
type RegionPrice struct {
	Region       string  `json:"region"`
	AveragePrice float64 `json:"price_kzt"`
	Listings     int     `json:"listings"`
}

// PriceAreaPoint is one dot of the price-vs-area scatter.
type PriceAreaPoint struct {
	AreaM2   float64 `json:"area_m2"`
	PriceKZT float64 `json:"price_kzt"`
	Rooms    *int    `json:"rooms"`
}

// Views bundles everything the dashboard renders for one dataset.
type Views struct {
	Distribution PriceDistribution `json:"price_distribution"`
	RegionPrices []RegionPrice     `json:"region_prices"`
	PriceArea    []PriceAreaPoint  `json:"price_area"`
}

// Assessment scores one listing against the others in its region, 0 to 10.
// A nil score could not be computed.
type Assessment struct {
	Link    string              `json:"link"`
	Region  string              `json:"region"`
	Scores  map[string]*float64 `json:"scores"`
	Overall *float64            `json:"overall"`
}
