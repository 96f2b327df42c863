package models

// Placeholder values substituted when a field is absent from the source markup.
const (
	UnknownComplex = "не указано"
	UnknownRating  = "null"
	UnknownRegion  = "не указано"
)

// ListingRecord is one krisha.kz search card. Nil means the element was
// absent on the card.
type ListingRecord struct {
	Details *string `json:"details"`
	Link    *string `json:"link"`
}

// RatingRecord is one 2GIS residential complex card. Absent fields carry the
// UnknownComplex and UnknownRating placeholders, never empty strings.
type RatingRecord struct {
	ResidentialComplex string `json:"residential_complex"`
	Rating             string `json:"rating"`
}

// JoinedListing is a listing enriched with its complex rating. The table is
// produced outside this repository; every numeric column may be null.
type JoinedListing struct {
	PriceKZT   *float64 `json:"price_kzt"`
	AreaM2     *float64 `json:"area_m2"`
	Rooms      *int     `json:"rooms"`
	Floor      *int     `json:"floor"`
	YearBuilt  *int     `json:"year_built"`
	Region     *string  `json:"region"`
	Link       string   `json:"link"`
	Rating2GIS *float64 `json:"rating_2gis"`
}

// Price returns the listing price and whether it is known.
func (l JoinedListing) Price() (float64, bool) {
	if l.PriceKZT == nil {
		return 0, false
	}
	return *l.PriceKZT, true
}

// RegionName returns the region or "" when null.
func (l JoinedListing) RegionName() string {
	if l.Region == nil {
		return ""
	}
	return *l.Region
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// FloatPtr returns a pointer to f.
func FloatPtr(f float64) *float64 { return &f }

// IntPtr returns a pointer to n.
func IntPtr(n int) *int { return &n }
