package estimator

import (
	"math"
	"sort"

	"listings-analytics/models"
)

// numericFeatures is the column order of the numeric part of a design row.
var numericFeatures = []string{"rooms", "area_m2", "floor", "year_built"}

// Features is one listing as the model sees it. Nil numeric fields and an
// empty region are imputed.
type Features struct {
	Rooms     *float64 `json:"rooms"`
	AreaM2    *float64 `json:"area_m2"`
	Floor     *float64 `json:"floor"`
	YearBuilt *float64 `json:"year_built"`
	Region    string   `json:"region"`
}

// FeaturesOf extracts the model inputs of a joined listing.
func FeaturesOf(l models.JoinedListing) Features {
	f := Features{
		Rooms:     intToFloat(l.Rooms),
		AreaM2:    l.AreaM2,
		Floor:     intToFloat(l.Floor),
		YearBuilt: intToFloat(l.YearBuilt),
	}
	if l.Region != nil {
		f.Region = *l.Region
	}
	return f
}

func (f Features) numeric() []*float64 {
	return []*float64{f.Rooms, f.AreaM2, f.Floor, f.YearBuilt}
}

// preprocessor imputes numeric features with the training median and
// standardises them, then one-hot encodes the region. Regions not seen in
// training encode as all zeros.
type preprocessor struct {
	medians    []float64
	means      []float64
	scales     []float64
	categories []string
	index      map[string]int
}

func fitPreprocessor(rows []Features) *preprocessor {
	p := &preprocessor{
		medians: make([]float64, len(numericFeatures)),
		means:   make([]float64, len(numericFeatures)),
		scales:  make([]float64, len(numericFeatures)),
		index:   make(map[string]int),
	}

	for j := range numericFeatures {
		var known []float64
		for _, r := range rows {
			if v := r.numeric()[j]; v != nil && !math.IsNaN(*v) {
				known = append(known, *v)
			}
		}
		// a column with no values at all imputes to zero
		if len(known) > 0 {
			p.medians[j] = median(known)
		}

		imputed := make([]float64, len(rows))
		for i, r := range rows {
			imputed[i] = p.impute(j, r.numeric()[j])
		}
		p.means[j], p.scales[j] = meanStd(imputed)
	}

	seen := make(map[string]bool)
	for _, r := range rows {
		seen[regionOf(r)] = true
	}
	for c := range seen {
		p.categories = append(p.categories, c)
	}
	sort.Strings(p.categories)
	for i, c := range p.categories {
		p.index[c] = i
	}
	return p
}

func (p *preprocessor) impute(j int, v *float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return p.medians[j]
	}
	return *v
}

// width is the length of a transformed row.
func (p *preprocessor) width() int {
	return len(numericFeatures) + len(p.categories)
}

func (p *preprocessor) transform(f Features) []float64 {
	row := make([]float64, p.width())
	for j, v := range f.numeric() {
		row[j] = (p.impute(j, v) - p.means[j]) / p.scales[j]
	}
	if i, ok := p.index[regionOf(f)]; ok {
		row[len(numericFeatures)+i] = 1
	}
	return row
}

func regionOf(f Features) string {
	if f.Region == "" {
		return models.UnknownRegion
	}
	return f.Region
}

func intToFloat(n *int) *float64 {
	if n == nil {
		return nil
	}
	f := float64(*n)
	return &f
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

// meanStd returns the mean and population standard deviation. A constant
// column gets a scale of one.
func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 1
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	sd := math.Sqrt(ss / float64(len(values)))
	if sd == 0 {
		sd = 1
	}
	return m, sd
}
