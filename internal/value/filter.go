// Package value isolates the affordable small-diamond segment and splits it by median price.
package value

import (
	"sort"

	"github.com/KaramelBytes/diamondlens-cli/internal/config"
	"github.com/KaramelBytes/diamondlens-cli/internal/diamond"
)

// Stage names reported in EmptyInputError.
const (
	StageSegment     = "value_segment"
	StageBelowMedian = "below_median"
)

// PriceCeilingFactor scales the segment median into the upper reference line.
const PriceCeilingFactor = 1.10

// Filter selects rows matching every value predicate.
type Filter struct {
	maxCarat  float64
	cuts      map[string]bool
	colors    map[string]bool
	clarities map[string]bool
}

// NewFilter builds a Filter from rules. Category matching is exact.
func NewFilter(rules config.Rules) *Filter {
	return &Filter{
		maxCarat:  rules.ValueMaxCarat,
		cuts:      toSet(rules.ValueCuts),
		colors:    toSet(rules.ValueColors),
		clarities: toSet(rules.ValueClarities),
	}
}

func toSet(vals []string) map[string]bool {
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

// Match reports whether r belongs to the value segment.
func (f *Filter) Match(r diamond.Record) bool {
	return r.Has(diamond.Carat) && r.Carat < f.maxCarat &&
		f.cuts[r.Cut] && f.colors[r.Color] && f.clarities[r.Clarity]
}

// Select returns the value segment of a cleaned table, preserving row order.
// The result may be empty.
func (f *Filter) Select(clean *diamond.DiamondTable) *diamond.DiamondTable {
	if clean == nil {
		return &diamond.DiamondTable{}
	}
	return clean.Filter(f.Match)
}

// MedianPrice returns the standard median of segment prices.
func MedianPrice(segment *diamond.DiamondTable) (float64, error) {
	if segment.Len() == 0 {
		return 0, &diamond.EmptyInputError{Stage: StageSegment}
	}
	prices := make([]int, segment.Len())
	for i, r := range segment.Records {
		prices[i] = r.Price
	}
	sort.Ints(prices)
	n := len(prices)
	if n%2 == 1 {
		return float64(prices[n/2]), nil
	}
	return (float64(prices[n/2-1]) + float64(prices[n/2])) / 2, nil
}

// BelowMedian returns the segment rows priced strictly below the segment
// median, along with that median. Rows equal to the median are excluded.
func BelowMedian(segment *diamond.DiamondTable) (*diamond.DiamondTable, float64, error) {
	median, err := MedianPrice(segment)
	if err != nil {
		return nil, 0, err
	}
	below := segment.Filter(func(r diamond.Record) bool { return float64(r.Price) < median })
	return below, median, nil
}

// Markers are the reference lines drawn over the segment scatter.
type Markers struct {
	MedianPrice  float64 `json:"median_price" yaml:"median_price"`
	PriceCeiling float64 `json:"price_ceiling" yaml:"price_ceiling"`
	MedianCarat  float64 `json:"median_carat" yaml:"median_carat"`
}

// SegmentMarkers computes the median price, the ceiling 10% above it, and the
// median carat of a non-empty segment.
func SegmentMarkers(segment *diamond.DiamondTable) (Markers, error) {
	mp, err := MedianPrice(segment)
	if err != nil {
		return Markers{}, err
	}
	carats := make([]float64, segment.Len())
	for i, r := range segment.Records {
		carats[i] = r.Carat
	}
	sort.Float64s(carats)
	n := len(carats)
	mc := carats[n/2]
	if n%2 == 0 {
		mc = (carats[n/2-1] + carats[n/2]) / 2
	}
	return Markers{MedianPrice: mp, PriceCeiling: mp * PriceCeilingFactor, MedianCarat: mc}, nil
}
