package stats

import (
	"fmt"

	"github.com/KaramelBytes/diamondlens-cli/internal/diamond"
)

// Bin is one equal-width histogram bucket covering [Lo, Hi).
// The last bin also includes Hi.
type Bin struct {
	Lo    float64 `json:"lo" yaml:"lo"`
	Hi    float64 `json:"hi" yaml:"hi"`
	Count int     `json:"count" yaml:"count"`
}

// Histogram buckets the values of f into equal-width bins over [min, max].
// When every value is equal a single bin holds them all.
func Histogram(t *diamond.DiamondTable, f diamond.Field, bins int, stage string) ([]Bin, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("histogram: bins must be > 0, got %d", bins)
	}
	s, err := Numeric(t, f, stage)
	if err != nil {
		return nil, err
	}
	if s.Min == s.Max {
		return []Bin{{Lo: s.Min, Hi: s.Max, Count: s.Count}}, nil
	}
	width := (s.Max - s.Min) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lo = s.Min + float64(i)*width
		out[i].Hi = s.Min + float64(i+1)*width
	}
	out[bins-1].Hi = s.Max
	for _, v := range values(t, f) {
		i := int((v - s.Min) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out, nil
}
