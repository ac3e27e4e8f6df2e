// Package stats computes summary statistics over diamond tables.
package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/diamondlens-cli/internal/diamond"
)

// NumericSummary captures count and order statistics for one numeric column.
type NumericSummary struct {
	Count  int     `json:"count" yaml:"count"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	Median float64 `json:"median" yaml:"median"`
}

// CategoryCount is the number of rows holding one categorical value.
type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// Bundle is the summary block shown for a table.
type Bundle struct {
	Count   int             `json:"count" yaml:"count"`
	Carat   NumericSummary  `json:"carat" yaml:"carat"`
	Price   NumericSummary  `json:"price" yaml:"price"`
	Cut     []CategoryCount `json:"cut" yaml:"cut"`
	Color   []CategoryCount `json:"color" yaml:"color"`
	Clarity []CategoryCount `json:"clarity" yaml:"clarity"`
}

// Numeric summarizes the present values of field f. Missing values are skipped.
// A table with no values yields an EmptyInputError.
func Numeric(t *diamond.DiamondTable, f diamond.Field, stage string) (NumericSummary, error) {
	if !f.Numeric() {
		return NumericSummary{}, fmt.Errorf("stats: %s is not numeric", f)
	}
	vals := values(t, f)
	if len(vals) == 0 {
		return NumericSummary{}, &diamond.EmptyInputError{Stage: stage}
	}
	sort.Float64s(vals)
	return NumericSummary{
		Count:  len(vals),
		Min:    vals[0],
		Max:    vals[len(vals)-1],
		Median: quantile(vals, 0.5),
	}, nil
}

func values(t *diamond.DiamondTable, f diamond.Field) []float64 {
	if t == nil {
		return nil
	}
	out := make([]float64, 0, len(t.Records))
	for _, r := range t.Records {
		if v, ok := r.Num(f); ok {
			out = append(out, v)
		}
	}
	return out
}

// Categorical counts rows per distinct value of f. Known grades come first in
// scale order; unknown values follow alphabetically.
func Categorical(t *diamond.DiamondTable, f diamond.Field) []CategoryCount {
	counts := map[string]int{}
	if t != nil {
		for _, r := range t.Records {
			if v, ok := r.Category(f); ok {
				counts[v]++
			}
		}
	}
	out := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		ri, oki := diamond.Rank(f, out[i].Value)
		rj, okj := diamond.Rank(f, out[j].Value)
		switch {
		case oki && okj:
			return ri < rj
		case oki != okj:
			return oki
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// Summarize computes the full bundle for t. stage labels any EmptyInputError.
func Summarize(t *diamond.DiamondTable, stage string) (Bundle, error) {
	if t.Len() == 0 {
		return Bundle{}, &diamond.EmptyInputError{Stage: stage}
	}
	carat, err := Numeric(t, diamond.Carat, stage)
	if err != nil {
		return Bundle{}, err
	}
	price, err := Numeric(t, diamond.Price, stage)
	if err != nil {
		return Bundle{}, err
	}
	return Bundle{
		Count:   t.Len(),
		Carat:   carat,
		Price:   price,
		Cut:     Categorical(t, diamond.Cut),
		Color:   Categorical(t, diamond.Color),
		Clarity: Categorical(t, diamond.Clarity),
	}, nil
}

// quantile interpolates linearly between closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
