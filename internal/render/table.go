package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/KaramelBytes/diamondlens-cli/internal/diamond"
)

// Row formats a record in schema column order. Missing values are empty.
func Row(r diamond.Record) []string {
	fields := diamond.Fields()
	out := make([]string, len(fields))
	for i, f := range fields {
		if !r.Has(f) {
			continue
		}
		if c, ok := r.Category(f); ok {
			out[i] = c
			continue
		}
		if f == diamond.Price {
			out[i] = strconv.Itoa(r.Price)
			continue
		}
		v, _ := r.Num(f)
		out[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return out
}

// WriteCSV writes t with a header row to w.
func WriteCSV(w io.Writer, t *diamond.DiamondTable) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(diamond.Fields()))
	for _, f := range diamond.Fields() {
		header = append(header, f.String())
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, r := range t.Records {
		if err := cw.Write(Row(r)); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
