// Package ingest reads delimited-text and spreadsheet files into a DiamondTable.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/KaramelBytes/diamondlens-cli/internal/diamond"
)

// Options controls file decoding.
type Options struct {
	// Delimiter for CSV. If 0, chosen from the file extension (.tsv -> tab, else ',').
	Delimiter rune
	// XLSX sheet selection. SheetName wins; SheetIndex is 1-based (0 means first).
	SheetName  string
	SheetIndex int
}

// ReadFile picks a reader by extension.
func ReadFile(path string, opt Options) (*diamond.DiamondTable, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return ReadXLSX(path, opt)
	}
	return ReadCSVFile(path, opt)
}

// rowSource yields raw rows; the first row is the header. It returns io.EOF when done.
type rowSource interface {
	Next() ([]string, error)
}

var indexColumn = regexp.MustCompile(`^Unnamed: \d+$`)

// missingTokens are cell contents treated as absent values. The set mirrors
// the pandas read_csv default na_values.
var missingTokens = map[string]bool{
	"": true, "NA": true, "N/A": true, "n/a": true, "NaN": true, "nan": true, "-NaN": true, "-nan": true,
	"null": true, "NULL": true, "None": true, "<NA>": true,
	"#N/A": true, "#N/A N/A": true, "#NA": true,
	"-1.#IND": true, "-1.#QNAN": true, "1.#IND": true, "1.#QNAN": true,
}

// decode builds a table from src. Schema is checked against the header before
// any data row is parsed.
func decode(name string, src rowSource) (*diamond.DiamondTable, error) {
	header, err := src.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &diamond.SchemaError{Column: diamond.Carat.String(), Source: name}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	colOf := make(map[diamond.Field]int)
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" || indexColumn.MatchString(h) {
			continue
		}
		if f, ok := diamond.FieldByName(h); ok {
			if _, dup := colOf[f]; !dup {
				colOf[f] = i
			}
		}
	}
	for _, f := range diamond.Fields() {
		if _, ok := colOf[f]; !ok {
			return nil, &diamond.SchemaError{Column: f.String(), Source: name}
		}
	}

	tbl := &diamond.DiamondTable{Name: name}
	for row := 1; ; row++ {
		rec, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		if blankRow(rec) {
			continue
		}
		r, err := parseRecord(rec, colOf, row)
		if err != nil {
			return nil, err
		}
		tbl.Records = append(tbl.Records, r)
	}
	return tbl, nil
}

func blankRow(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseRecord(rec []string, colOf map[diamond.Field]int, row int) (diamond.Record, error) {
	var r diamond.Record
	for _, f := range diamond.Fields() {
		idx := colOf[f]
		v := ""
		if idx < len(rec) {
			v = strings.TrimSpace(rec[idx])
		}
		if missingTokens[v] {
			r.SetMissing(f)
			continue
		}
		if !f.Numeric() {
			switch f {
			case diamond.Cut:
				r.Cut = v
			case diamond.Color:
				r.Color = v
			case diamond.Clarity:
				r.Clarity = v
			}
			continue
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return r, &diamond.MalformedValueError{Column: f.String(), Row: row, Value: v}
		}
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return r, &diamond.MalformedValueError{Column: f.String(), Row: row, Value: v, Reason: "not finite"}
		}
		switch f {
		case diamond.Carat:
			r.Carat = x
		case diamond.Depth:
			r.Depth = x
		case diamond.Table:
			r.Table = x
		case diamond.Price:
			if x != math.Trunc(x) || math.Abs(x) > math.MaxInt32 {
				return r, &diamond.MalformedValueError{Column: f.String(), Row: row, Value: v, Reason: "price must be a whole number"}
			}
			r.Price = int(x)
		case diamond.X:
			r.X = x
		case diamond.Y:
			r.Y = x
		case diamond.Z:
			r.Z = x
		}
	}
	return r, nil
}

func baseName(path string) string { return filepath.Base(path) }
