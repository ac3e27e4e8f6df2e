package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/KaramelBytes/diamondlens-cli/internal/diamond"
)

// ReadCSVFile opens path and decodes it as delimited text.
func ReadCSVFile(path string, opt Options) (*diamond.DiamondTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	return ReadCSV(f, baseName(path), opt)
}

// ReadCSV decodes delimited text from r. name labels the table in errors and reports.
func ReadCSV(r io.Reader, name string, opt Options) (*diamond.DiamondTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = opt.Delimiter
	if cr.Comma == 0 {
		cr.Comma = ','
	}
	return decode(name, csvSource{cr})
}

type csvSource struct{ r *csv.Reader }

func (s csvSource) Next() ([]string, error) { return s.r.Read() }

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
