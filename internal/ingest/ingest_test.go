package ingest

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/diamondlens-cli/internal/diamond"
)

var diamondRows = []string{
	",carat,cut,color,clarity,depth,table,price,x,y,z",
	"1,0.23,Ideal,E,SI2,61.5,55,326,3.95,3.98,2.43",
	"2,0.21,Premium,E,SI1,59.8,61,326,3.89,3.84,2.31",
	"3,0.29,Premium,I,VS2,62.4,,334,4.2,4.23,2.63",
	"4,,Good,J,SI2,63.3,58,335,4.34,4.35,2.75",
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestReadCSVDropsIndexColumnAndTracksMissing(t *testing.T) {
	p := writeFile(t, "diamonds.csv", strings.Join(diamondRows, "\n"))
	tbl, err := ReadFile(p, Options{})
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if tbl.Name != "diamonds.csv" {
		t.Fatalf("name = %q", tbl.Name)
	}
	if tbl.Len() != 4 {
		t.Fatalf("rows = %d, want 4", tbl.Len())
	}
	first := tbl.Records[0]
	if first.Carat != 0.23 || first.Cut != "Ideal" || first.Price != 326 || first.Z != 2.43 {
		t.Fatalf("first record = %#v", first)
	}
	if tbl.Records[2].Has(diamond.Table) {
		t.Fatalf("row 3 table should be missing")
	}
	if tbl.Records[3].Has(diamond.Carat) {
		t.Fatalf("row 4 carat should be missing")
	}
}

func TestReadCSVUnnamedHeaderAndCaseInsensitive(t *testing.T) {
	content := "Unnamed: 0;Carat;CUT;Color;Clarity;Depth;Table;Price;X;Y;Z\n" +
		"0;0.3;Ideal;G;VS1;60;55;500;4;4;2.4\n"
	p := writeFile(t, "semi.txt", content)
	tbl, err := ReadFile(p, Options{Delimiter: ';'})
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if tbl.Len() != 1 || tbl.Records[0].Color != "G" || tbl.Records[0].X != 4 {
		t.Fatalf("unexpected table: %#v", tbl.Records)
	}
}

func TestReadTSVByExtension(t *testing.T) {
	content := strings.ReplaceAll(strings.Join(diamondRows[:2], "\n"), ",", "\t")
	p := writeFile(t, "d.tsv", content)
	tbl, err := ReadFile(p, Options{})
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if tbl.Len() != 1 || tbl.Records[0].Depth != 61.5 {
		t.Fatalf("unexpected: %#v", tbl.Records)
	}
}

func TestReadCSVSchemaError(t *testing.T) {
	content := "carat,cut,color,clarity,depth,table,x,y,z\n0.3,Ideal,G,VS1,60,55,4,4,2.4\n"
	_, err := ReadCSV(strings.NewReader(content), "noprice.csv", Options{})
	var se *diamond.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if se.Column != "price" || se.Source != "noprice.csv" {
		t.Fatalf("schema error = %#v", se)
	}
}

func TestReadCSVMalformedValue(t *testing.T) {
	content := "carat,cut,color,clarity,depth,table,price,x,y,z\n" +
		"0.3,Ideal,G,VS1,60,55,500,4,4,2.4\n" +
		"0.3,Ideal,G,VS1,sixty,55,500,4,4,2.4\n"
	_, err := ReadCSV(strings.NewReader(content), "bad.csv", Options{})
	var me *diamond.MalformedValueError
	if !errors.As(err, &me) {
		t.Fatalf("expected MalformedValueError, got %v", err)
	}
	if me.Column != "depth" || me.Row != 2 || me.Value != "sixty" {
		t.Fatalf("malformed error = %#v", me)
	}
}

func TestReadCSVFractionalPriceRejected(t *testing.T) {
	content := "carat,cut,color,clarity,depth,table,price,x,y,z\n0.3,Ideal,G,VS1,60,55,500.5,4,4,2.4\n"
	_, err := ReadCSV(strings.NewReader(content), "p.csv", Options{})
	var me *diamond.MalformedValueError
	if !errors.As(err, &me) || me.Column != "price" {
		t.Fatalf("expected price MalformedValueError, got %v", err)
	}
	ok := "carat,cut,color,clarity,depth,table,price,x,y,z\n0.3,Ideal,G,VS1,60,55,500.0,4,4,2.4\n"
	tbl, err := ReadCSV(strings.NewReader(ok), "p.csv", Options{})
	if err != nil || tbl.Records[0].Price != 500 {
		t.Fatalf("integral float price should parse: %v", err)
	}
}

func TestReadCSVMissingTokens(t *testing.T) {
	content := "carat,cut,color,clarity,depth,table,price,x,y,z\nNaN,NA,G,VS1,60,55,500,4,4,null\n"
	tbl, err := ReadCSV(strings.NewReader(content), "m.csv", Options{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	r := tbl.Records[0]
	if r.Has(diamond.Carat) || r.Has(diamond.Cut) || r.Has(diamond.Z) || !r.Has(diamond.Color) {
		t.Fatalf("missing flags wrong: %#v", r)
	}

	for _, tok := range []string{
		"#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
		"1.#IND", "1.#QNAN", "<NA>", "n/a", "N/A", "None",
	} {
		content := "carat,cut,color,clarity,depth,table,price,x,y,z\n0.3,Ideal,G,VS1,60," + tok + ",500,4,4,2.4\n"
		tbl, err := ReadCSV(strings.NewReader(content), "m.csv", Options{})
		if err != nil {
			t.Fatalf("token %q: ReadCSV: %v", tok, err)
		}
		if tbl.Records[0].Has(diamond.Table) {
			t.Errorf("token %q: table should be missing", tok)
		}
	}
}

func TestReadCSVEmptyFile(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), "empty.csv", Options{})
	var se *diamond.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError on empty file, got %v", err)
	}
}

// writeXLSX builds a minimal workbook with one sheet named "Diamonds".
// Text cells go through the shared strings table; numbers are inline values.
func writeXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "diamonds.xlsx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create xlsx: %v", err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)

	var shared []string
	sharedIdx := map[string]int{}
	var sheet strings.Builder
	sheet.WriteString(`<?xml version="1.0" encoding="UTF-8"?><worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>`)
	for i, row := range rows {
		fmt.Fprintf(&sheet, `<row r="%d">`, i+1)
		for j, v := range row {
			if v == "" {
				continue
			}
			ref := fmt.Sprintf("%c%d", 'A'+j, i+1)
			if isNumber(v) {
				fmt.Fprintf(&sheet, `<c r="%s"><v>%s</v></c>`, ref, v)
				continue
			}
			idx, ok := sharedIdx[v]
			if !ok {
				idx = len(shared)
				sharedIdx[v] = idx
				shared = append(shared, v)
			}
			fmt.Fprintf(&sheet, `<c r="%s" t="s"><v>%d</v></c>`, ref, idx)
		}
		sheet.WriteString(`</row>`)
	}
	sheet.WriteString(`</sheetData></worksheet>`)

	var sst strings.Builder
	sst.WriteString(`<?xml version="1.0" encoding="UTF-8"?><sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">`)
	for _, s := range shared {
		fmt.Fprintf(&sst, `<si><t>%s</t></si>`, s)
	}
	sst.WriteString(`</sst>`)

	files := map[string]string{
		"xl/workbook.xml": `<?xml version="1.0" encoding="UTF-8"?><workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><sheets><sheet name="Diamonds" sheetId="1" r:id="rId1"/></sheets></workbook>`,
		"xl/_rels/workbook.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="/xl/worksheets/sheet1.xml"/></Relationships>`,
		"xl/worksheets/sheet1.xml": sheet.String(),
		"xl/sharedStrings.xml":     sst.String(),
	}
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return path
}

func isNumber(s string) bool {
	for _, c := range s {
		if (c < '0' || c > '9') && c != '.' && c != '-' {
			return false
		}
	}
	return s != ""
}

func TestReadXLSX(t *testing.T) {
	var rows [][]string
	for _, line := range diamondRows {
		rows = append(rows, strings.Split(line, ","))
	}
	path := writeXLSX(t, rows)

	byName, err := ReadFile(path, Options{SheetName: "diamonds"})
	if err != nil {
		t.Fatalf("ReadXLSX by name: %v", err)
	}
	if byName.Len() != 4 {
		t.Fatalf("rows = %d, want 4", byName.Len())
	}
	r := byName.Records[1]
	if r.Cut != "Premium" || r.Clarity != "SI1" || r.Price != 326 || r.Y != 3.84 {
		t.Fatalf("second record = %#v", r)
	}
	if byName.Records[2].Has(diamond.Table) {
		t.Fatalf("skipped cell should be missing")
	}

	byIndex, err := ReadFile(path, Options{SheetIndex: 1})
	if err != nil {
		t.Fatalf("ReadXLSX by index: %v", err)
	}
	if byIndex.Len() != byName.Len() {
		t.Fatalf("index read rows = %d", byIndex.Len())
	}

	if _, err := ReadFile(path, Options{SheetName: "Other"}); err == nil || !strings.Contains(err.Error(), "Available sheets: Diamonds") {
		t.Fatalf("expected sheet-not-found error, got %v", err)
	}
}

func TestNormalizeRelPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
	}
	for _, tt := range tests {
		if got := normalizeRelPath(tt.input); got != tt.expected {
			t.Errorf("normalizeRelPath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSheetRowReaderRejectsOutOfRangeCellRef(t *testing.T) {
	sheet := `<worksheet><sheetData><row r="1"><c r="ZZZZZZZZZZZZ1"><v>1</v></c></row></sheetData></worksheet>`
	_, err := newSheetRowReader([]byte(sheet), nil).Next()
	if err == nil || !strings.Contains(err.Error(), "bad cell ref") {
		t.Fatalf("expected bad cell ref error, got %v", err)
	}

	sheet = `<worksheet><sheetData><row r="1"><c r="XFD1"><v>1</v></c></row></sheetData></worksheet>`
	row, err := newSheetRowReader([]byte(sheet), nil).Next()
	if err != nil {
		t.Fatalf("last column should be accepted: %v", err)
	}
	if len(row) != maxColumns || row[maxColumns-1] != "1" {
		t.Fatalf("unexpected row length %d", len(row))
	}
}

func TestSheetRowReaderInlineRichText(t *testing.T) {
	sheet := `<worksheet><sheetData><row r="1">` +
		`<c r="A1" t="inlineStr"><is><r><rPr><b/></rPr><t>Very</t></r><r><t xml:space="preserve"> Good</t></r></is></c>` +
		`<c r="B1" t="inlineStr"><is><t>Ideal</t></is></c>` +
		`</row></sheetData></worksheet>`
	row, err := newSheetRowReader([]byte(sheet), nil).Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(row) != 2 || row[0] != "Very Good" || row[1] != "Ideal" {
		t.Fatalf("row = %q", row)
	}
}

func TestColIndexFromRef(t *testing.T) {
	cases := map[string]int{"A1": 0, "C12": 2, "Z3": 25, "AA10": 26, "XFD1": 16383, "ZZZZZZZZZZZZ1": maxColumns, "": -1}
	for ref, want := range cases {
		if got := colIndexFromRef(ref); got != want {
			t.Errorf("colIndexFromRef(%q) = %d, want %d", ref, got, want)
		}
	}
}
