package diamond

import "strings"

// Field identifies one column of the diamond schema.
type Field int

const (
	Carat Field = iota
	Cut
	Color
	Clarity
	Depth
	Table
	Price
	X
	Y
	Z
	numFields
)

var fieldNames = [numFields]string{"carat", "cut", "color", "clarity", "depth", "table", "price", "x", "y", "z"}

// Fields lists every schema column in canonical order.
func Fields() []Field {
	out := make([]Field, numFields)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return "unknown"
	}
	return fieldNames[f]
}

// Numeric reports whether the field holds a number.
func (f Field) Numeric() bool {
	switch f {
	case Cut, Color, Clarity:
		return false
	}
	return f >= 0 && f < numFields
}

// FieldByName resolves a header name (case-insensitive) to a Field.
func FieldByName(name string) (Field, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, fn := range fieldNames {
		if fn == n {
			return Field(i), true
		}
	}
	return 0, false
}

// Record is one diamond row. Missing values are tracked per field; the
// zero value of a missing field is meaningless.
type Record struct {
	Carat   float64
	Cut     string
	Color   string
	Clarity string
	Depth   float64
	Table   float64
	Price   int
	X, Y, Z float64

	missing uint16
}

// SetMissing marks f as absent.
func (r *Record) SetMissing(f Field) { r.missing |= 1 << uint(f) }

// Has reports whether f carries a value.
func (r Record) Has(f Field) bool { return r.missing&(1<<uint(f)) == 0 }

// Num returns the numeric value of f. ok is false for categorical or
// missing fields.
func (r Record) Num(f Field) (v float64, ok bool) {
	if !r.Has(f) {
		return 0, false
	}
	switch f {
	case Carat:
		return r.Carat, true
	case Depth:
		return r.Depth, true
	case Table:
		return r.Table, true
	case Price:
		return float64(r.Price), true
	case X:
		return r.X, true
	case Y:
		return r.Y, true
	case Z:
		return r.Z, true
	}
	return 0, false
}

// Category returns the string value of a categorical field.
func (r Record) Category(f Field) (string, bool) {
	if !r.Has(f) {
		return "", false
	}
	switch f {
	case Cut:
		return r.Cut, true
	case Color:
		return r.Color, true
	case Clarity:
		return r.Clarity, true
	}
	return "", false
}

// DiamondTable is an ordered collection of records sharing the diamond schema.
type DiamondTable struct {
	Name    string
	Records []Record
}

// Len returns the number of rows.
func (t *DiamondTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Filter returns a new table holding the rows for which keep returns true,
// in their original relative order.
func (t *DiamondTable) Filter(keep func(Record) bool) *DiamondTable {
	out := &DiamondTable{Name: t.Name, Records: make([]Record, 0, len(t.Records))}
	for _, r := range t.Records {
		if keep(r) {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

// Head returns at most n leading rows.
func (t *DiamondTable) Head(n int) *DiamondTable {
	if n < 0 || n > len(t.Records) {
		n = len(t.Records)
	}
	recs := make([]Record, n)
	copy(recs, t.Records[:n])
	return &DiamondTable{Name: t.Name, Records: recs}
}
