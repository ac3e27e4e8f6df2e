package diamond

import "fmt"

// SchemaError indicates a required column is absent from the input table.
type SchemaError struct {
	Column string
	Source string
}

func (e *SchemaError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("schema: required column %q missing in %s", e.Column, e.Source)
	}
	return fmt.Sprintf("schema: required column %q missing", e.Column)
}

// EmptyInputError indicates a stage produced no rows to continue with.
type EmptyInputError struct {
	Stage string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("empty input: no rows left at stage %s", e.Stage)
}

// MalformedValueError indicates a numeric column holds non-numeric content.
// Row is the 1-based data row (header excluded).
type MalformedValueError struct {
	Column string
	Row    int
	Value  string
	Reason string
}

func (e *MalformedValueError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "not a number"
	}
	return fmt.Sprintf("malformed value in column %q at row %d: %q (%s)", e.Column, e.Row, e.Value, reason)
}
