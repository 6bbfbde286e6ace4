package parser

import "errors"

// Column names the profiler writes and the pipeline depends on.
const (
	ColumnName    = "Name"
	ColumnAverage = "Average"
	ColumnTotal   = "Total"
	ColumnCalls   = "Calls"
)

// RequiredColumns must all be present in the header line.
var RequiredColumns = []string{ColumnName, ColumnAverage, ColumnTotal}

// ErrMissingColumn is returned when the header lacks one of RequiredColumns.
var ErrMissingColumn = errors.New("missing required column")

// Record is one data row of the profile table.
type Record struct {
	Name    string
	Average float64
	Total   float64
	// Fields holds the remaining columns (Calls, Min, Max, ...) keyed by header.
	Fields map[string]string
}

// Field returns the raw value of a non-required column.
func (r Record) Field(column string) (string, bool) {
	v, ok := r.Fields[column]
	return v, ok
}

// ParsedProfileData is the result of ParseProfileData.
type ParsedProfileData struct {
	Source  string
	Headers []string
	Records []Record
	Skipped int // data lines dropped for a field count mismatch
}

// NewParsedProfileData initializes an empty result for the given source file.
func NewParsedProfileData(source string) *ParsedProfileData {
	return &ParsedProfileData{
		Source:  source,
		Headers: make([]string, 0),
		Records: make([]Record, 0),
	}
}
