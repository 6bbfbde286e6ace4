package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	fieldSeparator = "|"
	// maxLineLength bounds a single table line.
	maxLineLength = 16 << 20
)

// splitFields splits a table line on the separator and trims every cell.
func splitFields(line string) []string {
	parts := strings.Split(line, fieldSeparator)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// columnIndex maps each header to its position. Duplicate headers keep the last position.
func columnIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[h] = i
	}
	return idx
}

// ParseProfileData reads a pipe-delimited profile table from filepath.
// A missing file yields an error wrapping fs.ErrNotExist.
func ParseProfileData(filepath string) (*ParsedProfileData, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile file '%s': %w", filepath, err)
	}
	defer file.Close()

	return ParseProfile(file, filepath)
}

// ParseProfile parses the profile table from r. source is used in error messages.
//
// The first line holds the headers and the second line is a separator that is
// ignored. Every later non-blank line is a data row; rows whose field count does
// not match the header are dropped and counted in Skipped.
func ParseProfile(r io.Reader, source string) (*ParsedProfileData, error) {
	parsedData := NewParsedProfileData(source)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	lineNo := 0
	var index map[string]int
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		lineNo++

		switch {
		case lineNo == 1:
			parsedData.Headers = splitFields(strings.TrimPrefix(line, "\ufeff"))
			index = columnIndex(parsedData.Headers)
			for _, col := range RequiredColumns {
				if _, ok := index[col]; !ok {
					return nil, fmt.Errorf("%s: %w '%s' in header %q", source, ErrMissingColumn, col, line)
				}
			}
			continue
		case lineNo == 2:
			continue
		case strings.TrimSpace(line) == "":
			continue
		}

		parts := splitFields(line)
		if len(parts) != len(parsedData.Headers) {
			parsedData.Skipped++
			continue
		}

		rec, err := newRecord(parsedData.Headers, index, parts)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", source, lineNo, err)
		}
		parsedData.Records = append(parsedData.Records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read profile data from '%s': %w", source, err)
	}
	if lineNo == 0 {
		return nil, fmt.Errorf("%s: empty profile file, no header line", source)
	}

	return parsedData, nil
}

func newRecord(headers []string, index map[string]int, parts []string) (Record, error) {
	rec := Record{
		Name:   parts[index[ColumnName]],
		Fields: make(map[string]string, len(headers)-len(RequiredColumns)),
	}

	var err error
	if rec.Average, err = parseNumber(ColumnAverage, parts[index[ColumnAverage]]); err != nil {
		return Record{}, err
	}
	if rec.Total, err = parseNumber(ColumnTotal, parts[index[ColumnTotal]]); err != nil {
		return Record{}, err
	}

	for i, h := range headers {
		switch h {
		case ColumnName, ColumnAverage, ColumnTotal:
		default:
			rec.Fields[h] = parts[i]
		}
	}
	return rec, nil
}

func parseNumber(column, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("could not convert %s value '%s' to float: %w", column, s, err)
	}
	return v, nil
}
