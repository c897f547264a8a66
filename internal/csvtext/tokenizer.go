// Package csvtext splits raw CSV text into lines and cells.
//
// Lines are split on '\n' before quote-aware tokenization, so a quoted field
// must not contain a raw newline. Such a line ends with its quote span still
// open and SplitRecord reports ErrUnterminatedQuote instead of guessing where
// the record ends.
package csvtext

import (
	"errors"
	"strings"
)

// ErrUnterminatedQuote reports a line that ends inside a quoted field.
var ErrUnterminatedQuote = errors.New("unterminated quoted field")

// SplitRecord tokenizes one line into trimmed cells.
//
// A comma separates fields only outside a double-quote span, a doubled quote
// inside an open span is a literal quote, and every other quote toggles the
// span. Quote characters that delimit a span are not part of the cell.
// Empty trailing cells are kept.
func SplitRecord(line string) ([]string, error) {
	var (
		cells   []string
		cell    strings.Builder
		inQuote bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuote && i+1 < len(line) && line[i+1] == '"' {
				cell.WriteByte('"')
				i++
				continue
			}
			inQuote = !inQuote
		case c == ',' && !inQuote:
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteByte(c)
		}
	}
	if inQuote {
		return nil, ErrUnterminatedQuote
	}
	return append(cells, strings.TrimSpace(cell.String())), nil
}

// Cell returns the cell at idx, or "" when the row is shorter.
func Cell(row []string, idx int) string {
	if idx >= 0 && idx < len(row) {
		return row[idx]
	}
	return ""
}
