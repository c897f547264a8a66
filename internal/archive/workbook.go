package archive

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// flattenCell keeps a cell on one physical line; the line tokenizer does not
// accept raw newlines inside quoted fields.
var flattenCell = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// WorkbookToCSV writes the first sheet of an XLSX workbook to w as CSV and
// returns the number of rows written, header included.
func WorkbookToCSV(r io.Reader, w io.Writer) (int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return 0, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return 0, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	defer func() { _ = rows.Close() }()

	out := csv.NewWriter(w)
	n := 0
	for rows.Next() {
		cols, cerr := rows.Columns()
		if cerr != nil {
			return n, fmt.Errorf("reading row %d of sheet %s: %w", n+1, sheets[0], cerr)
		}
		for i := range cols {
			cols[i] = flattenCell.Replace(cols[i])
		}
		if werr := out.Write(cols); werr != nil {
			return n, fmt.Errorf("writing row %d: %w", n+1, werr)
		}
		n++
	}
	if err := rows.Error(); err != nil {
		return n, fmt.Errorf("iterating sheet %s: %w", sheets[0], err)
	}
	out.Flush()
	return n, out.Error()
}
