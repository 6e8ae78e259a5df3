package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// utf8BOM lets spreadsheet tools detect UTF-8 in downloaded files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVExporter renders tables as UTF-8 CSV.
type CSVExporter struct {
	bom bool
}

// NewCSVExporter builds a CSV exporter that prefixes output with a BOM.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{bom: true}
}

// Write streams the table to w row by row. CRLF line breaks inside a field
// are written as LF: CSV readers fold a quoted CRLF into LF anyway, so this
// keeps the file identical to what a re-import yields. A lone CR is kept.
func (e *CSVExporter) Write(w io.Writer, table Table) error {
	if len(table.Headers) == 0 {
		return fmt.Errorf("csv requires at least one header")
	}
	if e.bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("write csv bom: %w", err)
		}
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	if table.Rows != nil {
		for row := range table.Rows {
			if err := writer.Write(normalizeBreaks(row)); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Render produces the CSV bytes for the table.
func (e *CSVExporter) Render(table Table) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := e.Write(buf, table); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func normalizeBreaks(row []string) []string {
	var out []string
	for i, field := range row {
		if !strings.Contains(field, "\r\n") {
			continue
		}
		if out == nil {
			out = append([]string(nil), row...)
		}
		out[i] = strings.ReplaceAll(field, "\r\n", "\n")
	}
	if out == nil {
		return row
	}
	return out
}
