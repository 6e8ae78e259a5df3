package export

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageMargin      = 10.0
	landscapeWidth  = 277.0
	portraitWidth   = 190.0
	landscapeColumn = 7
	ellipsis        = "..."
)

// ThousandsFormatter renders integer counts for printable output.
type ThousandsFormatter interface {
	Thousands(n int64) string
}

// PDFExporter renders tables into a basic tabular PDF.
type PDFExporter struct {
	numbers ThousandsFormatter
}

// NewPDFExporter constructs a PDF exporter. Numeric columns are formatted with
// numbers when it is non-nil.
func NewPDFExporter(numbers ThousandsFormatter) *PDFExporter {
	return &PDFExporter{numbers: numbers}
}

// Write renders the table and writes the document to w.
func (e *PDFExporter) Write(w io.Writer, table Table) error {
	if len(table.Headers) == 0 {
		return fmt.Errorf("pdf requires at least one header")
	}
	orientation, width := "P", portraitWidth
	if len(table.Headers) > landscapeColumn {
		orientation, width = "L", landscapeWidth
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(pageMargin, 15, pageMargin)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	if table.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(table.Title)), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	colWidth := width / float64(len(table.Headers))
	pdf.SetFont("Arial", "B", 9)
	for _, header := range table.Headers {
		pdf.CellFormat(colWidth, 8, fit(pdf, tr(header), colWidth), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	if table.Rows != nil {
		for row := range table.Rows {
			for i := range table.Headers {
				var value string
				if i < len(row) {
					value = row[i]
				}
				align := ""
				if table.numeric(i) {
					align = "R"
					value = e.formatCount(value)
				}
				pdf.CellFormat(colWidth, 7, fit(pdf, tr(value), colWidth), "1", 0, align, false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// Render creates the PDF document bytes for the table.
func (e *PDFExporter) Render(table Table) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := e.Write(buf, table); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) formatCount(value string) string {
	if e.numbers == nil {
		return value
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return value
	}
	return e.numbers.Thousands(n)
}

// fit shortens text with an ellipsis so it stays inside a cell. text is
// already translated to the single-byte font encoding.
func fit(pdf *gofpdf.Fpdf, text string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(text) <= limit {
		return text
	}
	for len(text) > 0 && pdf.GetStringWidth(text+ellipsis) > limit {
		text = text[:len(text)-1]
	}
	return text + ellipsis
}
