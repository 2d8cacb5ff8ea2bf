package tabular

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFSummary is printed above the table, one "label: value" line each.
type PDFSummary struct {
	Label string
	Value string
}

// PDFRenderer renders datasets into a basic tabular PDF.
type PDFRenderer struct{}

// NewPDFRenderer constructs a PDF renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render creates a PDF document with a title, summary lines and a table body.
// Long cells wrap instead of being clipped.
func (r *PDFRenderer) Render(data Dataset, title string, summary ...PDFSummary) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(title)), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	if len(summary) > 0 {
		pdf.SetFont("Arial", "", 11)
		for _, line := range summary {
			pdf.CellFormat(0, 7, tr(fmt.Sprintf("%s: %s", line.Label, line.Value)), "", 1, "", false, 0, "")
		}
		pdf.Ln(4)
	}

	colWidth := 190.0 / float64(len(data.Headers))
	pdf.SetFont("Arial", "B", 10)
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	const lineHeight = 6.0
	for _, row := range data.Rows {
		height := lineHeight
		for _, header := range data.Headers {
			lines := pdf.SplitLines([]byte(tr(row[header])), colWidth-2)
			if h := float64(len(lines)) * lineHeight; h > height {
				height = h
			}
		}
		if pdf.GetY()+height > 282 {
			pdf.AddPage()
		}
		x, y := pdf.GetXY()
		for i, header := range data.Headers {
			pdf.Rect(x+float64(i)*colWidth, y, colWidth, height, "D")
			pdf.SetXY(x+float64(i)*colWidth, y)
			pdf.MultiCell(colWidth, lineHeight, tr(row[header]), "", "L", false)
		}
		pdf.SetXY(x, y+height)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
