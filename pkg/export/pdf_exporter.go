package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth    = 190.0
	bottomMargin = 20.0
	headerHeight = 8.0
	rowHeight    = 7.0
)

// PDFExporter renders documents as A4 tables, one page run per section.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ContentType is the MIME type of rendered output.
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Render creates the PDF. Each section starts on a new page and the column
// header repeats whenever a section overflows onto another page.
func (e *PDFExporter) Render(doc Document) ([]byte, error) {
	if err := doc.validate(); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(false, bottomMargin)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	widths := columnWidths(doc)
	sections := doc.Sections
	if len(sections) == 0 {
		sections = []Section{{}}
	}
	_, pageHeight := pdf.GetPageSize()

	for _, section := range sections {
		pdf.AddPage()
		writeTitle(pdf, doc, section.Heading)
		writeHeaderRow(pdf, doc.Headers, widths)

		pdf.SetFont("Arial", "", 9)
		for _, row := range section.Rows {
			if pdf.GetY()+rowHeight > pageHeight-bottomMargin {
				pdf.AddPage()
				writeTitle(pdf, doc, section.Heading+" (cont.)")
				writeHeaderRow(pdf, doc.Headers, widths)
				pdf.SetFont("Arial", "", 9)
			}
			cells := padRow(row, len(doc.Headers))
			for i, value := range cells {
				pdf.CellFormat(widths[i], rowHeight, value, "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTitle(pdf *gofpdf.Fpdf, doc Document, heading string) {
	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, doc.Title, "", 1, "C", false, 0, "")
	}
	if doc.Subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, doc.Subtitle, "", 1, "C", false, 0, "")
	}
	if heading != "" {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, heading, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
}

func writeHeaderRow(pdf *gofpdf.Fpdf, headers []string, widths []float64) {
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, header := range headers {
		pdf.CellFormat(widths[i], headerHeight, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

func columnWidths(doc Document) []float64 {
	widths := make([]float64, len(doc.Headers))
	if len(doc.Weights) == 0 {
		for i := range widths {
			widths[i] = pageWidth / float64(len(widths))
		}
		return widths
	}
	total := 0.0
	for _, w := range doc.Weights {
		total += w
	}
	for i, w := range doc.Weights {
		widths[i] = pageWidth * w / total
	}
	return widths
}
