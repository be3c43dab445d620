package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter flattens documents into a single CSV table.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// ContentType is the MIME type of rendered output.
func (e *CSVExporter) ContentType() string { return "text/csv" }

// Render writes the header row once and every section's rows after it. When
// the document names a SectionLabel, a leading column carries each row's
// section heading.
func (e *CSVExporter) Render(doc Document) ([]byte, error) {
	if err := doc.validate(); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	header := doc.Headers
	if doc.SectionLabel != "" {
		header = append([]string{doc.SectionLabel}, doc.Headers...)
	}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}

	for _, section := range doc.Sections {
		for _, row := range section.Rows {
			record := make([]string, 0, len(header))
			if doc.SectionLabel != "" {
				record = append(record, section.Heading)
			}
			record = append(record, padRow(row, len(doc.Headers))...)
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func padRow(row []string, width int) []string {
	if len(row) == width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
