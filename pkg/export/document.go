package export

import "fmt"

// Document is printable tabular content split into sections that share one
// column set. Room lists use one section per room.
type Document struct {
	Title    string
	Subtitle string
	Headers  []string
	// Weights scales column widths in PDF output; empty means equal widths.
	Weights []float64
	// SectionLabel names the column that carries the section heading in flat
	// outputs such as CSV. Empty omits the column.
	SectionLabel string
	Sections     []Section
}

// Section is one titled block of rows.
type Section struct {
	Heading string
	Rows    [][]string
}

// RowCount sums rows over every section.
func (d Document) RowCount() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Rows)
	}
	return n
}

func (d Document) validate() error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("document requires at least one header")
	}
	if len(d.Weights) > 0 && len(d.Weights) != len(d.Headers) {
		return fmt.Errorf("document has %d weights for %d headers", len(d.Weights), len(d.Headers))
	}
	for _, s := range d.Sections {
		for i, row := range s.Rows {
			if len(row) > len(d.Headers) {
				return fmt.Errorf("section %q row %d has %d cells for %d headers", s.Heading, i+1, len(row), len(d.Headers))
			}
		}
	}
	return nil
}
