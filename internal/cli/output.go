package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// TableWriter renders tabular data with aligned columns.
type TableWriter struct {
	output  io.Writer
	headers []string
	rows    [][]string
}

// NewTableWriter creates a table with the given headers.
func NewTableWriter(output io.Writer, headers ...string) *TableWriter {
	return &TableWriter{output: output, headers: headers}
}

// AddRow appends one row.
func (tw *TableWriter) AddRow(values ...string) *TableWriter {
	tw.rows = append(tw.rows, values)
	return tw
}

// Write renders the table.
func (tw *TableWriter) Write() error {
	w := tabwriter.NewWriter(tw.output, 0, 0, 2, ' ', 0)
	for i, header := range tw.headers {
		if i > 0 {
			_, _ = fmt.Fprint(w, "\t")
		}
		_, _ = fmt.Fprint(w, header)
	}
	_, _ = fmt.Fprintln(w)
	for _, row := range tw.rows {
		for i, cell := range row {
			if i > 0 {
				_, _ = fmt.Fprint(w, "\t")
			}
			_, _ = fmt.Fprint(w, cell)
		}
		_, _ = fmt.Fprintln(w)
	}
	return w.Flush()
}
