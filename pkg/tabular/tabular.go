// Package tabular reads and writes the row-oriented files used by the bulk
// article import: CSV uploads, the CSV template and CSV/PDF outcome reports.
package tabular

// Dataset is an ordered header plus rows keyed by header name.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}
