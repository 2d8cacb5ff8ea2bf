package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const utf8BOM = "\ufeff"

// CSVRenderer renders Dataset records into CSV bytes.
type CSVRenderer struct{}

// NewCSVRenderer builds a CSV renderer.
func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{}
}

// Render produces CSV encoded bytes for the dataset.
func (r *CSVRenderer) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseCSV reads a header-first CSV stream into one map per data row.
//
// Empty lines are skipped. A row shorter than the header omits the missing
// fields, cells beyond the header are dropped, and a leading UTF-8 BOM on the
// first header is removed. Field values are kept verbatim; a field that is
// not valid UTF-8 fails the parse, as does an error from r.
func ParseCSV(r io.Reader) (Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Dataset{}, nil
	}
	if err != nil {
		return Dataset{}, fmt.Errorf("read csv header: %w", err)
	}
	if err := checkText(reader, headers); err != nil {
		return Dataset{}, err
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	}

	data := Dataset{Headers: headers}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Dataset{}, fmt.Errorf("read csv row: %w", err)
		}
		if err := checkText(reader, record); err != nil {
			return Dataset{}, err
		}
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if i >= len(record) {
				break
			}
			row[header] = record[i]
		}
		data.Rows = append(data.Rows, row)
	}

	return data, nil
}

func checkText(reader *csv.Reader, record []string) error {
	for i, field := range record {
		if !utf8.ValidString(field) {
			line, column := reader.FieldPos(i)
			return fmt.Errorf("line %d, column %d: field is not valid UTF-8 text", line, column)
		}
	}
	return nil
}
