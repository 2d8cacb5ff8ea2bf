package models

import "time"

// ReportFormat enumerates supported export formats.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// Valid reports whether the format is supported.
func (f ReportFormat) Valid() bool {
	return f == ReportFormatCSV || f == ReportFormatPDF
}

// OutcomeReport describes an exported import outcome file.
type OutcomeReport struct {
	ID          string       `json:"id"`
	Format      ReportFormat `json:"format"`
	FileName    string       `json:"fileName"`
	DownloadURL string       `json:"downloadUrl"`
	ExpiresAt   time.Time    `json:"expiresAt"`
}
