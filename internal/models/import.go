package models

// ImportPhase is the bulk import pipeline state.
type ImportPhase string

const (
	ImportPhaseEmpty      ImportPhase = "empty"
	ImportPhasePreview    ImportPhase = "preview"
	ImportPhaseSubmitting ImportPhase = "submitting"
	ImportPhaseOutcome    ImportPhase = "outcome"
)

// ImportRow is one parsed row keyed by the file's own column names.
type ImportRow map[string]string

// ImportBatch is a parsed, not yet submitted file.
type ImportBatch struct {
	FileName string      `json:"fileName"`
	FileSize int64       `json:"fileSize"`
	Rows     []ImportRow `json:"rows"`
}

// RowCount returns the number of parsed rows.
func (b ImportBatch) RowCount() int { return len(b.Rows) }

// PreviewRow is the display-only summary of one row.
type PreviewRow struct {
	Title           string `json:"title"`
	Category        string `json:"category"`
	Status          string `json:"status"`
	Tags            string `json:"tags"`
	MissingRequired bool   `json:"missingRequired"`
}

// ImportFailure is one server-reported row failure.
type ImportFailure struct {
	Title string `json:"title"`
	Error string `json:"error"`
}

// ImportOutcome is the server's verdict for a submitted batch.
type ImportOutcome struct {
	Successful int             `json:"successful"`
	Failed     int             `json:"failed"`
	Errors     []ImportFailure `json:"errors"`
}

// ImportState is persisted per browser context between requests.
type ImportState struct {
	Phase   ImportPhase    `json:"phase"`
	Batch   *ImportBatch   `json:"batch,omitempty"`
	Outcome *ImportOutcome `json:"outcome,omitempty"`
}

// ImportView is what the pipeline exposes to callers.
type ImportView struct {
	Phase    ImportPhase    `json:"phase"`
	FileName string         `json:"fileName,omitempty"`
	FileSize int64          `json:"fileSize,omitempty"`
	RowCount int            `json:"rowCount"`
	Preview  []PreviewRow   `json:"preview,omitempty"`
	Outcome  *ImportOutcome `json:"outcome,omitempty"`
}

// ImportFile is an uploaded file awaiting acceptance.
type ImportFile struct {
	Name        string
	ContentType string
	Size        int64
	Content     []byte
}
