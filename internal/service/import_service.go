package service

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/newsroom-console/internal/models"
	appErrors "github.com/noah-isme/newsroom-console/pkg/errors"
	"github.com/noah-isme/newsroom-console/pkg/tabular"
)

// TemplateFileName is the name of the downloadable import template.
const TemplateFileName = "articles_template.csv"

// TemplateColumns are the columns the bulk upload endpoint expects.
var TemplateColumns = []string{"title", "content", "category", "tags", "status", "isFeatured", "thumbnail"}

var templateExample = map[string]string{
	"title":      "Example News Title",
	"content":    "<p>This is the HTML content of the news article.</p>",
	"category":   "Technology",
	"tags":       "tech, apple, news",
	"status":     "PUBLISHED",
	"isFeatured": "false",
	"thumbnail":  "https://example.com/image.jpg",
}

const defaultPreviewStatus = "DRAFT"

// ImportConfig bounds uploads and the preview.
type ImportConfig struct {
	MaxFileSizeBytes int64
	PreviewRows      int
}

// ImportService runs the bulk article import of a browser context. Its state
// lives in the context's session scope so it survives between requests.
type ImportService struct {
	cfg     ImportConfig
	csv     *tabular.CSVRenderer
	metrics *MetricsService
	logger  *zap.Logger

	locks sync.Map
}

// NewImportService constructs an ImportService.
func NewImportService(cfg ImportConfig, metrics *MetricsService, logger *zap.Logger) *ImportService {
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{cfg: cfg, csv: tabular.NewCSVRenderer(), metrics: metrics, logger: logger}
}

// View returns the current pipeline state.
func (s *ImportService) View(ctx context.Context, b *Browser) (models.ImportView, error) {
	state, err := s.load(ctx, b)
	if err != nil {
		return models.ImportView{}, err
	}
	return s.view(state), nil
}

// Accept validates and parses an uploaded file into a batch ready for preview.
// A file that is not CSV is rejected without touching the current state; a
// file that parses to nothing or fails to parse resets the pipeline.
func (s *ImportService) Accept(ctx context.Context, b *Browser, file models.ImportFile) (models.ImportView, error) {
	unlock := s.lock(b.ID)
	defer unlock()

	state, err := s.load(ctx, b)
	if err != nil {
		return models.ImportView{}, err
	}
	if state.Phase == models.ImportPhaseSubmitting {
		return models.ImportView{}, appErrors.ErrImportInFlight
	}
	if !isCSV(file) {
		return models.ImportView{}, appErrors.ErrInvalidFile
	}
	if s.cfg.MaxFileSizeBytes > 0 && file.Size > s.cfg.MaxFileSizeBytes {
		return models.ImportView{}, appErrors.Clone(appErrors.ErrInvalidFile, fmt.Sprintf("File exceeds the %d byte limit.", s.cfg.MaxFileSizeBytes))
	}

	dataset, err := tabular.ParseCSV(bytes.NewReader(file.Content))
	if err != nil {
		_ = s.save(ctx, b, models.ImportState{Phase: models.ImportPhaseEmpty})
		return models.ImportView{}, appErrors.Wrap(err, appErrors.ErrParseFailed.Code, appErrors.ErrParseFailed.Status, appErrors.ErrParseFailed.Message+": "+err.Error())
	}
	if len(dataset.Rows) == 0 {
		_ = s.save(ctx, b, models.ImportState{Phase: models.ImportPhaseEmpty})
		return models.ImportView{}, appErrors.ErrEmptyBatch
	}

	rows := make([]models.ImportRow, len(dataset.Rows))
	for i, row := range dataset.Rows {
		rows[i] = models.ImportRow(row)
	}
	next := models.ImportState{
		Phase: models.ImportPhasePreview,
		Batch: &models.ImportBatch{FileName: file.Name, FileSize: file.Size, Rows: rows},
	}
	if err := s.save(ctx, b, next); err != nil {
		return models.ImportView{}, err
	}
	return s.view(next), nil
}

// Submit sends the whole batch in one request. While it runs the pipeline is
// in the submitting phase and further submissions are refused. Failure keeps
// the batch so the caller may retry.
func (s *ImportService) Submit(ctx context.Context, b *Browser) (models.ImportView, error) {
	unlock := s.lock(b.ID)
	state, err := s.load(ctx, b)
	if err != nil {
		unlock()
		return models.ImportView{}, err
	}
	if state.Phase == models.ImportPhaseSubmitting {
		unlock()
		return models.ImportView{}, appErrors.ErrImportInFlight
	}
	if state.Batch == nil || len(state.Batch.Rows) == 0 || state.Phase != models.ImportPhasePreview {
		unlock()
		return models.ImportView{}, appErrors.ErrNoBatch
	}
	state.Phase = models.ImportPhaseSubmitting
	if err := s.save(ctx, b, state); err != nil {
		unlock()
		return models.ImportView{}, err
	}
	unlock()

	// the request runs to completion even if the caller goes away
	outcome, message, err := b.Articles.BulkUpload(context.WithoutCancel(ctx), state.Batch.Rows)

	unlock = s.lock(b.ID)
	defer unlock()
	if err != nil {
		state.Phase = models.ImportPhasePreview
		if saveErr := s.save(ctx, b, state); saveErr != nil {
			s.logger.Warn("restore preview failed", zap.String("context_id", b.ID), zap.Error(saveErr))
		}
		s.logger.Warn("bulk upload failed", zap.String("context_id", b.ID), zap.Int("rows", len(state.Batch.Rows)), zap.Error(err))
		return models.ImportView{}, upstreamFailure(err, "Bulk upload failed")
	}

	s.metrics.RecordImportOutcome(outcome.Successful, outcome.Failed)
	next := models.ImportState{Phase: models.ImportPhaseOutcome, Batch: state.Batch, Outcome: outcome}
	if err := s.save(ctx, b, next); err != nil {
		return models.ImportView{}, err
	}
	if message == "" {
		message = "Bulk upload completed!"
	}
	notifySuccess(b.Notices, message)
	return s.view(next), nil
}

// Reset clears file, rows and outcome.
func (s *ImportService) Reset(ctx context.Context, b *Browser) (models.ImportView, error) {
	unlock := s.lock(b.ID)
	defer unlock()
	if err := b.Storage.Session().Delete(ctx, KeyImportBatch); err != nil {
		return models.ImportView{}, err
	}
	return s.view(models.ImportState{Phase: models.ImportPhaseEmpty}), nil
}

// Outcome returns the last outcome of the context, if any.
func (s *ImportService) Outcome(ctx context.Context, b *Browser) (*models.ImportOutcome, error) {
	state, err := s.load(ctx, b)
	if err != nil {
		return nil, err
	}
	if state.Phase != models.ImportPhaseOutcome || state.Outcome == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no import outcome available")
	}
	return state.Outcome, nil
}

// Template renders the one-row example file.
func (s *ImportService) Template() (string, []byte, error) {
	payload, err := s.csv.Render(tabular.Dataset{Headers: TemplateColumns, Rows: []map[string]string{templateExample}})
	if err != nil {
		return "", nil, err
	}
	return TemplateFileName, payload, nil
}

// PreviewRows summarises the first n rows for display.
func PreviewRows(rows []models.ImportRow, n int) []models.PreviewRow {
	if n > len(rows) {
		n = len(rows)
	}
	preview := make([]models.PreviewRow, 0, n)
	for _, row := range rows[:n] {
		status := row["status"]
		if status == "" {
			status = defaultPreviewStatus
		}
		preview = append(preview, models.PreviewRow{
			Title:           row["title"],
			Category:        row["category"],
			Status:          status,
			Tags:            row["tags"],
			MissingRequired: row["title"] == "" || row["category"] == "",
		})
	}
	return preview
}

func (s *ImportService) view(state models.ImportState) models.ImportView {
	view := models.ImportView{Phase: state.Phase, Outcome: state.Outcome}
	if view.Phase == "" {
		view.Phase = models.ImportPhaseEmpty
	}
	if state.Batch != nil && view.Phase != models.ImportPhaseEmpty {
		view.FileName = state.Batch.FileName
		view.FileSize = state.Batch.FileSize
		view.RowCount = state.Batch.RowCount()
		if view.Phase != models.ImportPhaseOutcome {
			view.Preview = PreviewRows(state.Batch.Rows, s.cfg.PreviewRows)
		}
	}
	return view
}

func (s *ImportService) load(ctx context.Context, b *Browser) (models.ImportState, error) {
	var state models.ImportState
	ok, err := b.Storage.Session().Get(ctx, KeyImportBatch, &state)
	if err != nil {
		return models.ImportState{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load import state")
	}
	if !ok {
		return models.ImportState{Phase: models.ImportPhaseEmpty}, nil
	}
	return state, nil
}

func (s *ImportService) save(ctx context.Context, b *Browser, state models.ImportState) error {
	var err error
	if state.Phase == models.ImportPhaseEmpty {
		err = b.Storage.Session().Delete(ctx, KeyImportBatch)
	} else {
		err = b.Storage.Session().Set(ctx, KeyImportBatch, state)
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save import state")
	}
	return nil
}

// lock serialises state transitions of one context within this process.
func (s *ImportService) lock(contextID string) func() {
	value, _ := s.locks.LoadOrStore(contextID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func isCSV(file models.ImportFile) bool {
	if strings.HasSuffix(strings.ToLower(file.Name), ".csv") {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(file.ContentType)
	return err == nil && mediaType == "text/csv"
}
