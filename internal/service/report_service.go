package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/newsroom-console/internal/models"
	appErrors "github.com/noah-isme/newsroom-console/pkg/errors"
	"github.com/noah-isme/newsroom-console/pkg/storage"
	"github.com/noah-isme/newsroom-console/pkg/tabular"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type outcomeSource interface {
	Outcome(ctx context.Context, b *Browser) (*models.ImportOutcome, error)
}

// ReportConfig configures outcome exports.
type ReportConfig struct {
	APIPrefix       string
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ReportDownload is an opened export ready to stream.
type ReportDownload struct {
	File      *os.File
	Filename  string
	Format    models.ReportFormat
	ExpiresAt time.Time
}

// ReportService exports import outcomes as CSV or PDF files reachable
// through signed, expiring download links.
type ReportService struct {
	outcomes outcomeSource
	storage  fileStorage
	signer   *storage.SignedURLSigner
	csv      *tabular.CSVRenderer
	pdf      *tabular.PDFRenderer
	logger   *zap.Logger
	cfg      ReportConfig
}

// NewReportService constructs a ReportService.
func NewReportService(outcomes outcomeSource, files fileStorage, signer *storage.SignedURLSigner, logger *zap.Logger, cfg ReportConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ReportService{
		outcomes: outcomes,
		storage:  files,
		signer:   signer,
		csv:      tabular.NewCSVRenderer(),
		pdf:      tabular.NewPDFRenderer(),
		logger:   logger,
		cfg:      cfg,
	}
}

// Render turns an outcome into file bytes. Failures are listed in server
// order with their text unchanged.
func (s *ReportService) Render(outcome models.ImportOutcome, format models.ReportFormat) ([]byte, error) {
	dataset := OutcomeDataset(outcome)
	switch format {
	case models.ReportFormatCSV:
		return s.csv.Render(dataset)
	case models.ReportFormatPDF:
		return s.pdf.Render(dataset, "Bulk upload outcome",
			tabular.PDFSummary{Label: "Successful", Value: strconv.Itoa(outcome.Successful)},
			tabular.PDFSummary{Label: "Failed", Value: strconv.Itoa(outcome.Failed)},
		)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}
}

// Export stores the browser's latest outcome and returns a signed link to it.
func (s *ReportService) Export(ctx context.Context, b *Browser, format models.ReportFormat) (*models.OutcomeReport, error) {
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}
	outcome, err := s.outcomes.Outcome(ctx, b)
	if err != nil {
		return nil, err
	}
	payload, err := s.Render(*outcome, format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	reportID := uuid.NewString()
	filename := fmt.Sprintf("import_outcome_%s.%s", time.Now().UTC().Format("20060102_150405"), format)
	relPath, err := s.storage.Save(path.Join("imports", b.ID, reportID, filename), payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report")
	}

	token, expiresAt, err := s.signer.Generate(b.ID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign report link")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api"
	}
	s.logger.Info("import outcome exported", zap.String("context_id", b.ID), zap.String("report_id", reportID), zap.String("format", string(format)))

	return &models.OutcomeReport{
		ID:          reportID,
		Format:      format,
		FileName:    filename,
		DownloadURL: fmt.Sprintf("%s/reports/%s", prefix, token),
		ExpiresAt:   expiresAt,
	}, nil
}

// ResolveDownload validates token for the requesting context and opens the file.
func (s *ReportService) ResolveDownload(contextID, token string) (*ReportDownload, error) {
	ownerID, relPath, expiresAt, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	if ownerID != contextID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "download token belongs to another browser")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "report file not found")
	}
	filename := path.Base(relPath)
	return &ReportDownload{
		File:      file,
		Filename:  filename,
		Format:    models.ReportFormat(strings.TrimPrefix(path.Ext(filename), ".")),
		ExpiresAt: expiresAt,
	}, nil
}

// StartCleanup boots a goroutine that purges old exports periodically.
func (s *ReportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
				if err != nil {
					s.logger.Warn("report cleanup failed", zap.Error(err))
					continue
				}
				if len(removed) > 0 {
					s.logger.Info("report cleanup", zap.Int("removed", len(removed)))
				}
			}
		}
	}()
}

// OutcomeDataset lays out an outcome as a two-column table.
func OutcomeDataset(outcome models.ImportOutcome) tabular.Dataset {
	rows := make([]map[string]string, 0, len(outcome.Errors))
	for _, failure := range outcome.Errors {
		rows = append(rows, map[string]string{"title": failure.Title, "error": failure.Error})
	}
	return tabular.Dataset{Headers: []string{"title", "error"}, Rows: rows}
}
