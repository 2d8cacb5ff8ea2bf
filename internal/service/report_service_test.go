package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/newsroom-console/internal/models"
	appErrors "github.com/noah-isme/newsroom-console/pkg/errors"
	"github.com/noah-isme/newsroom-console/pkg/storage"
)

func newReportFixture(t *testing.T) (*testEnv, *ReportService, *Browser) {
	t.Helper()
	env := newTestEnv(t)
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	imports := newImportService()
	reports := NewReportService(imports, files, storage.NewSignedURLSigner("secret", time.Hour), zap.NewNop(), ReportConfig{APIPrefix: "/api/v1"})

	b := env.browser("ctx-1")
	require.NoError(t, b.Storage.Session().Set(context.Background(), KeyImportBatch, models.ImportState{
		Phase: models.ImportPhaseOutcome,
		Batch: &models.ImportBatch{FileName: "batch.csv", Rows: []models.ImportRow{{"title": "a"}, {"title": "b"}}},
		Outcome: &models.ImportOutcome{
			Successful: 1,
			Failed:     1,
			Errors:     []models.ImportFailure{{Title: "b", Error: "Category 'Sport' not found"}},
		},
	}))
	return env, reports, b
}

func TestReportExportAndDownload(t *testing.T) {
	_, reports, b := newReportFixture(t)

	report, err := reports.Export(context.Background(), b, models.ReportFormatCSV)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(report.DownloadURL, "/api/v1/reports/"))
	assert.True(t, strings.HasSuffix(report.FileName, ".csv"))

	token := strings.TrimPrefix(report.DownloadURL, "/api/v1/reports/")
	download, err := reports.ResolveDownload(b.ID, token)
	require.NoError(t, err)
	defer download.File.Close()

	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.Equal(t, models.ReportFormatCSV, download.Format)
	assert.Contains(t, string(body), "title,error")
	assert.Contains(t, string(body), "Category 'Sport' not found")
}

func TestReportDownloadRefusesOtherContext(t *testing.T) {
	_, reports, b := newReportFixture(t)

	report, err := reports.Export(context.Background(), b, models.ReportFormatPDF)
	require.NoError(t, err)

	token := strings.TrimPrefix(report.DownloadURL, "/api/v1/reports/")
	_, err = reports.ResolveDownload("ctx-2", token)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = reports.ResolveDownload(b.ID, token+"x")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestReportExportRequiresOutcome(t *testing.T) {
	env, reports, _ := newReportFixture(t)

	_, err := reports.Export(context.Background(), env.browser("ctx-empty"), models.ReportFormatCSV)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestReportExportRejectsUnknownFormat(t *testing.T) {
	_, reports, b := newReportFixture(t)

	_, err := reports.Export(context.Background(), b, models.ReportFormat("xlsx"))
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
