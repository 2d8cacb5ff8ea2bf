package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/newsroom-console/internal/models"
	appErrors "github.com/noah-isme/newsroom-console/pkg/errors"
)

func csvFile(name, content string) models.ImportFile {
	return models.ImportFile{Name: name, ContentType: "text/csv", Size: int64(len(content)), Content: []byte(content)}
}

func tenRowFile() models.ImportFile {
	var sb strings.Builder
	sb.WriteString("title,content,category,tags,status,isFeatured,thumbnail\n")
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&sb, "Story %d,<p>body</p>,Politics,\"a, b\",,false,\n", i)
	}
	return csvFile("batch.csv", sb.String())
}

func newImportService() *ImportService {
	return NewImportService(ImportConfig{MaxFileSizeBytes: 1 << 20, PreviewRows: 5}, nil, zap.NewNop())
}

func TestImportAcceptRejectsEmptyFile(t *testing.T) {
	env := newTestEnv(t)
	svc := newImportService()
	b := env.browser("ctx-1")
	ctx := context.Background()

	_, err := svc.Accept(ctx, b, csvFile("empty.csv", ""))
	assert.ErrorIs(t, err, appErrors.ErrEmptyBatch)

	_, err = svc.Accept(ctx, b, csvFile("header.csv", "title,content,category\n"))
	assert.ErrorIs(t, err, appErrors.ErrEmptyBatch)

	view, err := svc.View(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, models.ImportPhaseEmpty, view.Phase)
	assert.Zero(t, view.RowCount)
}

func TestImportAcceptParseErrorDiscardsRetainedBatch(t *testing.T) {
	env := newTestEnv(t)
	svc := newImportService()
	b := env.browser("ctx-1")
	ctx := context.Background()

	_, err := svc.Accept(ctx, b, tenRowFile())
	require.NoError(t, err)

	_, err = svc.Accept(ctx, b, csvFile("broken.csv", "title,category\nFirst,Tech\n\xff\xfe,Tech\n"))
	require.ErrorIs(t, err, appErrors.ErrParseFailed)
	assert.Contains(t, appErrors.FromError(err).Message, "Error parsing CSV file: line 3")

	view, err := svc.View(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, models.ImportPhaseEmpty, view.Phase)
	assert.Empty(t, view.FileName)
	_, err = svc.Submit(ctx, b)
	assert.ErrorIs(t, err, appErrors.ErrNoBatch)
}

func TestImportAcceptEmptyFileDiscardsRetainedBatch(t *testing.T) {
	env := newTestEnv(t)
	svc := newImportService()
	b := env.browser("ctx-1")
	ctx := context.Background()

	_, err := svc.Accept(ctx, b, tenRowFile())
	require.NoError(t, err)

	_, err = svc.Accept(ctx, b, csvFile("header.csv", "title,content,category\n\n"))
	require.ErrorIs(t, err, appErrors.ErrEmptyBatch)

	view, err := svc.View(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, models.ImportPhaseEmpty, view.Phase)
	assert.Zero(t, view.RowCount)
	_, err = svc.Submit(ctx, b)
	assert.ErrorIs(t, err, appErrors.ErrNoBatch)
	assert.Empty(t, env.articles.uploaded)
}

func TestImportAcceptNonCSVLeavesStateUnchanged(t *testing.T) {
	env := newTestEnv(t)
	svc := newImportService()
	b := env.browser("ctx-1")
	ctx := context.Background()

	_, err := svc.Accept(ctx, b, tenRowFile())
	require.NoError(t, err)

	_, err = svc.Accept(ctx, b, models.ImportFile{Name: "notes.xlsx", ContentType: "application/vnd.ms-excel", Content: []byte("x")})
	assert.ErrorIs(t, err, appErrors.ErrInvalidFile)

	view, err := svc.View(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, models.ImportPhasePreview, view.Phase)
	assert.Equal(t, 10, view.RowCount)
	assert.Equal(t, "batch.csv", view.FileName)
}

func TestImportAcceptRejectsOversizedFile(t *testing.T) {
	env := newTestEnv(t)
	svc := NewImportService(ImportConfig{MaxFileSizeBytes: 10}, nil, nil)

	_, err := svc.Accept(context.Background(), env.browser("ctx-1"), tenRowFile())
	assert.ErrorIs(t, err, appErrors.ErrInvalidFile)
}

func TestImportPreviewShowsFirstRowsWithDefaults(t *testing.T) {
	env := newTestEnv(t)
	svc := newImportService()

	view, err := svc.Accept(context.Background(), env.browser("ctx-1"), csvFile("a.csv",
		"title,category,status,tags\nFirst,Tech,PUBLISHED,x\n,Tech,,y\nThird,,DRAFT,\n"))
	require.NoError(t, err)

	require.Len(t, view.Preview, 3)
	assert.Equal(t, "PUBLISHED", view.Preview[0].Status)
	assert.False(t, view.Preview[0].MissingRequired)
	assert.Equal(t, "DRAFT", view.Preview[1].Status)
	assert.True(t, view.Preview[1].MissingRequired)
	assert.True(t, view.Preview[2].MissingRequired)
}

func TestPreviewRowsCapsAtN(t *testing.T) {
	rows := make([]models.ImportRow, 8)
	for i := range rows {
		rows[i] = models.ImportRow{"title": fmt.Sprintf("t%d", i), "category": "c"}
	}
	assert.Len(t, PreviewRows(rows, 5), 5)
	assert.Len(t, PreviewRows(rows[:2], 5), 2)
}

func TestImportSubmitReportsServerOutcomeVerbatim(t *testing.T) {
	env := newTestEnv(t)
	env.articles.outcome = &models.ImportOutcome{
		Successful: 7,
		Failed:     3,
		Errors: []models.ImportFailure{
			{Title: "Story 2", Error: "Category 'Politics' not found"},
			{Title: "Story 5", Error: "Duplicate slug"},
			{Title: "", Error: "Row 9: Title is required"},
		},
	}
	svc := newImportService()
	b := env.browser("ctx-1")
	ctx := context.Background()

	_, err := svc.Accept(ctx, b, tenRowFile())
	require.NoError(t, err)

	view, err := svc.Submit(ctx, b)
	require.NoError(t, err)

	assert.Equal(t, models.ImportPhaseOutcome, view.Phase)
	require.NotNil(t, view.Outcome)
	assert.Equal(t, 7, view.Outcome.Successful)
	assert.Equal(t, 3, view.Outcome.Failed)
	assert.Equal(t, env.articles.outcome.Errors, view.Outcome.Errors)
	require.Len(t, env.articles.uploaded, 1)
	assert.Len(t, env.articles.uploaded[0], 10)
	assert.Equal(t, "a, b", env.articles.uploaded[0][0]["tags"])
	assert.Equal(t, "Bulk upload completed!", notices(b)[0].Message)

	outcome, err := svc.Outcome(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, 7, outcome.Successful)
}

func TestImportSubmitPassesServerSuccessMessage(t *testing.T) {
	env := newTestEnv(t)
	env.articles.outcome = &models.ImportOutcome{Successful: 10}
	env.articles.uploadMsg = "10 articles imported"
	svc := newImportService()
	b := env.browser("ctx-1")
	ctx := context.Background()

	_, err := svc.Accept(ctx, b, tenRowFile())
	require.NoError(t, err)
	_, err = svc.Submit(ctx, b)
	require.NoError(t, err)

	got := notices(b)
	require.Len(t, got, 1)
	assert.Equal(t, "10 articles imported", got[0].Message)
}

func TestImportSubmitFailureKeepsPreview(t *testing.T) {
	env := newTestEnv(t)
	env.articles.uploadErr = errors.New("connection reset")
	svc := newImportService()
	b := env.browser("ctx-1")
	ctx := context.Background()

	_, err := svc.Accept(ctx, b, tenRowFile())
	require.NoError(t, err)

	_, err = svc.Submit(ctx, b)
	require.Error(t, err)
	assert.Equal(t, "Bulk upload failed", appErrors.FromError(err).Message)

	view, err := svc.View(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, models.ImportPhasePreview, view.Phase)
	assert.Equal(t, 10, view.RowCount)
	assert.Nil(t, view.Outcome)
}

func TestImportSubmitKeepsUpstreamMessage(t *testing.T) {
	env := newTestEnv(t)
	env.articles.uploadErr = appErrors.Clone(appErrors.ErrValidation, "Articles array is required")
	svc := newImportService()
	b := env.browser("ctx-1")
	ctx := context.Background()
	_, err := svc.Accept(ctx, b, tenRowFile())
	require.NoError(t, err)

	_, err = svc.Submit(ctx, b)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "Articles array is required", appErrors.FromError(err).Message)
}

func TestImportSubmitRefusesWhileInFlight(t *testing.T) {
	env := newTestEnv(t)
	svc := newImportService()
	b := env.browser("ctx-1")
	ctx := context.Background()
	require.NoError(t, b.Storage.Session().Set(ctx, KeyImportBatch, models.ImportState{
		Phase: models.ImportPhaseSubmitting,
		Batch: &models.ImportBatch{Rows: []models.ImportRow{{"title": "x"}}},
	}))

	_, err := svc.Submit(ctx, b)
	assert.ErrorIs(t, err, appErrors.ErrImportInFlight)
	_, err = svc.Accept(ctx, b, tenRowFile())
	assert.ErrorIs(t, err, appErrors.ErrImportInFlight)
	assert.Empty(t, env.articles.uploaded)
}

func TestImportSubmitWithoutBatch(t *testing.T) {
	env := newTestEnv(t)
	svc := newImportService()

	_, err := svc.Submit(context.Background(), env.browser("ctx-1"))
	assert.ErrorIs(t, err, appErrors.ErrNoBatch)
	assert.Empty(t, env.articles.uploaded)
}

func TestImportResetClearsEverything(t *testing.T) {
	env := newTestEnv(t)
	env.articles.outcome = &models.ImportOutcome{Successful: 10}
	svc := newImportService()
	b := env.browser("ctx-1")
	ctx := context.Background()
	_, err := svc.Accept(ctx, b, tenRowFile())
	require.NoError(t, err)
	_, err = svc.Submit(ctx, b)
	require.NoError(t, err)

	view, err := svc.Reset(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, models.ImportPhaseEmpty, view.Phase)

	_, err = svc.Outcome(ctx, b)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestImportTemplate(t *testing.T) {
	name, payload, err := newImportService().Template()
	require.NoError(t, err)

	assert.Equal(t, "articles_template.csv", name)
	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "title,content,category,tags,status,isFeatured,thumbnail", lines[0])
	assert.Contains(t, lines[1], `"tech, apple, news"`)
	assert.Contains(t, lines[1], "PUBLISHED")
}
