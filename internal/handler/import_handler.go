package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/newsroom-console/internal/models"
	"github.com/noah-isme/newsroom-console/internal/service"
	appErrors "github.com/noah-isme/newsroom-console/pkg/errors"
)

type importService interface {
	View(ctx context.Context, b *service.Browser) (models.ImportView, error)
	Accept(ctx context.Context, b *service.Browser, file models.ImportFile) (models.ImportView, error)
	Submit(ctx context.Context, b *service.Browser) (models.ImportView, error)
	Reset(ctx context.Context, b *service.Browser) (models.ImportView, error)
	Template() (string, []byte, error)
}

type reportService interface {
	Export(ctx context.Context, b *service.Browser, format models.ReportFormat) (*models.OutcomeReport, error)
	ResolveDownload(contextID, token string) (*service.ReportDownload, error)
}

// ImportHandler exposes the bulk article import of the calling browser.
type ImportHandler struct {
	imports  importService
	reports  reportService
	maxBytes int64
}

// NewImportHandler constructs an ImportHandler. A positive maxBytes rejects
// larger CSV uploads before they are buffered.
func NewImportHandler(imports importService, reports reportService, maxBytes int64) *ImportHandler {
	return &ImportHandler{imports: imports, reports: reports, maxBytes: maxBytes}
}

// View godoc
// @Summary Import pipeline state
// @Tags Bulk import
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /imports [get]
func (h *ImportHandler) View(c *gin.Context) {
	b, ok := browserFromContext(c)
	if !ok {
		return
	}
	view, err := h.imports.View(c.Request.Context(), b)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, view)
}

// Accept godoc
// @Summary Select a CSV file
// @Description Parses the file and returns the preview of its first rows
// @Tags Bulk import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /imports/file [post]
func (h *ImportHandler) Accept(c *gin.Context) {
	b, ok := browserFromContext(c)
	if !ok {
		return
	}
	limitUploadBody(c, h.maxBytes)
	upload, err := readUpload(c, "file", true, h.maxBytes)
	if err != nil {
		fail(c, err)
		return
	}
	view, err := h.imports.Accept(c.Request.Context(), b, models.ImportFile{
		Name:        upload.Name,
		ContentType: upload.ContentType,
		Size:        upload.Size,
		Content:     upload.Content,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, view)
}

// Submit godoc
// @Summary Submit the parsed batch
// @Description Sends every parsed row in one request and returns the per-row outcome
// @Tags Bulk import
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /imports/submit [post]
func (h *ImportHandler) Submit(c *gin.Context) {
	b, ok := browserFromContext(c)
	if !ok {
		return
	}
	view, err := h.imports.Submit(c.Request.Context(), b)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, view)
}

// Reset godoc
// @Summary Start over
// @Tags Bulk import
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /imports [delete]
func (h *ImportHandler) Reset(c *gin.Context) {
	b, ok := browserFromContext(c)
	if !ok {
		return
	}
	view, err := h.imports.Reset(c.Request.Context(), b)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, view)
}

// Template godoc
// @Summary Download the import template
// @Tags Bulk import
// @Produce text/csv
// @Success 200 {file} binary
// @Router /imports/template [get]
func (h *ImportHandler) Template(c *gin.Context) {
	name, payload, err := h.imports.Template()
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", name))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", payload)
}

// ExportOutcome godoc
// @Summary Export the last outcome
// @Description Stores the outcome as CSV or PDF and returns a signed download link
// @Tags Bulk import
// @Produce json
// @Param format query string false "csv or pdf" default(csv)
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /imports/report [post]
func (h *ImportHandler) ExportOutcome(c *gin.Context) {
	b, ok := browserFromContext(c)
	if !ok {
		return
	}
	format := models.ReportFormat(strings.ToLower(c.DefaultQuery("format", string(models.ReportFormatCSV))))
	report, err := h.reports.Export(c.Request.Context(), b, format)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, report)
}

// DownloadReport godoc
// @Summary Download an exported outcome
// @Tags Bulk import
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /reports/{token} [get]
func (h *ImportHandler) DownloadReport(c *gin.Context) {
	b, ok := browserFromContext(c)
	if !ok {
		return
	}
	token := c.Param("token")
	if strings.TrimSpace(token) == "" {
		fail(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	download, err := h.reports.ResolveDownload(b.ID, token)
	if err != nil {
		fail(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck

	info, err := download.File.Stat()
	if err != nil {
		fail(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat report"))
		return
	}
	contentType := "text/csv; charset=utf-8"
	if download.Format == models.ReportFormatPDF {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", download.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), contentType, download.File, nil)
}
