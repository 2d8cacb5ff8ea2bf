package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/newsroom-console/pkg/errors"
)

// multipartOverhead is the room left for boundaries and other form fields
// when a request body is capped for a size-limited upload.
const multipartOverhead = 64 << 10

type uploadedFile struct {
	Name        string
	ContentType string
	Size        int64
	Content     []byte
}

// limitUploadBody caps the request body so an oversized upload is cut off
// while it is streamed instead of after it is buffered.
func limitUploadBody(c *gin.Context, maxBytes int64) {
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)
	}
}

func uploadTooLarge(maxBytes int64) error {
	return appErrors.Clone(appErrors.ErrInvalidFile, fmt.Sprintf("File exceeds the %d byte limit.", maxBytes))
}

// readUpload buffers the multipart file under field. A missing optional file
// yields nil without error. A positive maxBytes rejects larger files before
// they are opened.
func readUpload(c *gin.Context, field string, required bool, maxBytes int64) (*uploadedFile, error) {
	header, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, uploadTooLarge(maxBytes)
		}
		if errors.Is(err, http.ErrMissingFile) && !required {
			return nil, nil
		}
		return nil, appErrors.Clone(appErrors.ErrValidation, field+" file is required")
	}
	if maxBytes > 0 && header.Size > maxBytes {
		return nil, uploadTooLarge(maxBytes)
	}
	src, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to buffer file")
	}
	return &uploadedFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     content,
	}, nil
}
