package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
)

// Request describes one upstream call. Body is sent as JSON; Form, when set,
// is sent as multipart and takes precedence. Fallback is the message used
// when the upstream fails without one. Message, when set, receives the
// envelope's message of a successful response.
type Request struct {
	Method   string
	Path     string
	Query    url.Values
	Body     interface{}
	Form     *Form
	Fallback string
	Message  *string
}

// Form is a multipart body.
type Form struct {
	Fields map[string]string
	Files  []File
}

// File is one file part of a multipart body.
type File struct {
	Field       string
	Name        string
	ContentType string
	Content     []byte
}

// encode is called per attempt so a replayed request gets a fresh body.
func (r Request) encode() (io.Reader, string, error) {
	if r.Form != nil {
		return r.Form.encode()
	}
	if r.Body == nil {
		return nil, "", nil
	}
	payload, err := json.Marshal(r.Body)
	if err != nil {
		return nil, "", fmt.Errorf("marshal request body: %w", err)
	}
	return bytes.NewReader(payload), "application/json", nil
}

func (f *Form) encode() (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for name, value := range f.Fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("write form field %s: %w", name, err)
		}
	}
	for _, file := range f.Files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.Name))
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("create form file %s: %w", file.Field, err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return nil, "", fmt.Errorf("write form file %s: %w", file.Field, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return buf, writer.FormDataContentType(), nil
}
