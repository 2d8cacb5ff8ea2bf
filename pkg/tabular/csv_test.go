package tabular

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSVSkipsEmptyLines(t *testing.T) {
	input := "title,category,status\n\nFirst,Tech,PUBLISHED\n\nSecond,World,\n"

	data, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"title", "category", "status"}, data.Headers)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "First", data.Rows[0]["title"])
	assert.Equal(t, "", data.Rows[1]["status"])
}

func TestParseCSVHeaderOnlyYieldsNoRows(t *testing.T) {
	data, err := ParseCSV(strings.NewReader("title,category\n"))
	require.NoError(t, err)
	assert.Empty(t, data.Rows)
}

func TestParseCSVEmptyInput(t *testing.T) {
	data, err := ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, data.Headers)
	assert.Empty(t, data.Rows)
}

func TestParseCSVShortAndLongRows(t *testing.T) {
	input := "\ufefftitle,category,tags\nOnly title\nA,B,C,extra\n"

	data, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, data.Rows, 2)
	assert.Equal(t, map[string]string{"title": "Only title"}, data.Rows[0])
	assert.Equal(t, map[string]string{"title": "A", "category": "B", "tags": "C"}, data.Rows[1])
}

func TestParseCSVKeepsQuotedContent(t *testing.T) {
	input := "title,content\n\"Hello, world\",\"<p>line1\nline2</p>\"\n"

	data, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, data.Rows, 1)
	assert.Equal(t, "Hello, world", data.Rows[0]["title"])
	assert.Equal(t, "<p>line1\nline2</p>", data.Rows[0]["content"])
}

func TestParseCSVRejectsBinaryContent(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("title,category\nFirst,Tech\nSec\xffond,Tech\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3, column 1")
}

func TestParseCSVReportsReadErrors(t *testing.T) {
	failing := errors.New("connection reset")
	_, err := ParseCSV(iotest.ErrReader(failing))
	assert.ErrorIs(t, err, failing)
}

func TestCSVRendererRoundsTripTemplateColumns(t *testing.T) {
	out, err := NewCSVRenderer().Render(Dataset{
		Headers: []string{"title", "tags"},
		Rows:    []map[string]string{{"title": "Example", "tags": "tech, news"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "title,tags\nExample,\"tech, news\"\n", string(out))
}

func TestCSVRendererRequiresHeaders(t *testing.T) {
	_, err := NewCSVRenderer().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFRendererProducesDocument(t *testing.T) {
	out, err := NewPDFRenderer().Render(Dataset{
		Headers: []string{"title", "error"},
		Rows:    []map[string]string{{"title": "Broken", "error": "Category not found"}},
	}, "Import outcome", PDFSummary{Label: "Successful", Value: "1"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
