package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/newsroom-console/internal/models"
	"github.com/noah-isme/newsroom-console/pkg/config"
)

type newsStub struct {
	role     models.Role
	uploads  int
	loggedIn bool
}

func (s *newsStub) server(t *testing.T) *httptest.Server {
	t.Helper()
	reply := func(w http.ResponseWriter, status int, data interface{}, message string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"statusCode": status, "data": data, "message": message, "success": status < 400})
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/login":
			s.loggedIn = true
			reply(w, http.StatusOK, models.LoginResult{User: models.User{ID: "u1", Username: "ops", Role: s.role}, AccessToken: "tok"}, "")
		case "/users/logout":
			s.loggedIn = false
			reply(w, http.StatusOK, nil, "")
		case "/articles/admin/bulk-upload":
			s.uploads++
			reply(w, http.StatusOK, models.ImportOutcome{
				Successful: 1,
				Failed:     1,
				Errors:     []models.ImportFailure{{Title: "Second", Error: "Category 'Nope' not found"}},
			}, "")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeBatch(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "news.csv")
	body := "title,content,category\nFirst,<p>a</p>,Tech\nSecond,<p>b</p>,Nope\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{Upstream: config.UpstreamConfig{BaseURL: baseURL, Timeout: 5 * time.Second}}
}

func TestImportSubmitsAndWritesReport(t *testing.T) {
	stub := &newsStub{role: models.RoleEditor}
	srv := stub.server(t)
	path := writeBatch(t)

	var out bytes.Buffer
	err := runImport(context.Background(), &out, testConfig(srv.URL), zap.NewNop(), path, models.ReportFormatCSV, &importFlags{email: "ops@news.test", password: "secret"})
	require.NoError(t, err)

	assert.Equal(t, 1, stub.uploads)
	assert.False(t, stub.loggedIn)
	assert.Contains(t, out.String(), "news.csv: 2 articles")
	assert.Contains(t, out.String(), "Second: Category 'Nope' not found")

	report, err := os.ReadFile(filepath.Join(filepath.Dir(path), "news_outcome.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "Category 'Nope' not found")
}

func TestImportDryRunDoesNotSubmit(t *testing.T) {
	stub := &newsStub{role: models.RoleAdmin}
	srv := stub.server(t)

	var out bytes.Buffer
	err := runImport(context.Background(), &out, testConfig(srv.URL), zap.NewNop(), writeBatch(t), "", &importFlags{email: "ops@news.test", password: "secret", dryRun: true})
	require.NoError(t, err)
	assert.Zero(t, stub.uploads)
	assert.Contains(t, out.String(), "dry run")
}

func TestImportRefusesReaders(t *testing.T) {
	stub := &newsStub{role: models.RoleUser}
	srv := stub.server(t)

	err := runImport(context.Background(), &bytes.Buffer{}, testConfig(srv.URL), zap.NewNop(), writeBatch(t), "", &importFlags{email: "reader@news.test", password: "secret"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "may not import")
	assert.Zero(t, stub.uploads)
}

func TestReportPath(t *testing.T) {
	assert.Equal(t, "in/news_outcome.pdf", reportPath("in/news.csv", models.ReportFormatPDF))
	assert.Equal(t, "batch_outcome.csv", reportPath("batch", models.ReportFormatCSV))
}

func TestTemplateToStdout(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"template", "--out", "-"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "title,content,category,tags,status,isFeatured,thumbnail")
}
