package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/newsroom-console/internal/models"
	"github.com/noah-isme/newsroom-console/internal/repository"
	"github.com/noah-isme/newsroom-console/internal/service"
	"github.com/noah-isme/newsroom-console/pkg/jobs"
	"github.com/noah-isme/newsroom-console/pkg/middleware/browsercontext"
	"github.com/noah-isme/newsroom-console/pkg/storage"
	"github.com/noah-isme/newsroom-console/pkg/transport"
)

var newsUsers = map[string]models.User{
	"editor@news.test": {ID: "u-editor", FullName: "Eda Editor", Username: "eda", Email: "editor@news.test", Role: models.RoleEditor},
	"reader@news.test": {ID: "u-reader", FullName: "Rui Reader", Username: "rui", Email: "reader@news.test", Role: models.RoleUser},
}

func writeNews(w http.ResponseWriter, status int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"statusCode": status,
		"data":       data,
		"message":    message,
		"success":    status < 400,
	})
}

// newsAPI fakes the upstream news REST API.
func newsAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/users/login":
			var body models.LoginRequest
			_ = json.NewDecoder(r.Body).Decode(&body)
			user, ok := newsUsers[body.Email]
			if !ok || body.Password != "secret" {
				writeNews(w, http.StatusUnauthorized, nil, "Invalid user credentials")
				return
			}
			http.SetCookie(w, &http.Cookie{Name: "refreshToken", Value: "r-" + user.ID, HttpOnly: true})
			writeNews(w, http.StatusOK, models.LoginResult{User: user, AccessToken: "tok-" + user.ID}, "User logged in successfully")
		case r.URL.Path == "/users/logout":
			writeNews(w, http.StatusOK, nil, "User logged out")
		case r.URL.Path == transport.RefreshPath:
			writeNews(w, http.StatusUnauthorized, nil, "Refresh token is expired or used")
		case r.URL.Path == "/users/current-user":
			writeNews(w, http.StatusUnauthorized, nil, "jwt expired")
		case r.URL.Path == "/articles/admin/bulk-upload":
			var body struct {
				Articles []map[string]string `json:"articles"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			last := body.Articles[len(body.Articles)-1]
			writeNews(w, http.StatusOK, models.ImportOutcome{
				Successful: len(body.Articles) - 1,
				Failed:     1,
				Errors:     []models.ImportFailure{{Title: last["title"], Error: "Category 'Nope' not found"}},
			}, "Bulk upload processed")
		case r.URL.Path == "/polls/active":
			writeNews(w, http.StatusOK, []models.Poll{{ID: "p1", Question: "Tea or coffee?", Options: []models.PollOption{{ID: "o1", Text: "Tea", Votes: 2}, {ID: "o2", Text: "Coffee", Votes: 1}}}}, "")
		case strings.HasSuffix(r.URL.Path, "/vote"):
			writeNews(w, http.StatusOK, models.VoteResult{Results: []models.PollResult{{ID: "o1", Votes: 3, Percentage: 75}, {ID: "o2", Votes: 1, Percentage: 25}}, TotalVotes: 4}, "")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

type gateway struct {
	server *httptest.Server
	client *http.Client
}

func newGateway(t *testing.T) *gateway {
	t.Helper()
	gin.SetMode(gin.TestMode)
	news := newsAPI(t)

	logr := zap.NewNop()
	client := transport.NewClient(transport.Options{BaseURL: news.URL, Timeout: 5 * time.Second, Logger: logr})
	manager := service.NewSessionManager(repository.NewMemoryStorage(), service.TransportClients(client), nil, nil, logr, service.SessionManagerConfig{RestoreWait: time.Second})
	imports := service.NewImportService(service.ImportConfig{MaxFileSizeBytes: 1 << 20}, nil, logr)
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	reports := service.NewReportService(imports, files, storage.NewSignedURLSigner("report-secret", time.Hour), logr, service.ReportConfig{APIPrefix: "/api"})

	views := jobs.NewQueue("views", service.HandleViewJob, jobs.QueueConfig{Workers: 1})
	views.Start(context.Background())
	t.Cleanup(views.Stop)

	router := NewRouter(RouterConfig{
		APIPrefix:      "/api",
		Context:        browsercontext.Options{Secret: "ctx-secret"},
		MaxUploadBytes: 1 << 10,
		Logger:         logr,
	}, Services{
		Sessions: manager,
		Imports:  imports,
		Reports:  reports,
		Polls:    service.NewPollService(1, nil, logr),
		Comments: service.NewCommentService(logr),
		Articles: service.NewArticleService(views, logr),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &gateway{
		server: srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Data  json.RawMessage            `json:"data"`
	Error *apiError                  `json:"error"`
	Meta  map[string]json.RawMessage `json:"meta"`
}

func (g *gateway) do(t *testing.T, method, path string, body io.Reader, contentType string) (*http.Response, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, g.server.URL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := g.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env))
	} else {
		env.Data = raw
	}
	return resp, env
}

func (g *gateway) login(t *testing.T, email, from string) envelope {
	t.Helper()
	payload, _ := json.Marshal(models.LoginRequest{Email: email, Password: "secret"})
	resp, env := g.do(t, http.MethodPost, "/api/auth/login?from="+from, bytes.NewReader(payload), "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return env
}

func csvUpload(t *testing.T, name, content string) (io.Reader, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func TestGatewayRedirectsAnonymousStaffView(t *testing.T) {
	g := newGateway(t)

	resp, _ := g.do(t, http.MethodGet, "/admin/bulk-upload", nil, "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?from=%2Fadmin%2Fbulk-upload", resp.Header.Get("Location"))

	resp, _ = g.do(t, http.MethodGet, "/about-us", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGatewayEditorImportsBatch(t *testing.T) {
	g := newGateway(t)

	env := g.login(t, "editor@news.test", "/article/x")
	var outcome models.LoginOutcome
	require.NoError(t, json.Unmarshal(env.Data, &outcome))
	assert.Equal(t, "/admin", outcome.Redirect)
	assert.Contains(t, string(env.Meta["notices"]), "Logged in successfully")

	resp, _ := g.do(t, http.MethodGet, "/admin/bulk-upload", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, contentType := csvUpload(t, "batch.csv", "title,category\nFirst,Tech\nSecond,Nope\n")
	resp, env = g.do(t, http.MethodPost, "/api/imports/file", body, contentType)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var preview models.ImportView
	require.NoError(t, json.Unmarshal(env.Data, &preview))
	assert.Equal(t, models.ImportPhasePreview, preview.Phase)
	assert.Equal(t, 2, preview.RowCount)
	assert.Equal(t, "DRAFT", preview.Preview[1].Status)

	resp, env = g.do(t, http.MethodPost, "/api/imports/submit", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result models.ImportView
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.NotNil(t, result.Outcome)
	assert.Equal(t, 1, result.Outcome.Successful)
	assert.Equal(t, 1, result.Outcome.Failed)
	assert.Equal(t, []models.ImportFailure{{Title: "Second", Error: "Category 'Nope' not found"}}, result.Outcome.Errors)
	assert.Contains(t, string(env.Meta["notices"]), "Bulk upload processed")

	resp, env = g.do(t, http.MethodPost, "/api/imports/report?format=csv", nil, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var report models.OutcomeReport
	require.NoError(t, json.Unmarshal(env.Data, &report))

	resp, env = g.do(t, http.MethodGet, report.DownloadURL, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), "Category 'Nope' not found")
}

func TestGatewayRejectsNonCSVWithoutChangingState(t *testing.T) {
	g := newGateway(t)
	g.login(t, "editor@news.test", "")

	body, contentType := csvUpload(t, "notes.txt", "hello")
	resp, env := g.do(t, http.MethodPost, "/api/imports/file", body, contentType)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please upload a valid CSV file.", env.Error.Message)

	resp, env = g.do(t, http.MethodGet, "/api/imports", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"phase":"empty"`)
}

func TestGatewayRejectsOversizedUploadBeforeParsing(t *testing.T) {
	g := newGateway(t)
	g.login(t, "editor@news.test", "")

	body, contentType := csvUpload(t, "batch.csv", "title,category\nFirst,Tech\n")
	resp, _ := g.do(t, http.MethodPost, "/api/imports/file", body, contentType)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	large := "title,category\n" + strings.Repeat("Headline,Tech\n", 200)
	body, contentType = csvUpload(t, "large.csv", large)
	resp, env := g.do(t, http.MethodPost, "/api/imports/file", body, contentType)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "File exceeds the 1024 byte limit.", env.Error.Message)

	// A body past the streaming cap is cut off the same way.
	huge := "title,category\n" + strings.Repeat("Headline,Tech\n", 10000)
	body, contentType = csvUpload(t, "huge.csv", huge)
	resp, env = g.do(t, http.MethodPost, "/api/imports/file", body, contentType)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "File exceeds the 1024 byte limit.", env.Error.Message)

	resp, env = g.do(t, http.MethodGet, "/api/imports", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"phase":"preview"`)
	assert.Contains(t, string(env.Data), `"fileName":"batch.csv"`)
}

func TestGatewayReaderIsForbiddenFromAdmin(t *testing.T) {
	g := newGateway(t)
	env := g.login(t, "reader@news.test", "/article/budget")

	var outcome models.LoginOutcome
	require.NoError(t, json.Unmarshal(env.Data, &outcome))
	assert.Equal(t, "/article/budget", outcome.Redirect)

	resp, _ := g.do(t, http.MethodGet, "/admin", nil, "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/access-denied", resp.Header.Get("Location"))

	resp, env = g.do(t, http.MethodPost, "/api/imports/submit", nil, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, `"/access-denied"`, string(env.Meta["redirect"]))

	resp, _ = g.do(t, http.MethodGet, "/profile", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGatewayLogoutEndsSession(t *testing.T) {
	g := newGateway(t)
	g.login(t, "editor@news.test", "")

	resp, env := g.do(t, http.MethodPost, "/api/auth/logout", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Meta["notices"]), "Logged out")

	resp, env = g.do(t, http.MethodGet, "/api/auth/session", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"user":null,"loading":false}`, string(env.Data))

	resp, _ = g.do(t, http.MethodGet, "/profile", nil, "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestGatewayVoteOncePerBrowser(t *testing.T) {
	g := newGateway(t)

	payload := strings.NewReader(`{"optionId":"o1"}`)
	resp, env := g.do(t, http.MethodPost, "/api/polls/p1/vote", payload, "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Meta["notices"]), "Your vote has been recorded!")

	resp, env = g.do(t, http.MethodGet, "/api/polls/active", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view models.PollView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.True(t, view.HasVoted)
	assert.Equal(t, 67, view.Results[0].Percentage)

	resp, env = g.do(t, http.MethodPost, "/api/polls/p1/vote", strings.NewReader(`{"optionId":"o2"}`), "application/json")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ALREADY_VOTED", env.Error.Code)
}

func TestGatewayTemplateDownload(t *testing.T) {
	g := newGateway(t)
	g.login(t, "editor@news.test", "")

	resp, env := g.do(t, http.MethodGet, "/api/imports/template", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "articles_template.csv")
	assert.True(t, strings.HasPrefix(string(env.Data), "title,content,category,tags,status,isFeatured,thumbnail"))
}
