package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/newsroom-console/internal/models"
	"github.com/noah-isme/newsroom-console/internal/repository"
	"github.com/noah-isme/newsroom-console/internal/upstream"
	"github.com/noah-isme/newsroom-console/pkg/transport"
)

type fakeAuth struct {
	mu sync.Mutex

	current    *models.User
	currentErr error
	block      chan struct{}

	loginResult *models.LoginResult
	loginErr    error
	logoutErr   error
	registerErr error
	accountUser *models.User
	avatarUser  *models.User

	calls map[string]int
}

func (f *fakeAuth) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeAuth) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAuth) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	f.count("register")
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: "new", FullName: req.FullName, Username: req.Username, Email: req.Email, Role: models.RoleUser}, nil
}

func (f *fakeAuth) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	f.count("login")
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginResult, nil
}

func (f *fakeAuth) Logout(ctx context.Context) error {
	f.count("logout")
	return f.logoutErr
}

func (f *fakeAuth) CurrentUser(ctx context.Context) (*models.User, error) {
	f.count("current")
	if f.block != nil {
		<-f.block
	}
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	user := *f.current
	return &user, nil
}

func (f *fakeAuth) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	f.count("password")
	return nil
}

func (f *fakeAuth) UpdateAccount(ctx context.Context, req models.UpdateAccountRequest) (*models.User, error) {
	f.count("account")
	return f.accountUser, nil
}

func (f *fakeAuth) UpdateAvatar(ctx context.Context, file models.FileUpload) (*models.User, error) {
	f.count("avatar")
	return f.avatarUser, nil
}

func (f *fakeAuth) UpdateCoverImage(ctx context.Context, file models.FileUpload) (*models.User, error) {
	f.count("cover")
	return f.avatarUser, nil
}

type fakeArticles struct {
	mu         sync.Mutex
	article    *models.Article
	list       []models.Article
	outcome    *models.ImportOutcome
	uploadMsg  string
	uploadErr  error
	uploaded   [][]models.ImportRow
	viewed     []string
	listFilter upstream.ArticleFilter
}

func (f *fakeArticles) BySlug(ctx context.Context, slug string) (*models.Article, error) {
	article := *f.article
	return &article, nil
}

func (f *fakeArticles) IncrementView(ctx context.Context, slug string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.viewed = append(f.viewed, slug)
	return nil
}

func (f *fakeArticles) List(ctx context.Context, filter upstream.ArticleFilter) ([]models.Article, error) {
	f.listFilter = filter
	return f.list, nil
}

func (f *fakeArticles) BulkUpload(ctx context.Context, rows []models.ImportRow) (*models.ImportOutcome, string, error) {
	f.uploaded = append(f.uploaded, rows)
	if f.uploadErr != nil {
		return nil, "", f.uploadErr
	}
	return f.outcome, f.uploadMsg, nil
}

type fakePolls struct {
	polls   []models.Poll
	result  *models.VoteResult
	voteErr error
	votes   int
}

func (f *fakePolls) Active(ctx context.Context, limit int) ([]models.Poll, error) {
	return f.polls, nil
}

func (f *fakePolls) Vote(ctx context.Context, pollID, optionID string) (*models.VoteResult, error) {
	f.votes++
	if f.voteErr != nil {
		return nil, f.voteErr
	}
	return f.result, nil
}

type fakeComments struct {
	comments []models.Comment
	deleted  []string
	added    *models.Comment
}

func (f *fakeComments) List(ctx context.Context, articleID string) ([]models.Comment, error) {
	return f.comments, nil
}

func (f *fakeComments) Add(ctx context.Context, articleID, content string) (*models.Comment, error) {
	return f.added, nil
}

func (f *fakeComments) Delete(ctx context.Context, commentID string) error {
	f.deleted = append(f.deleted, commentID)
	return nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	clock    *testClock
	repo     *repository.MemoryStorage
	auth     *fakeAuth
	articles *fakeArticles
	polls    *fakePolls
	comments *fakeComments
	manager  *SessionManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	env := &testEnv{
		clock:    clock,
		repo:     repository.NewMemoryStorage(repository.WithClock(clock.Now)),
		auth:     &fakeAuth{},
		articles: &fakeArticles{},
		polls:    &fakePolls{},
		comments: &fakeComments{},
	}
	factory := func(transport.CredentialStore) Clients {
		return Clients{Auth: env.auth, Articles: env.articles, Polls: env.polls, Comments: env.comments}
	}
	env.manager = NewSessionManager(env.repo, factory, validator.New(), nil, zap.NewNop(), SessionManagerConfig{KeyPrefix: "test"})
	return env
}

// browser assembles a browser without restoring it.
func (e *testEnv) browser(id string) *Browser {
	return e.manager.Assemble(id)
}

// signedIn assembles a browser whose session holds user.
func (e *testEnv) signedIn(t *testing.T, id string, user models.User) *Browser {
	t.Helper()
	b := e.browser(id)
	b.Session.apply(models.SessionState{User: &user})
	return b
}

func notices(b *Browser) []models.Notice {
	return b.Notices.(*NoticeBuffer).Drain()
}
