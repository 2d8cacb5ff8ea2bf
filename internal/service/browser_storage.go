package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/newsroom-console/pkg/errors"
)

// Fixed keys of the browser storage scopes.
const (
	KeyAccessToken     = "accessToken"
	KeyUpstreamCookies = "upstreamCookies"
	KeyIdentity        = "identity"
	KeyImportBatch     = "import_batch"
	VotedKeyPrefix     = "voted_"
	ViewedKeyPrefix    = "viewed_"
)

// StorageRepository abstracts the key-value backend (Redis or memory). Plain
// keys expire individually; the fields of a bucket share one expiry that
// every access slides.
type StorageRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) error

	GetField(ctx context.Context, bucket, field string, dest interface{}, ttl time.Duration) error
	SetField(ctx context.Context, bucket, field string, value interface{}, ttl time.Duration) error
	DeleteFields(ctx context.Context, bucket string, fields ...string) error
	Touch(ctx context.Context, bucket string, ttl time.Duration) error
}

// Scope is one namespace of a browser context, mirroring localStorage or
// sessionStorage. A scope with a TTL is kept as one bucket: it lapses only
// after TTL without any access, and then lapses whole.
type Scope struct {
	repo    StorageRepository
	prefix  string
	bucket  string
	ttl     time.Duration
	metrics *MetricsService
	logger  *zap.Logger
}

// Get loads key into dest and reports whether it was present.
func (s Scope) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	start := time.Now()
	var err error
	if s.bucket != "" {
		err = s.repo.GetField(ctx, s.bucket, key, dest, s.ttl)
	} else {
		err = s.repo.Get(ctx, s.prefix+key, dest)
	}
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordStorageLookup(false, duration)
		if errors.Is(err, appErrors.ErrStorageMiss) {
			return false, nil
		}
		s.logger.Warn("storage get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	s.metrics.RecordStorageLookup(true, duration)
	return true, nil
}

// Set stores value under key.
func (s Scope) Set(ctx context.Context, key string, value interface{}) error {
	var err error
	if s.bucket != "" {
		err = s.repo.SetField(ctx, s.bucket, key, value, s.ttl)
	} else {
		err = s.repo.Set(ctx, s.prefix+key, value, s.ttl)
	}
	if err != nil {
		s.logger.Warn("storage set failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Delete removes key.
func (s Scope) Delete(ctx context.Context, key string) error {
	if s.bucket != "" {
		return s.repo.DeleteFields(ctx, s.bucket, key)
	}
	return s.repo.Delete(ctx, s.prefix+key)
}

// Clear removes every key of the scope.
func (s Scope) Clear(ctx context.Context) error {
	if s.bucket != "" {
		return s.repo.Delete(ctx, s.bucket)
	}
	return s.repo.DeleteByPrefix(ctx, s.prefix)
}

// Touch records activity, keeping a TTL scope alive.
func (s Scope) Touch(ctx context.Context) error {
	if s.bucket == "" {
		return nil
	}
	return s.repo.Touch(ctx, s.bucket, s.ttl)
}

// BrowserStorage is the client-local state of one browser context. It also
// serves as the transport's credential store.
type BrowserStorage struct {
	contextID string
	local     Scope
	session   Scope
}

// StorageOptions configures BrowserStorage.
type StorageOptions struct {
	KeyPrefix  string
	SessionTTL time.Duration
	Metrics    *MetricsService
	Logger     *zap.Logger
}

// NewBrowserStorage scopes repo to contextID.
func NewBrowserStorage(repo StorageRepository, contextID string, opts StorageOptions) *BrowserStorage {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "newsroom"
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("context_id", contextID))
	base := opts.KeyPrefix + ":ctx:" + contextID + ":"
	return &BrowserStorage{
		contextID: contextID,
		local:     Scope{repo: repo, prefix: base + "local:", metrics: opts.Metrics, logger: logger},
		session:   Scope{repo: repo, bucket: base + "session", ttl: opts.SessionTTL, metrics: opts.Metrics, logger: logger},
	}
}

// ContextID returns the owning browser context id.
func (b *BrowserStorage) ContextID() string { return b.contextID }

// Local returns the persistent scope.
func (b *BrowserStorage) Local() Scope { return b.local }

// Session returns the browsing-session scope.
func (b *BrowserStorage) Session() Scope { return b.session }

// AccessToken returns the persisted access token or "".
func (b *BrowserStorage) AccessToken(ctx context.Context) (string, error) {
	var token string
	if _, err := b.local.Get(ctx, KeyAccessToken, &token); err != nil {
		return "", err
	}
	return token, nil
}

// SetAccessToken persists the access token.
func (b *BrowserStorage) SetAccessToken(ctx context.Context, token string) error {
	return b.local.Set(ctx, KeyAccessToken, token)
}

// ClearAccessToken removes the access token.
func (b *BrowserStorage) ClearAccessToken(ctx context.Context) error {
	return b.local.Delete(ctx, KeyAccessToken)
}

type storedCookie struct {
	Value   string    `json:"value"`
	Expires time.Time `json:"expires,omitempty"`
}

// Cookies returns the live upstream cookies.
func (b *BrowserStorage) Cookies(ctx context.Context) ([]*http.Cookie, error) {
	jar, err := b.cookieJar(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	cookies := make([]*http.Cookie, 0, len(jar))
	for name, c := range jar {
		if !c.Expires.IsZero() && c.Expires.Before(now) {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: name, Value: c.Value})
	}
	return cookies, nil
}

// SaveCookies merges Set-Cookie headers from the upstream into the jar.
// Cookies with a negative MaxAge, a past expiry or an empty value are removed.
func (b *BrowserStorage) SaveCookies(ctx context.Context, cookies []*http.Cookie) error {
	jar, err := b.cookieJar(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, c := range cookies {
		expires := c.Expires
		if c.MaxAge > 0 {
			expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		if c.MaxAge < 0 || c.Value == "" || (!expires.IsZero() && expires.Before(now)) {
			delete(jar, c.Name)
			continue
		}
		jar[c.Name] = storedCookie{Value: c.Value, Expires: expires}
	}
	return b.local.Set(ctx, KeyUpstreamCookies, jar)
}

// ClearCookies drops every upstream cookie.
func (b *BrowserStorage) ClearCookies(ctx context.Context) error {
	return b.local.Delete(ctx, KeyUpstreamCookies)
}

func (b *BrowserStorage) cookieJar(ctx context.Context) (map[string]storedCookie, error) {
	jar := map[string]storedCookie{}
	if _, err := b.local.Get(ctx, KeyUpstreamCookies, &jar); err != nil {
		return nil, err
	}
	if jar == nil {
		jar = map[string]storedCookie{}
	}
	return jar, nil
}
