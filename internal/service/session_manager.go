package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/newsroom-console/internal/models"
	"github.com/noah-isme/newsroom-console/internal/upstream"
	"github.com/noah-isme/newsroom-console/pkg/transport"
)

// ClientFactory binds news API clients to one context's credentials.
type ClientFactory func(creds transport.CredentialStore) Clients

// TransportClients returns a factory over a shared transport client.
func TransportClients(client *transport.Client) ClientFactory {
	return func(creds transport.CredentialStore) Clients {
		return ClientsFrom(upstream.New(client.Bind(creds)))
	}
}

// SessionManagerConfig tunes restoration.
type SessionManagerConfig struct {
	KeyPrefix      string
	ScopeTTL       time.Duration
	RestoreWait    time.Duration
	RestoreTimeout time.Duration
}

// SessionManager opens a Browser per request and restores its session.
// Restoration of one context is coalesced across concurrent requests and
// keeps running when a request stops waiting for it.
type SessionManager struct {
	repo      StorageRepository
	clients   ClientFactory
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       SessionManagerConfig
	group     singleflight.Group
}

// NewSessionManager constructs a session manager.
func NewSessionManager(repo StorageRepository, clients ClientFactory, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, cfg SessionManagerConfig) *SessionManager {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RestoreWait <= 0 {
		cfg.RestoreWait = 3 * time.Second
	}
	if cfg.RestoreTimeout <= 0 {
		cfg.RestoreTimeout = 30 * time.Second
	}
	return &SessionManager{repo: repo, clients: clients, validator: validate, metrics: metrics, logger: logger, cfg: cfg}
}

// Open assembles the Browser of contextID and restores its session, waiting
// at most RestoreWait. A store still restoring is returned Loading. Every
// Open counts as activity of the browsing session.
func (m *SessionManager) Open(ctx context.Context, contextID string) *Browser {
	browser := m.Assemble(contextID)
	if err := browser.Storage.Session().Touch(ctx); err != nil {
		m.logger.Warn("session scope touch failed", zap.String("context_id", contextID), zap.Error(err))
	}
	m.restore(ctx, browser)
	return browser
}

// Assemble builds a Browser without restoring its session.
func (m *SessionManager) Assemble(contextID string) *Browser {
	storage := NewBrowserStorage(m.repo, contextID, StorageOptions{
		KeyPrefix:  m.cfg.KeyPrefix,
		SessionTTL: m.cfg.ScopeTTL,
		Metrics:    m.metrics,
		Logger:     m.logger,
	})
	clients := m.clients(storage)
	notices := NewNoticeBuffer()
	return &Browser{
		ID:       contextID,
		Storage:  storage,
		Articles: clients.Articles,
		Polls:    clients.Polls,
		Comments: clients.Comments,
		Session:  NewSessionStore(storage, clients.Auth, notices, m.validator, m.logger),
		Notices:  notices,
	}
}

func (m *SessionManager) restore(ctx context.Context, browser *Browser) {
	ch := m.group.DoChan(browser.ID, func() (interface{}, error) {
		restoreCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.RestoreTimeout)
		defer cancel()
		return browser.Session.Restore(restoreCtx), nil
	})

	timer := time.NewTimer(m.cfg.RestoreWait)
	defer timer.Stop()
	select {
	case res := <-ch:
		if state, ok := res.Val.(models.SessionState); ok {
			browser.Session.apply(state)
		}
	case <-timer.C:
		m.logger.Debug("session restore still running", zap.String("context_id", browser.ID))
	case <-ctx.Done():
	}
}
