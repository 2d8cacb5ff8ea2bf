package service

import (
	"context"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/newsroom-console/internal/models"
	appErrors "github.com/noah-isme/newsroom-console/pkg/errors"
)

// SessionStore owns the session of one browser context. Nothing else writes
// the access token or the identity.
type SessionStore struct {
	storage   *BrowserStorage
	auth      AuthClient
	notices   Notifier
	validator *validator.Validate
	logger    *zap.Logger

	mu    sync.RWMutex
	state models.SessionState
}

// NewSessionStore builds a store in the Loading state.
func NewSessionStore(storage *BrowserStorage, auth AuthClient, notices Notifier, validate *validator.Validate, logger *zap.Logger) *SessionStore {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{
		storage:   storage,
		auth:      auth,
		notices:   notices,
		validator: validate,
		logger:    logger.With(zap.String("context_id", storage.ContextID())),
		state:     models.SessionState{Loading: true},
	}
}

// State returns a snapshot of the session.
func (s *SessionStore) State() models.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := s.state
	if snapshot.User != nil {
		user := *snapshot.User
		snapshot.User = &user
	}
	return snapshot
}

// Restore resolves the session from the persisted token. It never fails:
// any problem degrades to "no session" and clears the token.
func (s *SessionStore) Restore(ctx context.Context) models.SessionState {
	user := s.resolve(ctx)
	state := models.SessionState{User: user}
	s.apply(state)
	return s.State()
}

// resolve looks up the identity behind the stored token. A rejected token is
// cleared only while it is still the stored one: a login that finished during
// the lookup has replaced it and is resolved instead.
func (s *SessionStore) resolve(ctx context.Context) *models.User {
	tried := ""
	for attempt := 0; attempt < 2; attempt++ {
		token, err := s.storage.AccessToken(ctx)
		if err != nil {
			s.logger.Warn("read access token failed", zap.Error(err))
			return nil
		}
		if token == "" {
			if tried == "" {
				_ = s.storage.Session().Delete(ctx, KeyIdentity)
			}
			return nil
		}
		if token == tried {
			return nil
		}

		var cached models.User
		if ok, err := s.storage.Session().Get(ctx, KeyIdentity, &cached); err == nil && ok {
			return &cached
		}

		user, err := s.auth.CurrentUser(ctx)
		if err == nil {
			if err := s.storage.Session().Set(ctx, KeyIdentity, user); err != nil {
				s.logger.Warn("cache identity failed", zap.Error(err))
			}
			return user
		}
		s.logger.Info("session restoration rejected", zap.Error(err))
		if s.clearCredentialsIf(ctx, token) {
			return nil
		}
		tried = token
	}
	return nil
}

// clearCredentialsIf clears the credentials when token is still the stored
// access token and reports whether it did.
func (s *SessionStore) clearCredentialsIf(ctx context.Context, token string) bool {
	current, err := s.storage.AccessToken(ctx)
	if err == nil && current != token {
		s.logger.Debug("access token replaced during restore, keeping it")
		return false
	}
	s.clearCredentials(ctx)
	return true
}

func (s *SessionStore) apply(state models.SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Login authenticates and replaces the session. On failure the existing
// session is left as it was.
func (s *SessionStore) Login(ctx context.Context, req models.LoginRequest, from string) (*models.LoginOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Please fill in all fields")
	}

	result, err := s.auth.Login(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.storage.SetAccessToken(ctx, result.AccessToken); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}
	user := result.User
	if err := s.storage.Session().Set(ctx, KeyIdentity, user); err != nil {
		s.logger.Warn("cache identity failed", zap.Error(err))
	}
	s.apply(models.SessionState{User: &user})
	notifySuccess(s.notices, "Logged in successfully")

	return &models.LoginOutcome{User: user, Redirect: LandingPath(user.Role, from)}, nil
}

// Register creates an account without opening a session.
func (s *SessionStore) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Please fill in all fields")
	}
	user, err := s.auth.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	notifySuccess(s.notices, "Registration successful! Please login.")
	return user, nil
}

// Logout always ends the local session, whatever the upstream answers.
func (s *SessionStore) Logout(ctx context.Context) {
	if err := s.auth.Logout(ctx); err != nil {
		s.logger.Debug("upstream logout failed", zap.Error(err))
	}
	s.clearCredentials(ctx)
	if err := s.storage.ClearCookies(ctx); err != nil {
		s.logger.Warn("clear upstream cookies failed", zap.Error(err))
	}
	s.apply(models.SessionState{})
	notifySuccess(s.notices, "Logged out")
}

// UpdateIdentity merges patch into the current session without contacting
// the server. It does nothing when no session exists.
func (s *SessionStore) UpdateIdentity(ctx context.Context, patch models.UserPatch) {
	s.mu.Lock()
	if s.state.User == nil {
		s.mu.Unlock()
		return
	}
	patch.Apply(s.state.User)
	user := *s.state.User
	s.mu.Unlock()

	if err := s.storage.Session().Set(ctx, KeyIdentity, user); err != nil {
		s.logger.Warn("cache identity failed", zap.Error(err))
	}
}

// UpdateAccount saves account fields upstream and patches the session with
// the server's answer.
func (s *SessionStore) UpdateAccount(ctx context.Context, req models.UpdateAccountRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid account details")
	}
	user, err := s.auth.UpdateAccount(ctx, req)
	if err != nil {
		return nil, err
	}
	s.UpdateIdentity(ctx, models.PatchFrom(*user))
	notifySuccess(s.notices, "Profile updated")
	return user, nil
}

// ChangePassword changes the password; the session is untouched.
func (s *SessionStore) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Both fields required")
	}
	if err := s.auth.ChangePassword(ctx, req); err != nil {
		return err
	}
	notifySuccess(s.notices, "Password changed")
	return nil
}

// UpdateAvatar uploads an avatar and patches the session.
func (s *SessionStore) UpdateAvatar(ctx context.Context, file models.FileUpload) (*models.User, error) {
	if len(file.Content) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Avatar file is required")
	}
	user, err := s.auth.UpdateAvatar(ctx, file)
	if err != nil {
		return nil, err
	}
	avatar := user.Avatar
	s.UpdateIdentity(ctx, models.UserPatch{Avatar: &avatar})
	notifySuccess(s.notices, "Avatar updated")
	return user, nil
}

// UpdateCoverImage uploads a cover image and patches the session.
func (s *SessionStore) UpdateCoverImage(ctx context.Context, file models.FileUpload) (*models.User, error) {
	if len(file.Content) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Cover image file is required")
	}
	user, err := s.auth.UpdateCoverImage(ctx, file)
	if err != nil {
		return nil, err
	}
	cover := user.CoverImage
	s.UpdateIdentity(ctx, models.UserPatch{CoverImage: &cover})
	notifySuccess(s.notices, "Cover image updated")
	return user, nil
}

func (s *SessionStore) clearCredentials(ctx context.Context) {
	if err := s.storage.ClearAccessToken(ctx); err != nil {
		s.logger.Warn("clear access token failed", zap.Error(err))
	}
	if err := s.storage.Session().Delete(ctx, KeyIdentity); err != nil {
		s.logger.Warn("clear identity failed", zap.Error(err))
	}
}

// LandingPath is where a fresh login goes: staff to the admin area, everyone
// else back to the page that sent them to login.
func LandingPath(role models.Role, from string) string {
	if role.IsStaff() {
		return "/admin"
	}
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return "/"
	}
	if from == "/login" || from == "/register" {
		return "/"
	}
	return from
}
