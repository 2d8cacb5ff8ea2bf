package service

import (
	"context"
	"errors"

	"github.com/noah-isme/newsroom-console/internal/models"
	"github.com/noah-isme/newsroom-console/internal/upstream"
	appErrors "github.com/noah-isme/newsroom-console/pkg/errors"
)

// AuthClient is the identity half of the news API.
type AuthClient interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
	ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error
	UpdateAccount(ctx context.Context, req models.UpdateAccountRequest) (*models.User, error)
	UpdateAvatar(ctx context.Context, file models.FileUpload) (*models.User, error)
	UpdateCoverImage(ctx context.Context, file models.FileUpload) (*models.User, error)
}

// ArticleClient covers the article endpoints the console reads or imports to.
type ArticleClient interface {
	BySlug(ctx context.Context, slug string) (*models.Article, error)
	IncrementView(ctx context.Context, slug string) error
	List(ctx context.Context, filter upstream.ArticleFilter) ([]models.Article, error)
	BulkUpload(ctx context.Context, rows []models.ImportRow) (*models.ImportOutcome, string, error)
}

// PollClient covers the public poll endpoints.
type PollClient interface {
	Active(ctx context.Context, limit int) ([]models.Poll, error)
	Vote(ctx context.Context, pollID, optionID string) (*models.VoteResult, error)
}

// CommentClient covers the comment endpoints.
type CommentClient interface {
	List(ctx context.Context, articleID string) ([]models.Comment, error)
	Add(ctx context.Context, articleID, content string) (*models.Comment, error)
	Delete(ctx context.Context, commentID string) error
}

// Browser is everything the gateway holds for one visitor during a request:
// the visitor's storage, news API clients bound to its credentials, its
// session store and the notices produced so far.
type Browser struct {
	ID       string
	Storage  *BrowserStorage
	Articles ArticleClient
	Polls    PollClient
	Comments CommentClient
	Session  *SessionStore
	Notices  Notifier
}

// Clients bundles the API clients of a Browser.
type Clients struct {
	Auth     AuthClient
	Articles ArticleClient
	Polls    PollClient
	Comments CommentClient
}

// ClientsFrom adapts a typed upstream API.
func ClientsFrom(api *upstream.API) Clients {
	return Clients{Auth: api.Auth, Articles: api.Articles, Polls: api.Polls, Comments: api.Comments}
}

// upstreamFailure keeps typed upstream errors as they are and turns anything
// else (a cancelled context, a storage fault) into a generic upstream error.
func upstreamFailure(err error, fallback string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, fallback)
}
