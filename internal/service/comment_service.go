package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/newsroom-console/internal/models"
	appErrors "github.com/noah-isme/newsroom-console/pkg/errors"
)

// CanDelete reports whether session may delete comment: its author may, and
// so may admins and editors. Without a session nobody may.
func CanDelete(comment models.Comment, session models.SessionState) bool {
	if session.User == nil {
		return false
	}
	if comment.Owner.ID != "" && comment.Owner.ID == session.User.ID {
		return true
	}
	return session.User.Role == models.RoleAdmin || session.User.Role == models.RoleEditor
}

// CommentService lists, posts and deletes article comments.
type CommentService struct {
	logger *zap.Logger
}

// NewCommentService constructs a CommentService.
func NewCommentService(logger *zap.Logger) *CommentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{logger: logger}
}

// List returns the article's comments annotated for the current session.
func (s *CommentService) List(ctx context.Context, b *Browser, articleID string) ([]models.CommentView, error) {
	comments, err := b.Comments.List(ctx, articleID)
	if err != nil {
		return nil, upstreamFailure(err, "Failed to load comments")
	}
	session := b.Session.State()
	views := make([]models.CommentView, len(comments))
	for i, comment := range comments {
		views[i] = models.CommentView{Comment: comment, CanDelete: CanDelete(comment, session)}
	}
	return views, nil
}

// Add posts a comment and returns the created resource for the caller to
// prepend to its list.
func (s *CommentService) Add(ctx context.Context, b *Browser, articleID, content string) (*models.CommentView, error) {
	session := b.Session.State()
	if !session.IsAuthenticated() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "Please login to comment")
	}
	if strings.TrimSpace(content) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Comment cannot be empty")
	}
	comment, err := b.Comments.Add(ctx, articleID, content)
	if err != nil {
		return nil, upstreamFailure(err, "Failed to post comment")
	}
	notifySuccess(b.Notices, "Comment posted!")
	return &models.CommentView{Comment: *comment, CanDelete: CanDelete(*comment, session)}, nil
}

// Delete removes a comment of an article after checking the ownership
// policy locally. Refusals never reach the news API.
func (s *CommentService) Delete(ctx context.Context, b *Browser, articleID, commentID string) error {
	session := b.Session.State()
	if !session.IsAuthenticated() {
		return appErrors.ErrUnauthorized
	}
	comments, err := b.Comments.List(ctx, articleID)
	if err != nil {
		return upstreamFailure(err, "Failed to delete")
	}
	var target *models.Comment
	for i := range comments {
		if comments[i].ID == commentID {
			target = &comments[i]
			break
		}
	}
	if target == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "comment not found")
	}
	if !CanDelete(*target, session) {
		return appErrors.Clone(appErrors.ErrForbidden, "you may not delete this comment")
	}
	if err := b.Comments.Delete(ctx, commentID); err != nil {
		return upstreamFailure(err, "Failed to delete")
	}
	s.logger.Info("comment deleted", zap.String("context_id", b.ID), zap.String("comment_id", commentID), zap.String("user_id", session.User.ID))
	notifySuccess(b.Notices, "Comment deleted")
	return nil
}
