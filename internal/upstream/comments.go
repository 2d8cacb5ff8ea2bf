package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/noah-isme/newsroom-console/internal/models"
	"github.com/noah-isme/newsroom-console/pkg/transport"
)

// CommentsAPI wraps the /comments endpoints.
type CommentsAPI struct {
	doer transport.Doer
}

type commentList struct {
	Comments []models.Comment `json:"comments"`
}

// List returns the comments of an article.
func (c *CommentsAPI) List(ctx context.Context, articleID string) ([]models.Comment, error) {
	var list commentList
	err := c.doer.Do(ctx, transport.Request{
		Method:   http.MethodGet,
		Path:     "/comments/" + url.PathEscape(articleID),
		Fallback: "Failed to load comments",
	}, &list)
	if err != nil {
		return nil, err
	}
	return list.Comments, nil
}

// Add posts a comment and returns the created resource.
func (c *CommentsAPI) Add(ctx context.Context, articleID, content string) (*models.Comment, error) {
	var comment models.Comment
	err := c.doer.Do(ctx, transport.Request{
		Method:   http.MethodPost,
		Path:     "/comments/" + url.PathEscape(articleID),
		Body:     models.CommentRequest{Content: content},
		Fallback: "Failed to post comment",
	}, &comment)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Delete removes a comment.
func (c *CommentsAPI) Delete(ctx context.Context, commentID string) error {
	return c.doer.Do(ctx, transport.Request{
		Method:   http.MethodDelete,
		Path:     "/comments/" + url.PathEscape(commentID),
		Fallback: "Failed to delete",
	}, nil)
}
