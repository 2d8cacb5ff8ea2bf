package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/newsroom-console/internal/models"
	"github.com/noah-isme/newsroom-console/internal/service"
	appErrors "github.com/noah-isme/newsroom-console/pkg/errors"
)

type commentService interface {
	List(ctx context.Context, b *service.Browser, articleID string) ([]models.CommentView, error)
	Add(ctx context.Context, b *service.Browser, articleID, content string) (*models.CommentView, error)
	Delete(ctx context.Context, b *service.Browser, articleID, commentID string) error
}

// CommentHandler exposes article comments.
type CommentHandler struct {
	comments commentService
}

// NewCommentHandler constructs a CommentHandler.
func NewCommentHandler(comments commentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// List godoc
// @Summary List comments
// @Tags Comments
// @Produce json
// @Param articleId path string true "Article ID"
// @Success 200 {object} response.Envelope
// @Router /comments/{articleId} [get]
func (h *CommentHandler) List(c *gin.Context) {
	b, ok := browserFromContext(c)
	if !ok {
		return
	}
	comments, err := h.comments.List(c.Request.Context(), b, c.Param("articleId"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, comments)
}

// Add godoc
// @Summary Post a comment
// @Tags Comments
// @Accept json
// @Produce json
// @Param articleId path string true "Article ID"
// @Param payload body models.CommentRequest true "Comment"
// @Success 201 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /comments/{articleId} [post]
func (h *CommentHandler) Add(c *gin.Context) {
	b, ok := browserFromContext(c)
	if !ok {
		return
	}
	var req models.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid comment payload"))
		return
	}
	comment, err := h.comments.Add(c.Request.Context(), b, c.Param("articleId"), req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, comment)
}

// Delete godoc
// @Summary Delete a comment
// @Description Allowed for the author, admins and editors
// @Tags Comments
// @Produce json
// @Param articleId path string true "Article ID"
// @Param commentId path string true "Comment ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /comments/{articleId}/{commentId} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	b, ok := browserFromContext(c)
	if !ok {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), b, c.Param("articleId"), c.Param("commentId")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"deleted": c.Param("commentId")})
}
