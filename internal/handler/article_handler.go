package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/newsroom-console/internal/models"
	"github.com/noah-isme/newsroom-console/internal/service"
)

type articleService interface {
	Page(ctx context.Context, b *service.Browser, slug string) (*models.ArticlePage, error)
}

// ArticleHandler serves the article page.
type ArticleHandler struct {
	articles articleService
}

// NewArticleHandler constructs an ArticleHandler.
func NewArticleHandler(articles articleService) *ArticleHandler {
	return &ArticleHandler{articles: articles}
}

// Page godoc
// @Summary Article page
// @Description Returns the article with up to three related articles; the first visit per session counts a view
// @Tags Articles
// @Produce json
// @Param slug path string true "Article slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /articles/{slug} [get]
func (h *ArticleHandler) Page(c *gin.Context) {
	b, ok := browserFromContext(c)
	if !ok {
		return
	}
	page, err := h.articles.Page(c.Request.Context(), b, c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, page)
}
