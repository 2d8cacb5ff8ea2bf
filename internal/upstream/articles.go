package upstream

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/noah-isme/newsroom-console/internal/models"
	"github.com/noah-isme/newsroom-console/pkg/transport"
)

// ArticlesAPI wraps the /articles endpoints.
type ArticlesAPI struct {
	doer transport.Doer
}

// ArticleFilter narrows an article listing.
type ArticleFilter struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

type articleList struct {
	Articles []models.Article `json:"articles"`
}

// BySlug fetches one article.
func (a *ArticlesAPI) BySlug(ctx context.Context, slug string) (*models.Article, error) {
	var article models.Article
	err := a.doer.Do(ctx, transport.Request{
		Method:   http.MethodGet,
		Path:     "/articles/" + url.PathEscape(slug),
		Fallback: "Article not found",
	}, &article)
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// IncrementView bumps the view counter of an article.
func (a *ArticlesAPI) IncrementView(ctx context.Context, slug string) error {
	return a.doer.Do(ctx, transport.Request{Method: http.MethodPost, Path: "/articles/" + url.PathEscape(slug) + "/view"}, nil)
}

// List returns published articles matching the filter.
func (a *ArticlesAPI) List(ctx context.Context, filter ArticleFilter) ([]models.Article, error) {
	query := transport.Values("category", filter.Category, "search", filter.Search)
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}
	var list articleList
	if err := a.doer.Do(ctx, transport.Request{Method: http.MethodGet, Path: "/articles", Query: query}, &list); err != nil {
		return nil, err
	}
	return list.Articles, nil
}

type bulkUploadBody struct {
	Articles []models.ImportRow `json:"articles"`
}

// BulkUpload submits every row in one request. It also returns the message
// the server attached to the outcome, which may be empty.
func (a *ArticlesAPI) BulkUpload(ctx context.Context, rows []models.ImportRow) (*models.ImportOutcome, string, error) {
	var (
		outcome models.ImportOutcome
		message string
	)
	err := a.doer.Do(ctx, transport.Request{
		Method:   http.MethodPost,
		Path:     "/articles/admin/bulk-upload",
		Body:     bulkUploadBody{Articles: rows},
		Fallback: "Bulk upload failed",
		Message:  &message,
	}, &outcome)
	if err != nil {
		return nil, "", err
	}
	return &outcome, message, nil
}
