package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/newsroom-console/internal/models"
	"github.com/noah-isme/newsroom-console/internal/upstream"
	appErrors "github.com/noah-isme/newsroom-console/pkg/errors"
	"github.com/noah-isme/newsroom-console/pkg/jobs"
)

const (
	viewJobType  = "article.view"
	relatedFetch = 4
	relatedShown = 3
)

type jobDispatcher interface {
	TryEnqueue(job jobs.Job) error
}

type viewIncrement struct {
	articles ArticleClient
	slug     string
}

// ArticleService serves the article page and counts views once per
// browsing session.
type ArticleService struct {
	queue  jobDispatcher
	logger *zap.Logger
}

// NewArticleService constructs an ArticleService dispatching view increments to queue.
func NewArticleService(queue jobDispatcher, logger *zap.Logger) *ArticleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArticleService{queue: queue, logger: logger}
}

// Page returns the article and up to three related articles of its category.
// The first visit of a browsing session also fires the view increment in the
// background; its outcome is never surfaced.
func (s *ArticleService) Page(ctx context.Context, b *Browser, slug string) (*models.ArticlePage, error) {
	article, err := b.Articles.BySlug(ctx, slug)
	if err != nil {
		return nil, upstreamFailure(err, "Article not found")
	}

	s.countView(ctx, b, article)

	page := &models.ArticlePage{Article: *article, Related: []models.Article{}}
	if article.Category.Slug != "" || article.Category.ID != "" {
		page.Related = s.related(ctx, b, article)
	}
	return page, nil
}

func (s *ArticleService) countView(ctx context.Context, b *Browser, article *models.Article) {
	key := ViewedKeyPrefix + article.ID
	var marker bool
	seen, err := b.Storage.Session().Get(ctx, key, &marker)
	if err != nil || seen {
		return
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    viewJobType,
		Payload: viewIncrement{articles: b.Articles, slug: article.Slug},
	}
	if err := s.queue.TryEnqueue(job); err != nil {
		s.logger.Debug("view increment not queued", zap.String("slug", article.Slug), zap.Error(err))
	}
	if err := b.Storage.Session().Set(ctx, key, true); err != nil {
		s.logger.Debug("view marker not stored", zap.String("slug", article.Slug), zap.Error(err))
	}
}

func (s *ArticleService) related(ctx context.Context, b *Browser, article *models.Article) []models.Article {
	articles, err := b.Articles.List(ctx, upstream.ArticleFilter{Category: article.Category.Slug, Limit: relatedFetch})
	if err != nil {
		s.logger.Debug("related articles unavailable", zap.String("slug", article.Slug), zap.Error(err))
		return []models.Article{}
	}
	related := make([]models.Article, 0, relatedShown)
	for _, candidate := range articles {
		if candidate.Slug == article.Slug {
			continue
		}
		related = append(related, candidate)
		if len(related) == relatedShown {
			break
		}
	}
	return related
}

// HandleViewJob is the queue handler performing view increments.
func HandleViewJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(viewIncrement)
	if !ok {
		return appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("unexpected payload %T for %s", job.Payload, job.Type))
	}
	return payload.articles.IncrementView(ctx, payload.slug)
}
