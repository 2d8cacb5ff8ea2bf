package models

import "time"

// ArticleCategory is the category reference embedded in an article.
type ArticleCategory struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ArticleAuthor is the author summary embedded in an article.
type ArticleAuthor struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar,omitempty"`
}

// Article is a published news article.
type Article struct {
	ID          string          `json:"_id"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Content     string          `json:"content"`
	Excerpt     string          `json:"excerpt,omitempty"`
	Thumbnail   string          `json:"thumbnail,omitempty"`
	Category    ArticleCategory `json:"category"`
	Author      ArticleAuthor   `json:"author"`
	Tags        []string        `json:"tags,omitempty"`
	Status      string          `json:"status,omitempty"`
	IsFeatured  bool            `json:"isFeatured,omitempty"`
	Views       int             `json:"views"`
	PublishedAt *time.Time      `json:"publishedAt,omitempty"`
}

// ArticlePage is the article view with its related articles.
type ArticlePage struct {
	Article Article   `json:"article"`
	Related []Article `json:"related"`
}
