// Package cms reads news articles from the headless CMS.
package cms

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gouvernance-ai/gouvernance/internal/shared"
)

// ErrArticleNotFound is returned when no live article has the slug.
var ErrArticleNotFound = errors.New("cms: article introuvable")

// Article is a published news article.
type Article struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt"`
	Content     string    `json:"content"`
	Category    string    `json:"category"`
	PublishedAt time.Time `json:"publishedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LastModified returns the update time, or the publication time when absent.
func (a Article) LastModified() time.Time {
	if !a.UpdatedAt.IsZero() {
		return a.UpdatedAt
	}
	return a.PublishedAt
}

// ListParams selects a page of articles.
type ListParams struct {
	Page     int
	PageSize int
	Category string
}

// ArticlePage is one page of the article listing.
type ArticlePage struct {
	Articles   []Article         `json:"articles"`
	Pagination shared.Pagination `json:"pagination"`
}

type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta struct {
		Pagination shared.Pagination `json:"pagination"`
	} `json:"meta"`
}

// wireArticle accepts both flat entries and entries nesting their fields
// under "attributes".
type wireArticle struct {
	ID         int      `json:"id"`
	Attributes *Article `json:"attributes"`
	Article
}

func (w wireArticle) article() Article {
	if w.Attributes != nil {
		a := *w.Attributes
		a.ID = w.ID
		return a
	}
	a := w.Article
	a.ID = w.ID
	return a
}
