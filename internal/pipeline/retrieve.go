package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/Saul-Punybz/newsdesk/internal/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListQuery selects a page of published articles. Language is required.
type ListQuery struct {
	Category models.Category
	Country  string
	Language string
	Cursor   string
	Limit    int
}

// Page is one page of published articles, newest first. NextCursor is nil
// on the last page. Total counts every match ignoring the cursor.
type Page struct {
	Items      []models.Article `json:"items"`
	NextCursor *string          `json:"nextCursor"`
	Total      int              `json:"total"`
}

// Retriever serves published articles with cursor pagination.
type Retriever struct {
	articles ArticleRepository
}

// NewRetriever returns a Retriever over articles.
func NewRetriever(articles ArticleRepository) *Retriever {
	return &Retriever{articles: articles}
}

// List returns the page of published articles at or after the cursor
// position in (created_at, id) descending order. An undecodable cursor
// yields *InvalidCursorError.
func (r *Retriever) List(ctx context.Context, q ListQuery) (*Page, error) {
	language := strings.ToLower(strings.TrimSpace(q.Language))
	if language == "" {
		return nil, fmt.Errorf("list articles: language is required: %w", models.ErrValidation)
	}

	limit := q.Limit
	switch {
	case limit <= 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}

	aq := models.ArticleQuery{
		Category: q.Category,
		Country:  strings.ToLower(strings.TrimSpace(q.Country)),
		Language: language,
		Tiers:    models.PublishedTiers,
		Limit:    limit + 1,
	}
	if q.Cursor != "" {
		before, id, err := DecodeCursor(q.Cursor)
		if err != nil {
			return nil, err
		}
		aq.Before = &before
		aq.BeforeID = id
	}

	items, total, err := r.articles.FindMany(ctx, aq)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	page := &Page{Items: items, Total: total}
	if len(items) > limit {
		next := EncodeCursor(items[limit].CreatedAt, items[limit].ID)
		page.NextCursor = &next
		page.Items = items[:limit]
	}
	if page.Items == nil {
		page.Items = []models.Article{}
	}
	return page, nil
}
