package models

import (
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const articleColumns = `a.id, a.headline, a.body, a.summary, a.category, a.country, a.language,
	a.variant, a.is_fake, a.fake_reason, a.publication_tier, a.tier_reason,
	a.published_at, a.created_at,
	COALESCE((SELECT array_agg(l.story_id::text) FROM article_stories l WHERE l.article_id = a.id), '{}')`

const storyColumns = `s.id, s.category, s.countries, s.dateline, s.synopsis, s.source_refs,
	s.interest_tier, s.tier_reason, s.created_at, s.updated_at`

// ArticleQuery filters a page of articles. Before is the inclusive upper
// bound on created_at decoded from a cursor. A non-nil BeforeID narrows the
// bound to rows at or below (Before, BeforeID) in page order.
type ArticleQuery struct {
	Category Category
	Country  string
	Language string
	Tiers    []PublicationTier
	Before   *time.Time
	BeforeID uuid.UUID
	Limit    int
}

func (q ArticleQuery) filters() sq.And {
	where := sq.And{}
	if q.Category != "" {
		where = append(where, sq.Eq{"a.category": string(q.Category)})
	}
	if q.Country != "" {
		where = append(where, sq.Eq{"a.country": q.Country})
	}
	if q.Language != "" {
		where = append(where, sq.Eq{"a.language": q.Language})
	}
	if len(q.Tiers) > 0 {
		tiers := make([]string, len(q.Tiers))
		for i, t := range q.Tiers {
			tiers[i] = string(t)
		}
		where = append(where, sq.Eq{"a.publication_tier": tiers})
	}
	return where
}

// pageQuery selects the rows of one page, newest first.
func (q ArticleQuery) pageQuery() sq.SelectBuilder {
	b := psql.Select(articleColumns).From("articles a").Where(q.filters())
	switch {
	case q.Before != nil && q.BeforeID != uuid.Nil:
		b = b.Where(sq.Or{
			sq.Lt{"a.created_at": *q.Before},
			sq.And{sq.Eq{"a.created_at": *q.Before}, sq.LtOrEq{"a.id": q.BeforeID}},
		})
	case q.Before != nil:
		b = b.Where(sq.LtOrEq{"a.created_at": *q.Before})
	}
	b = b.OrderBy("a.created_at DESC", "a.id DESC")
	if q.Limit > 0 {
		b = b.Limit(uint64(q.Limit))
	}
	return b
}

// countQuery counts every row matching the filters, ignoring the cursor.
func (q ArticleQuery) countQuery() sq.SelectBuilder {
	return psql.Select("COUNT(*)").From("articles a").Where(q.filters())
}

// StoryGapQuery selects stories that have no article for a locale yet.
type StoryGapQuery struct {
	Country      string
	Language     string
	ExcludeTiers []InterestTier
	Limit        int
}

func (q StoryGapQuery) query() sq.SelectBuilder {
	b := psql.Select(storyColumns).From("stories s").
		Where(sq.Expr(`NOT EXISTS (
			SELECT 1 FROM article_stories l
			JOIN articles a ON a.id = l.article_id
			WHERE l.story_id = s.id AND a.country = ? AND a.language = ?)`, q.Country, q.Language)).
		Where(sq.Expr("(? = ANY(s.countries) OR ? = ANY(s.countries))", q.Country, GlobalCountry))
	if len(q.ExcludeTiers) > 0 {
		tiers := make([]string, len(q.ExcludeTiers))
		for i, t := range q.ExcludeTiers {
			tiers[i] = string(t)
		}
		b = b.Where(sq.NotEq{"s.interest_tier": tiers})
	}
	b = b.OrderBy("s.created_at DESC")
	if q.Limit > 0 {
		b = b.Limit(uint64(q.Limit))
	}
	return b
}

// StoryQuery filters stories for listing.
type StoryQuery struct {
	Category Category
	Country  string
	Tier     InterestTier
	Limit    int
}

func (q StoryQuery) query() sq.SelectBuilder {
	b := psql.Select(storyColumns).From("stories s")
	if q.Category != "" {
		b = b.Where(sq.Eq{"s.category": string(q.Category)})
	}
	if q.Country != "" {
		b = b.Where(sq.Expr("? = ANY(s.countries)", q.Country))
	}
	if q.Tier != "" {
		b = b.Where(sq.Eq{"s.interest_tier": string(q.Tier)})
	}
	b = b.OrderBy("s.created_at DESC")
	if q.Limit > 0 {
		b = b.Limit(uint64(q.Limit))
	}
	return b
}
