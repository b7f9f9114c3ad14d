package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ArticleStore provides data access methods for generated articles.
type ArticleStore struct {
	pool *pgxpool.Pool
}

// NewArticleStore creates a new ArticleStore.
func NewArticleStore(pool *pgxpool.Pool) *ArticleStore {
	return &ArticleStore{pool: pool}
}

// CreateMany inserts articles and their story links in one transaction.
func (s *ArticleStore) CreateMany(ctx context.Context, articles []Article) error {
	if len(articles) == 0 {
		return nil
	}
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, a := range articles {
			batch.Queue(`
				INSERT INTO articles (id, headline, body, summary, category, country, language,
				                      variant, is_fake, fake_reason, publication_tier, tier_reason,
				                      published_at, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			`, a.ID, a.Headline, a.Body, a.Summary, string(a.Category), a.Country, a.Language,
				a.Variant, a.Authenticity.IsFake, a.Authenticity.Reason, string(a.PublicationTier),
				a.TierReason, a.PublishedAt, a.CreatedAt)
			for _, storyID := range a.StoryIDs {
				batch.Queue(`
					INSERT INTO article_stories (article_id, story_id) VALUES ($1, $2)
					ON CONFLICT DO NOTHING
				`, a.ID, storyID)
			}
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("article create: %w", err)
	}
	return nil
}

// FindByID returns a single article by its UUID.
func (s *ArticleStore) FindByID(ctx context.Context, id uuid.UUID) (*Article, error) {
	sql, args, err := psql.Select(articleColumns).From("articles a").Where("a.id = ?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("article get: build: %w", err)
	}
	a, err := scanArticle(s.pool.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("article get: %w", err)
	}
	return a, nil
}

// FindMany returns one page of articles matching q and the total number of
// articles matching q's filters regardless of the cursor.
func (s *ArticleStore) FindMany(ctx context.Context, q ArticleQuery) ([]Article, int, error) {
	countSQL, countArgs, err := q.countQuery().ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("article count: build: %w", err)
	}
	var total int
	if err := s.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("article count: %w", err)
	}

	articles, err := s.list(ctx, "article list", q.pageQuery())
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// FindPending returns up to limit articles awaiting classification, oldest
// first.
func (s *ArticleStore) FindPending(ctx context.Context, limit int) ([]Article, error) {
	b := psql.Select(articleColumns).From("articles a").
		Where("a.publication_tier = ?", string(PublicationPending)).
		OrderBy("a.created_at ASC").
		Limit(uint64(limit))
	return s.list(ctx, "article pending", b)
}

// FindPublishedSummaries returns headlines and summaries of the most recent
// articles for a locale, regardless of tier, so generation can avoid
// repeating itself.
func (s *ArticleStore) FindPublishedSummaries(ctx context.Context, country, language string, limit int) ([]ArticleSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT headline, summary
		FROM articles
		WHERE country = $1 AND language = $2
		ORDER BY created_at DESC
		LIMIT $3
	`, country, language, limit)
	if err != nil {
		return nil, fmt.Errorf("article summaries: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[ArticleSummary])
	if err != nil {
		return nil, fmt.Errorf("article summaries: %w", err)
	}
	return out, nil
}

// UpdateTier moves a pending article to a terminal tier.
func (s *ArticleStore) UpdateTier(ctx context.Context, id uuid.UUID, tier PublicationTier, reason string) error {
	if _, err := PublicationPending.Transition(tier); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE articles
		SET publication_tier = $2, tier_reason = $3
		WHERE id = $1 AND publication_tier = $4
	`, id, string(tier), reason, string(PublicationPending))
	if err != nil {
		return fmt.Errorf("article update tier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("article update tier %s: %w", id, ErrInvalidTransition)
	}
	return nil
}

func (s *ArticleStore) list(ctx context.Context, scope string, b interface {
	ToSql() (string, []any, error)
}) ([]Article, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build: %w", scope, err)
	}
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", scope, err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", scope, err)
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

func scanArticle(row scannable) (*Article, error) {
	var a Article
	var category, tier string
	var storyIDs []string
	if err := row.Scan(
		&a.ID, &a.Headline, &a.Body, &a.Summary, &category, &a.Country, &a.Language,
		&a.Variant, &a.Authenticity.IsFake, &a.Authenticity.Reason, &tier, &a.TierReason,
		&a.PublishedAt, &a.CreatedAt, &storyIDs,
	); err != nil {
		return nil, err
	}
	a.Category = Category(category)
	a.PublicationTier = PublicationTier(tier)
	for _, raw := range storyIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("story link %q: %w", raw, err)
		}
		a.StoryIDs = append(a.StoryIDs, id)
	}
	return &a, nil
}
