package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StoryStore provides data access methods for stories and their
// perspectives.
type StoryStore struct {
	pool *pgxpool.Pool
}

// NewStoryStore creates a new StoryStore.
func NewStoryStore(pool *pgxpool.Pool) *StoryStore {
	return &StoryStore{pool: pool}
}

// Create inserts a story and all of its perspectives in one transaction.
func (s *StoryStore) Create(ctx context.Context, st *Story) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO stories (id, category, countries, dateline, synopsis, source_refs,
			                     interest_tier, tier_reason, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, st.ID, string(st.Category), st.Countries, st.Dateline, st.Synopsis, st.SourceRefs,
			string(st.InterestTier), st.TierReason, st.CreatedAt, st.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert story: %w", err)
		}

		batch := &pgx.Batch{}
		for _, p := range st.Perspectives {
			batch.Queue(`
				INSERT INTO perspectives (id, story_id, holistic_digest, stance, discourse_type, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, p.ID, st.ID, p.HolisticDigest, string(p.Tags.Stance), string(p.Tags.DiscourseType), p.CreatedAt)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert perspectives: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("story create: %w", err)
	}
	return nil
}

// FindByID returns a story with its perspectives.
func (s *StoryStore) FindByID(ctx context.Context, id uuid.UUID) (*Story, error) {
	sql, args, err := psql.Select(storyColumns).From("stories s").Where("s.id = ?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("story get: build: %w", err)
	}
	st, err := scanStory(s.pool.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("story get: %w", err)
	}

	stories := []Story{*st}
	if err := s.attachPerspectives(ctx, stories); err != nil {
		return nil, err
	}
	return &stories[0], nil
}

// FindMany lists stories matching q, newest first.
func (s *StoryStore) FindMany(ctx context.Context, q StoryQuery) ([]Story, error) {
	return s.list(ctx, "story list", q.query())
}

// FindWithoutArticles returns stories for the query's country (or global
// stories) that have no linked article in the query's locale.
func (s *StoryStore) FindWithoutArticles(ctx context.Context, q StoryGapQuery) ([]Story, error) {
	return s.list(ctx, "story gaps", q.query())
}

// FindPending returns up to limit stories awaiting classification, oldest
// first.
func (s *StoryStore) FindPending(ctx context.Context, limit int) ([]Story, error) {
	b := psql.Select(storyColumns).From("stories s").
		Where("s.interest_tier = ?", string(InterestPending)).
		OrderBy("s.created_at ASC").
		Limit(uint64(limit))
	return s.list(ctx, "story pending", b)
}

// SourceReferences returns the source references of the most recent stories
// covering country or the whole world, newest first, capped at limit
// references.
func (s *StoryStore) SourceReferences(ctx context.Context, country string, limit int) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ref
		FROM stories s, unnest(s.source_refs) AS ref
		WHERE $1 = ANY(s.countries) OR $2 = ANY(s.countries)
		ORDER BY s.created_at DESC
		LIMIT $3
	`, country, GlobalCountry, limit)
	if err != nil {
		return nil, fmt.Errorf("story source refs: %w", err)
	}
	refs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("story source refs: %w", err)
	}
	return refs, nil
}

// UpdateTier moves a pending story to a terminal tier. Stories that are no
// longer pending are left untouched and reported as ErrInvalidTransition.
func (s *StoryStore) UpdateTier(ctx context.Context, id uuid.UUID, tier InterestTier, reason string) error {
	if _, err := InterestPending.Transition(tier); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE stories
		SET interest_tier = $2, tier_reason = $3, updated_at = now()
		WHERE id = $1 AND interest_tier = $4
	`, id, string(tier), reason, string(InterestPending))
	if err != nil {
		return fmt.Errorf("story update tier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("story update tier %s: %w", id, ErrInvalidTransition)
	}
	return nil
}

func (s *StoryStore) list(ctx context.Context, scope string, b interface {
	ToSql() (string, []any, error)
}) ([]Story, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build: %w", scope, err)
	}
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", scope, err)
	}
	defer rows.Close()

	var stories []Story
	for rows.Next() {
		st, err := scanStory(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", scope, err)
		}
		stories = append(stories, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", scope, err)
	}

	if err := s.attachPerspectives(ctx, stories); err != nil {
		return nil, err
	}
	return stories, nil
}

func (s *StoryStore) attachPerspectives(ctx context.Context, stories []Story) error {
	if len(stories) == 0 {
		return nil
	}
	ids := make([]string, len(stories))
	index := make(map[uuid.UUID]int, len(stories))
	for i, st := range stories {
		ids[i] = st.ID.String()
		index[st.ID] = i
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, story_id, holistic_digest, stance, discourse_type, created_at
		FROM perspectives
		WHERE story_id = ANY($1::uuid[])
		ORDER BY created_at, id
	`, ids)
	if err != nil {
		return fmt.Errorf("perspectives list: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p Perspective
		var stance, discourse string
		if err := rows.Scan(&p.ID, &p.StoryID, &p.HolisticDigest, &stance, &discourse, &p.CreatedAt); err != nil {
			return fmt.Errorf("perspectives scan: %w", err)
		}
		p.Tags = PerspectiveTags{Stance: Stance(stance), DiscourseType: DiscourseType(discourse)}
		i := index[p.StoryID]
		stories[i].Perspectives = append(stories[i].Perspectives, p)
	}
	return rows.Err()
}

// scannable is an interface for pgx Row and Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanStory(row scannable) (*Story, error) {
	var st Story
	var category, tier string
	if err := row.Scan(
		&st.ID, &category, &st.Countries, &st.Dateline, &st.Synopsis, &st.SourceRefs,
		&tier, &st.TierReason, &st.CreatedAt, &st.UpdatedAt,
	); err != nil {
		return nil, err
	}
	st.Category = Category(category)
	st.InterestTier = InterestTier(tier)
	return &st, nil
}
