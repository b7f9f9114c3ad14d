package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Saul-Punybz/newsdesk/internal/models"
)

// PendingSource lists entities awaiting review and records their verdicts.
type PendingSource[E any, T ~string] interface {
	FindPending(ctx context.Context, limit int) ([]E, error)
	UpdateTier(ctx context.Context, id uuid.UUID, tier T, reason string) error
}

// tier is a review state that validates its own transitions.
type tier[T any] interface {
	~string
	Transition(to T) (T, error)
}

// ClassificationReport summarizes one classification batch.
type ClassificationReport struct {
	Classified int
	Failed     int
	Total      int
}

// Classification moves pending entities of one kind to a terminal tier.
type Classification[E any, T tier[T]] struct {
	name   string
	source PendingSource[E, T]
	agent  ClassifyAgent[E, T]
	batch  int
	id     func(E) uuid.UUID
	state  func(E) T
}

// NewStoryClassification classifies stories into interest tiers.
func NewStoryClassification(stories StoryRepository, agent ClassifyAgent[models.Story, models.InterestTier], batch int) *Classification[models.Story, models.InterestTier] {
	return &Classification[models.Story, models.InterestTier]{
		name:   "story",
		source: stories,
		agent:  agent,
		batch:  batch,
		id:     func(s models.Story) uuid.UUID { return s.ID },
		state:  func(s models.Story) models.InterestTier { return s.InterestTier },
	}
}

// NewArticleClassification classifies articles into publication tiers.
func NewArticleClassification(articles ArticleRepository, agent ClassifyAgent[models.Article, models.PublicationTier], batch int) *Classification[models.Article, models.PublicationTier] {
	return &Classification[models.Article, models.PublicationTier]{
		name:   "article",
		source: articles,
		agent:  agent,
		batch:  batch,
		id:     func(a models.Article) uuid.UUID { return a.ID },
		state:  func(a models.Article) models.PublicationTier { return a.PublicationTier },
	}
}

// Run classifies one batch of pending entities. A failure on one entity
// never affects the others; only listing the batch fails the run.
func (c *Classification[E, T]) Run(ctx context.Context) (ClassificationReport, error) {
	var rep ClassificationReport
	batch := c.batch
	if batch <= 0 {
		batch = 50
	}

	pending, err := c.source.FindPending(ctx, batch)
	if err != nil {
		return rep, fmt.Errorf("classify %s: list pending: %w", c.name, err)
	}
	rep.Total = len(pending)

	for _, e := range pending {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		id := c.id(e)
		if err := c.classify(ctx, e, id); err != nil {
			rep.Failed++
			slog.Warn("classify: "+c.name+" failed", "id", id, "err", err)
			continue
		}
		rep.Classified++
	}

	slog.Info("classify: batch complete",
		"kind", c.name,
		"classified", rep.Classified,
		"failed", rep.Failed,
		"total", rep.Total,
	)
	return rep, nil
}

func (c *Classification[E, T]) classify(ctx context.Context, e E, id uuid.UUID) error {
	v, err := c.agent.Classify(ctx, e)
	if err != nil {
		return err
	}
	if v == nil {
		return ErrNoResult
	}
	if _, err := c.state(e).Transition(v.Tier); err != nil {
		return err
	}
	return c.source.UpdateTier(ctx, id, v.Tier, v.Reason)
}
