// Package pipeline implements the content curation stages: story
// digestion, tier classification, article generation and retrieval, plus
// the scheduled tasks composing them.
package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/Saul-Punybz/newsdesk/internal/config"
	"github.com/Saul-Punybz/newsdesk/internal/models"
)

// Target is one (country, language) pair.
type Target = config.Target

// StoryRepository persists stories. Create stores the story and its
// perspectives atomically.
type StoryRepository interface {
	Create(ctx context.Context, s *models.Story) error
	FindWithoutArticles(ctx context.Context, q models.StoryGapQuery) ([]models.Story, error)
	SourceReferences(ctx context.Context, country string, limit int) ([]string, error)
	FindPending(ctx context.Context, limit int) ([]models.Story, error)
	UpdateTier(ctx context.Context, id uuid.UUID, tier models.InterestTier, reason string) error
}

// ArticleRepository persists generated articles. CreateMany stores a batch
// and its story links atomically.
type ArticleRepository interface {
	CreateMany(ctx context.Context, articles []models.Article) error
	FindMany(ctx context.Context, q models.ArticleQuery) ([]models.Article, int, error)
	FindPublishedSummaries(ctx context.Context, country, language string, limit int) ([]models.ArticleSummary, error)
	FindPending(ctx context.Context, limit int) ([]models.Article, error)
	UpdateTier(ctx context.Context, id uuid.UUID, tier models.PublicationTier, reason string) error
}

// Agent ports. An agent answers with a result, or with nil and/or an error
// when it has nothing usable. Stages treat both the same way: the unit of
// work is skipped and the batch goes on.

// PerspectiveDraft is one viewpoint proposed by the digest agent.
type PerspectiveDraft struct {
	Digest        string `json:"digest"`
	Stance        string `json:"stance"`
	DiscourseType string `json:"discourseType"`
}

// StoryDraft is the digest agent's view of one news cluster.
type StoryDraft struct {
	Category     string             `json:"category"`
	Countries    []string           `json:"countries"`
	Synopsis     string             `json:"synopsis"`
	Perspectives []PerspectiveDraft `json:"perspectives"`
}

// DigestRequest is one corroborated cluster to digest.
type DigestRequest struct {
	Target Target
	Item   models.NewsItem
}

// DigestAgent turns a news cluster into a story draft.
type DigestAgent interface {
	Digest(ctx context.Context, req DigestRequest) (*StoryDraft, error)
}

// Verdict is a classification result.
type Verdict[T ~string] struct {
	Tier   T      `json:"tier"`
	Reason string `json:"reason"`
}

// ClassifyAgent assigns a tier to an entity awaiting review.
type ClassifyAgent[E any, T ~string] interface {
	Classify(ctx context.Context, entity E) (*Verdict[T], error)
}

// ArticleDraft is one article proposed by a writing agent.
type ArticleDraft struct {
	Headline   string `json:"headline"`
	Body       string `json:"body"`
	Summary    string `json:"summary"`
	Category   string `json:"category"`
	Variant    string `json:"variant,omitempty"`
	IsFake     bool   `json:"isFake"`
	FakeReason string `json:"fakeReason,omitempty"`
}

// ComposeRequest asks for articles about one story in one locale.
type ComposeRequest struct {
	Target Target
	Story  models.Story
}

// Composition is a main article plus stance-differentiated variants.
type Composition struct {
	Main     ArticleDraft   `json:"main"`
	Variants []ArticleDraft `json:"variants"`
}

// ComposerAgent writes articles from a story.
type ComposerAgent interface {
	Compose(ctx context.Context, req ComposeRequest) (*Composition, error)
}

// BatchRequest asks for exactly Count articles from raw news, at least
// MinFakes of them fabricated, avoiding the Recent headlines.
type BatchRequest struct {
	Target   Target
	News     []models.NewsItem
	Recent   []models.ArticleSummary
	Count    int
	MinFakes int
}

// WriterAgent writes a batch of articles straight from raw news.
type WriterAgent interface {
	Write(ctx context.Context, req BatchRequest) ([]ArticleDraft, error)
}

// Archiver keeps a provenance snapshot of pipeline output. Failures are
// logged by the caller and never fail a stage.
type Archiver interface {
	Archive(ctx context.Context, kind, id string, v any) error
}
