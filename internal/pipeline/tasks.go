package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Saul-Punybz/newsdesk/internal/models"
)

// Task names.
const (
	TaskStoryDigest         = "story-digest"
	TaskArticleGeneration   = "article-generation"
	TaskStoryClassification = "story-classification"
)

// TaskOptions are the scheduling settings shared by every task.
type TaskOptions struct {
	Schedule  string
	OnStartup bool
	Targets   []Target
	Workers   int
}

type taskBase struct {
	name string
	opts TaskOptions
}

func (b taskBase) Name() string           { return b.name }
func (b taskBase) Schedule() string       { return b.opts.Schedule }
func (b taskBase) ExecuteOnStartup() bool { return b.opts.OnStartup }

// StoryDigestTask digests news into stories for every target, then writes
// articles for the new stories, then classifies pending articles. Each
// phase waits for every target of the previous one.
type StoryDigestTask struct {
	taskBase
	digestion  *Digestion
	generation *Generation
	articles   *Classification[models.Article, models.PublicationTier]
}

// NewStoryDigestTask returns the story-digest task.
func NewStoryDigestTask(opts TaskOptions, d *Digestion, g *Generation, c *Classification[models.Article, models.PublicationTier]) *StoryDigestTask {
	return &StoryDigestTask{
		taskBase:   taskBase{name: TaskStoryDigest, opts: opts},
		digestion:  d,
		generation: g,
		articles:   c,
	}
}

// Execute runs one story-digest pass. Target failures are logged and never
// fail the run.
func (t *StoryDigestTask) Execute(ctx context.Context) error {
	start := time.Now()

	digested := FanOut(ctx, t.opts.Targets, t.opts.Workers, func(ctx context.Context, tg Target) error {
		_, err := t.digestion.Run(ctx, tg)
		return err
	})
	logFailures("digest", digested)

	generated := FanOut(ctx, t.opts.Targets, t.opts.Workers, func(ctx context.Context, tg Target) error {
		_, err := t.generation.Run(ctx, tg)
		return err
	})
	logFailures("generate", generated)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", t.name, err)
	}
	_, err := t.articles.Run(ctx)

	slog.Info(t.name+": complete", "targets", len(t.opts.Targets), "duration", time.Since(start).Round(time.Millisecond))
	return err
}

// ArticleGenerationTask writes direct batches for every target, then
// classifies pending articles.
type ArticleGenerationTask struct {
	taskBase
	direct   *DirectGeneration
	articles *Classification[models.Article, models.PublicationTier]
}

// NewArticleGenerationTask returns the article-generation task.
func NewArticleGenerationTask(opts TaskOptions, d *DirectGeneration, c *Classification[models.Article, models.PublicationTier]) *ArticleGenerationTask {
	return &ArticleGenerationTask{
		taskBase: taskBase{name: TaskArticleGeneration, opts: opts},
		direct:   d,
		articles: c,
	}
}

// Execute runs one article-generation pass.
func (t *ArticleGenerationTask) Execute(ctx context.Context) error {
	start := time.Now()

	results := FanOut(ctx, t.opts.Targets, t.opts.Workers, func(ctx context.Context, tg Target) error {
		_, err := t.direct.Run(ctx, tg)
		return err
	})
	failed := logFailures("direct", results)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", t.name, err)
	}
	_, err := t.articles.Run(ctx)

	slog.Info(t.name+": complete", "targets", len(results), "failed", failed, "duration", time.Since(start).Round(time.Millisecond))
	return err
}

// StoryClassificationTask classifies one batch of pending stories.
type StoryClassificationTask struct {
	taskBase
	stories *Classification[models.Story, models.InterestTier]
}

// NewStoryClassificationTask returns the story-classification task.
func NewStoryClassificationTask(opts TaskOptions, c *Classification[models.Story, models.InterestTier]) *StoryClassificationTask {
	return &StoryClassificationTask{
		taskBase: taskBase{name: TaskStoryClassification, opts: opts},
		stories:  c,
	}
}

// Execute runs one story-classification batch.
func (t *StoryClassificationTask) Execute(ctx context.Context) error {
	_, err := t.stories.Run(ctx)
	return err
}
