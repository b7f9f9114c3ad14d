package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Saul-Punybz/newsdesk/internal/models"
)

// GenerationReport counts the outcome of story-based generation for one
// target.
type GenerationReport struct {
	Stories  int
	Failed   int
	Articles int
}

// Generation writes articles for stories that have none yet in the
// target's locale.
type Generation struct {
	stories  StoryRepository
	articles ArticleRepository
	agent    ComposerAgent
	archive  Archiver
	stamps   *Stamper
	batch    int
}

// NewGeneration returns a Generation handling up to batch stories per
// target and run.
func NewGeneration(stories StoryRepository, articles ArticleRepository, agent ComposerAgent, stamps *Stamper, batch int, archive Archiver) *Generation {
	if stamps == nil {
		stamps = NewStamper(nil)
	}
	if batch <= 0 {
		batch = 20
	}
	return &Generation{
		stories:  stories,
		articles: articles,
		agent:    agent,
		archive:  archive,
		stamps:   stamps,
		batch:    batch,
	}
}

// Run composes articles for the target's uncovered stories. A story whose
// composition fails is skipped and retried on the next run.
func (g *Generation) Run(ctx context.Context, t Target) (GenerationReport, error) {
	var rep GenerationReport
	log := slog.With("country", t.Country, "language", t.Language)

	stories, err := g.stories.FindWithoutArticles(ctx, models.StoryGapQuery{
		Country:      t.Country,
		Language:     t.Language,
		ExcludeTiers: []models.InterestTier{models.InterestArchived},
		Limit:        g.batch,
	})
	if err != nil {
		return rep, fmt.Errorf("generate %s: list stories: %w", t, err)
	}
	rep.Stories = len(stories)

	for _, story := range stories {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		articles, err := g.compose(ctx, t, story)
		if err != nil {
			rep.Failed++
			log.Warn("generate: story failed", "story", story.ID, "err", err)
			continue
		}
		if err := g.articles.CreateMany(ctx, articles); err != nil {
			rep.Failed++
			log.Error("generate: save articles failed", "story", story.ID, "err", err)
			continue
		}
		rep.Articles += len(articles)

		if g.archive != nil {
			if err := g.archive.Archive(ctx, "articles", story.ID.String()+"-"+t.String(), articles); err != nil {
				log.Warn("generate: archive failed", "story", story.ID, "err", err)
			}
		}
	}

	log.Info("generate: target complete",
		"stories", rep.Stories,
		"articles", rep.Articles,
		"failed", rep.Failed,
	)
	return rep, nil
}

// compose turns the agent's composition into a main article plus its
// valid variants. An invalid main article fails the story; an invalid
// variant is dropped.
func (g *Generation) compose(ctx context.Context, t Target, story models.Story) ([]models.Article, error) {
	comp, err := g.agent.Compose(ctx, ComposeRequest{Target: t, Story: story})
	if err != nil {
		return nil, err
	}
	if comp == nil {
		return nil, ErrNoResult
	}

	main, err := g.article(t, story, comp.Main, "")
	if err != nil {
		return nil, fmt.Errorf("main article: %w", err)
	}
	out := []models.Article{*main}

	for _, v := range comp.Variants {
		variant := v.Variant
		if variant == "" {
			variant = "alternate"
		}
		a, err := g.article(t, story, v, variant)
		if err != nil {
			slog.Debug("generate: variant dropped", "story", story.ID, "err", err)
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (g *Generation) article(t Target, story models.Story, d ArticleDraft, variant string) (*models.Article, error) {
	category := d.Category
	if category == "" {
		category = string(story.Category)
	}
	return models.NewArticle(models.ArticleParams{
		Headline:    d.Headline,
		Body:        d.Body,
		Summary:     d.Summary,
		Category:    category,
		Country:     t.Country,
		Language:    t.Language,
		Variant:     variant,
		IsFake:      d.IsFake,
		FakeReason:  d.FakeReason,
		PublishedAt: story.Dateline,
		CreatedAt:   g.stamps.Next(),
		StoryIDs:    []uuid.UUID{story.ID},
	})
}
