// Package app wires configuration into the running pipeline: database,
// stores, news providers, AI agents, stages and scheduled tasks.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Saul-Punybz/newsdesk/internal/agents"
	"github.com/Saul-Punybz/newsdesk/internal/ai"
	"github.com/Saul-Punybz/newsdesk/internal/config"
	"github.com/Saul-Punybz/newsdesk/internal/db"
	"github.com/Saul-Punybz/newsdesk/internal/models"
	"github.com/Saul-Punybz/newsdesk/internal/news"
	"github.com/Saul-Punybz/newsdesk/internal/pipeline"
	"github.com/Saul-Punybz/newsdesk/internal/scheduler"
	"github.com/Saul-Punybz/newsdesk/internal/scraper"
	"github.com/Saul-Punybz/newsdesk/internal/storage"
)

// App holds the long-lived dependencies of the worker and CLI.
type App struct {
	Pool     *pgxpool.Pool
	Stories  *models.StoryStore
	Articles *models.ArticleStore
	Storage  *storage.Client
	Tasks    []scheduler.Task
}

// Build connects to the database and assembles every task. The caller
// closes the App.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	completer, err := ai.NewCompleter(cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	provider, err := NewNewsProvider(cfg.News)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	store, err := storage.NewClient(ctx, cfg.S3)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("app: %w", err)
	}

	a := &App{
		Pool:     pool,
		Stories:  models.NewStoryStore(pool),
		Articles: models.NewArticleStore(pool),
		Storage:  store,
	}
	a.Tasks = BuildTasks(cfg.Pipeline, Deps{
		News:      provider,
		Stories:   a.Stories,
		Articles:  a.Articles,
		Completer: completer,
		Archive:   store,
	})

	slog.Info("app: built",
		"ai", cfg.AI.Provider,
		"news", cfg.News.Provider,
		"targets", len(cfg.Pipeline.Targets),
		"snapshots", store.Configured(),
	)
	return a, nil
}

// Close releases the database pool.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

// Task looks up a task by name.
func (a *App) Task(name string) (scheduler.Task, bool) {
	for _, t := range a.Tasks {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// Deps are the collaborators BuildTasks wires into the stages.
type Deps struct {
	News      news.Provider
	Stories   pipeline.StoryRepository
	Articles  pipeline.ArticleRepository
	Completer ai.Completer
	Archive   pipeline.Archiver
}

// BuildTasks assembles the scheduled tasks from their stages. One Stamper
// is shared so every article and story gets a distinct creation time.
func BuildTasks(cfg config.PipelineConfig, d Deps) []scheduler.Task {
	stamps := pipeline.NewStamper(nil)

	articleClassification := pipeline.NewArticleClassification(d.Articles, agents.NewArticleClassifier(d.Completer), cfg.ClassifyBatch)
	storyClassification := pipeline.NewStoryClassification(d.Stories, agents.NewStoryClassifier(d.Completer), cfg.ClassifyBatch)

	digestion := pipeline.NewDigestion(d.News, d.Stories, agents.NewDigester(d.Completer), stamps,
		pipeline.WithDedupWindow(cfg.DedupWindow),
		pipeline.WithDigestArchive(d.Archive),
	)
	generation := pipeline.NewGeneration(d.Stories, d.Articles, agents.NewComposer(d.Completer), stamps, cfg.GenerationBatch, d.Archive)
	direct := pipeline.NewDirectGeneration(d.News, d.Articles, agents.NewBatchWriter(d.Completer), stamps,
		pipeline.WithBatchShape(cfg.ArticlesPerBatch, cfg.MinFakes),
		pipeline.WithRecentHeadlines(cfg.RecentHeadlines),
		pipeline.WithDirectArchive(d.Archive),
	)

	opts := func(schedule string) pipeline.TaskOptions {
		return pipeline.TaskOptions{
			Schedule:  schedule,
			OnStartup: cfg.RunOnStartup,
			Targets:   cfg.Targets,
			Workers:   cfg.Workers,
		}
	}

	return []scheduler.Task{
		pipeline.NewStoryDigestTask(opts(cfg.DigestSchedule), digestion, generation, articleClassification),
		pipeline.NewArticleGenerationTask(opts(cfg.GenerationSchedule), direct, articleClassification),
		pipeline.NewStoryClassificationTask(opts(cfg.ClassificationSchedule), storyClassification),
	}
}

// NewNewsProvider builds the configured upstream wrapped as
// Cached(RateLimited(upstream)).
func NewNewsProvider(cfg config.NewsConfig) (news.Provider, error) {
	var upstream news.Provider
	switch cfg.Provider {
	case "worldnews", "":
		c, err := news.NewWorldNewsClient(cfg.BaseURL, cfg.APIKey)
		if err != nil {
			return nil, err
		}
		upstream = c
	case "rss":
		var body news.BodyScraper
		if cfg.EnrichBody {
			body = scraper.NewScraper(time.Second)
		}
		upstream = news.NewFeedProvider(cfg.FeedURL, body)
	default:
		return nil, fmt.Errorf("unknown news provider %q", cfg.Provider)
	}

	limited := news.NewRateLimited(upstream, cfg.MinInterval)
	return news.NewCached(limited, cfg.CacheDir, cfg.Env, cfg.CacheTTL), nil
}
