package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Saul-Punybz/newsdesk/internal/models"
	"github.com/Saul-Punybz/newsdesk/internal/news"
)

// DirectReport counts the outcome of direct generation for one target.
type DirectReport struct {
	Fetched   int
	Generated int
	Fakes     int
}

// DirectGeneration writes a fixed-size batch of articles straight from raw
// news, mixing real and fabricated pieces.
type DirectGeneration struct {
	news     news.Provider
	articles ArticleRepository
	agent    WriterAgent
	archive  Archiver
	stamps   *Stamper
	count    int
	minFakes int
	recent   int
	stagger  time.Duration
}

// DirectOption configures a DirectGeneration.
type DirectOption func(*DirectGeneration)

// WithBatchShape sets the exact article count and minimum fakes per batch.
func WithBatchShape(count, minFakes int) DirectOption {
	return func(d *DirectGeneration) { d.count, d.minFakes = count, minFakes }
}

// WithRecentHeadlines sets how many published headlines steer the writer
// away from repeats.
func WithRecentHeadlines(n int) DirectOption {
	return func(d *DirectGeneration) { d.recent = n }
}

// WithDirectArchive keeps a snapshot of every generated batch.
func WithDirectArchive(a Archiver) DirectOption {
	return func(d *DirectGeneration) { d.archive = a }
}

// NewDirectGeneration returns a DirectGeneration writing eight articles per
// batch with at least two fakes by default.
func NewDirectGeneration(provider news.Provider, articles ArticleRepository, agent WriterAgent, stamps *Stamper, opts ...DirectOption) *DirectGeneration {
	d := &DirectGeneration{
		news:     provider,
		articles: articles,
		agent:    agent,
		stamps:   stamps,
		count:    8,
		minFakes: 2,
		recent:   50,
		stagger:  time.Second,
	}
	for _, o := range opts {
		o(d)
	}
	if d.stamps == nil {
		d.stamps = NewStamper(nil)
	}
	return d
}

// Run writes one batch for the target. The batch is all or nothing: a
// writer answer with the wrong shape stores no article.
func (d *DirectGeneration) Run(ctx context.Context, t Target) (DirectReport, error) {
	var rep DirectReport
	log := slog.With("country", t.Country, "language", t.Language)

	items, err := d.news.FetchNews(ctx, news.Options{Country: t.Country, Language: t.Language})
	if err != nil {
		return rep, fmt.Errorf("direct %s: fetch news: %w", t, err)
	}
	rep.Fetched = len(items)
	if len(items) == 0 {
		log.Info("direct: no news")
		return rep, nil
	}

	recent, err := d.articles.FindPublishedSummaries(ctx, t.Country, t.Language, d.recent)
	if err != nil {
		return rep, fmt.Errorf("direct %s: recent headlines: %w", t, err)
	}

	drafts, err := d.agent.Write(ctx, BatchRequest{
		Target:   t,
		News:     items,
		Recent:   recent,
		Count:    d.count,
		MinFakes: d.minFakes,
	})
	if err != nil {
		return rep, fmt.Errorf("direct %s: %w", t, err)
	}
	if drafts == nil {
		return rep, fmt.Errorf("direct %s: %w", t, ErrNoResult)
	}

	articles, fakes, err := d.build(t, drafts)
	if err != nil {
		return rep, fmt.Errorf("direct %s: %w", t, err)
	}
	if err := d.articles.CreateMany(ctx, articles); err != nil {
		return rep, fmt.Errorf("direct %s: save articles: %w", t, err)
	}
	rep.Generated, rep.Fakes = len(articles), fakes

	if d.archive != nil {
		key := fmt.Sprintf("%s-%d", t, articles[0].CreatedAt.UnixMilli())
		if err := d.archive.Archive(ctx, "batches", key, articles); err != nil {
			log.Warn("direct: archive failed", "err", err)
		}
	}

	log.Info("direct: batch complete", "generated", rep.Generated, "fakes", rep.Fakes)
	return rep, nil
}

func (d *DirectGeneration) build(t Target, drafts []ArticleDraft) ([]models.Article, int, error) {
	if len(drafts) != d.count {
		return nil, 0, fmt.Errorf("writer returned %d articles, want %d", len(drafts), d.count)
	}

	stamps := d.stamps.Reserve(len(drafts), d.stagger)
	articles := make([]models.Article, 0, len(drafts))
	fakes := 0
	for i, dr := range drafts {
		a, err := models.NewArticle(models.ArticleParams{
			Headline:   dr.Headline,
			Body:       dr.Body,
			Summary:    dr.Summary,
			Category:   dr.Category,
			Country:    t.Country,
			Language:   t.Language,
			IsFake:     dr.IsFake,
			FakeReason: dr.FakeReason,
			CreatedAt:  stamps[i],
		})
		if err != nil {
			return nil, 0, fmt.Errorf("article %d: %w", i, err)
		}
		if a.Authenticity.IsFake {
			fakes++
		}
		articles = append(articles, *a)
	}
	if fakes < d.minFakes {
		return nil, 0, fmt.Errorf("writer returned %d fabricated articles, want at least %d", fakes, d.minFakes)
	}
	return articles, fakes, nil
}
