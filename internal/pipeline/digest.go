package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Saul-Punybz/newsdesk/internal/models"
	"github.com/Saul-Punybz/newsdesk/internal/news"
)

// ErrNoResult is returned by agents that produced nothing usable.
var ErrNoResult = errors.New("agent returned no usable result")

// DigestReport counts what happened to the items of one target.
type DigestReport struct {
	Fetched        int
	Uncorroborated int
	Duplicates     int
	Failed         int
	Created        int
}

// Digestion turns corroborated news clusters into PENDING_REVIEW stories.
type Digestion struct {
	news        news.Provider
	stories     StoryRepository
	agent       DigestAgent
	archive     Archiver
	stamps      *Stamper
	minCoverage int
	dedupWindow int
}

// DigestionOption configures a Digestion.
type DigestionOption func(*Digestion)

// WithMinCoverage sets how many source articles an item needs.
func WithMinCoverage(n int) DigestionOption {
	return func(d *Digestion) { d.minCoverage = n }
}

// WithDedupWindow sets how many recent source references are checked for
// duplicates.
func WithDedupWindow(n int) DigestionOption {
	return func(d *Digestion) { d.dedupWindow = n }
}

// WithDigestArchive keeps a snapshot of every created story.
func WithDigestArchive(a Archiver) DigestionOption {
	return func(d *Digestion) { d.archive = a }
}

// NewDigestion returns a Digestion requiring coverage of at least two
// sources and checking the 2000 most recent references by default.
func NewDigestion(provider news.Provider, stories StoryRepository, agent DigestAgent, stamps *Stamper, opts ...DigestionOption) *Digestion {
	d := &Digestion{
		news:        provider,
		stories:     stories,
		agent:       agent,
		stamps:      stamps,
		minCoverage: 2,
		dedupWindow: 2000,
	}
	for _, o := range opts {
		o(d)
	}
	if d.stamps == nil {
		d.stamps = NewStamper(nil)
	}
	return d
}

// Run digests the news of one target. Individual items that fail are
// logged and counted; only acquisition and dedup lookups fail the run.
func (d *Digestion) Run(ctx context.Context, t Target) (DigestReport, error) {
	var rep DigestReport
	log := slog.With("country", t.Country, "language", t.Language)

	items, err := d.news.FetchNews(ctx, news.Options{Country: t.Country, Language: t.Language})
	if err != nil {
		return rep, fmt.Errorf("digest %s: fetch news: %w", t, err)
	}
	rep.Fetched = len(items)
	if len(items) == 0 {
		log.Info("digest: no news")
		return rep, nil
	}

	refs, err := d.stories.SourceReferences(ctx, t.Country, d.dedupWindow)
	if err != nil {
		return rep, fmt.Errorf("digest %s: recent refs: %w", t, err)
	}
	seen := make(map[string]bool, len(refs))
	for _, r := range refs {
		seen[r] = true
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if !item.Corroborated(d.minCoverage) {
			rep.Uncorroborated++
			continue
		}
		if covered(seen, item.SourceRefs) {
			rep.Duplicates++
			log.Debug("digest: duplicate cluster skipped", "headline", item.Headline)
			continue
		}

		story, err := d.digest(ctx, t, item)
		if err != nil {
			rep.Failed++
			log.Warn("digest: item failed", "headline", item.Headline, "err", err)
			continue
		}
		if err := d.stories.Create(ctx, story); err != nil {
			rep.Failed++
			log.Error("digest: save story failed", "headline", item.Headline, "err", err)
			continue
		}
		for _, r := range story.SourceRefs {
			seen[r] = true
		}
		rep.Created++

		if d.archive != nil {
			if err := d.archive.Archive(ctx, "stories", story.ID.String(), story); err != nil {
				log.Warn("digest: archive failed", "story", story.ID, "err", err)
			}
		}
	}

	log.Info("digest: target complete",
		"fetched", rep.Fetched,
		"created", rep.Created,
		"duplicates", rep.Duplicates,
		"uncorroborated", rep.Uncorroborated,
		"failed", rep.Failed,
	)
	return rep, nil
}

func (d *Digestion) digest(ctx context.Context, t Target, item models.NewsItem) (*models.Story, error) {
	draft, err := d.agent.Digest(ctx, DigestRequest{Target: t, Item: item})
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, ErrNoResult
	}

	perspectives := make([]models.Perspective, 0, len(draft.Perspectives))
	for _, pd := range draft.Perspectives {
		p, err := models.NewPerspective(models.PerspectiveParams{
			HolisticDigest: pd.Digest,
			Stance:         pd.Stance,
			DiscourseType:  pd.DiscourseType,
		})
		if err != nil {
			slog.Debug("digest: perspective dropped", "err", err)
			continue
		}
		perspectives = append(perspectives, *p)
	}

	return models.NewStory(models.StoryParams{
		Category:     draft.Category,
		Countries:    storyCountries(draft.Countries, t.Country),
		Dateline:     item.PublishedAt,
		Synopsis:     draft.Synopsis,
		SourceRefs:   item.SourceRefs,
		Perspectives: perspectives,
		CreatedAt:    d.stamps.Next(),
	})
}

// storyCountries keeps a purely global draft global and otherwise makes
// sure the target country is listed.
func storyCountries(draft []string, target string) []string {
	norm := models.NormalizeCountries(draft)
	if len(norm) == 1 && norm[0] == models.GlobalCountry {
		return norm
	}
	return models.NormalizeCountries(append(norm, strings.ToLower(target)))
}

// covered reports whether every ref is already known. A cluster with no
// refs is never covered.
func covered(seen map[string]bool, refs []string) bool {
	if len(refs) == 0 {
		return false
	}
	for _, r := range refs {
		if !seen[r] {
			return false
		}
	}
	return true
}
