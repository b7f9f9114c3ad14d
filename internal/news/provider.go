// Package news acquires raw news clusters from upstream providers. Providers
// compose as decorators: Cached(RateLimited(upstream)).
package news

import (
	"context"
	"sort"
	"time"

	"github.com/Saul-Punybz/newsdesk/internal/models"
)

// Options selects the locale to fetch. Both fields are optional for
// providers that support a global feed.
type Options struct {
	Country  string
	Language string
}

// Provider fetches news items for a locale.
type Provider interface {
	FetchNews(ctx context.Context, opts Options) ([]models.NewsItem, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, opts Options) ([]models.NewsItem, error)

// FetchNews calls f.
func (f ProviderFunc) FetchNews(ctx context.Context, opts Options) ([]models.NewsItem, error) {
	return f(ctx, opts)
}

// representative picks the source whose body length is closest to the
// median body length of the cluster. Ties go to the earliest source. It
// returns -1 for an empty cluster.
func representative(sources []models.SourceArticle) int {
	if len(sources) == 0 {
		return -1
	}
	lengths := make([]int, len(sources))
	for i, s := range sources {
		lengths[i] = len([]rune(s.Text))
	}
	sorted := append([]int(nil), lengths...)
	sort.Ints(sorted)

	mid := len(sorted) / 2
	median := float64(sorted[mid])
	if len(sorted)%2 == 0 {
		median = float64(sorted[mid-1]+sorted[mid]) / 2
	}

	best, bestDist := 0, -1.0
	for i, l := range lengths {
		d := float64(l) - median
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// clusterItem turns a cluster of source articles into one NewsItem whose
// headline, body and date come from the representative source. published
// is indexed like sources.
func clusterItem(sources []models.SourceArticle, published []time.Time) models.NewsItem {
	idx := representative(sources)
	rep := sources[idx]
	refs := make([]string, 0, len(sources))
	for _, s := range sources {
		if s.ID != "" {
			refs = append(refs, s.ID)
		}
	}
	return models.NewsItem{
		Headline:    rep.Title,
		Body:        rep.Text,
		PublishedAt: published[idx],
		Coverage:    len(sources),
		SourceRefs:  refs,
		Sources:     sources,
	}
}
