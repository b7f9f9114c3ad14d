package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Saul-Punybz/newsdesk/internal/models"
	"github.com/Saul-Punybz/newsdesk/internal/news"
)

type memStories struct {
	mu      sync.Mutex
	stories []models.Story
	failAll bool
}

func (m *memStories) Create(_ context.Context, s *models.Story) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errors.New("db down")
	}
	m.stories = append(m.stories, *s)
	return nil
}

func (m *memStories) FindWithoutArticles(_ context.Context, q models.StoryGapQuery) ([]models.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Story
	for _, s := range m.stories {
		if slices.Contains(q.ExcludeTiers, s.InterestTier) {
			continue
		}
		if !slices.Contains(s.Countries, q.Country) && !slices.Contains(s.Countries, models.GlobalCountry) {
			continue
		}
		out = append(out, s)
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *memStories) SourceReferences(_ context.Context, country string, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var refs []string
	for i := len(m.stories) - 1; i >= 0; i-- {
		s := m.stories[i]
		if slices.Contains(s.Countries, country) || slices.Contains(s.Countries, models.GlobalCountry) {
			refs = append(refs, s.SourceRefs...)
		}
	}
	if len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}

func (m *memStories) FindPending(_ context.Context, limit int) ([]models.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Story
	for _, s := range m.stories {
		if s.InterestTier == models.InterestPending && len(out) < limit {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStories) UpdateTier(_ context.Context, id uuid.UUID, tier models.InterestTier, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.stories {
		if m.stories[i].ID == id {
			if m.stories[i].InterestTier != models.InterestPending {
				return models.ErrInvalidTransition
			}
			m.stories[i].InterestTier, m.stories[i].TierReason = tier, reason
			return nil
		}
	}
	return models.ErrNotFound
}

type memArticles struct {
	mu       sync.Mutex
	articles []models.Article
	recent   []models.ArticleSummary
}

func (m *memArticles) CreateMany(_ context.Context, articles []models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.articles = append(m.articles, articles...)
	return nil
}

func (m *memArticles) FindMany(_ context.Context, q models.ArticleQuery) ([]models.Article, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []models.Article
	for _, a := range m.articles {
		if q.Category != "" && a.Category != q.Category {
			continue
		}
		if q.Country != "" && a.Country != q.Country {
			continue
		}
		if q.Language != "" && a.Language != q.Language {
			continue
		}
		if len(q.Tiers) > 0 && !slices.Contains(q.Tiers, a.PublicationTier) {
			continue
		}
		matched = append(matched, a)
	}
	total := len(matched)

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() > matched[j].ID.String()
	})
	var page []models.Article
	for _, a := range matched {
		if q.Before != nil && a.CreatedAt.After(*q.Before) {
			continue
		}
		if q.Before != nil && q.BeforeID != uuid.Nil && a.CreatedAt.Equal(*q.Before) && a.ID.String() > q.BeforeID.String() {
			continue
		}
		page = append(page, a)
		if q.Limit > 0 && len(page) == q.Limit {
			break
		}
	}
	return page, total, nil
}

func (m *memArticles) FindPublishedSummaries(_ context.Context, _, _ string, limit int) ([]models.ArticleSummary, error) {
	if len(m.recent) > limit {
		return m.recent[:limit], nil
	}
	return m.recent, nil
}

func (m *memArticles) FindPending(_ context.Context, limit int) ([]models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Article
	for _, a := range m.articles {
		if a.PublicationTier == models.PublicationPending && len(out) < limit {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memArticles) UpdateTier(_ context.Context, id uuid.UUID, tier models.PublicationTier, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.articles {
		if m.articles[i].ID == id {
			m.articles[i].PublicationTier, m.articles[i].TierReason = tier, reason
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memArticles) snapshot() []models.Article {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Article(nil), m.articles...)
}

// staticNews serves the same items for every locale.
func staticNews(items ...models.NewsItem) news.Provider {
	return news.ProviderFunc(func(context.Context, news.Options) ([]models.NewsItem, error) {
		return items, nil
	})
}

func cluster(headline string, refs ...string) models.NewsItem {
	return models.NewsItem{
		Headline:    headline,
		Body:        headline + " body",
		PublishedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Coverage:    len(refs),
		SourceRefs:  refs,
	}
}

type stubDigester struct {
	mu    sync.Mutex
	calls int
	skip  map[string]bool
}

func (s *stubDigester) Digest(_ context.Context, req DigestRequest) (*StoryDraft, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.skip[req.Item.Headline] {
		return nil, nil
	}
	return &StoryDraft{
		Category:  "politics",
		Countries: []string{req.Target.Country},
		Synopsis:  "Synopsis of " + req.Item.Headline,
		Perspectives: []PerspectiveDraft{
			{Digest: "Supportive take", Stance: "supportive"},
			{Digest: "Critical take", Stance: "critical", DiscourseType: "analysis"},
		},
	}, nil
}

type stubComposer struct {
	fail map[uuid.UUID]bool
}

func (s stubComposer) Compose(_ context.Context, req ComposeRequest) (*Composition, error) {
	if s.fail[req.Story.ID] {
		return nil, fmt.Errorf("compose: %w", ErrNoResult)
	}
	return &Composition{
		Main: ArticleDraft{Headline: "Main " + req.Story.Synopsis, Body: "Body. More."},
		Variants: []ArticleDraft{
			{Headline: "Critical view", Body: "Critical body.", Variant: "critical"},
			{Headline: "", Body: "headline missing"},
		},
	}, nil
}

type stubWriter struct {
	drafts []ArticleDraft
	err    error
	got    BatchRequest
}

func (s *stubWriter) Write(_ context.Context, req BatchRequest) ([]ArticleDraft, error) {
	s.got = req
	return s.drafts, s.err
}

func drafts(n, fakes int) []ArticleDraft {
	out := make([]ArticleDraft, n)
	for i := range out {
		out[i] = ArticleDraft{Headline: fmt.Sprintf("Headline %d", i), Body: "Body text.", Category: "world"}
		if i < fakes {
			out[i].IsFake, out[i].FakeReason = true, "invented quote"
		}
	}
	return out
}

// verdictFunc adapts a function to ClassifyAgent.
type verdictFunc[E any, T ~string] func(E) (*Verdict[T], error)

func (f verdictFunc[E, T]) Classify(_ context.Context, e E) (*Verdict[T], error) { return f(e) }

type memArchive struct {
	mu   sync.Mutex
	keys []string
}

func (m *memArchive) Archive(_ context.Context, kind, id string, _ any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, kind+"/"+id)
	return nil
}

func tickingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(10 * time.Millisecond)
		return now
	}
}
