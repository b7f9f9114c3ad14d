package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Authenticity flags an article as real or fabricated. A fabricated article
// always carries the reason it was fabricated.
type Authenticity struct {
	IsFake bool   `json:"isFake"`
	Reason string `json:"reason,omitempty"`
}

// NewAuthenticity validates the fake/reason pair. The reason of a real
// article is dropped.
func NewAuthenticity(isFake bool, reason string) (Authenticity, error) {
	reason = strings.TrimSpace(reason)
	if !isFake {
		return Authenticity{}, nil
	}
	if reason == "" {
		return Authenticity{}, invalid("fabricated article requires a reason")
	}
	return Authenticity{IsFake: true, Reason: reason}, nil
}

// Article is a generated, publishable piece of text.
type Article struct {
	ID              uuid.UUID       `json:"id"`
	Headline        string          `json:"headline"`
	Body            string          `json:"body"`
	Summary         string          `json:"summary"`
	Category        Category        `json:"category"`
	Country         string          `json:"country"`
	Language        string          `json:"language"`
	Variant         string          `json:"variant,omitempty"`
	Authenticity    Authenticity    `json:"authenticity"`
	PublicationTier PublicationTier `json:"publicationTier"`
	TierReason      string          `json:"tierReason,omitempty"`
	PublishedAt     time.Time       `json:"publishedAt"`
	CreatedAt       time.Time       `json:"createdAt"`
	StoryIDs        []uuid.UUID     `json:"storyIds,omitempty"`
}

// ArticleSummary is the headline view of an article used to steer
// generation away from repeats.
type ArticleSummary struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
}

// ArticleParams are the inputs to NewArticle.
type ArticleParams struct {
	Headline    string
	Body        string
	Summary     string
	Category    string
	Country     string
	Language    string
	Variant     string
	IsFake      bool
	FakeReason  string
	PublishedAt time.Time
	CreatedAt   time.Time
	StoryIDs    []uuid.UUID
}

// NewArticle validates p and returns an article in PENDING_REVIEW.
func NewArticle(p ArticleParams) (*Article, error) {
	headline := strings.TrimSpace(p.Headline)
	if headline == "" {
		return nil, invalid("article headline is empty")
	}
	body := strings.TrimSpace(p.Body)
	if body == "" {
		return nil, invalid("article body is empty")
	}
	country := strings.ToLower(strings.TrimSpace(p.Country))
	if country == "" {
		return nil, invalid("article country is empty")
	}
	language := strings.ToLower(strings.TrimSpace(p.Language))
	if language == "" {
		return nil, invalid("article language is empty")
	}

	category := CategoryOther
	if p.Category != "" {
		c, err := ParseCategory(p.Category)
		if err != nil {
			return nil, err
		}
		category = c
	}

	auth, err := NewAuthenticity(p.IsFake, p.FakeReason)
	if err != nil {
		return nil, err
	}

	created := p.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	created = created.UTC().Truncate(time.Millisecond)
	published := p.PublishedAt
	if published.IsZero() {
		published = created
	}

	summary := strings.TrimSpace(p.Summary)
	if summary == "" {
		summary = firstSentence(body)
	}

	return &Article{
		ID:              uuid.New(),
		Headline:        headline,
		Body:            body,
		Summary:         summary,
		Category:        category,
		Country:         country,
		Language:        language,
		Variant:         strings.TrimSpace(p.Variant),
		Authenticity:    auth,
		PublicationTier: PublicationPending,
		PublishedAt:     published.UTC(),
		CreatedAt:       created,
		StoryIDs:        p.StoryIDs,
	}, nil
}

// maxSummaryRunes bounds a summary derived from the body.
const maxSummaryRunes = 300

func firstSentence(s string) string {
	runes := []rune(s)
	limit := min(len(runes), maxSummaryRunes)
	for i := 0; i < limit; i++ {
		switch runes[i] {
		case '.', '!', '?', '。', '！', '？':
			return strings.TrimSpace(string(runes[:i+1]))
		}
	}
	if len(runes) > maxSummaryRunes {
		return strings.TrimSpace(string(runes[:maxSummaryRunes])) + "..."
	}
	return s
}
