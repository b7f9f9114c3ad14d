package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/Saul-Punybz/newsdesk/internal/ai"
	"github.com/Saul-Punybz/newsdesk/internal/models"
	"github.com/Saul-Punybz/newsdesk/internal/pipeline"
)

const tierRules = `
RULES:
- Output ONLY a JSON object: {"tier": "...", "reason": "..."}
- tier is one of: STANDARD, NICHE, ARCHIVED
- STANDARD = of broad interest to a general audience
- NICHE = relevant only to a specialist or local audience
- ARCHIVED = trivial, promotional, duplicated, or not news
- reason is one short sentence
- When in doubt, choose NICHE`

const storyTierPrompt = `You are a news desk editor deciding how much reader interest a story deserves.` + tierRules

const articleTierPrompt = `You are a news desk editor deciding where a generated article should be published.` + tierRules + `
- An article that reads as fabricated but is flagged as fake is still judged on reader interest`

type rawVerdict struct {
	Tier   string `json:"tier"`
	Reason string `json:"reason"`
}

// StoryClassifier assigns interest tiers to stories.
type StoryClassifier struct {
	ai ai.Completer
}

// NewStoryClassifier returns a StoryClassifier using c.
func NewStoryClassifier(c ai.Completer) *StoryClassifier {
	return &StoryClassifier{ai: c}
}

// Classify implements pipeline.ClassifyAgent for stories.
func (c *StoryClassifier) Classify(ctx context.Context, s models.Story) (*pipeline.Verdict[models.InterestTier], error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Category: %s\nCountries: %s\n\nSynopsis: %s\n", s.Category, strings.Join(s.Countries, ", "), s.Synopsis)
	for _, p := range s.Perspectives {
		fmt.Fprintf(&b, "\nPerspective (%s/%s): %s\n", p.Tags.Stance, p.Tags.DiscourseType, truncate(p.HolisticDigest, 600))
	}

	var raw rawVerdict
	if err := ask(ctx, c.ai, "story-classifier", ai.Prompt{System: storyTierPrompt, User: b.String()}, &raw); err != nil {
		return nil, err
	}
	tier, err := models.ParseInterestTier(raw.Tier)
	if err != nil || !tier.IsTerminal() {
		return nil, reject("story-classifier", "tier %q", raw.Tier)
	}
	return &pipeline.Verdict[models.InterestTier]{Tier: tier, Reason: strings.TrimSpace(raw.Reason)}, nil
}

// ArticleClassifier assigns publication tiers to articles.
type ArticleClassifier struct {
	ai ai.Completer
}

// NewArticleClassifier returns an ArticleClassifier using c.
func NewArticleClassifier(c ai.Completer) *ArticleClassifier {
	return &ArticleClassifier{ai: c}
}

// Classify implements pipeline.ClassifyAgent for articles.
func (c *ArticleClassifier) Classify(ctx context.Context, a models.Article) (*pipeline.Verdict[models.PublicationTier], error) {
	user := fmt.Sprintf("Category: %s\nLocale: %s/%s\nFake: %t\n\nHeadline: %s\nSummary: %s\n\n%s",
		a.Category, a.Country, a.Language, a.Authenticity.IsFake, a.Headline, a.Summary, truncate(a.Body, maxSourceChars))

	var raw rawVerdict
	if err := ask(ctx, c.ai, "article-classifier", ai.Prompt{System: articleTierPrompt, User: user}, &raw); err != nil {
		return nil, err
	}
	tier, err := models.ParsePublicationTier(raw.Tier)
	if err != nil || !tier.IsTerminal() {
		return nil, reject("article-classifier", "tier %q", raw.Tier)
	}
	return &pipeline.Verdict[models.PublicationTier]{Tier: tier, Reason: strings.TrimSpace(raw.Reason)}, nil
}
