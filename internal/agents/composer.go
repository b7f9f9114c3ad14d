package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/Saul-Punybz/newsdesk/internal/ai"
	"github.com/Saul-Punybz/newsdesk/internal/pipeline"
)

const composeSystemPrompt = `You are a staff writer. You turn an edited story into publishable news articles for one country and language.

RULES:
- Output ONLY a JSON object: {"main": {...}, "variants": [...]}
- Each article is {"headline": "...", "body": "...", "summary": "...", "category": "...", "variant": "...", "isFake": false, "fakeReason": ""}
- main is a balanced article covering the story as a whole; leave its variant empty
- variants holds 0 to 3 articles, one per distinct perspective of the story; variant names the stance it follows (` + stanceList + `)
- category is one of: ` + categoryList + `
- Write the headline, body and summary in the requested language
- body is 3 to 6 paragraphs separated by blank lines
- summary is one sentence
- isFake is true only when the article states something the story does not support; fakeReason then says what was invented
- Do NOT invent quotes or numbers`

// Composer writes articles from stories.
type Composer struct {
	ai ai.Completer
}

// NewComposer returns a Composer using c.
func NewComposer(c ai.Completer) *Composer {
	return &Composer{ai: c}
}

// Compose implements pipeline.ComposerAgent.
func (c *Composer) Compose(ctx context.Context, req pipeline.ComposeRequest) (*pipeline.Composition, error) {
	var comp pipeline.Composition
	if err := ask(ctx, c.ai, "composer", ai.Prompt{System: composeSystemPrompt, User: composeUserPrompt(req)}, &comp); err != nil {
		return nil, err
	}
	if !complete(comp.Main) {
		return nil, reject("composer", "main article missing headline or body")
	}
	comp.Main.Variant = ""
	return &comp, nil
}

func composeUserPrompt(req pipeline.ComposeRequest) string {
	s := req.Story
	var b strings.Builder
	fmt.Fprintf(&b, "Country: %s\nLanguage: %s\nCategory: %s\n", req.Target.Country, req.Target.Language, s.Category)
	if !s.Dateline.IsZero() {
		fmt.Fprintf(&b, "Dateline: %s\n", s.Dateline.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "\nSynopsis: %s\n", s.Synopsis)
	for i, p := range s.Perspectives {
		fmt.Fprintf(&b, "\nPerspective %d (stance: %s, discourse: %s):\n%s\n", i+1, p.Tags.Stance, p.Tags.DiscourseType, truncate(p.HolisticDigest, maxSourceChars))
	}
	return b.String()
}

func complete(d pipeline.ArticleDraft) bool {
	return strings.TrimSpace(d.Headline) != "" && strings.TrimSpace(d.Body) != ""
}
