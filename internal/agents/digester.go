package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/Saul-Punybz/newsdesk/internal/ai"
	"github.com/Saul-Punybz/newsdesk/internal/models"
	"github.com/Saul-Punybz/newsdesk/internal/pipeline"
)

const digestSystemPrompt = `You are a news editor. You receive one news event reported by several outlets and write a structured digest of it.

RULES:
- Output ONLY a JSON object with the keys: category, countries, synopsis, perspectives
- category is one of: ` + categoryList + `
- countries lists the ISO 3166-1 alpha-2 codes (lowercase) of the countries the event concerns, or ["global"] when it concerns no single country
- synopsis is a neutral summary of the facts in at most 4 sentences
- perspectives is a list of 1 to 4 viewpoints found in the coverage, each {"digest": "...", "stance": "...", "discourseType": "..."}
- stance is one of: ` + stanceList + `
- discourseType is one of: ` + discourseList + `
- Each perspective needs a digest and at least one of stance or discourseType
- Use ONLY facts present in the sources. Do NOT invent names, numbers or quotes
- Write in the language of the sources`

// Digester turns a news cluster into a story draft.
type Digester struct {
	ai ai.Completer
}

// NewDigester returns a Digester using c.
func NewDigester(c ai.Completer) *Digester {
	return &Digester{ai: c}
}

// Digest implements pipeline.DigestAgent.
func (d *Digester) Digest(ctx context.Context, req pipeline.DigestRequest) (*pipeline.StoryDraft, error) {
	var draft pipeline.StoryDraft
	if err := ask(ctx, d.ai, "digester", ai.Prompt{System: digestSystemPrompt, User: digestUserPrompt(req)}, &draft); err != nil {
		return nil, err
	}

	if strings.TrimSpace(draft.Synopsis) == "" {
		return nil, reject("digester", "empty synopsis")
	}
	if _, err := models.ParseCategory(draft.Category); err != nil {
		return nil, reject("digester", "%v", err)
	}
	if len(draft.Perspectives) == 0 {
		return nil, reject("digester", "no perspectives")
	}
	return &draft, nil
}

func digestUserPrompt(req pipeline.DigestRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Country: %s\nLanguage: %s\n\n", req.Target.Country, req.Target.Language)
	fmt.Fprintf(&b, "Headline: %s\n", req.Item.Headline)
	if !req.Item.PublishedAt.IsZero() {
		fmt.Fprintf(&b, "Published: %s\n", req.Item.PublishedAt.Format("2006-01-02 15:04 MST"))
	}
	fmt.Fprintf(&b, "Coverage: %d outlets\n\n%s\n", req.Item.Coverage, truncate(req.Item.Body, maxSourceChars))

	for i, s := range req.Item.Sources {
		if i == maxSources {
			break
		}
		fmt.Fprintf(&b, "\n--- Source %d: %s\n%s\n", i+1, s.Title, truncate(s.Text, maxSourceChars))
	}
	return b.String()
}
