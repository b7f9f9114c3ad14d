package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/Saul-Punybz/newsdesk/internal/ai"
	"github.com/Saul-Punybz/newsdesk/internal/pipeline"
)

const writeSystemPrompt = `You are the writer of a news literacy quiz. From today's headlines you write a batch of short news articles. Most are faithful to the news; some are deliberately fabricated so readers can practice spotting them.

RULES:
- Output ONLY a JSON object: {"articles": [...]}
- Each article is {"headline": "...", "body": "...", "summary": "...", "category": "...", "isFake": true|false, "fakeReason": "..."}
- Write EXACTLY the number of articles requested, and at least the requested number of fabricated ones
- A fabricated article must be plausible; fakeReason explains what was invented
- A real article sticks to the facts given; leave fakeReason empty
- category is one of: ` + categoryList + `
- Write in the requested language
- Do NOT reuse any of the recent headlines listed`

// BatchWriter writes fixed-size article batches straight from raw news.
type BatchWriter struct {
	ai ai.Completer
}

// NewBatchWriter returns a BatchWriter using c.
func NewBatchWriter(c ai.Completer) *BatchWriter {
	return &BatchWriter{ai: c}
}

type batchAnswer struct {
	Articles []pipeline.ArticleDraft `json:"articles"`
}

// Write implements pipeline.WriterAgent.
func (w *BatchWriter) Write(ctx context.Context, req pipeline.BatchRequest) ([]pipeline.ArticleDraft, error) {
	var ans batchAnswer
	if err := ask(ctx, w.ai, "writer", ai.Prompt{System: writeSystemPrompt, User: writeUserPrompt(req)}, &ans); err != nil {
		return nil, err
	}

	if len(ans.Articles) != req.Count {
		return nil, reject("writer", "got %d articles, want %d", len(ans.Articles), req.Count)
	}
	fakes := 0
	for i, d := range ans.Articles {
		if !complete(d) {
			return nil, reject("writer", "article %d missing headline or body", i)
		}
		if d.IsFake {
			if strings.TrimSpace(d.FakeReason) == "" {
				return nil, reject("writer", "fake article %d has no reason", i)
			}
			fakes++
		}
	}
	if fakes < req.MinFakes {
		return nil, reject("writer", "got %d fake articles, want at least %d", fakes, req.MinFakes)
	}
	return ans.Articles, nil
}

func writeUserPrompt(req pipeline.BatchRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Country: %s\nLanguage: %s\nArticles: %d\nFabricated at least: %d\n\nTODAY'S NEWS:\n",
		req.Target.Country, req.Target.Language, req.Count, req.MinFakes)
	for i, n := range req.News {
		fmt.Fprintf(&b, "%d. %s\n%s\n\n", i+1, n.Headline, truncate(n.Body, 500))
	}
	if len(req.Recent) > 0 {
		b.WriteString("RECENT HEADLINES (do not repeat):\n")
		for _, r := range req.Recent {
			fmt.Fprintf(&b, "- %s\n", r.Headline)
		}
	}
	return b.String()
}
