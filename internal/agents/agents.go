// Package agents implements the pipeline's AI agents on top of a text
// completer. Every agent asks for a JSON answer, decodes it and validates
// it; anything unusable is reported as pipeline.ErrNoResult.
package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Saul-Punybz/newsdesk/internal/ai"
	"github.com/Saul-Punybz/newsdesk/internal/pipeline"
)

const (
	maxSourceChars = 1500
	maxSources     = 6
)

const (
	categoryList  = "world, politics, business, technology, science, health, sports, entertainment, lifestyle, other"
	stanceList    = "supportive, critical, neutral, mixed, concerned, optimistic, skeptical"
	discourseList = "mainstream, alternative, underreported, dubious"
)

var errEmpty = errors.New("empty answer")

// ask sends p and decodes the JSON answer into v. Every failure wraps
// pipeline.ErrNoResult.
func ask(ctx context.Context, c ai.Completer, agent string, p ai.Prompt, v any) error {
	raw, err := c.Complete(ctx, p)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", agent, pipeline.ErrNoResult, err)
	}
	if err := decodeJSON(raw, v); err != nil {
		slog.Debug(agent+": undecodable answer", "raw", truncate(raw, 200))
		return fmt.Errorf("%s: %w: %w", agent, pipeline.ErrNoResult, err)
	}
	return nil
}

// reject reports a decoded answer that fails validation.
func reject(agent, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", agent, pipeline.ErrNoResult, fmt.Sprintf(format, args...))
}

// decodeJSON extracts the outermost JSON object from raw, tolerating code
// fences and chatter around it, and decodes it into v.
func decodeJSON(raw string, v any) error {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return errEmpty
	}

	dec := json.NewDecoder(strings.NewReader(s[start : end+1]))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
