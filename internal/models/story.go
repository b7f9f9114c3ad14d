package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// GlobalCountry marks a story with no single national focus. It is only
	// ever the sole entry of Story.Countries.
	GlobalCountry = "global"

	MaxSynopsisLen = 1500
	MaxDigestLen   = 6000
)

// PerspectiveTags classifies a perspective. At least one tag is set.
type PerspectiveTags struct {
	Stance        Stance        `json:"stance,omitempty"`
	DiscourseType DiscourseType `json:"discourseType,omitempty"`
}

// Perspective is one viewpoint on a story. It is owned by exactly one story.
type Perspective struct {
	ID             uuid.UUID       `json:"id"`
	StoryID        uuid.UUID       `json:"storyId"`
	HolisticDigest string          `json:"holisticDigest"`
	Tags           PerspectiveTags `json:"tags"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Story is a clustered, digested news event.
type Story struct {
	ID           uuid.UUID     `json:"id"`
	Category     Category      `json:"category"`
	Countries    []string      `json:"countries"`
	Dateline     time.Time     `json:"dateline"`
	Synopsis     string        `json:"synopsis"`
	SourceRefs   []string      `json:"sourceReferences"`
	Perspectives []Perspective `json:"perspectives"`
	InterestTier InterestTier  `json:"interestTier"`
	TierReason   string        `json:"tierReason,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// PerspectiveParams are the inputs to NewPerspective.
type PerspectiveParams struct {
	HolisticDigest string
	Stance         string
	DiscourseType  string
}

// NewPerspective validates p and returns a perspective with a fresh id. The
// story id is assigned by NewStory.
func NewPerspective(p PerspectiveParams) (*Perspective, error) {
	digest := strings.TrimSpace(p.HolisticDigest)
	if digest == "" {
		return nil, invalid("perspective digest is empty")
	}
	if utf8.RuneCountInString(digest) > MaxDigestLen {
		return nil, invalid("perspective digest exceeds %d characters", MaxDigestLen)
	}

	var tags PerspectiveTags
	if s := strings.ToLower(strings.TrimSpace(p.Stance)); s != "" {
		if !stances[Stance(s)] {
			return nil, invalid("unknown stance %q", p.Stance)
		}
		tags.Stance = Stance(s)
	}
	if d := strings.ToLower(strings.TrimSpace(p.DiscourseType)); d != "" {
		if !discourseTypes[DiscourseType(d)] {
			return nil, invalid("unknown discourse type %q", p.DiscourseType)
		}
		tags.DiscourseType = DiscourseType(d)
	}
	if tags.Stance == "" && tags.DiscourseType == "" {
		return nil, invalid("perspective has no tags")
	}

	return &Perspective{
		ID:             uuid.New(),
		HolisticDigest: digest,
		Tags:           tags,
	}, nil
}

// StoryParams are the inputs to NewStory.
type StoryParams struct {
	Category     string
	Countries    []string
	Dateline     time.Time
	Synopsis     string
	SourceRefs   []string
	Perspectives []Perspective
	CreatedAt    time.Time
}

// NewStory validates p and returns a story in PENDING_REVIEW. Countries are
// normalized so that "global" never appears next to a real country.
func NewStory(p StoryParams) (*Story, error) {
	category, err := ParseCategory(p.Category)
	if err != nil {
		return nil, err
	}

	countries := NormalizeCountries(p.Countries)
	if len(countries) == 0 {
		return nil, invalid("story has no countries")
	}

	synopsis := strings.TrimSpace(p.Synopsis)
	if synopsis == "" {
		return nil, invalid("story synopsis is empty")
	}
	if utf8.RuneCountInString(synopsis) > MaxSynopsisLen {
		return nil, invalid("story synopsis exceeds %d characters", MaxSynopsisLen)
	}

	refs := dedupStrings(p.SourceRefs)
	if len(refs) == 0 {
		return nil, invalid("story has no source references")
	}
	if len(p.Perspectives) == 0 {
		return nil, invalid("story has no perspectives")
	}

	created := p.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	created = created.UTC().Truncate(time.Millisecond)

	s := &Story{
		ID:           uuid.New(),
		Category:     category,
		Countries:    countries,
		Dateline:     p.Dateline.UTC(),
		Synopsis:     synopsis,
		SourceRefs:   refs,
		InterestTier: InterestPending,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	s.Perspectives = make([]Perspective, len(p.Perspectives))
	for i, persp := range p.Perspectives {
		persp.StoryID = s.ID
		persp.CreatedAt = created
		s.Perspectives[i] = persp
	}
	return s, nil
}

// NormalizeCountries lower-cases, trims and de-duplicates codes. "global"
// is dropped when any real country is present.
func NormalizeCountries(in []string) []string {
	lowered := make([]string, 0, len(in))
	for _, c := range in {
		lowered = append(lowered, strings.ToLower(strings.TrimSpace(c)))
	}
	countries := dedupStrings(lowered)

	hasReal := false
	for _, c := range countries {
		if c != GlobalCountry {
			hasReal = true
			break
		}
	}
	if !hasReal {
		return countries
	}

	out := countries[:0]
	for _, c := range countries {
		if c != GlobalCountry {
			out = append(out, c)
		}
	}
	return out
}

// dedupStrings drops blanks and duplicates, keeping first-seen order.
func dedupStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
