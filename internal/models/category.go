package models

import "strings"

// Category is the editorial section of a story or article.
type Category string

const (
	CategoryWorld         Category = "world"
	CategoryPolitics      Category = "politics"
	CategoryBusiness      Category = "business"
	CategoryTechnology    Category = "technology"
	CategoryScience       Category = "science"
	CategoryHealth        Category = "health"
	CategorySports        Category = "sports"
	CategoryEntertainment Category = "entertainment"
	CategoryLifestyle     Category = "lifestyle"
	CategoryOther         Category = "other"
)

var categories = map[Category]bool{
	CategoryWorld: true, CategoryPolitics: true, CategoryBusiness: true,
	CategoryTechnology: true, CategoryScience: true, CategoryHealth: true,
	CategorySports: true, CategoryEntertainment: true, CategoryLifestyle: true,
	CategoryOther: true,
}

// ParseCategory validates s against the known categories. Matching is
// case-insensitive.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !categories[c] {
		return "", invalid("unknown category %q", s)
	}
	return c, nil
}

// Stance is the attitude a perspective takes toward its story.
type Stance string

const (
	StanceSupportive Stance = "supportive"
	StanceCritical   Stance = "critical"
	StanceNeutral    Stance = "neutral"
	StanceMixed      Stance = "mixed"
	StanceConcerned  Stance = "concerned"
	StanceOptimistic Stance = "optimistic"
	StanceSkeptical  Stance = "skeptical"
)

var stances = map[Stance]bool{
	StanceSupportive: true, StanceCritical: true, StanceNeutral: true,
	StanceMixed: true, StanceConcerned: true, StanceOptimistic: true,
	StanceSkeptical: true,
}

// DiscourseType places a perspective within the media landscape.
type DiscourseType string

const (
	DiscourseMainstream    DiscourseType = "mainstream"
	DiscourseAlternative   DiscourseType = "alternative"
	DiscourseUnderreported DiscourseType = "underreported"
	DiscourseDubious       DiscourseType = "dubious"
)

var discourseTypes = map[DiscourseType]bool{
	DiscourseMainstream: true, DiscourseAlternative: true,
	DiscourseUnderreported: true, DiscourseDubious: true,
}
