package models

import (
	"fmt"
	"strings"
)

// InterestTier is the review state of a Story.
type InterestTier string

// PublicationTier is the review state of an Article. It shares its states
// with InterestTier but the two types are not interchangeable.
type PublicationTier string

const (
	InterestPending  InterestTier = "PENDING_REVIEW"
	InterestStandard InterestTier = "STANDARD"
	InterestNiche    InterestTier = "NICHE"
	InterestArchived InterestTier = "ARCHIVED"
)

const (
	PublicationPending  PublicationTier = "PENDING_REVIEW"
	PublicationStandard PublicationTier = "STANDARD"
	PublicationNiche    PublicationTier = "NICHE"
	PublicationArchived PublicationTier = "ARCHIVED"
)

const (
	statePending  = "PENDING_REVIEW"
	stateStandard = "STANDARD"
	stateNiche    = "NICHE"
	stateArchived = "ARCHIVED"
)

// tierState is the state machine shared by both tier types:
//
//	PENDING_REVIEW -> STANDARD | NICHE | ARCHIVED
//
// Every state other than PENDING_REVIEW is terminal.
type tierState interface {
	~string
}

func parseTier[T tierState](kind, s string) (T, error) {
	switch v := strings.ToUpper(strings.TrimSpace(s)); v {
	case statePending, stateStandard, stateNiche, stateArchived:
		return T(v), nil
	default:
		return "", invalid("unknown %s %q", kind, s)
	}
}

func isTerminal[T tierState](t T) bool {
	switch string(t) {
	case stateStandard, stateNiche, stateArchived:
		return true
	}
	return false
}

func transition[T tierState](kind string, from, to T) (T, error) {
	if string(from) != statePending {
		return from, fmt.Errorf("%w: %s %s is terminal", ErrInvalidTransition, kind, from)
	}
	if !isTerminal(to) {
		return from, fmt.Errorf("%w: %s %s -> %s", ErrInvalidTransition, kind, from, to)
	}
	return to, nil
}

// ParseInterestTier validates s as an InterestTier.
func ParseInterestTier(s string) (InterestTier, error) {
	return parseTier[InterestTier]("interest tier", s)
}

// IsTerminal reports whether no further transition is allowed.
func (t InterestTier) IsTerminal() bool { return isTerminal(t) }

// Transition returns the next tier or ErrInvalidTransition.
func (t InterestTier) Transition(to InterestTier) (InterestTier, error) {
	return transition("interest tier", t, to)
}

// ParsePublicationTier validates s as a PublicationTier.
func ParsePublicationTier(s string) (PublicationTier, error) {
	return parseTier[PublicationTier]("publication tier", s)
}

// IsTerminal reports whether no further transition is allowed.
func (t PublicationTier) IsTerminal() bool { return isTerminal(t) }

// IsPublished reports whether articles in this tier are publicly visible.
func (t PublicationTier) IsPublished() bool {
	return t == PublicationStandard || t == PublicationNiche
}

// Transition returns the next tier or ErrInvalidTransition.
func (t PublicationTier) Transition(to PublicationTier) (PublicationTier, error) {
	return transition("publication tier", t, to)
}

// PublishedTiers are the publication tiers served by retrieval.
var PublishedTiers = []PublicationTier{PublicationStandard, PublicationNiche}
