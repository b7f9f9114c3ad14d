package models

import "time"

// SourceArticle is one upstream article inside a news cluster.
type SourceArticle struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url,omitempty"`
}

// NewsItem is a raw news signal returned by acquisition. It is never
// persisted.
type NewsItem struct {
	Headline    string          `json:"headline"`
	Body        string          `json:"body"`
	PublishedAt time.Time       `json:"publishedAt"`
	Coverage    int             `json:"coverage"`
	SourceRefs  []string        `json:"sourceRefs"`
	Sources     []SourceArticle `json:"sources,omitempty"`
}

// Corroborated reports whether at least min source articles cover the item.
func (n NewsItem) Corroborated(min int) bool {
	return n.Coverage >= min
}
