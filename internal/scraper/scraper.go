// Package scraper extracts readable article text from web pages.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
)

// minParagraph drops navigation crumbs and captions.
const minParagraph = 40

// bodySelectors are tried in order; the first one yielding text wins.
var bodySelectors = []string{
	"article p",
	"main p",
	"[itemprop=articleBody] p",
	"p",
}

// Scraper wraps a Colly collector configured with polite rate limiting.
type Scraper struct {
	userAgent string
	delay     time.Duration
	timeout   time.Duration
}

// NewScraper creates a Scraper that waits delay between requests to the
// same domain.
func NewScraper(delay time.Duration) *Scraper {
	return &Scraper{
		userAgent: "newsdesk/1.0",
		delay:     delay,
		timeout:   20 * time.Second,
	}
}

// newCollector creates a fresh collector per call so callbacks never leak
// between pages. Requests are bound to ctx.
func (s *Scraper) newCollector(ctx context.Context) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(s.userAgent),
		colly.AllowURLRevisit(),
		colly.MaxDepth(1),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(s.timeout)

	_ = c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 2,
		Delay:       s.delay,
	})

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	})
	return c
}

// ScrapeText fetches pageURL and returns its article paragraphs joined by
// blank lines.
func (s *Scraper) ScrapeText(ctx context.Context, pageURL string) (string, error) {
	c := s.newCollector(ctx)

	var (
		mu     sync.Mutex
		scrErr error
	)
	bySel := make(map[string][]string, len(bodySelectors))

	for _, sel := range bodySelectors {
		sel := sel
		c.OnHTML(sel, func(e *colly.HTMLElement) {
			text := strings.Join(strings.Fields(e.Text), " ")
			if len(text) < minParagraph {
				return
			}
			mu.Lock()
			bySel[sel] = append(bySel[sel], text)
			mu.Unlock()
		})
	}

	c.OnError(func(r *colly.Response, err error) {
		mu.Lock()
		scrErr = fmt.Errorf("scraper: fetch %s: %w", pageURL, err)
		mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := c.Visit(pageURL); err != nil {
			mu.Lock()
			if scrErr == nil {
				scrErr = fmt.Errorf("scraper: visit %s: %w", pageURL, err)
			}
			mu.Unlock()
		}
		c.Wait()
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-done:
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if scrErr != nil {
		return "", scrErr
	}

	for _, sel := range bodySelectors {
		if paras := bySel[sel]; len(paras) > 0 {
			text := strings.Join(paras, "\n\n")
			slog.Debug("scraper: extracted text", "url", pageURL, "selector", sel, "len", len(text))
			return text, nil
		}
	}
	return "", fmt.Errorf("scraper: no article text at %s", pageURL)
}
