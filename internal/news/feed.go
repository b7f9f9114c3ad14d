package news

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/Saul-Punybz/newsdesk/internal/models"
)

const (
	feedTimeout = 30 * time.Second
	// thinBody is the body length below which an item is enriched by
	// scraping its link.
	thinBody = 280
)

// BodyScraper extracts readable text from an article page.
type BodyScraper interface {
	ScrapeText(ctx context.Context, pageURL string) (string, error)
}

// FeedProvider reads an RSS/Atom news feed whose items aggregate related
// coverage as a list of links in the description, as Google News does.
type FeedProvider struct {
	urlTemplate string
	parser      *gofeed.Parser
	scraper     BodyScraper
	maxItems    int
	now         func() time.Time
}

// NewFeedProvider creates a provider for a URL template containing
// {country}, {COUNTRY} and {language} placeholders. scraper may be nil.
func NewFeedProvider(urlTemplate string, scraper BodyScraper) *FeedProvider {
	p := gofeed.NewParser()
	p.Client = &http.Client{Timeout: feedTimeout}
	return &FeedProvider{
		urlTemplate: urlTemplate,
		parser:      p,
		scraper:     scraper,
		maxItems:    40,
		now:         time.Now,
	}
}

// FeedURL expands the template for opts.
func (p *FeedProvider) FeedURL(opts Options) string {
	return strings.NewReplacer(
		"{country}", strings.ToLower(opts.Country),
		"{COUNTRY}", strings.ToUpper(opts.Country),
		"{language}", strings.ToLower(opts.Language),
	).Replace(p.urlTemplate)
}

// FetchNews parses the feed for opts. Each feed item becomes one NewsItem
// whose coverage is the number of related links it lists.
func (p *FeedProvider) FetchNews(ctx context.Context, opts Options) ([]models.NewsItem, error) {
	feedURL := p.FeedURL(opts)
	feed, err := p.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("news feed: fetch %s: %w", feedURL, err)
	}

	count := len(feed.Items)
	if count > p.maxItems {
		count = p.maxItems
	}

	items := make([]models.NewsItem, 0, count)
	for _, it := range feed.Items[:count] {
		item := p.toNewsItem(it)
		if item.Headline == "" {
			continue
		}
		if p.scraper != nil && len(item.Body) < thinBody && it.Link != "" {
			if text, err := p.scraper.ScrapeText(ctx, it.Link); err != nil {
				slog.Debug("news feed: enrich failed", "url", it.Link, "err", err)
			} else if len(text) > len(item.Body) {
				item.Body = text
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func (p *FeedProvider) toNewsItem(it *gofeed.Item) models.NewsItem {
	published := p.now().UTC()
	if it.PublishedParsed != nil {
		published = it.PublishedParsed.UTC()
	} else if it.UpdatedParsed != nil {
		published = it.UpdatedParsed.UTC()
	}

	id := it.GUID
	if id == "" {
		id = it.Link
	}

	description := it.Description
	if description == "" {
		description = it.Content
	}
	related, text := parseDescription(description)

	sources := related
	if len(sources) == 0 {
		sources = []models.SourceArticle{{ID: id, Title: it.Title, Text: text, URL: it.Link}}
	}
	refs := make([]string, 0, len(sources))
	for _, s := range sources {
		if s.ID != "" {
			refs = append(refs, s.ID)
		}
	}

	return models.NewsItem{
		Headline:    strings.TrimSpace(it.Title),
		Body:        text,
		PublishedAt: published,
		Coverage:    len(sources),
		SourceRefs:  refs,
		Sources:     sources,
	}
}

// parseDescription extracts the related-coverage list from an HTML item
// description along with its plain text.
func parseDescription(html string) ([]models.SourceArticle, string) {
	if strings.TrimSpace(html) == "" {
		return nil, ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, strings.TrimSpace(html)
	}

	var related []models.SourceArticle
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		a := li.Find("a").First()
		href, _ := a.Attr("href")
		title := strings.TrimSpace(a.Text())
		if href == "" || title == "" {
			return
		}
		outlet := strings.TrimSpace(li.Find("font").First().Text())
		related = append(related, models.SourceArticle{
			ID:    href,
			Title: title,
			Text:  strings.TrimSpace(title + " " + outlet),
			URL:   href,
		})
	})

	text := strings.Join(strings.Fields(doc.Text()), " ")
	return related, text
}
