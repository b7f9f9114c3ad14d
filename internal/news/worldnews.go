package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Saul-Punybz/newsdesk/internal/models"
)

const (
	worldNewsTimeout    = 30 * time.Second
	worldNewsDateLayout = "2006-01-02 15:04:05"
)

// WorldNewsClient fetches clustered top news from the World News API.
type WorldNewsClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	now        func() time.Time
}

// NewWorldNewsClient creates a client for the given base URL and API key.
func NewWorldNewsClient(baseURL, apiKey string) (*WorldNewsClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("world news: api key is required")
	}
	return &WorldNewsClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: worldNewsTimeout},
		now:        time.Now,
	}, nil
}

type topNewsResponse struct {
	TopNews []struct {
		News []worldNewsArticle `json:"news"`
	} `json:"top_news"`
}

type worldNewsArticle struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Text        string `json:"text"`
	URL         string `json:"url"`
	PublishDate string `json:"publish_date"`
}

// FetchNews returns one NewsItem per upstream cluster. Non-2xx responses and
// transport failures are returned as errors.
func (c *WorldNewsClient) FetchNews(ctx context.Context, opts Options) ([]models.NewsItem, error) {
	q := url.Values{}
	if opts.Country != "" {
		q.Set("source-country", opts.Country)
	}
	if opts.Language != "" {
		q.Set("language", opts.Language)
	}
	q.Set("date", c.now().UTC().Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/top-news?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("world news: create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("world news: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("world news: status %d: %s", resp.StatusCode, string(body))
	}

	var payload topNewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("world news: decode response: %w", err)
	}

	items := make([]models.NewsItem, 0, len(payload.TopNews))
	for _, cluster := range payload.TopNews {
		if len(cluster.News) == 0 {
			continue
		}
		sources := make([]models.SourceArticle, len(cluster.News))
		published := make([]time.Time, len(cluster.News))
		for i, a := range cluster.News {
			sources[i] = models.SourceArticle{
				ID:    strconv.FormatInt(a.ID, 10),
				Title: strings.TrimSpace(a.Title),
				Text:  strings.TrimSpace(a.Text),
				URL:   a.URL,
			}
			published[i] = c.parseDate(a.PublishDate)
		}
		items = append(items, clusterItem(sources, published))
	}
	return items, nil
}

func (c *WorldNewsClient) parseDate(s string) time.Time {
	if t, err := time.ParseInLocation(worldNewsDateLayout, s, time.UTC); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	return c.now().UTC()
}
