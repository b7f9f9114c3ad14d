package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Saul-Punybz/newsdesk/internal/models"
)

func publishedArticles(n int, start time.Time) []models.Article {
	out := make([]models.Article, n)
	for i := range out {
		tier := models.PublicationStandard
		if i%3 == 0 {
			tier = models.PublicationNiche
		}
		out[i] = models.Article{
			ID:              uuid.New(),
			Headline:        "h",
			Category:        models.CategoryWorld,
			Country:         "us",
			Language:        "en",
			PublicationTier: tier,
			CreatedAt:       start.Add(time.Duration(i) * time.Second),
		}
	}
	return out
}

func TestRetrieverWalksEveryPageOnce(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	articles := &memArticles{articles: publishedArticles(45, start)}
	articles.articles = append(articles.articles,
		models.Article{ID: uuid.New(), Country: "us", Language: "en", PublicationTier: models.PublicationPending, CreatedAt: start},
		models.Article{ID: uuid.New(), Country: "us", Language: "en", PublicationTier: models.PublicationArchived, CreatedAt: start},
		models.Article{ID: uuid.New(), Country: "us", Language: "fr", PublicationTier: models.PublicationStandard, CreatedAt: start},
	)
	r := NewRetriever(articles)

	seen := map[uuid.UUID]bool{}
	cursor := ""
	pages := 0
	var last time.Time
	for {
		page, err := r.List(context.Background(), ListQuery{Language: "en", Country: "us", Cursor: cursor, Limit: 20})
		if err != nil {
			t.Fatal(err)
		}
		pages++
		if page.Total != 45 {
			t.Errorf("total = %d", page.Total)
		}
		for _, a := range page.Items {
			if seen[a.ID] {
				t.Fatalf("article %s served twice", a.ID)
			}
			seen[a.ID] = true
			if !last.IsZero() && a.CreatedAt.After(last) {
				t.Fatalf("page order broken at %s", a.ID)
			}
			last = a.CreatedAt
		}
		if page.NextCursor == nil {
			break
		}
		cursor = *page.NextCursor
	}
	if pages != 3 || len(seen) != 45 {
		t.Fatalf("pages = %d, seen = %d", pages, len(seen))
	}
}

func TestRetrieverEmptyPage(t *testing.T) {
	page, err := NewRetriever(&memArticles{}).List(context.Background(), ListQuery{Language: "en"})
	if err != nil {
		t.Fatal(err)
	}
	if page.Items == nil || len(page.Items) != 0 || page.NextCursor != nil || page.Total != 0 {
		t.Fatalf("page = %+v", page)
	}
}

func TestRetrieverRequiresLanguage(t *testing.T) {
	_, err := NewRetriever(&memArticles{}).List(context.Background(), ListQuery{Country: "us"})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("err = %v", err)
	}
}

func TestRetrieverBadCursor(t *testing.T) {
	for _, c := range []string{"%%%", base64.StdEncoding.EncodeToString([]byte("yesterday"))} {
		_, err := NewRetriever(&memArticles{}).List(context.Background(), ListQuery{Language: "en", Cursor: c})
		var ice *InvalidCursorError
		if !errors.As(err, &ice) {
			t.Errorf("cursor %q: err = %v", c, err)
		}
	}
}

func TestRetrieverFutureCursorReturnsNewest(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	articles := &memArticles{articles: publishedArticles(5, start)}
	future := EncodeCursor(time.Date(2999, 1, 1, 0, 0, 0, 0, time.UTC), uuid.Nil)

	page, err := NewRetriever(articles).List(context.Background(), ListQuery{Language: "en", Cursor: future, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 2 || !page.Items[0].CreatedAt.Equal(start.Add(4*time.Second)) {
		t.Fatalf("items = %+v", page.Items)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 5, 4, 3, 2, 1, 987654321, time.UTC)
	got, id, err := DecodeCursor(EncodeCursor(at, uuid.Nil))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(at.Truncate(time.Millisecond)) || id != uuid.Nil {
		t.Fatalf("got %v %v", got, id)
	}
	if raw, _ := base64.StdEncoding.DecodeString(EncodeCursor(at, uuid.Nil)); string(raw) != "1777863721987" {
		t.Errorf("raw cursor = %s", raw)
	}

	want := uuid.MustParse("6f1c2a3b-4d5e-4f60-8a7b-9c0d1e2f3a4b")
	got, id, err = DecodeCursor(EncodeCursor(at, want))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(at.Truncate(time.Millisecond)) || id != want {
		t.Fatalf("got %v %v", got, id)
	}
	if raw, _ := base64.StdEncoding.DecodeString(EncodeCursor(at, want)); string(raw) != "1777863721987:"+want.String() {
		t.Errorf("raw cursor = %s", raw)
	}
}

func TestRetrieverSameMillisecondAcrossPages(t *testing.T) {
	at := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	articles := &memArticles{}
	for i := 0; i < 7; i++ {
		articles.articles = append(articles.articles, models.Article{
			ID:              uuid.New(),
			Country:         "us",
			Language:        "en",
			PublicationTier: models.PublicationStandard,
			CreatedAt:       at,
		})
	}
	r := NewRetriever(articles)

	seen := map[uuid.UUID]bool{}
	cursor := ""
	for pages := 0; pages < 10; pages++ {
		page, err := r.List(context.Background(), ListQuery{Language: "en", Cursor: cursor, Limit: 3})
		if err != nil {
			t.Fatal(err)
		}
		for _, a := range page.Items {
			if seen[a.ID] {
				t.Fatalf("article %s served twice", a.ID)
			}
			seen[a.ID] = true
		}
		if page.NextCursor == nil {
			break
		}
		cursor = *page.NextCursor
	}
	if len(seen) != 7 {
		t.Fatalf("seen %d of 7 articles", len(seen))
	}
}

func TestDecodeCursorRejectsBadID(t *testing.T) {
	for _, raw := range []string{"1777863721987:not-a-uuid", "1777863721987:" + uuid.Nil.String(), ":" + uuid.NewString()} {
		_, _, err := DecodeCursor(base64.StdEncoding.EncodeToString([]byte(raw)))
		var ice *InvalidCursorError
		if !errors.As(err, &ice) {
			t.Errorf("%q: err = %v", raw, err)
		}
	}
}
