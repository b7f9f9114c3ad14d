package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/Saul-Punybz/newsdesk/internal/models"
	"github.com/Saul-Punybz/newsdesk/internal/pipeline"
)

type fakeLister struct {
	got  pipeline.ListQuery
	page *pipeline.Page
	err  error
}

func (f *fakeLister) List(_ context.Context, q pipeline.ListQuery) (*pipeline.Page, error) {
	f.got = q
	return f.page, f.err
}

type fakeArticles map[uuid.UUID]*models.Article

func (f fakeArticles) FindByID(_ context.Context, id uuid.UUID) (*models.Article, error) {
	if a, ok := f[id]; ok {
		return a, nil
	}
	return nil, models.ErrNotFound
}

type fakeStories map[uuid.UUID]*models.Story

func (f fakeStories) FindByID(_ context.Context, id uuid.UUID) (*models.Story, error) {
	if s, ok := f[id]; ok {
		return s, nil
	}
	return nil, models.ErrNotFound
}

func newTestRouter(lister *fakeLister, articles fakeArticles, stories fakeStories, ping func(context.Context) error) http.Handler {
	return Router{
		Articles: &ArticlesHandler{Retriever: lister, Articles: articles},
		Stories:  &StoriesHandler{Stories: stories},
		Health:   &HealthHandler{Ping: ping},
	}.Handler()
}

func get(t *testing.T, h http.Handler, url string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("%s: decode body %q: %v", url, rec.Body.String(), err)
	}
	return rec, body
}

func TestListArticles(t *testing.T) {
	next := "MTcwMDAwMDAwMDAwMA=="
	lister := &fakeLister{page: &pipeline.Page{
		Items:      []models.Article{{ID: uuid.New(), Headline: "One"}},
		NextCursor: &next,
		Total:      7,
	}}
	h := newTestRouter(lister, nil, nil, nil)

	rec, body := get(t, h, "/api/articles?language=EN&country=us&category=Science&limit=5&cursor="+next)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}
	if body["nextCursor"] != next || body["total"] != float64(7) {
		t.Errorf("body = %v", body)
	}
	if items, ok := body["items"].([]any); !ok || len(items) != 1 {
		t.Errorf("items = %v", body["items"])
	}

	want := pipeline.ListQuery{Category: models.CategoryScience, Country: "us", Language: "en", Cursor: next, Limit: 5}
	if lister.got != want {
		t.Errorf("query = %+v, want %+v", lister.got, want)
	}
}

func TestListArticlesLastPageHasNullCursor(t *testing.T) {
	lister := &fakeLister{page: &pipeline.Page{Items: []models.Article{}}}
	rec, body := get(t, newTestRouter(lister, nil, nil, nil), "/api/articles?language=fr")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if v, ok := body["nextCursor"]; !ok || v != nil {
		t.Errorf("nextCursor = %v (present %v)", v, ok)
	}
	if lister.got.Limit != pipeline.DefaultPageSize {
		t.Errorf("limit = %d", lister.got.Limit)
	}
}

func TestListArticlesBadInput(t *testing.T) {
	tests := []struct {
		name string
		url  string
		err  error
		want string
	}{
		{"missing language", "/api/articles", nil, "language is required"},
		{"bad language", "/api/articles?language=english", nil, "language"},
		{"bad country", "/api/articles?language=en&country=usa", nil, "country"},
		{"bad category", "/api/articles?language=en&category=gossip", nil, "category"},
		{"zero limit", "/api/articles?language=en&limit=0", nil, "limit"},
		{"huge limit", "/api/articles?language=en&limit=101", nil, "limit"},
		{"text limit", "/api/articles?language=en&limit=ten", nil, "limit"},
		{"bad cursor", "/api/articles?language=en&cursor=abc", &pipeline.InvalidCursorError{Cursor: "abc", Err: errors.New("bad")}, "invalid cursor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := &fakeLister{err: tt.err, page: &pipeline.Page{}}
			rec, body := get(t, newTestRouter(lister, nil, nil, nil), tt.url)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rec.Code)
			}
			if msg, _ := body["error"].(string); !strings.Contains(msg, tt.want) {
				t.Errorf("error = %q, want it to mention %q", msg, tt.want)
			}
		})
	}
}

func TestListArticlesInternalError(t *testing.T) {
	lister := &fakeLister{err: errors.New("connection reset")}
	rec, body := get(t, newTestRouter(lister, nil, nil, nil), "/api/articles?language=en")
	if rec.Code != http.StatusInternalServerError || body["error"] != "internal error" {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}
}

func TestGetArticle(t *testing.T) {
	published := &models.Article{ID: uuid.New(), Headline: "Live", PublicationTier: models.PublicationStandard}
	pending := &models.Article{ID: uuid.New(), Headline: "Hidden", PublicationTier: models.PublicationPending}
	h := newTestRouter(&fakeLister{}, fakeArticles{published.ID: published, pending.ID: pending}, nil, nil)

	rec, body := get(t, h, "/api/articles/"+published.ID.String())
	if rec.Code != http.StatusOK || body["headline"] != "Live" {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}

	for url, code := range map[string]int{
		"/api/articles/" + pending.ID.String(): http.StatusNotFound,
		"/api/articles/" + uuid.NewString():    http.StatusNotFound,
		"/api/articles/not-a-uuid":             http.StatusBadRequest,
	} {
		if rec, _ := get(t, h, url); rec.Code != code {
			t.Errorf("%s: status = %d, want %d", url, rec.Code, code)
		}
	}
}

func TestGetStory(t *testing.T) {
	story := &models.Story{ID: uuid.New(), Synopsis: "S", Category: models.CategoryWorld}
	h := newTestRouter(&fakeLister{}, nil, fakeStories{story.ID: story}, nil)

	rec, body := get(t, h, "/api/stories/"+story.ID.String())
	if rec.Code != http.StatusOK || body["synopsis"] != "S" {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}
	if p, ok := body["perspectives"].([]any); !ok || len(p) != 0 {
		t.Errorf("perspectives = %v", body["perspectives"])
	}

	if rec, _ := get(t, h, "/api/stories/"+uuid.NewString()); rec.Code != http.StatusNotFound {
		t.Errorf("missing story status = %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	rec, body := get(t, newTestRouter(&fakeLister{}, nil, nil, func(context.Context) error { return nil }), "/api/health")
	if rec.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}

	rec, _ = get(t, newTestRouter(&fakeLister{}, nil, nil, func(context.Context) error { return errors.New("down") }), "/api/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}
