package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Saul-Punybz/newsdesk/internal/models"
	"github.com/Saul-Punybz/newsdesk/internal/pipeline"
)

// ArticleLister serves pages of published articles.
type ArticleLister interface {
	List(ctx context.Context, q pipeline.ListQuery) (*pipeline.Page, error)
}

// ArticleFinder loads a single article.
type ArticleFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error)
}

// ArticlesHandler groups the public article endpoints.
type ArticlesHandler struct {
	Retriever ArticleLister
	Articles  ArticleFinder
}

// ListArticles handles
// GET /api/articles?language=en&country=us&category=world&cursor=...&limit=20.
func (h *ArticlesHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	language := strings.ToLower(strings.TrimSpace(q.Get("language")))
	if language == "" {
		writeError(w, http.StatusBadRequest, "language is required")
		return
	}
	if !isCode(language) {
		writeError(w, http.StatusBadRequest, "language must be a two-letter code")
		return
	}

	country := strings.ToLower(strings.TrimSpace(q.Get("country")))
	if country != "" && !isCode(country) {
		writeError(w, http.StatusBadRequest, "country must be a two-letter code")
		return
	}

	var category models.Category
	if raw := q.Get("category"); raw != "" {
		c, err := models.ParseCategory(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		category = c
	}

	limit := pipeline.DefaultPageSize
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > pipeline.MaxPageSize {
			writeError(w, http.StatusBadRequest, "limit must be an integer between 1 and 100")
			return
		}
		limit = n
	}

	page, err := h.Retriever.List(r.Context(), pipeline.ListQuery{
		Category: category,
		Country:  country,
		Language: language,
		Cursor:   q.Get("cursor"),
		Limit:    limit,
	})
	if err != nil {
		var ice *pipeline.InvalidCursorError
		switch {
		case errors.As(err, &ice):
			writeError(w, http.StatusBadRequest, "invalid cursor")
		case errors.Is(err, models.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("list articles", "err", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// GetArticle handles GET /api/articles/{id}. Articles that are not
// published are reported as missing.
func (h *ArticlesHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid article id")
		return
	}

	article, err := h.Articles.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, "article not found")
			return
		}
		slog.Error("get article", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !article.PublicationTier.IsPublished() {
		writeError(w, http.StatusNotFound, "article not found")
		return
	}

	writeJSON(w, http.StatusOK, article)
}

func isCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
