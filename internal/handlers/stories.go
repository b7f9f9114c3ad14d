package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Saul-Punybz/newsdesk/internal/models"
)

// StoryFinder loads a single story with its perspectives.
type StoryFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Story, error)
}

// StoriesHandler groups the story endpoints.
type StoriesHandler struct {
	Stories StoryFinder
}

// GetStory handles GET /api/stories/{id}.
func (h *StoriesHandler) GetStory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid story id")
		return
	}

	story, err := h.Stories.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, "story not found")
			return
		}
		slog.Error("get story", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if story.Perspectives == nil {
		story.Perspectives = []models.Perspective{}
	}

	writeJSON(w, http.StatusOK, story)
}
