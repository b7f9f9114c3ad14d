package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Router groups the handlers served by the API.
type Router struct {
	Articles *ArticlesHandler
	Stories  *StoriesHandler
	Health   *HealthHandler
}

// Handler builds the chi router with the global middleware stack.
func (rt Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/api/health", rt.Health.Health)
	r.Get("/api/articles", rt.Articles.ListArticles)
	r.Get("/api/articles/{id}", rt.Articles.GetArticle)
	r.Get("/api/stories/{id}", rt.Stories.GetStory)

	return r
}
