package api

import (
	"net/http"

	"github.com/draft-together/server/internal/api/handlers"
	"github.com/draft-together/server/internal/config"
	"github.com/draft-together/server/internal/registry"
	"github.com/draft-together/server/internal/repository"
	"github.com/draft-together/server/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(repos *repository.Repositories, reg *registry.Registry, validator *validation.Set, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Initialize handlers
	championHandler := handlers.NewChampionHandler(repos.Champion)
	draftHandler := handlers.NewDraftHandler(reg)
	wsHandler := handlers.NewWebSocketHandler(reg, validator)

	r.Get("/champions", championHandler.GetAll)
	r.Get("/draft/{roomID}", draftHandler.Get)
	r.Get("/ws/{roomID}", wsHandler.Handle)

	// Everything else is the bundled frontend.
	r.Handle("/*", http.FileServer(http.Dir(cfg.AssetsDir)))

	return r
}
