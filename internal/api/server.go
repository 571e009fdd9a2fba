package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/chessvault/internal/services"
)

// Server holds the service dependencies for the HTTP API.
type Server struct {
	DB       *sql.DB
	Imports  *services.ImportService
	Games    *services.GameService
	Stats    *services.StatsService
	Profiles *services.ProfileService

	RequestTimeout time.Duration
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	timeout := s.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(timeoutMiddleware(timeout))

		r.Post("/imports", s.handleStartImport)
		r.Get("/imports", s.handleImportHistory)
		r.Get("/imports/{id}", s.handleGetImport)
		r.Post("/imports/{id}/cancel", s.handleCancelImport)

		r.Get("/games", s.handleSearchGames)
		r.Get("/games/export", s.handleExportGames)
		r.Get("/games/{id}", s.handleGetGame)

		r.Get("/stats/{username}", s.handleStats)
		r.Get("/profiles/{username}", s.handleProfile)
	})

	return r
}
