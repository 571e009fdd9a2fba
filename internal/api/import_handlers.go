package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/chessvault/internal/errors"
	"github.com/vytor/chessvault/internal/logger"
	"github.com/vytor/chessvault/internal/models"
)

func (s *Server) handleStartImport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	// Unfinished games are excluded unless the caller opts in.
	req := models.ImportRequest{FinishedOnly: true}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("malformed import request body: %v", err)
		handleError(w, r, errors.NewBadRequestError("malformed JSON request body"))
		return
	}

	session, err := s.Imports.Start(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusAccepted, session)
}

func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	session, err := s.Imports.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, session)
}

func (s *Server) handleCancelImport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cancelled, err := s.Imports.Cancel(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	session, err := s.Imports.GetSession(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{
		"cancelled": cancelled,
		"session":   session,
	})
}

func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	limit := queryInt(r, "limit")

	history, err := s.Imports.GetHistory(r.Context(), username, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"sessions": history})
}
