package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.Profiles.GetOrRefresh(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, profile)
}
