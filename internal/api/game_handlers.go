package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/chessvault/internal/errors"
	"github.com/vytor/chessvault/internal/models"
)

// gameFilterFromQuery builds a GameFilter from request query parameters.
// Validation happens in the service so violations are collected in one place.
func gameFilterFromQuery(r *http.Request) models.GameFilter {
	q := r.URL.Query()
	f := models.GameFilter{
		Username:    q.Get("username"),
		Opponent:    q.Get("opponent"),
		OpeningName: q.Get("opening"),
		ECOCode:     q.Get("eco"),
		Result:      q.Get("result"),
		PlayedAs:    q.Get("color"),
		Status:      q.Get("status"),
		DateFrom:    queryTime(r, "date_from"),
		DateTo:      queryTime(r, "date_to"),
		MinRating:   queryInt(r, "min_rating"),
		MaxRating:   queryInt(r, "max_rating"),
		MinMoves:    queryInt(r, "min_moves"),
		MaxMoves:    queryInt(r, "max_moves"),
		Rated:       queryBool(r, "rated"),
		HasAnalysis: queryBool(r, "analyzed"),
		SortBy:      q.Get("sort"),
		SortDesc:    q.Get("order") != "asc",
		Page:        queryInt(r, "page"),
		PageSize:    queryInt(r, "page_size"),
	}
	if perfs := q.Get("perf_types"); perfs != "" {
		for _, p := range strings.Split(perfs, ",") {
			if p = strings.TrimSpace(p); p != "" {
				f.PerfTypes = append(f.PerfTypes, p)
			}
		}
	}
	return f
}

func (s *Server) handleSearchGames(w http.ResponseWriter, r *http.Request) {
	result, err := s.Games.Search(r.Context(), gameFilterFromQuery(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid game id"))
		return
	}

	game, err := s.Games.GetGame(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, game)
}

func (s *Server) handleExportGames(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	payload, contentType, err := s.Games.Export(r.Context(), gameFilterFromQuery(r), format)
	if err != nil {
		handleError(w, r, err)
		return
	}

	filename := "games." + format
	if format == "" {
		filename = "games.json"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}
