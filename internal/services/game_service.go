package services

import (
	"context"
	"strings"

	apperrors "github.com/vytor/chessvault/internal/errors"
	"github.com/vytor/chessvault/internal/export"
	"github.com/vytor/chessvault/internal/logger"
	"github.com/vytor/chessvault/internal/models"
	"github.com/vytor/chessvault/internal/repository"
)

// SearchResult is one page of games plus the total across all pages.
type SearchResult struct {
	Games    []models.Game `json:"games"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// GameService exposes the query surface over imported games.
type GameService struct {
	games repository.GameRepository
	log   *logger.Logger
}

// NewGameService creates a new GameService
func NewGameService(games repository.GameRepository) *GameService {
	return &GameService{
		games: games,
		log:   logger.Default().WithPrefix("game_service"),
	}
}

// Search returns one page of matching games and the total match count. The
// total always reflects the full filtered set, even when the requested page
// is past the end.
func (s *GameService) Search(ctx context.Context, filter models.GameFilter) (*SearchResult, error) {
	if err := validateGameFilter(&filter); err != nil {
		return nil, err
	}

	games, err := s.games.Search(ctx, filter)
	if err != nil {
		s.log.Error("failed to search games: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	total, err := s.games.Count(ctx, filter)
	if err != nil {
		s.log.Error("failed to count games: %v", err)
		return nil, apperrors.NewInternalError(err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	return &SearchResult{
		Games:    games,
		Total:    total,
		Page:     page,
		PageSize: filter.Limit(),
	}, nil
}

// GetGame returns a single game by its row id.
func (s *GameService) GetGame(ctx context.Context, id int64) (*models.Game, error) {
	game, err := s.games.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if game == nil {
		return nil, apperrors.NewNotFoundError("game", id)
	}
	return game, nil
}

// Export renders every game matching the filter (pagination ignored) in the
// requested format and returns the payload with its content type.
func (s *GameService) Export(ctx context.Context, filter models.GameFilter, format string) ([]byte, string, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, "", err
	}
	if err := validateGameFilter(&filter); err != nil {
		return nil, "", err
	}

	games, err := s.games.SearchAll(ctx, filter)
	if err != nil {
		s.log.Error("failed to load games for export: %v", err)
		return nil, "", apperrors.NewInternalError(err)
	}

	payload, err := export.Render(games, f)
	if err != nil {
		s.log.Error("failed to render %s export: %v", f, err)
		return nil, "", apperrors.NewInternalError(err)
	}
	s.log.Info("exported %d games as %s", len(games), f)
	return payload, f.ContentType(), nil
}

// validateGameFilter normalizes the filter in place and collects every
// violated rule.
func validateGameFilter(f *models.GameFilter) error {
	f.Username = strings.ToLower(strings.TrimSpace(f.Username))

	var violations []string
	if f.Page < 0 {
		violations = append(violations, "page must be at least 1")
	}
	if f.PageSize < 0 || f.PageSize > 500 {
		violations = append(violations, "page_size must be between 1 and 500")
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(*f.DateTo) {
		violations = append(violations, "date_from must not be after date_to")
	}
	if f.MinRating < 0 || f.MaxRating < 0 {
		violations = append(violations, "rating bounds must not be negative")
	}
	if f.MinRating > 0 && f.MaxRating > 0 && f.MinRating > f.MaxRating {
		violations = append(violations, "min_rating must not exceed max_rating")
	}
	if f.MinMoves < 0 || f.MaxMoves < 0 {
		violations = append(violations, "move bounds must not be negative")
	}
	if f.MinMoves > 0 && f.MaxMoves > 0 && f.MinMoves > f.MaxMoves {
		violations = append(violations, "min_moves must not exceed max_moves")
	}
	if f.PlayedAs != "" && f.PlayedAs != "white" && f.PlayedAs != "black" {
		violations = append(violations, "played_as must be white or black")
	}
	if f.Result != "" && f.Result != "win" && f.Result != "loss" && f.Result != "draw" {
		violations = append(violations, "result must be win, loss or draw")
	}
	if len(violations) > 0 {
		return apperrors.NewValidationError(violations...)
	}
	return nil
}
