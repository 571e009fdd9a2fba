package services

import (
	"context"
	"strings"

	apperrors "github.com/vytor/chessvault/internal/errors"
	"github.com/vytor/chessvault/internal/logger"
	"github.com/vytor/chessvault/internal/models"
	"github.com/vytor/chessvault/internal/repository"
)

const statsBreakdownLimit = 20

// StatsService aggregates per-user statistics with breakdowns by perf type,
// color, result, opening and opponent.
type StatsService struct {
	stats repository.StatsRepository
	log   *logger.Logger
}

// NewStatsService creates a new StatsService
func NewStatsService(stats repository.StatsRepository) *StatsService {
	return &StatsService{
		stats: stats,
		log:   logger.Default().WithPrefix("stats_service"),
	}
}

// Statistics composes the summary with all breakdowns. A user with no
// imported games gets a zeroed summary, not an error.
func (s *StatsService) Statistics(ctx context.Context, username string) (*models.UserStatistics, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperrors.NewValidationError("username is required")
	}

	stats, err := s.stats.Summary(ctx, username)
	if err != nil {
		s.log.Error("failed to load summary for %s: %v", username, err)
		return nil, apperrors.NewInternalError(err)
	}

	if stats.ByPerfType, err = s.stats.PerfTypeStats(ctx, username); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if stats.ByColor, err = s.stats.ColorStats(ctx, username); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if stats.ByResult, err = s.stats.ResultStats(ctx, username); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if stats.ByOpening, err = s.stats.OpeningStats(ctx, username, statsBreakdownLimit); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if stats.ByOpponent, err = s.stats.OpponentStats(ctx, username, statsBreakdownLimit); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return stats, nil
}
