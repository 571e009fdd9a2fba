package sqlite

import (
	"context"
	"database/sql"

	"github.com/vytor/chessvault/internal/logger"
	"github.com/vytor/chessvault/internal/models"
	"github.com/vytor/chessvault/internal/repository"
)

type statsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(part) / float64(total)
}

func (r *statsRepository) Summary(ctx context.Context, username string) (*models.UserStatistics, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching summary stats: username=%s", username)

	var s models.UserStatistics
	s.Username = username
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*),
       COALESCE(SUM(result = 'win'), 0),
       COALESCE(SUM(result = 'loss'), 0),
       COALESCE(SUM(result = 'draw'), 0)
FROM games
WHERE username = ?
`, username).Scan(&s.TotalGames, &s.Wins, &s.Losses, &s.Draws)
	if err != nil {
		log.Error("failed to query summary stats: %v", err)
		return nil, err
	}
	s.WinRate = rate(s.Wins, s.TotalGames)
	s.DrawRate = rate(s.Draws, s.TotalGames)
	return &s, nil
}

func (r *statsRepository) PerfTypeStats(ctx context.Context, username string) ([]models.PerfTypeStat, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching perf type stats: username=%s", username)

	rows, err := r.db.QueryContext(ctx, `
SELECT perf, COUNT(*),
       COALESCE(SUM(result = 'win'), 0),
       COALESCE(SUM(result = 'draw'), 0),
       COALESCE(SUM(result = 'loss'), 0)
FROM games
WHERE username = ?
GROUP BY perf
ORDER BY COUNT(*) DESC
`, username)
	if err != nil {
		log.Error("failed to query perf type stats: %v", err)
		return nil, err
	}
	defer rows.Close()

	var stats []models.PerfTypeStat
	for rows.Next() {
		var s models.PerfTypeStat
		if err := rows.Scan(&s.Perf, &s.TotalGames, &s.Wins, &s.Draws, &s.Losses); err != nil {
			log.Error("failed to scan perf type stat row: %v", err)
			return nil, err
		}
		s.WinRate = rate(s.Wins, s.TotalGames)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *statsRepository) ColorStats(ctx context.Context, username string) ([]models.ColorStat, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching color stats: username=%s", username)

	rows, err := r.db.QueryContext(ctx, `
SELECT played_as, COUNT(*),
       COALESCE(SUM(result = 'win'), 0),
       COALESCE(SUM(result = 'draw'), 0),
       COALESCE(SUM(result = 'loss'), 0)
FROM games
WHERE username = ? AND played_as != ''
GROUP BY played_as
ORDER BY played_as
`, username)
	if err != nil {
		log.Error("failed to query color stats: %v", err)
		return nil, err
	}
	defer rows.Close()

	var stats []models.ColorStat
	for rows.Next() {
		var s models.ColorStat
		if err := rows.Scan(&s.PlayedAs, &s.TotalGames, &s.Wins, &s.Draws, &s.Losses); err != nil {
			log.Error("failed to scan color stat row: %v", err)
			return nil, err
		}
		s.WinRate = rate(s.Wins, s.TotalGames)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *statsRepository) ResultStats(ctx context.Context, username string) ([]models.ResultStat, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching result stats: username=%s", username)

	rows, err := r.db.QueryContext(ctx, `
SELECT result, COUNT(*)
FROM games
WHERE username = ? AND result != ''
GROUP BY result
ORDER BY COUNT(*) DESC
`, username)
	if err != nil {
		log.Error("failed to query result stats: %v", err)
		return nil, err
	}
	defer rows.Close()

	var stats []models.ResultStat
	for rows.Next() {
		var s models.ResultStat
		if err := rows.Scan(&s.Result, &s.Count); err != nil {
			log.Error("failed to scan result stat row: %v", err)
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *statsRepository) OpeningStats(ctx context.Context, username string, limit int) ([]models.OpeningStat, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching opening stats: username=%s, limit=%d", username, limit)

	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT opening_name, eco_code, COUNT(*),
       COALESCE(SUM(result = 'win'), 0),
       COALESCE(SUM(result = 'draw'), 0),
       COALESCE(SUM(result = 'loss'), 0)
FROM games
WHERE username = ? AND opening_name != ''
GROUP BY opening_name, eco_code
ORDER BY COUNT(*) DESC
LIMIT ?
`, username, limit)
	if err != nil {
		log.Error("failed to query opening stats: %v", err)
		return nil, err
	}
	defer rows.Close()

	var stats []models.OpeningStat
	for rows.Next() {
		var s models.OpeningStat
		if err := rows.Scan(&s.OpeningName, &s.ECOCode, &s.TotalGames, &s.Wins, &s.Draws, &s.Losses); err != nil {
			log.Error("failed to scan opening stat row: %v", err)
			return nil, err
		}
		s.WinRate = rate(s.Wins, s.TotalGames)
		stats = append(stats, s)
	}
	log.Debug("found %d opening stats", len(stats))
	return stats, rows.Err()
}

func (r *statsRepository) OpponentStats(ctx context.Context, username string, limit int) ([]models.OpponentStat, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching opponent stats: username=%s, limit=%d", username, limit)

	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT opponent, COUNT(*),
       COALESCE(SUM(result = 'win'), 0),
       COALESCE(SUM(result = 'draw'), 0),
       COALESCE(SUM(result = 'loss'), 0),
       COALESCE(AVG(NULLIF(opponent_rating, 0)), 0)
FROM games
WHERE username = ? AND opponent != ''
GROUP BY opponent
ORDER BY COUNT(*) DESC
LIMIT ?
`, username, limit)
	if err != nil {
		log.Error("failed to query opponent stats: %v", err)
		return nil, err
	}
	defer rows.Close()

	var stats []models.OpponentStat
	for rows.Next() {
		var s models.OpponentStat
		if err := rows.Scan(&s.Opponent, &s.TotalGames, &s.Wins, &s.Draws, &s.Losses, &s.AvgOpponentRating); err != nil {
			log.Error("failed to scan opponent stat row: %v", err)
			return nil, err
		}
		s.WinRate = rate(s.Wins, s.TotalGames)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
