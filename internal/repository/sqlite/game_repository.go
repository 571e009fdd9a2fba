package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/chessvault/internal/logger"
	"github.com/vytor/chessvault/internal/models"
	"github.com/vytor/chessvault/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

var gameColumns = []string{
	"id", "lichess_id", "username", "session_id", "rated", "variant", "speed",
	"perf", "status", "winner", "termination",
	"white_name", "white_rating", "white_rating_diff", "white_title",
	"black_name", "black_rating", "black_rating_diff", "black_title",
	"played_as", "result", "player_rating", "player_rating_diff",
	"opponent", "opponent_rating",
	"eco_code", "opening_name", "opening_ply",
	"clock_initial", "clock_increment", "time_control",
	"moves", "move_count", "pgn", "analysis", "has_analysis",
	"played_at", "last_move_at", "imported_at",
}

// Whitelisted sort keys. Anything else falls back to the date key.
var sortColumns = map[string]string{
	models.SortByDate:        "played_at",
	models.SortByOpponent:    "opponent COLLATE NOCASE",
	models.SortByResult:      "result",
	models.SortByColor:       "played_as",
	models.SortByRating:      "player_rating",
	models.SortByTimeControl: "clock_initial",
	models.SortByOpening:     "opening_name",
	models.SortByMoveCount:   "move_count",
}

type gameRepository struct {
	db *sql.DB
}

// NewGameRepository creates a new GameRepository implementation
func NewGameRepository(db *sql.DB) repository.GameRepository {
	return &gameRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (models.Game, error) {
	var g models.Game
	var playedAt, lastMoveAt sql.NullTime
	err := row.Scan(
		&g.ID, &g.LichessID, &g.Username, &g.SessionID, &g.Rated, &g.Variant, &g.Speed,
		&g.Perf, &g.Status, &g.Winner, &g.Termination,
		&g.WhiteName, &g.WhiteRating, &g.WhiteRatingDiff, &g.WhiteTitle,
		&g.BlackName, &g.BlackRating, &g.BlackRatingDiff, &g.BlackTitle,
		&g.PlayedAs, &g.Result, &g.PlayerRating, &g.PlayerRatingDiff,
		&g.Opponent, &g.OpponentRating,
		&g.ECOCode, &g.OpeningName, &g.OpeningPly,
		&g.ClockInitial, &g.ClockIncrement, &g.TimeControl,
		&g.Moves, &g.MoveCount, &g.PGN, &g.Analysis, &g.HasAnalysis,
		&playedAt, &lastMoveAt, &g.ImportedAt,
	)
	if err != nil {
		return g, err
	}
	if playedAt.Valid {
		g.PlayedAt = playedAt.Time
	}
	if lastMoveAt.Valid {
		g.LastMoveAt = lastMoveAt.Time
	}
	return g, nil
}

func (r *gameRepository) Get(ctx context.Context, id int64) (*models.Game, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("getting game: id=%d", id)

	query, args, err := sqlBuilder.Select(gameColumns...).From("games").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	g, err := scanGame(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("game not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get game: %v", err)
		return nil, err
	}
	return &g, nil
}

// applyGameFilter adds the filter's predicates to a select builder. The same
// predicates back both Search and Count so totals always match pages.
func applyGameFilter(query squirrel.SelectBuilder, f models.GameFilter) squirrel.SelectBuilder {
	if f.Username != "" {
		query = query.Where(squirrel.Eq{"username": f.Username})
	}
	if f.Opponent != "" {
		query = query.Where(squirrel.Like{"opponent": "%" + f.Opponent + "%"})
	}
	if f.OpeningName != "" {
		query = query.Where(squirrel.Like{"opening_name": "%" + f.OpeningName + "%"})
	}
	if f.ECOCode != "" {
		query = query.Where(squirrel.Eq{"eco_code": f.ECOCode})
	}
	if f.Result != "" {
		query = query.Where(squirrel.Eq{"result": f.Result})
	}
	if f.PlayedAs != "" {
		query = query.Where(squirrel.Eq{"played_as": f.PlayedAs})
	}
	if len(f.PerfTypes) > 0 {
		query = query.Where(squirrel.Eq{"perf": f.PerfTypes})
	}
	if f.DateFrom != nil {
		query = query.Where(squirrel.GtOrEq{"played_at": *f.DateFrom})
	}
	if f.DateTo != nil {
		query = query.Where(squirrel.LtOrEq{"played_at": *f.DateTo})
	}
	if f.MinRating > 0 {
		query = query.Where(squirrel.GtOrEq{"player_rating": f.MinRating})
	}
	if f.MaxRating > 0 {
		query = query.Where(squirrel.LtOrEq{"player_rating": f.MaxRating})
	}
	if f.Rated != nil {
		query = query.Where(squirrel.Eq{"rated": *f.Rated})
	}
	if f.HasAnalysis != nil {
		query = query.Where(squirrel.Eq{"has_analysis": *f.HasAnalysis})
	}
	if f.Status != "" {
		query = query.Where(squirrel.Eq{"status": f.Status})
	}
	if f.MinMoves > 0 {
		query = query.Where(squirrel.GtOrEq{"move_count": f.MinMoves})
	}
	if f.MaxMoves > 0 {
		query = query.Where(squirrel.LtOrEq{"move_count": f.MaxMoves})
	}
	return query
}

func orderClause(f models.GameFilter) string {
	col, ok := sortColumns[f.SortBy]
	if !ok {
		// Default and fallback sort: newest first.
		return "played_at DESC, id DESC"
	}
	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}
	return col + " " + dir + ", id DESC"
}

func (r *gameRepository) query(ctx context.Context, f models.GameFilter, paginate bool) ([]models.Game, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")

	query := applyGameFilter(sqlBuilder.Select(gameColumns...).From("games"), f).
		OrderBy(orderClause(f))
	if paginate {
		query = query.Limit(uint64(f.Limit())).Offset(uint64(f.Offset()))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to search games: %v", err)
		return nil, err
	}
	defer rows.Close()

	var games []models.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			log.Error("failed to scan game row: %v", err)
			return nil, err
		}
		games = append(games, g)
	}
	log.Debug("found %d games", len(games))
	return games, rows.Err()
}

func (r *gameRepository) Search(ctx context.Context, f models.GameFilter) ([]models.Game, error) {
	return r.query(ctx, f, true)
}

// SearchAll returns the full filtered result set without pagination, for
// export.
func (r *gameRepository) SearchAll(ctx context.Context, f models.GameFilter) ([]models.Game, error) {
	return r.query(ctx, f, false)
}

func (r *gameRepository) Count(ctx context.Context, f models.GameFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")

	sqlStr, args, err := applyGameFilter(sqlBuilder.Select("COUNT(*)").From("games"), f).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		log.Error("failed to count games: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *gameRepository) ExistsByLichessID(ctx context.Context, lichessID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM games WHERE lichess_id = ?`, lichessID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("game_repo").Error("failed to check lichess_id %s: %v", lichessID, err)
		return false, err
	}
	return true, nil
}

// InsertBatch inserts games with insert-or-ignore semantics on lichess_id and
// returns how many rows were actually inserted.
func (r *gameRepository) InsertBatch(ctx context.Context, games []models.Game) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("batch inserting %d games", len(games))

	if len(games) == 0 {
		return 0, nil
	}

	inserted := 0
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO games (
    lichess_id, username, session_id, rated, variant, speed,
    perf, status, winner, termination,
    white_name, white_rating, white_rating_diff, white_title,
    black_name, black_rating, black_rating_diff, black_title,
    played_as, result, player_rating, player_rating_diff,
    opponent, opponent_rating,
    eco_code, opening_name, opening_ply,
    clock_initial, clock_increment, time_control,
    moves, move_count, pgn, analysis, has_analysis,
    played_at, last_move_at, imported_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(lichess_id) DO NOTHING
`)
		if err != nil {
			log.Error("failed to prepare batch insert: %v", err)
			return err
		}
		defer stmt.Close()

		for _, g := range games {
			res, err := stmt.ExecContext(ctx,
				g.LichessID, g.Username, g.SessionID, g.Rated, g.Variant, g.Speed,
				g.Perf, g.Status, g.Winner, g.Termination,
				g.WhiteName, g.WhiteRating, g.WhiteRatingDiff, g.WhiteTitle,
				g.BlackName, g.BlackRating, g.BlackRatingDiff, g.BlackTitle,
				g.PlayedAs, g.Result, g.PlayerRating, g.PlayerRatingDiff,
				g.Opponent, g.OpponentRating,
				g.ECOCode, g.OpeningName, g.OpeningPly,
				g.ClockInitial, g.ClockIncrement, g.TimeControl,
				g.Moves, g.MoveCount, g.PGN, g.Analysis, g.HasAnalysis,
				g.PlayedAt, g.LastMoveAt, g.ImportedAt,
			)
			if err != nil {
				log.Error("failed to insert game lichess_id=%s: %v", g.LichessID, err)
				return err
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += int(n)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Debug("batch insert completed, %d new games inserted", inserted)
	return inserted, nil
}
