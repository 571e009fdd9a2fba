package repository

import (
	"context"

	"github.com/vytor/chessvault/internal/models"
)

// GameRepository handles game data access
type GameRepository interface {
	Get(ctx context.Context, id int64) (*models.Game, error)
	Search(ctx context.Context, filter models.GameFilter) ([]models.Game, error)
	SearchAll(ctx context.Context, filter models.GameFilter) ([]models.Game, error)
	Count(ctx context.Context, filter models.GameFilter) (int, error)
	InsertBatch(ctx context.Context, games []models.Game) (int, error)
	ExistsByLichessID(ctx context.Context, lichessID string) (bool, error)
}

// SessionRepository handles import session data access. The terminal
// transition methods are conditional on the row still being in the running
// state and report whether the transition happened.
type SessionRepository interface {
	Create(ctx context.Context, session models.ImportSession) error
	Get(ctx context.Context, id string) (*models.ImportSession, error)
	History(ctx context.Context, username string, limit int) ([]models.ImportSession, error)
	UpdateProgress(ctx context.Context, session models.ImportSession) error
	MarkCompleted(ctx context.Context, id string) (bool, error)
	MarkFailed(ctx context.Context, id string, message string) (bool, error)
	MarkCancelled(ctx context.Context, id string) (bool, error)
}

// ProfileRepository handles cached profile data access
type ProfileRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	Upsert(ctx context.Context, profile models.Profile) (*models.Profile, error)
}

// StatsRepository handles statistics data access
type StatsRepository interface {
	Summary(ctx context.Context, username string) (*models.UserStatistics, error)
	PerfTypeStats(ctx context.Context, username string) ([]models.PerfTypeStat, error)
	ColorStats(ctx context.Context, username string) ([]models.ColorStat, error)
	ResultStats(ctx context.Context, username string) ([]models.ResultStat, error)
	OpeningStats(ctx context.Context, username string, limit int) ([]models.OpeningStat, error)
	OpponentStats(ctx context.Context, username string, limit int) ([]models.OpponentStat, error)
}
