package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/vytor/chessvault/internal/logger"
	"github.com/vytor/chessvault/internal/models"
	"github.com/vytor/chessvault/internal/repository"
)

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new ProfileRepository implementation
func NewProfileRepository(db *sql.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `id, username, display_name, title, online, country, bio, patron, verified,
total_games, wins, losses, draws, followers, following, perfs, joined_at, last_seen_at, last_refreshed`

func scanProfile(row rowScanner) (models.Profile, error) {
	var p models.Profile
	var perfsJSON string
	var joinedAt, lastSeenAt sql.NullTime
	err := row.Scan(
		&p.ID, &p.Username, &p.DisplayName, &p.Title, &p.Online, &p.Country, &p.Bio,
		&p.Patron, &p.Verified,
		&p.TotalGames, &p.Wins, &p.Losses, &p.Draws, &p.Followers, &p.Following,
		&perfsJSON, &joinedAt, &lastSeenAt, &p.LastRefreshed,
	)
	if err != nil {
		return p, err
	}
	if joinedAt.Valid {
		p.JoinedAt = joinedAt.Time
	}
	if lastSeenAt.Valid {
		p.LastSeenAt = lastSeenAt.Time
	}
	_ = json.Unmarshal([]byte(perfsJSON), &p.Perfs)
	return p, nil
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")

	p, err := scanProfile(r.db.QueryRowContext(ctx, `
SELECT `+profileColumns+`
FROM profiles
WHERE username = ?
`, username))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("profile not found: username=%s", username)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) Upsert(ctx context.Context, p models.Profile) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("upserting profile for username: %s", p.Username)

	perfsJSON, err := json.Marshal(p.Perfs)
	if err != nil {
		return nil, err
	}

	out, err := scanProfile(r.db.QueryRowContext(ctx, `
INSERT INTO profiles (
    username, display_name, title, online, country, bio, patron, verified,
    total_games, wins, losses, draws, followers, following, perfs,
    joined_at, last_seen_at, last_refreshed
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(username) DO UPDATE SET
    display_name = excluded.display_name,
    title = excluded.title,
    online = excluded.online,
    country = excluded.country,
    bio = excluded.bio,
    patron = excluded.patron,
    verified = excluded.verified,
    total_games = excluded.total_games,
    wins = excluded.wins,
    losses = excluded.losses,
    draws = excluded.draws,
    followers = excluded.followers,
    following = excluded.following,
    perfs = excluded.perfs,
    joined_at = excluded.joined_at,
    last_seen_at = excluded.last_seen_at,
    last_refreshed = excluded.last_refreshed
RETURNING `+profileColumns+`
`, p.Username, p.DisplayName, p.Title, p.Online, p.Country, p.Bio, p.Patron, p.Verified,
		p.TotalGames, p.Wins, p.Losses, p.Draws, p.Followers, p.Following, string(perfsJSON),
		p.JoinedAt, p.LastSeenAt, p.LastRefreshed))
	if err != nil {
		log.Error("failed to upsert profile: %v", err)
		return nil, err
	}
	log.Debug("profile upserted: id=%d", out.ID)
	return &out, nil
}
