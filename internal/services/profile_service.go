package services

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/vytor/chessvault/internal/errors"
	"github.com/vytor/chessvault/internal/lichess"
	"github.com/vytor/chessvault/internal/logger"
	"github.com/vytor/chessvault/internal/models"
	"github.com/vytor/chessvault/internal/repository"
)

// DefaultProfileMaxAge is how long a cached profile stays fresh.
const DefaultProfileMaxAge = 24 * time.Hour

// ProfileService serves cached profiles, refreshing them from the upstream
// API when stale. A refresh failure falls back to the stale copy rather than
// erroring, so profiles degrade instead of disappearing.
type ProfileService struct {
	profiles repository.ProfileRepository
	client   lichess.ClientInterface
	maxAge   time.Duration
	now      func() time.Time
	log      *logger.Logger
}

// NewProfileService creates a new ProfileService. maxAge <= 0 means the
// default staleness threshold.
func NewProfileService(profiles repository.ProfileRepository, client lichess.ClientInterface, maxAge time.Duration) *ProfileService {
	if maxAge <= 0 {
		maxAge = DefaultProfileMaxAge
	}
	return &ProfileService{
		profiles: profiles,
		client:   client,
		maxAge:   maxAge,
		now:      time.Now,
		log:      logger.Default().WithPrefix("profile_service"),
	}
}

// GetOrRefresh returns the user's profile, hitting the upstream API only when
// the cached copy is missing or older than the staleness threshold.
func (s *ProfileService) GetOrRefresh(ctx context.Context, username string) (*models.Profile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperrors.NewValidationError("username is required")
	}

	cached, err := s.profiles.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if cached != nil && s.now().Sub(cached.LastRefreshed) < s.maxAge {
		return cached, nil
	}

	fresh, err := s.client.FetchProfile(ctx, username)
	if err != nil {
		if cached != nil {
			s.log.Warn("profile refresh failed for %s, serving stale copy: %v", username, err)
			return cached, nil
		}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrCodeNotFound {
			return nil, err
		}
		return nil, apperrors.NewUpstreamError("fetching profile from upstream", err)
	}

	merged := mergeProfiles(cached, fresh)
	merged.LastRefreshed = s.now().UTC()

	stored, err := s.profiles.Upsert(ctx, merged)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return stored, nil
}

// mergeProfiles overlays a refresh response onto the cached row. String
// fields only overwrite when the response carried a value; counters and flags
// always win because absence and zero are indistinguishable upstream.
func mergeProfiles(cached *models.Profile, fresh *models.Profile) models.Profile {
	if cached == nil {
		return *fresh
	}
	merged := *cached
	merged.Username = fresh.Username
	if fresh.DisplayName != "" {
		merged.DisplayName = fresh.DisplayName
	}
	if fresh.Title != "" {
		merged.Title = fresh.Title
	}
	if fresh.Country != "" {
		merged.Country = fresh.Country
	}
	if fresh.Bio != "" {
		merged.Bio = fresh.Bio
	}
	merged.Online = fresh.Online
	merged.Patron = fresh.Patron
	merged.Verified = fresh.Verified
	merged.TotalGames = fresh.TotalGames
	merged.Wins = fresh.Wins
	merged.Losses = fresh.Losses
	merged.Draws = fresh.Draws
	merged.Followers = fresh.Followers
	merged.Following = fresh.Following
	if fresh.Perfs != nil {
		merged.Perfs = fresh.Perfs
	}
	if !fresh.JoinedAt.IsZero() {
		merged.JoinedAt = fresh.JoinedAt
	}
	if !fresh.LastSeenAt.IsZero() {
		merged.LastSeenAt = fresh.LastSeenAt
	}
	return merged
}
