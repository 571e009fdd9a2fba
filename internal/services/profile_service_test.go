package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vytor/chessvault/internal/errors"
	"github.com/vytor/chessvault/internal/models"
	"github.com/vytor/chessvault/internal/services"
	"github.com/vytor/chessvault/internal/testutil/mocks"
)

func TestProfileService_FreshCacheSkipsUpstream(t *testing.T) {
	repo := new(mocks.MockProfileRepository)
	client := new(mocks.MockLichessClient)
	svc := services.NewProfileService(repo, client, 24*time.Hour)

	cached := &models.Profile{Username: "alice", TotalGames: 100, LastRefreshed: time.Now().Add(-1 * time.Hour)}
	repo.On("GetByUsername", mock.Anything, "alice").Return(cached, nil)

	profile, err := svc.GetOrRefresh(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Equal(t, 100, profile.TotalGames)
	client.AssertNotCalled(t, "FetchProfile", mock.Anything, mock.Anything)
}

func TestProfileService_StaleCacheRefreshes(t *testing.T) {
	repo := new(mocks.MockProfileRepository)
	client := new(mocks.MockLichessClient)
	svc := services.NewProfileService(repo, client, 24*time.Hour)

	cached := &models.Profile{
		ID:            7,
		Username:      "alice",
		Bio:           "old bio",
		TotalGames:    100,
		LastRefreshed: time.Now().Add(-48 * time.Hour),
	}
	repo.On("GetByUsername", mock.Anything, "alice").Return(cached, nil)
	client.On("FetchProfile", mock.Anything, "alice").
		Return(&models.Profile{Username: "alice", TotalGames: 120}, nil)
	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(p models.Profile) bool {
		// Counts refresh, but an absent bio keeps the cached value.
		return p.TotalGames == 120 && p.Bio == "old bio" && !p.LastRefreshed.IsZero()
	})).Return(&models.Profile{ID: 7, Username: "alice", TotalGames: 120, Bio: "old bio"}, nil)

	profile, err := svc.GetOrRefresh(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 120, profile.TotalGames)
	repo.AssertExpectations(t)
}

func TestProfileService_MissingCacheFetches(t *testing.T) {
	repo := new(mocks.MockProfileRepository)
	client := new(mocks.MockLichessClient)
	svc := services.NewProfileService(repo, client, 0)

	repo.On("GetByUsername", mock.Anything, "alice").Return(nil, nil)
	fresh := &models.Profile{Username: "alice", TotalGames: 50}
	client.On("FetchProfile", mock.Anything, "alice").Return(fresh, nil)
	repo.On("Upsert", mock.Anything, mock.Anything).
		Return(&models.Profile{ID: 1, Username: "alice", TotalGames: 50}, nil)

	profile, err := svc.GetOrRefresh(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.ID)
}

func TestProfileService_StaleServedWhenUpstreamFails(t *testing.T) {
	repo := new(mocks.MockProfileRepository)
	client := new(mocks.MockLichessClient)
	svc := services.NewProfileService(repo, client, 24*time.Hour)

	cached := &models.Profile{Username: "alice", TotalGames: 100, LastRefreshed: time.Now().Add(-48 * time.Hour)}
	repo.On("GetByUsername", mock.Anything, "alice").Return(cached, nil)
	client.On("FetchProfile", mock.Anything, "alice").Return(nil, errors.New("503"))

	profile, err := svc.GetOrRefresh(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 100, profile.TotalGames)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestProfileService_NoCacheAndUpstreamDown(t *testing.T) {
	repo := new(mocks.MockProfileRepository)
	client := new(mocks.MockLichessClient)
	svc := services.NewProfileService(repo, client, 24*time.Hour)

	repo.On("GetByUsername", mock.Anything, "alice").Return(nil, nil)
	client.On("FetchProfile", mock.Anything, "alice").Return(nil, errors.New("503"))

	_, err := svc.GetOrRefresh(context.Background(), "alice")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeUpstream, appErr.Code)
}

func TestProfileService_UnknownUser(t *testing.T) {
	repo := new(mocks.MockProfileRepository)
	client := new(mocks.MockLichessClient)
	svc := services.NewProfileService(repo, client, 24*time.Hour)

	repo.On("GetByUsername", mock.Anything, "ghost").Return(nil, nil)
	client.On("FetchProfile", mock.Anything, "ghost").
		Return(nil, apperrors.NewNotFoundError("user", "ghost"))

	_, err := svc.GetOrRefresh(context.Background(), "ghost")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}

func TestProfileService_EmptyUsername(t *testing.T) {
	svc := services.NewProfileService(new(mocks.MockProfileRepository), new(mocks.MockLichessClient), 0)
	_, err := svc.GetOrRefresh(context.Background(), "   ")
	assert.Error(t, err)
}
