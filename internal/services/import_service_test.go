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

func TestImportServiceStart(t *testing.T) {
	sessions := new(mocks.MockSessionRepository)
	queue := new(mocks.MockJobQueue)
	svc := services.NewImportService(sessions, queue)

	sessions.On("Create", mock.Anything, mock.MatchedBy(func(s models.ImportSession) bool {
		return s.Username == "alice" && s.Status == models.SessionRunning && s.ID != ""
	})).Return(nil)
	queue.On("EnqueueImport", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	session, err := svc.Start(context.Background(), models.ImportRequest{Username: "  Alice  ", MaxGames: 100})
	require.NoError(t, err)

	assert.Equal(t, "alice", session.Username)
	assert.Equal(t, models.SessionRunning, session.Status)
	assert.Equal(t, "100", session.Filters["max_games"])
	sessions.AssertExpectations(t)
	queue.AssertExpectations(t)
}

func TestImportServiceStart_ValidationCollectsAllViolations(t *testing.T) {
	svc := services.NewImportService(new(mocks.MockSessionRepository), new(mocks.MockJobQueue))

	since := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Start(context.Background(), models.ImportRequest{
		Username: "",
		MaxGames: -1,
		Since:    &since,
		Until:    &until,
		Color:    "green",
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
	assert.Len(t, appErr.Violations, 4)
}

func TestImportServiceStart_UnknownPerfTypesDroppedSilently(t *testing.T) {
	sessions := new(mocks.MockSessionRepository)
	queue := new(mocks.MockJobQueue)
	svc := services.NewImportService(sessions, queue)

	sessions.On("Create", mock.Anything, mock.Anything).Return(nil)
	queue.On("EnqueueImport", mock.MatchedBy(func(s models.ImportSession) bool {
		return s.Filters["perf_types"] == "bullet"
	}), mock.MatchedBy(func(req models.ImportRequest) bool {
		return len(req.PerfTypes) == 1 && req.PerfTypes[0] == "bullet"
	}), mock.Anything, mock.Anything).Return(nil)

	session, err := svc.Start(context.Background(), models.ImportRequest{
		Username:  "alice",
		PerfTypes: []string{"bullet", "ultraBullet"},
	})
	require.NoError(t, err)
	assert.Equal(t, "bullet", session.Filters["perf_types"])
	queue.AssertExpectations(t)
}

func TestImportServiceStart_EnqueueFailureMarksFailed(t *testing.T) {
	sessions := new(mocks.MockSessionRepository)
	queue := new(mocks.MockJobQueue)
	svc := services.NewImportService(sessions, queue)

	sessions.On("Create", mock.Anything, mock.Anything).Return(nil)
	queue.On("EnqueueImport", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("job queue full"))
	sessions.On("MarkFailed", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

	_, err := svc.Start(context.Background(), models.ImportRequest{Username: "alice"})
	require.Error(t, err)
	sessions.AssertExpectations(t)
}

func TestImportServiceCancel(t *testing.T) {
	sessions := new(mocks.MockSessionRepository)
	svc := services.NewImportService(sessions, new(mocks.MockJobQueue))

	running := &models.ImportSession{ID: "s1", Status: models.SessionRunning}
	sessions.On("Get", mock.Anything, "s1").Return(running, nil)
	sessions.On("MarkCancelled", mock.Anything, "s1").Return(true, nil)

	cancelled, err := svc.Cancel(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, cancelled)
}

func TestImportServiceCancel_AlreadyTerminal(t *testing.T) {
	sessions := new(mocks.MockSessionRepository)
	svc := services.NewImportService(sessions, new(mocks.MockJobQueue))

	done := &models.ImportSession{ID: "s1", Status: models.SessionCompleted}
	sessions.On("Get", mock.Anything, "s1").Return(done, nil)

	cancelled, err := svc.Cancel(context.Background(), "s1")
	require.NoError(t, err)
	assert.False(t, cancelled)
	sessions.AssertNotCalled(t, "MarkCancelled", mock.Anything, mock.Anything)
}

func TestImportServiceCancel_LosesRaceToCompletion(t *testing.T) {
	sessions := new(mocks.MockSessionRepository)
	svc := services.NewImportService(sessions, new(mocks.MockJobQueue))

	running := &models.ImportSession{ID: "s1", Status: models.SessionRunning}
	sessions.On("Get", mock.Anything, "s1").Return(running, nil)
	// The job finished between our read and the conditional update.
	sessions.On("MarkCancelled", mock.Anything, "s1").Return(false, nil)

	cancelled, err := svc.Cancel(context.Background(), "s1")
	require.NoError(t, err)
	assert.False(t, cancelled)
}

func TestImportServiceCancel_NotFound(t *testing.T) {
	sessions := new(mocks.MockSessionRepository)
	svc := services.NewImportService(sessions, new(mocks.MockJobQueue))

	sessions.On("Get", mock.Anything, "missing").Return(nil, nil)

	_, err := svc.Cancel(context.Background(), "missing")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}

func TestImportServiceGetSession_NotFound(t *testing.T) {
	sessions := new(mocks.MockSessionRepository)
	svc := services.NewImportService(sessions, new(mocks.MockJobQueue))

	sessions.On("Get", mock.Anything, "missing").Return(nil, nil)

	_, err := svc.GetSession(context.Background(), "missing")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}

func TestImportServiceGetHistory(t *testing.T) {
	sessions := new(mocks.MockSessionRepository)
	svc := services.NewImportService(sessions, new(mocks.MockJobQueue))

	sessions.On("History", mock.Anything, "alice", 20).
		Return([]models.ImportSession{{ID: "s1"}, {ID: "s2"}}, nil)

	history, err := svc.GetHistory(context.Background(), "Alice", 0)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	_, err = svc.GetHistory(context.Background(), "  ", 10)
	assert.Error(t, err)
}
