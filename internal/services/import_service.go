package services

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/vytor/chessvault/internal/errors"
	"github.com/vytor/chessvault/internal/jobs"
	"github.com/vytor/chessvault/internal/lichess"
	"github.com/vytor/chessvault/internal/logger"
	"github.com/vytor/chessvault/internal/models"
	"github.com/vytor/chessvault/internal/repository"
)

const defaultHistoryLimit = 20

// ImportService orchestrates background import sessions: it validates the
// request, creates the session row, hands the work to the job queue and keeps
// a cancel function per running session.
type ImportService struct {
	sessions repository.SessionRepository
	queue    jobs.JobQueue
	log      *logger.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewImportService creates a new ImportService
func NewImportService(sessions repository.SessionRepository, queue jobs.JobQueue) *ImportService {
	return &ImportService{
		sessions: sessions,
		queue:    queue,
		log:      logger.Default().WithPrefix("import_service"),
		cancels:  make(map[string]context.CancelFunc),
	}
}

// Start validates the request, creates a running session and enqueues the
// import job. It returns the created session without waiting for the job.
func (s *ImportService) Start(ctx context.Context, req models.ImportRequest) (*models.ImportSession, error) {
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	// Unknown perf types are dropped silently, not errored.
	req.PerfTypes = lichess.NormalizePerfTypes(req.PerfTypes)
	if err := validateImportRequest(req); err != nil {
		return nil, err
	}

	session := models.ImportSession{
		ID:        uuid.NewString(),
		Username:  req.Username,
		Status:    models.SessionRunning,
		Filters:   requestFilters(req),
		StartedAt: time.Now().UTC(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		s.log.Error("failed to create import session: %v", err)
		return nil, apperrors.NewInternalError(err)
	}

	cancelCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancels[session.ID] = cancel
	s.mu.Unlock()

	done := func() {
		s.mu.Lock()
		if c, ok := s.cancels[session.ID]; ok {
			delete(s.cancels, session.ID)
			c()
		}
		s.mu.Unlock()
	}

	if err := s.queue.EnqueueImport(session, req, cancelCtx, done); err != nil {
		s.log.Error("failed to enqueue import job: %v", err)
		done()
		if _, mErr := s.sessions.MarkFailed(ctx, session.ID, "import queue is full, try again later"); mErr != nil {
			s.log.Error("failed to mark session failed after enqueue error: %v", mErr)
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.log.Info("started import session %s for %s", session.ID, session.Username)
	return &session, nil
}

// Cancel requests cancellation of a running session. It returns true when this
// call performed the running -> cancelled transition, false when the session
// was already terminal. A second cancel of the same session is a no-op.
func (s *ImportService) Cancel(ctx context.Context, id string) (bool, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return false, apperrors.NewInternalError(err)
	}
	if session == nil {
		return false, apperrors.NewNotFoundError("import session", id)
	}
	if session.Status.Terminal() {
		return false, nil
	}

	transitioned, err := s.sessions.MarkCancelled(ctx, id)
	if err != nil {
		return false, apperrors.NewInternalError(err)
	}
	if !transitioned {
		// Lost the race against a natural completion.
		return false, nil
	}

	s.mu.Lock()
	if cancel, ok := s.cancels[id]; ok {
		delete(s.cancels, id)
		cancel()
	}
	s.mu.Unlock()

	s.log.Info("cancelled import session %s", id)
	return true, nil
}

// GetSession returns a session by id.
func (s *ImportService) GetSession(ctx context.Context, id string) (*models.ImportSession, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if session == nil {
		return nil, apperrors.NewNotFoundError("import session", id)
	}
	return session, nil
}

// GetHistory returns a user's sessions, newest first.
func (s *ImportService) GetHistory(ctx context.Context, username string, limit int) ([]models.ImportSession, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperrors.NewValidationError("username is required")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	history, err := s.sessions.History(ctx, username, limit)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return history, nil
}

// validateImportRequest collects every violated rule instead of stopping at
// the first.
func validateImportRequest(req models.ImportRequest) error {
	var violations []string
	if req.Username == "" {
		violations = append(violations, "username is required")
	}
	if req.MaxGames < 0 {
		violations = append(violations, "max_games must be at least 1 when set")
	}
	if req.Since != nil && req.Until != nil && req.Since.After(*req.Until) {
		violations = append(violations, "since must not be after until")
	}
	if req.Color != "" && req.Color != "white" && req.Color != "black" {
		violations = append(violations, "color must be white or black")
	}
	if len(violations) > 0 {
		return apperrors.NewValidationError(violations...)
	}
	return nil
}

// requestFilters records the request's effective filters on the session so
// history entries are self-describing.
func requestFilters(req models.ImportRequest) map[string]string {
	filters := make(map[string]string)
	if req.MaxGames > 0 {
		filters["max_games"] = strconv.Itoa(req.MaxGames)
	}
	if req.Since != nil {
		filters["since"] = req.Since.UTC().Format(time.RFC3339)
	}
	if req.Until != nil {
		filters["until"] = req.Until.UTC().Format(time.RFC3339)
	}
	if len(req.PerfTypes) > 0 {
		filters["perf_types"] = strings.Join(req.PerfTypes, ",")
	}
	if req.Opponent != "" {
		filters["opponent"] = req.Opponent
	}
	if req.Color != "" {
		filters["color"] = req.Color
	}
	if req.RatedOnly {
		filters["rated_only"] = "true"
	}
	if req.AnalyzedOnly {
		filters["analyzed_only"] = "true"
	}
	if req.FinishedOnly {
		filters["finished_only"] = "true"
	}
	return filters
}
