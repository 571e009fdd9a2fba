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

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

const sessionColumns = `id, username, status, filters, total_found, processed, imported, skipped, errored, error_message, errors, started_at, completed_at`

func scanSession(row rowScanner) (models.ImportSession, error) {
	var s models.ImportSession
	var filtersJSON, errorsJSON string
	var completedAt sql.NullTime
	err := row.Scan(
		&s.ID, &s.Username, &s.Status, &filtersJSON,
		&s.TotalFound, &s.Processed, &s.Imported, &s.Skipped, &s.Errored,
		&s.ErrorMsg, &errorsJSON, &s.StartedAt, &completedAt,
	)
	if err != nil {
		return s, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		s.CompletedAt = &t
	}
	// Stored as JSON text; a corrupt blob just leaves the field empty.
	_ = json.Unmarshal([]byte(filtersJSON), &s.Filters)
	_ = json.Unmarshal([]byte(errorsJSON), &s.Errors)
	return s, nil
}

func (r *sessionRepository) Create(ctx context.Context, s models.ImportSession) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("creating session: id=%s, username=%s", s.ID, s.Username)

	filtersJSON, err := json.Marshal(s.Filters)
	if err != nil {
		return err
	}
	errorsJSON, err := json.Marshal(s.Errors)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO import_sessions (id, username, status, filters, total_found, processed, imported, skipped, errored, error_message, errors, started_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, s.ID, s.Username, s.Status, string(filtersJSON), s.TotalFound, s.Processed, s.Imported, s.Skipped, s.Errored, s.ErrorMsg, string(errorsJSON), s.StartedAt)
	if err != nil {
		log.Error("failed to create session: %v", err)
	}
	return err
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*models.ImportSession, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	s, err := scanSession(r.db.QueryRowContext(ctx, `
SELECT `+sessionColumns+`
FROM import_sessions
WHERE id = ?
`, id))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("session not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) History(ctx context.Context, username string, limit int) ([]models.ImportSession, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("listing session history: username=%s, limit=%d", username, limit)

	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+sessionColumns+`
FROM import_sessions
WHERE username = ?
ORDER BY started_at DESC
LIMIT ?
`, username, limit)
	if err != nil {
		log.Error("failed to list sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var sessions []models.ImportSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			log.Error("failed to scan session row: %v", err)
			return nil, err
		}
		sessions = append(sessions, s)
	}
	log.Debug("found %d sessions", len(sessions))
	return sessions, rows.Err()
}

// UpdateProgress checkpoints the session counters. The WHERE clause keeps
// terminal sessions immutable, so a checkpoint racing a cancellation is a
// no-op.
func (r *sessionRepository) UpdateProgress(ctx context.Context, s models.ImportSession) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	errorsJSON, err := json.Marshal(s.Errors)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
UPDATE import_sessions
SET total_found = ?, processed = ?, imported = ?, skipped = ?, errored = ?, errors = ?
WHERE id = ? AND status = 'running'
`, s.TotalFound, s.Processed, s.Imported, s.Skipped, s.Errored, string(errorsJSON), s.ID)
	if err != nil {
		log.Error("failed to checkpoint session %s: %v", s.ID, err)
	}
	return err
}

func (r *sessionRepository) markTerminal(ctx context.Context, id string, status models.SessionStatus, message string) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	res, err := r.db.ExecContext(ctx, `
UPDATE import_sessions
SET status = ?, error_message = ?, completed_at = CURRENT_TIMESTAMP
WHERE id = ? AND status = 'running'
`, status, message, id)
	if err != nil {
		log.Error("failed to mark session %s as %s: %v", id, status, err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		log.Debug("session %s already terminal, %s not applied", id, status)
		return false, nil
	}
	log.Debug("session %s marked %s", id, status)
	return true, nil
}

func (r *sessionRepository) MarkCompleted(ctx context.Context, id string) (bool, error) {
	return r.markTerminal(ctx, id, models.SessionCompleted, "")
}

func (r *sessionRepository) MarkFailed(ctx context.Context, id string, message string) (bool, error) {
	return r.markTerminal(ctx, id, models.SessionFailed, message)
}

func (r *sessionRepository) MarkCancelled(ctx context.Context, id string) (bool, error) {
	return r.markTerminal(ctx, id, models.SessionCancelled, "")
}
