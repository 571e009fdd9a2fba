package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/vytor/chessvault/internal/lichess"
	"github.com/vytor/chessvault/internal/logger"
	"github.com/vytor/chessvault/internal/models"
	"github.com/vytor/chessvault/internal/repository"
)

const (
	defaultBatchSize = 50
	checkpointEvery  = 100
	maxStoredErrors  = 100
)

// ImportGamesJob streams a user's games from the export API, deduplicates
// them against the store, and persists them in batches while checkpointing
// the owning session's counters.
type ImportGamesJob struct {
	Games    repository.GameRepository
	Sessions repository.SessionRepository
	Client   lichess.ClientInterface
	Session  models.ImportSession
	Request  models.ImportRequest

	// BatchSize bounds how many games are staged before a flush; 0 means the
	// default.
	BatchSize int

	// CancelCtx is the session-scoped cancellation signal set up by the
	// orchestrator. The job polls it between lines, never mid-request.
	CancelCtx context.Context

	// Done is called once the job finishes, whatever the outcome.
	Done func()
}

func (j *ImportGamesJob) Name() string { return "import_games" }

func (j *ImportGamesJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"session_id": j.Session.ID,
		"username":   j.Session.Username,
	})
	log.Info("starting background import")

	if j.Done != nil {
		defer j.Done()
	}

	if j.CancelCtx != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		stop := context.AfterFunc(j.CancelCtx, cancel)
		defer stop()
	}

	batchSize := j.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	s := j.Session

	// total-found comes from the profile's game count; a failed lookup just
	// leaves it unknown.
	if profile, err := j.Client.FetchProfile(ctx, s.Username); err != nil {
		log.Warn("failed to fetch profile for total count: %v", err)
	} else {
		s.TotalFound = profile.TotalGames
		j.checkpoint(ctx, log, &s)
	}

	stream, err := j.Client.StreamGames(ctx, j.gamesRequest())
	if err != nil {
		log.Error("failed to open game stream: %v", err)
		j.fail(ctx, log, &s, fmt.Sprintf("fetching games from upstream: %v", err))
		return err
	}
	defer stream.Close()

	batch := make([]models.Game, 0, batchSize)
	flush := func(flushCtx context.Context) error {
		if len(batch) == 0 {
			return nil
		}
		inserted, err := j.Games.InsertBatch(flushCtx, batch)
		if err != nil {
			return err
		}
		s.Imported += inserted
		// Rows lost to the insert-or-ignore conflict were imported by a
		// concurrent session between our dedup check and this flush.
		s.Skipped += len(batch) - inserted
		batch = batch[:0]
		j.checkpoint(flushCtx, log, &s)
		return nil
	}

	cancelled := false
	for {
		if ctx.Err() != nil {
			log.Info("import cancelled after %d processed", s.Processed)
			cancelled = true
			break
		}
		if j.Request.MaxGames > 0 && s.Processed >= j.Request.MaxGames {
			log.Debug("reached max games limit of %d", j.Request.MaxGames)
			break
		}

		raw, ok := stream.Next()
		if !ok {
			break
		}

		s.Processed++
		game, err := lichess.MapGame(raw, s.Username)
		if err != nil {
			s.Errored++
			j.recordError(&s, err)
			continue
		}

		exists, err := j.Games.ExistsByLichessID(ctx, game.LichessID)
		if err != nil {
			s.Errored++
			j.recordError(&s, fmt.Errorf("dedup check for %s: %w", game.LichessID, err))
			continue
		}
		if exists {
			s.Skipped++
		} else {
			game.SessionID = s.ID
			game.ImportedAt = time.Now().UTC()
			batch = append(batch, game)
			if len(batch) >= batchSize {
				if err := flush(ctx); err != nil {
					log.Error("failed to flush batch: %v", err)
					j.fail(ctx, log, &s, fmt.Sprintf("persisting games: %v", err))
					return err
				}
			}
		}

		if s.Processed%checkpointEvery == 0 {
			j.checkpoint(ctx, log, &s)
		}
	}

	// Final writes still happen when the session context is cancelled; an
	// already-staged batch is committed, never rolled back.
	finalCtx := context.WithoutCancel(ctx)

	if err := stream.Err(); err != nil && !cancelled {
		log.Error("game stream failed mid-read: %v", err)
		_ = flush(finalCtx)
		j.fail(finalCtx, log, &s, fmt.Sprintf("reading game stream: %v", err))
		return err
	}

	if err := flush(finalCtx); err != nil {
		log.Error("failed to flush final batch: %v", err)
		j.fail(finalCtx, log, &s, fmt.Sprintf("persisting games: %v", err))
		return err
	}
	j.checkpoint(finalCtx, log, &s)

	if cancelled {
		// Usually already done by the orchestrator; harmless if so.
		if _, err := j.Sessions.MarkCancelled(finalCtx, s.ID); err != nil {
			log.Error("failed to record cancellation: %v", err)
		}
		return ctx.Err()
	}

	if _, err := j.Sessions.MarkCompleted(finalCtx, s.ID); err != nil {
		log.Error("failed to mark session completed: %v", err)
		return err
	}
	log.Info("import finished: processed=%d imported=%d skipped=%d errored=%d",
		s.Processed, s.Imported, s.Skipped, s.Errored)
	return nil
}

func (j *ImportGamesJob) gamesRequest() lichess.GamesRequest {
	req := j.Request
	return lichess.GamesRequest{
		Username:        j.Session.Username,
		MaxGames:        req.MaxGames,
		Since:           req.Since,
		Until:           req.Until,
		PerfTypes:       req.PerfTypes,
		Opponent:        req.Opponent,
		Color:           req.Color,
		RatedOnly:       req.RatedOnly,
		AnalyzedOnly:    req.AnalyzedOnly,
		FinishedOnly:    req.FinishedOnly,
		IncludeAnalysis: req.IncludeAnalysis,
		IncludePGN:      req.IncludePGN,
	}
}

func (j *ImportGamesJob) recordError(s *models.ImportSession, err error) {
	if len(s.Errors) < maxStoredErrors {
		s.Errors = append(s.Errors, err.Error())
	}
}

func (j *ImportGamesJob) checkpoint(ctx context.Context, log *logger.Logger, s *models.ImportSession) {
	if err := j.Sessions.UpdateProgress(ctx, *s); err != nil {
		log.Warn("failed to checkpoint session progress: %v", err)
	}
}

// fail records the terminal failure. If even that write fails there is
// nothing left to do but log it.
func (j *ImportGamesJob) fail(ctx context.Context, log *logger.Logger, s *models.ImportSession, message string) {
	ctx = context.WithoutCancel(ctx)
	j.checkpoint(ctx, log, s)
	if _, err := j.Sessions.MarkFailed(ctx, s.ID, message); err != nil {
		log.Error("failed to mark session failed: %v", err)
	}
}
