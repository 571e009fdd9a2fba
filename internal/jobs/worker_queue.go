package jobs

import (
	"context"

	"github.com/vytor/chessvault/internal/lichess"
	"github.com/vytor/chessvault/internal/models"
	"github.com/vytor/chessvault/internal/repository"
	"github.com/vytor/chessvault/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool. Each enqueued job
// carries its own repository handles and API client, so it keeps running
// after the request that created it has finished.
type WorkerQueue struct {
	importPool  *worker.Pool
	gameRepo    repository.GameRepository
	sessionRepo repository.SessionRepository
	client      lichess.ClientInterface
	batchSize   int
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(
	importPool *worker.Pool,
	gameRepo repository.GameRepository,
	sessionRepo repository.SessionRepository,
	client lichess.ClientInterface,
	batchSize int,
) JobQueue {
	return &WorkerQueue{
		importPool:  importPool,
		gameRepo:    gameRepo,
		sessionRepo: sessionRepo,
		client:      client,
		batchSize:   batchSize,
	}
}

func (q *WorkerQueue) EnqueueImport(session models.ImportSession, req models.ImportRequest, cancelCtx context.Context, done func()) error {
	return q.importPool.Submit(&worker.ImportGamesJob{
		Games:     q.gameRepo,
		Sessions:  q.sessionRepo,
		Client:    q.client,
		Session:   session,
		Request:   req,
		BatchSize: q.batchSize,
		CancelCtx: cancelCtx,
		Done:      done,
	})
}
