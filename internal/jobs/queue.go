package jobs

import (
	"context"

	"github.com/vytor/chessvault/internal/models"
)

// JobQueue provides an abstraction for enqueueing background jobs. done is
// invoked when the job finishes, whatever the outcome, so the caller can
// release per-session resources.
type JobQueue interface {
	EnqueueImport(session models.ImportSession, req models.ImportRequest, cancelCtx context.Context, done func()) error
}
