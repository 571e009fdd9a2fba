package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vytor/chessvault/internal/models"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueImport(session models.ImportSession, req models.ImportRequest, cancelCtx context.Context, done func()) error {
	args := m.Called(session, req, cancelCtx, done)
	return args.Error(0)
}
