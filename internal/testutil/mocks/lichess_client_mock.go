package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vytor/chessvault/internal/lichess"
	"github.com/vytor/chessvault/internal/models"
)

// MockLichessClient is a mock implementation of lichess.ClientInterface
type MockLichessClient struct {
	mock.Mock
}

func (m *MockLichessClient) StreamGames(ctx context.Context, req lichess.GamesRequest) (*lichess.GameStream, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lichess.GameStream), args.Error(1)
}

func (m *MockLichessClient) FetchProfile(ctx context.Context, username string) (*models.Profile, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}
