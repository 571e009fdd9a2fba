package lichess

import (
	"context"

	"github.com/vytor/chessvault/internal/models"
)

// ClientInterface defines the interface for Lichess API operations.
// This interface enables testability by allowing mock implementations.
type ClientInterface interface {
	StreamGames(ctx context.Context, req GamesRequest) (*GameStream, error)
	FetchProfile(ctx context.Context, username string) (*models.Profile, error)
}

// Ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)
