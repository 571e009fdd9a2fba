package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/vytor/chessvault/internal/db"
	"github.com/vytor/chessvault/internal/models"
	"github.com/vytor/chessvault/internal/repository"
	"github.com/vytor/chessvault/internal/repository/sqlite"
	"github.com/vytor/chessvault/internal/testutil"
)

type ProfileRepositorySuite struct {
	suite.Suite
	db   *db.DB
	repo repository.ProfileRepository
}

func (s *ProfileRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewProfileRepository(s.db.DB)
}

func (s *ProfileRepositorySuite) TestGetByUsername_Missing() {
	got, err := s.repo.GetByUsername(context.Background(), "nobody")
	s.Require().NoError(err)
	s.Assert().Nil(got)
}

func (s *ProfileRepositorySuite) TestUpsert_InsertThenUpdate() {
	now := time.Now().UTC().Truncate(time.Second)
	created, err := s.repo.Upsert(context.Background(), models.Profile{
		Username:      "alice",
		DisplayName:   "Alice",
		Title:         "FM",
		TotalGames:    100,
		Perfs:         map[string]models.PerfRating{"blitz": {Rating: 1800, Games: 50}},
		LastRefreshed: now,
	})
	s.Require().NoError(err)
	s.Assert().Greater(created.ID, int64(0))
	s.Assert().Equal(1800, created.Perfs["blitz"].Rating)

	updated, err := s.repo.Upsert(context.Background(), models.Profile{
		Username:      "alice",
		DisplayName:   "Alice",
		Title:         "IM",
		TotalGames:    150,
		LastRefreshed: now.Add(time.Hour),
	})
	s.Require().NoError(err)

	// Same row, refreshed fields.
	s.Assert().Equal(created.ID, updated.ID)
	s.Assert().Equal("IM", updated.Title)
	s.Assert().Equal(150, updated.TotalGames)

	got, err := s.repo.GetByUsername(context.Background(), "alice")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Assert().Equal(150, got.TotalGames)
}

func TestProfileRepositorySuite(t *testing.T) {
	suite.Run(t, new(ProfileRepositorySuite))
}
