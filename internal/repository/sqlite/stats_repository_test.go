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

type StatsRepositorySuite struct {
	suite.Suite
	db    *db.DB
	stats repository.StatsRepository
	games repository.GameRepository
}

func (s *StatsRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.stats = sqlite.NewStatsRepository(s.db.DB)
	s.games = sqlite.NewGameRepository(s.db.DB)

	sessions := sqlite.NewSessionRepository(s.db.DB)
	s.Require().NoError(sessions.Create(context.Background(), models.ImportSession{
		ID:        "sess-1",
		Username:  "alice",
		Status:    models.SessionCompleted,
		StartedAt: time.Now().UTC(),
	}))
}

func (s *StatsRepositorySuite) seed(games ...models.Game) {
	for i := range games {
		games[i].Username = "alice"
		games[i].SessionID = "sess-1"
		games[i].ImportedAt = time.Now().UTC()
	}
	_, err := s.games.InsertBatch(context.Background(), games)
	s.Require().NoError(err)
}

func (s *StatsRepositorySuite) TestSummary_NoGames() {
	got, err := s.stats.Summary(context.Background(), "alice")
	s.Require().NoError(err)
	s.Assert().Zero(got.TotalGames)
	s.Assert().Zero(got.WinRate)
	s.Assert().Zero(got.DrawRate)
}

func (s *StatsRepositorySuite) TestSummary() {
	s.seed(
		models.Game{LichessID: "g1", Result: "win", PlayedAs: "white", Perf: "blitz"},
		models.Game{LichessID: "g2", Result: "win", PlayedAs: "white", Perf: "blitz"},
		models.Game{LichessID: "g3", Result: "loss", PlayedAs: "black", Perf: "blitz"},
		models.Game{LichessID: "g4", Result: "draw", PlayedAs: "black", Perf: "rapid"},
	)

	got, err := s.stats.Summary(context.Background(), "alice")
	s.Require().NoError(err)
	s.Assert().Equal(4, got.TotalGames)
	s.Assert().Equal(2, got.Wins)
	s.Assert().Equal(1, got.Losses)
	s.Assert().Equal(1, got.Draws)
	s.Assert().InDelta(50.0, got.WinRate, 0.001)
	s.Assert().InDelta(25.0, got.DrawRate, 0.001)
}

func (s *StatsRepositorySuite) TestPerfTypeStats() {
	s.seed(
		models.Game{LichessID: "g1", Result: "win", Perf: "blitz"},
		models.Game{LichessID: "g2", Result: "loss", Perf: "blitz"},
		models.Game{LichessID: "g3", Result: "win", Perf: "rapid"},
	)

	stats, err := s.stats.PerfTypeStats(context.Background(), "alice")
	s.Require().NoError(err)
	s.Require().Len(stats, 2)
	s.Assert().Equal("blitz", stats[0].Perf)
	s.Assert().Equal(2, stats[0].TotalGames)
	s.Assert().InDelta(50.0, stats[0].WinRate, 0.001)
}

func (s *StatsRepositorySuite) TestColorStats_SkipsUnknownSide() {
	s.seed(
		models.Game{LichessID: "g1", Result: "win", PlayedAs: "white"},
		models.Game{LichessID: "g2", Result: "loss", PlayedAs: "black"},
		models.Game{LichessID: "g3", Result: ""},
	)

	stats, err := s.stats.ColorStats(context.Background(), "alice")
	s.Require().NoError(err)
	s.Require().Len(stats, 2)
	s.Assert().Equal("black", stats[0].PlayedAs)
	s.Assert().Equal("white", stats[1].PlayedAs)
}

func (s *StatsRepositorySuite) TestOpeningStats() {
	s.seed(
		models.Game{LichessID: "g1", Result: "win", ECOCode: "B20", OpeningName: "Sicilian Defense"},
		models.Game{LichessID: "g2", Result: "loss", ECOCode: "B20", OpeningName: "Sicilian Defense"},
		models.Game{LichessID: "g3", Result: "win", ECOCode: "C50", OpeningName: "Italian Game"},
		models.Game{LichessID: "g4", Result: "win"},
	)

	stats, err := s.stats.OpeningStats(context.Background(), "alice", 10)
	s.Require().NoError(err)
	s.Require().Len(stats, 2)
	s.Assert().Equal("Sicilian Defense", stats[0].OpeningName)
	s.Assert().Equal(2, stats[0].TotalGames)
	s.Assert().InDelta(50.0, stats[0].WinRate, 0.001)
}

func (s *StatsRepositorySuite) TestOpponentStats() {
	s.seed(
		models.Game{LichessID: "g1", Result: "win", Opponent: "bob", OpponentRating: 1400},
		models.Game{LichessID: "g2", Result: "win", Opponent: "bob", OpponentRating: 1500},
		models.Game{LichessID: "g3", Result: "loss", Opponent: "carol", OpponentRating: 1700},
	)

	stats, err := s.stats.OpponentStats(context.Background(), "alice", 1)
	s.Require().NoError(err)
	s.Require().Len(stats, 1)
	s.Assert().Equal("bob", stats[0].Opponent)
	s.Assert().Equal(2, stats[0].TotalGames)
	s.Assert().InDelta(1450.0, stats[0].AvgOpponentRating, 0.001)
	s.Assert().InDelta(100.0, stats[0].WinRate, 0.001)
}

func (s *StatsRepositorySuite) TestResultStats() {
	s.seed(
		models.Game{LichessID: "g1", Result: "win"},
		models.Game{LichessID: "g2", Result: "win"},
		models.Game{LichessID: "g3", Result: "draw"},
	)

	stats, err := s.stats.ResultStats(context.Background(), "alice")
	s.Require().NoError(err)
	s.Require().Len(stats, 2)
	s.Assert().Equal("win", stats[0].Result)
	s.Assert().Equal(2, stats[0].Count)
}

func TestStatsRepositorySuite(t *testing.T) {
	suite.Run(t, new(StatsRepositorySuite))
}
