package lichess_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/chessvault/internal/lichess"
)

const sampleGame = `{
	"id": "q7ZvsdUF",
	"rated": true,
	"variant": "standard",
	"speed": "blitz",
	"perf": "blitz",
	"createdAt": 1514505150384,
	"lastMoveAt": 1514505592843,
	"status": "draw",
	"players": {
		"white": {"user": {"name": "Alice", "title": "FM"}, "rating": 1610, "ratingDiff": 2},
		"black": {"user": {"name": "Bob"}, "rating": 1601, "ratingDiff": -2}
	},
	"opening": {"eco": "B20", "name": "Sicilian Defense", "ply": 2},
	"clock": {"initial": 300, "increment": 3},
	"moves": "e4 c5 Nf3 d6 d4 cxd4"
}`

func TestMapGame_Basic(t *testing.T) {
	g, err := lichess.MapGame([]byte(sampleGame), "alice")
	require.NoError(t, err)

	assert.Equal(t, "q7ZvsdUF", g.LichessID)
	assert.Equal(t, "alice", g.Username)
	assert.True(t, g.Rated)
	assert.Equal(t, "blitz", g.Perf)
	assert.Equal(t, "Alice", g.WhiteName)
	assert.Equal(t, "FM", g.WhiteTitle)
	assert.Equal(t, "B20", g.ECOCode)
	assert.Equal(t, "Sicilian Defense", g.OpeningName)
	assert.Equal(t, "300+3", g.TimeControl)
	assert.Equal(t, 6, g.MoveCount)
	assert.Equal(t, "draw", g.Termination)
	assert.Equal(t, time.UnixMilli(1514505150384).UTC(), g.PlayedAt)
}

func TestMapGame_UserRelativeFields(t *testing.T) {
	cases := []struct {
		name         string
		username     string
		winner       string
		wantPlayedAs string
		wantResult   string
		wantOpponent string
	}{
		{"white wins as white", "alice", "white", "white", "win", "Bob"},
		{"white loses as white", "alice", "black", "white", "loss", "Bob"},
		{"black wins as black", "bob", "black", "black", "win", "Alice"},
		{"black loses as black", "bob", "white", "black", "loss", "Alice"},
		{"draw as white", "alice", "", "white", "draw", "Bob"},
		{"draw as black", "bob", "", "black", "draw", "Alice"},
		{"case insensitive match", "ALICE", "white", "white", "win", "Bob"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := `{"id": "abc", "status": "resign", "winner": "` + tc.winner + `",
				"players": {
					"white": {"user": {"name": "Alice"}, "rating": 1500},
					"black": {"user": {"name": "Bob"}, "rating": 1400}
				}}`
			if tc.winner == "" {
				raw = `{"id": "abc", "status": "draw",
					"players": {
						"white": {"user": {"name": "Alice"}, "rating": 1500},
						"black": {"user": {"name": "Bob"}, "rating": 1400}
					}}`
			}
			g, err := lichess.MapGame([]byte(raw), tc.username)
			require.NoError(t, err)
			assert.Equal(t, tc.wantPlayedAs, g.PlayedAs)
			assert.Equal(t, tc.wantResult, g.Result)
			assert.Equal(t, tc.wantOpponent, g.Opponent)
		})
	}
}

func TestMapGame_UsernameMatchesNeitherSide(t *testing.T) {
	raw := `{"id": "abc", "status": "mate", "winner": "white",
		"players": {
			"white": {"user": {"name": "Alice"}},
			"black": {"user": {"name": "Bob"}}
		}}`
	g, err := lichess.MapGame([]byte(raw), "charlie")
	require.NoError(t, err)

	assert.Empty(t, g.PlayedAs)
	assert.Empty(t, g.Result)
	assert.Empty(t, g.Opponent)
	assert.Equal(t, "charlie", g.Username)
}

func TestMapGame_TolerantDecode(t *testing.T) {
	// rated has the wrong type; the line should still import with the field
	// zeroed rather than be rejected.
	raw := `{"id": "xyz", "rated": "yes", "perf": "bullet",
		"players": {"white": {"user": {"name": "Alice"}}, "black": {"user": {"name": "Bob"}}}}`
	g, err := lichess.MapGame([]byte(raw), "alice")
	require.NoError(t, err)
	assert.Equal(t, "xyz", g.LichessID)
	assert.False(t, g.Rated)
}

func TestMapGame_MissingID(t *testing.T) {
	_, err := lichess.MapGame([]byte(`{"rated": true}`), "alice")
	assert.Error(t, err)
}

func TestMapGame_MalformedJSON(t *testing.T) {
	_, err := lichess.MapGame([]byte(`{not json`), "alice")
	assert.Error(t, err)
}

func TestMapGame_AnonymousPlayer(t *testing.T) {
	raw := `{"id": "anon1", "status": "outoftime", "winner": "white",
		"players": {"white": {"user": {"name": "Alice"}, "rating": 1500}, "black": {"rating": 1400}}}`
	g, err := lichess.MapGame([]byte(raw), "alice")
	require.NoError(t, err)
	assert.Equal(t, "white", g.PlayedAs)
	assert.Equal(t, "win", g.Result)
	assert.Empty(t, g.Opponent)
	assert.Equal(t, 1400, g.OpponentRating)
	assert.Equal(t, "time forfeit", g.Termination)
}

func TestMapGame_NoClockMeansNoTimeControl(t *testing.T) {
	raw := `{"id": "corr1", "speed": "correspondence",
		"players": {"white": {"user": {"name": "Alice"}}, "black": {"user": {"name": "Bob"}}}}`
	g, err := lichess.MapGame([]byte(raw), "alice")
	require.NoError(t, err)
	assert.Empty(t, g.TimeControl)
	assert.Zero(t, g.ClockInitial)
}

func TestMapGame_Analysis(t *testing.T) {
	raw := `{"id": "an1", "analysis": [{"eval": 15}, {"eval": -20}],
		"players": {"white": {"user": {"name": "Alice"}}, "black": {"user": {"name": "Bob"}}}}`
	g, err := lichess.MapGame([]byte(raw), "alice")
	require.NoError(t, err)
	assert.True(t, g.HasAnalysis)
	assert.Contains(t, g.Analysis, `"eval":`)

	raw = `{"id": "an2", "analysis": null,
		"players": {"white": {"user": {"name": "Alice"}}, "black": {"user": {"name": "Bob"}}}}`
	g, err = lichess.MapGame([]byte(raw), "alice")
	require.NoError(t, err)
	assert.False(t, g.HasAnalysis)
}
