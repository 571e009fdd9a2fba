package lichess

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vytor/chessvault/internal/models"
)

// rawGame is the shape of one line of the export stream. Every field is
// optional; absent fields keep their zero values.
type rawGame struct {
	ID         string `json:"id"`
	Rated      bool   `json:"rated"`
	Variant    string `json:"variant"`
	Speed      string `json:"speed"`
	Perf       string `json:"perf"`
	CreatedAt  int64  `json:"createdAt"`
	LastMoveAt int64  `json:"lastMoveAt"`
	Status     string `json:"status"`
	Winner     string `json:"winner"`
	Players    struct {
		White rawPlayer `json:"white"`
		Black rawPlayer `json:"black"`
	} `json:"players"`
	Opening *struct {
		ECO  string `json:"eco"`
		Name string `json:"name"`
		Ply  int    `json:"ply"`
	} `json:"opening"`
	Clock *struct {
		Initial   int `json:"initial"`
		Increment int `json:"increment"`
	} `json:"clock"`
	Moves    string          `json:"moves"`
	PGN      string          `json:"pgn"`
	Analysis json.RawMessage `json:"analysis"`
}

type rawPlayer struct {
	User *struct {
		Name  string `json:"name"`
		Title string `json:"title"`
	} `json:"user"`
	Rating     int `json:"rating"`
	RatingDiff int `json:"ratingDiff"`
}

func (p rawPlayer) name() string {
	if p.User == nil {
		return ""
	}
	return p.User.Name
}

func (p rawPlayer) title() string {
	if p.User == nil {
		return ""
	}
	return p.User.Title
}

// terminationFor translates a game status into a human-readable termination
// reason. Unknown statuses map to the status itself.
func terminationFor(status string) string {
	switch status {
	case "mate":
		return "checkmate"
	case "resign":
		return "resignation"
	case "outoftime":
		return "time forfeit"
	case "timeout":
		return "abandonment"
	case "draw", "stalemate":
		return "draw"
	case "cheat":
		return "rule violation"
	case "aborted":
		return "aborted"
	default:
		return status
	}
}

// MapGame turns one raw stream line into a Game owned by username. Decoding
// is tolerant: a mistyped field falls back to its zero value instead of
// rejecting the whole line. Only a line without a game id is a parse error.
func MapGame(raw []byte, username string) (models.Game, error) {
	var rg rawGame
	if err := json.Unmarshal(raw, &rg); err != nil {
		// UnmarshalTypeError means one field had the wrong type; the rest of
		// the object decoded fine, so keep going with defaults.
		if _, ok := err.(*json.UnmarshalTypeError); !ok {
			return models.Game{}, fmt.Errorf("unmarshal game: %w", err)
		}
	}
	if rg.ID == "" {
		return models.Game{}, fmt.Errorf("game payload missing id")
	}

	username = strings.ToLower(username)
	g := models.Game{
		LichessID:   rg.ID,
		Username:    username,
		Rated:       rg.Rated,
		Variant:     rg.Variant,
		Speed:       rg.Speed,
		Perf:        rg.Perf,
		Status:      rg.Status,
		Winner:      rg.Winner,
		Termination: terminationFor(rg.Status),

		WhiteName:       rg.Players.White.name(),
		WhiteRating:     rg.Players.White.Rating,
		WhiteRatingDiff: rg.Players.White.RatingDiff,
		WhiteTitle:      rg.Players.White.title(),
		BlackName:       rg.Players.Black.name(),
		BlackRating:     rg.Players.Black.Rating,
		BlackRatingDiff: rg.Players.Black.RatingDiff,
		BlackTitle:      rg.Players.Black.title(),

		Moves: rg.Moves,
		PGN:   rg.PGN,
	}

	if rg.CreatedAt > 0 {
		g.PlayedAt = time.UnixMilli(rg.CreatedAt).UTC()
	}
	if rg.LastMoveAt > 0 {
		g.LastMoveAt = time.UnixMilli(rg.LastMoveAt).UTC()
	}
	if rg.Opening != nil {
		g.ECOCode = rg.Opening.ECO
		g.OpeningName = rg.Opening.Name
		g.OpeningPly = rg.Opening.Ply
	}
	if rg.Clock != nil {
		g.ClockInitial = rg.Clock.Initial
		g.ClockIncrement = rg.Clock.Increment
		g.TimeControl = fmt.Sprintf("%d+%d", rg.Clock.Initial, rg.Clock.Increment)
	}
	if rg.Moves != "" {
		g.MoveCount = len(strings.Fields(rg.Moves))
	}
	if len(rg.Analysis) > 0 && string(rg.Analysis) != "null" {
		g.Analysis = string(rg.Analysis)
		g.HasAnalysis = true
	}

	deriveUserFields(&g, username)
	return g, nil
}

// deriveUserFields fills the user-relative fields. When the username matches
// neither side the fields stay unset; that is a data-quality signal, not an
// error.
func deriveUserFields(g *models.Game, username string) {
	isWhite := strings.EqualFold(g.WhiteName, username)
	isBlack := strings.EqualFold(g.BlackName, username)

	switch {
	case isWhite && !isBlack:
		g.PlayedAs = "white"
		g.PlayerRating = g.WhiteRating
		g.PlayerRatingDiff = g.WhiteRatingDiff
		g.Opponent = g.BlackName
		g.OpponentRating = g.BlackRating
	case isBlack && !isWhite:
		g.PlayedAs = "black"
		g.PlayerRating = g.BlackRating
		g.PlayerRatingDiff = g.BlackRatingDiff
		g.Opponent = g.WhiteName
		g.OpponentRating = g.WhiteRating
	default:
		return
	}

	switch g.Winner {
	case "":
		g.Result = "draw"
	case g.PlayedAs:
		g.Result = "win"
	case "white", "black":
		g.Result = "loss"
	default:
		g.Result = "draw"
	}
}
