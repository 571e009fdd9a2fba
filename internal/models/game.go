package models

import "time"

type Game struct {
	ID         int64  `json:"id"`
	LichessID  string `json:"lichess_id"`
	Username   string `json:"username"`
	SessionID  string `json:"session_id"`
	Rated      bool   `json:"rated"`
	Variant    string `json:"variant"`
	Speed      string `json:"speed"`
	Perf       string `json:"perf"`
	Status     string `json:"status"`
	Winner     string `json:"winner"`
	Termination string `json:"termination"`

	WhiteName       string `json:"white_name"`
	WhiteRating     int    `json:"white_rating"`
	WhiteRatingDiff int    `json:"white_rating_diff"`
	WhiteTitle      string `json:"white_title"`
	BlackName       string `json:"black_name"`
	BlackRating     int    `json:"black_rating"`
	BlackRatingDiff int    `json:"black_rating_diff"`
	BlackTitle      string `json:"black_title"`

	// User-relative fields, derived from the requesting username. PlayedAs is
	// empty when the username matched neither side.
	PlayedAs         string `json:"played_as"`
	Result           string `json:"result"`
	PlayerRating     int    `json:"player_rating"`
	PlayerRatingDiff int    `json:"player_rating_diff"`
	Opponent         string `json:"opponent"`
	OpponentRating   int    `json:"opponent_rating"`

	ECOCode     string `json:"eco_code"`
	OpeningName string `json:"opening_name"`
	OpeningPly  int    `json:"opening_ply"`

	ClockInitial   int    `json:"clock_initial"`
	ClockIncrement int    `json:"clock_increment"`
	TimeControl    string `json:"time_control"`

	Moves       string `json:"moves"`
	MoveCount   int    `json:"move_count"`
	PGN         string `json:"pgn"`
	Analysis    string `json:"analysis,omitempty"`
	HasAnalysis bool   `json:"has_analysis"`

	PlayedAt   time.Time `json:"played_at"`
	LastMoveAt time.Time `json:"last_move_at"`
	ImportedAt time.Time `json:"imported_at"`
}

// Sort keys accepted by GameFilter. Anything else falls back to SortByDate.
const (
	SortByDate        = "date"
	SortByOpponent    = "opponent"
	SortByResult      = "result"
	SortByColor       = "color"
	SortByRating      = "rating"
	SortByTimeControl = "time_control"
	SortByOpening     = "opening"
	SortByMoveCount   = "move_count"
)

// GameFilter describes the search surface over imported games. All predicates
// are optional and combined with AND. Page is 1-indexed.
type GameFilter struct {
	Username    string
	Opponent    string // substring match
	OpeningName string // substring match
	ECOCode     string
	Result      string
	PlayedAs    string
	PerfTypes   []string
	DateFrom    *time.Time
	DateTo      *time.Time
	MinRating   int
	MaxRating   int
	Rated       *bool
	HasAnalysis *bool
	Status      string
	MinMoves    int
	MaxMoves    int
	SortBy      string
	SortDesc    bool
	Page        int
	PageSize    int
}

// Offset converts the 1-indexed page into a row offset.
func (f GameFilter) Offset() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.Limit()
}

func (f GameFilter) Limit() int {
	if f.PageSize <= 0 {
		return 50
	}
	return f.PageSize
}
