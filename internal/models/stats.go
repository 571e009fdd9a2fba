package models

type PerfTypeStat struct {
	Perf       string  `json:"perf"`
	TotalGames int     `json:"total_games"`
	Wins       int     `json:"wins"`
	Draws      int     `json:"draws"`
	Losses     int     `json:"losses"`
	WinRate    float64 `json:"win_rate"`
}

type ColorStat struct {
	PlayedAs   string  `json:"played_as"`
	TotalGames int     `json:"total_games"`
	Wins       int     `json:"wins"`
	Draws      int     `json:"draws"`
	Losses     int     `json:"losses"`
	WinRate    float64 `json:"win_rate"`
}

type ResultStat struct {
	Result string `json:"result"`
	Count  int    `json:"count"`
}

type OpeningStat struct {
	OpeningName string  `json:"opening_name"`
	ECOCode     string  `json:"eco_code"`
	TotalGames  int     `json:"total_games"`
	Wins        int     `json:"wins"`
	Draws       int     `json:"draws"`
	Losses      int     `json:"losses"`
	WinRate     float64 `json:"win_rate"`
}

type OpponentStat struct {
	Opponent          string  `json:"opponent"`
	TotalGames        int     `json:"total_games"`
	Wins              int     `json:"wins"`
	Draws             int     `json:"draws"`
	Losses            int     `json:"losses"`
	WinRate           float64 `json:"win_rate"`
	AvgOpponentRating float64 `json:"avg_opponent_rating"`
}

// UserStatistics aggregates everything the stats endpoint reports for one
// username. Rates are percentages and 0 when TotalGames is 0.
type UserStatistics struct {
	Username   string         `json:"username"`
	TotalGames int            `json:"total_games"`
	Wins       int            `json:"wins"`
	Losses     int            `json:"losses"`
	Draws      int            `json:"draws"`
	WinRate    float64        `json:"win_rate"`
	DrawRate   float64        `json:"draw_rate"`
	ByPerfType []PerfTypeStat `json:"by_perf_type"`
	ByColor    []ColorStat    `json:"by_color"`
	ByResult   []ResultStat   `json:"by_result"`
	ByOpening  []OpeningStat  `json:"by_opening"`
	ByOpponent []OpponentStat `json:"by_opponent"`
}
