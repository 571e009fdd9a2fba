package models

import "time"

// PerfRating is one performance category entry on a profile.
type PerfRating struct {
	Rating      int  `json:"rating"`
	Deviation   int  `json:"rd"`
	Provisional bool `json:"prov"`
	Games       int  `json:"games"`
	Wins        int  `json:"wins"`
	Losses      int  `json:"losses"`
	Draws       int  `json:"draws"`
}

// Profile is a cached copy of a user's public profile. It is refreshed in
// place when older than the staleness threshold; fields absent from a refresh
// response keep their previous values.
type Profile struct {
	ID            int64                 `json:"id"`
	Username      string                `json:"username"`
	DisplayName   string                `json:"display_name"`
	Title         string                `json:"title"`
	Online        bool                  `json:"online"`
	Country       string                `json:"country"`
	Bio           string                `json:"bio"`
	Patron        bool                  `json:"patron"`
	Verified      bool                  `json:"verified"`
	TotalGames    int                   `json:"total_games"`
	Wins          int                   `json:"wins"`
	Losses        int                   `json:"losses"`
	Draws         int                   `json:"draws"`
	Followers     int                   `json:"followers"`
	Following     int                   `json:"following"`
	Perfs         map[string]PerfRating `json:"perfs"`
	JoinedAt      time.Time             `json:"joined_at"`
	LastSeenAt    time.Time             `json:"last_seen_at"`
	LastRefreshed time.Time             `json:"last_refreshed"`
}
