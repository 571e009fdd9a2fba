package models

import "time"

// SessionStatus is the lifecycle state of an import session. Running is the
// only initial state; the other three are terminal and sticky.
type SessionStatus string

const (
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
	SessionCancelled SessionStatus = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionFailed || s == SessionCancelled
}

// ImportSession tracks one background import run. Counters only grow while
// the session is running and satisfy imported+skipped+errored <= processed,
// and processed <= total_found once total_found is known.
type ImportSession struct {
	ID          string            `json:"id"`
	Username    string            `json:"username"`
	Status      SessionStatus     `json:"status"`
	Filters     map[string]string `json:"filters"`
	TotalFound  int               `json:"total_found"`
	Processed   int               `json:"processed"`
	Imported    int               `json:"imported"`
	Skipped     int               `json:"skipped"`
	Errored     int               `json:"errored"`
	ErrorMsg    string            `json:"error_message,omitempty"`
	Errors      []string          `json:"errors,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// ImportRequest is the caller-facing description of an import run.
type ImportRequest struct {
	Username        string     `json:"username"`
	MaxGames        int        `json:"max_games,omitempty"`
	Since           *time.Time `json:"since,omitempty"`
	Until           *time.Time `json:"until,omitempty"`
	PerfTypes       []string   `json:"perf_types,omitempty"`
	Opponent        string     `json:"opponent,omitempty"`
	Color           string     `json:"color,omitempty"`
	RatedOnly       bool       `json:"rated_only,omitempty"`
	AnalyzedOnly    bool       `json:"analyzed_only,omitempty"`
	FinishedOnly    bool       `json:"finished_only"`
	IncludeAnalysis bool       `json:"include_analysis,omitempty"`
	IncludePGN      bool       `json:"include_pgn,omitempty"`
}
