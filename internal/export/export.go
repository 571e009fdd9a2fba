package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	apperrors "github.com/vytor/chessvault/internal/errors"
	"github.com/vytor/chessvault/internal/models"
)

// Format is an export output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatPGN  Format = "pgn"
)

// ParseFormat validates a caller-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatCSV, FormatPGN:
		return Format(s), nil
	case "":
		return FormatJSON, nil
	default:
		return "", apperrors.NewValidationError(fmt.Sprintf("format must be json, csv or pgn, got %q", s))
	}
}

// ContentType returns the MIME type served with the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatPGN:
		return "application/x-chess-pgn"
	default:
		return "application/json"
	}
}

// Render serializes the games in the given format.
func Render(games []models.Game, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return renderCSV(games)
	case FormatPGN:
		return renderPGN(games)
	default:
		return json.MarshalIndent(games, "", "  ")
	}
}

var csvHeader = []string{
	"lichess_id", "played_at", "username", "played_as", "opponent", "result",
	"perf", "rated", "player_rating", "opponent_rating", "eco_code",
	"opening_name", "time_control", "move_count", "status", "termination",
}

func renderCSV(games []models.Game) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, g := range games {
		playedAt := ""
		if !g.PlayedAt.IsZero() {
			playedAt = g.PlayedAt.UTC().Format("2006-01-02 15:04:05")
		}
		record := []string{
			g.LichessID,
			playedAt,
			g.Username,
			g.PlayedAs,
			g.Opponent,
			g.Result,
			g.Perf,
			strconv.FormatBool(g.Rated),
			strconv.Itoa(g.PlayerRating),
			strconv.Itoa(g.OpponentRating),
			g.ECOCode,
			g.OpeningName,
			g.TimeControl,
			strconv.Itoa(g.MoveCount),
			g.Status,
			g.Termination,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
