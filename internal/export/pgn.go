package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/corentings/chess/v2"

	"github.com/vytor/chessvault/internal/models"
)

// renderPGN emits one PGN document per game, blank-line separated. Stored PGN
// is round-tripped through the chess library so output is consistently
// formatted; games imported without PGN get a document synthesized from their
// metadata and move list.
func renderPGN(games []models.Game) ([]byte, error) {
	var buf bytes.Buffer
	for i, g := range games {
		if i > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(gamePGN(g))
	}
	if buf.Len() > 0 {
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

func gamePGN(g models.Game) string {
	if g.PGN != "" {
		pgnOpt, err := chess.PGN(strings.NewReader(g.PGN))
		if err != nil {
			// Unparseable but present, export verbatim.
			return strings.TrimSpace(g.PGN)
		}
		return strings.TrimSpace(chess.NewGame(pgnOpt).String())
	}
	return synthesizePGN(g)
}

func synthesizePGN(g models.Game) string {
	var b strings.Builder
	tag := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, "[%s %q]\n", name, value)
		}
	}
	tag("Event", fmt.Sprintf("Rated %s game", g.Perf))
	tag("Site", "https://lichess.org/"+g.LichessID)
	if !g.PlayedAt.IsZero() {
		tag("Date", g.PlayedAt.UTC().Format("2006.01.02"))
	}
	tag("White", g.WhiteName)
	tag("Black", g.BlackName)
	tag("Result", resultTag(g))
	if g.WhiteRating > 0 {
		tag("WhiteElo", fmt.Sprintf("%d", g.WhiteRating))
	}
	if g.BlackRating > 0 {
		tag("BlackElo", fmt.Sprintf("%d", g.BlackRating))
	}
	tag("Variant", g.Variant)
	tag("TimeControl", g.TimeControl)
	tag("ECO", g.ECOCode)
	tag("Opening", g.OpeningName)
	tag("Termination", g.Termination)

	b.WriteString("\n")
	if g.Moves != "" {
		b.WriteString(numberedMoves(g.Moves))
		b.WriteString(" ")
	}
	b.WriteString(resultTag(g))
	return b.String()
}

// resultTag maps the game outcome to the PGN result token.
func resultTag(g models.Game) string {
	switch g.Winner {
	case "white":
		return "1-0"
	case "black":
		return "0-1"
	}
	if g.Status == "draw" || g.Status == "stalemate" {
		return "1/2-1/2"
	}
	return "*"
}

// numberedMoves turns a flat SAN move list into numbered move pairs.
func numberedMoves(moves string) string {
	fields := strings.Fields(moves)
	var b strings.Builder
	for i, m := range fields {
		if i%2 == 0 {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%d. ", i/2+1)
		} else {
			b.WriteString(" ")
		}
		b.WriteString(m)
	}
	return b.String()
}
