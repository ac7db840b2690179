// Package pgn renders a game's UCI move list as Portable Game Notation.
package pgn

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"sensei/internal/board"
	"sensei/internal/core"
)

// Export replays moves from initialFEN and returns PGN text. The Result tag carries result as
// decided by the rule engine; a zero result is written as "*".
func Export(initialFEN string, moves []string, result core.Result) (string, error) {
	var opts []func(*chess.Game)
	custom := initialFEN != "" && initialFEN != board.StartingFEN
	if custom {
		opt, err := chess.FEN(initialFEN)
		if err != nil {
			return "", fmt.Errorf("invalid initial position: %w", err)
		}
		opts = append(opts, opt)
	}

	g := chess.NewGame(opts...)
	g.AddTagPair("Event", "Casual game")
	g.AddTagPair("Result", result.String())
	if custom {
		g.AddTagPair("SetUp", "1")
		g.AddTagPair("FEN", initialFEN)
	}

	for i, uci := range moves {
		m, err := chess.UCINotation{}.Decode(g.Position(), uci)
		if err != nil {
			return "", fmt.Errorf("move %d %q: %w", i+1, uci, err)
		}
		if err := g.Move(m); err != nil {
			return "", fmt.Errorf("move %d %q: %w", i+1, uci, err)
		}
	}

	return strings.TrimSpace(g.String()), nil
}
