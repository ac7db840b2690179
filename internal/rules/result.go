package rules

import (
	"sensei/internal/board"
	"sensei/internal/core"
)

// DrawHalfMoves is the half-move clock value at which the fifty-move rule ends the game
const DrawHalfMoves = 100

// Result decides whether the game on b is over. A side with no legal moves loses, whether or not
// its king is attacked; otherwise the fifty-move rule may declare a draw.
func (e *Engine) Result(b *board.Board) (core.Result, bool) {
	if len(legalMoves(b, nil, b.Active)) == 0 {
		return core.WinFor(core.OppositeColor(b.Active)), true
	}
	if b.HalfMove >= DrawHalfMoves {
		return core.ResultDraw, true
	}
	return 0, false
}
