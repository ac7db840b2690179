package rules

import (
	"sensei/internal/board"
	"sensei/internal/core"
	"sensei/internal/move"
)

// CanCastle reports whether color may castle on side: the right is still held, the king is home,
// the squares between king and rook are empty and no opponent move lands on the king's start,
// crossing or destination square.
func (e *Engine) CanCastle(b *board.Board, side board.CastleSide, color core.Color) bool {
	return canCastle(b, side, color)
}

func canCastle(b *board.Board, side board.CastleSide, color core.Color) bool {
	if !b.Castling.Has(board.RightFor(side, color)) {
		return false
	}

	path := move.PathFor(side, color)
	if !b.At(path.KingFrom).Is(board.King, color) {
		return false
	}

	for _, sq := range path.Between {
		if !b.IsEmpty(sq) {
			return false
		}
	}

	dest := reachable(b, core.OppositeColor(color))
	for _, sq := range path.Transit {
		if dest[sq.Y][sq.X] {
			return false
		}
	}
	return true
}
