package rules

import (
	"sensei/internal/board"
	"sensei/internal/core"
	"sensei/internal/move"
)

// forward is the y step of a pawn of colour c; white moves toward rank 8 (y = 0)
func forward(c core.Color) int {
	if c == core.ColorWhite {
		return -1
	}
	return 1
}

func pawnStartRank(c core.Color) int {
	if c == core.ColorWhite {
		return 6
	}
	return 1
}

func farRank(c core.Color) int {
	if c == core.ColorWhite {
		return 0
	}
	return board.Size - 1
}

func pawnMoves(b *board.Board, from board.Square, color core.Color) []move.Move {
	var moves []move.Move
	dir := forward(color)

	one := from.Offset(0, dir)
	if one.Inside() && b.IsEmpty(one) {
		moves = append(moves, move.New(from, one, color))

		two := from.Offset(0, 2*dir)
		if from.Y == pawnStartRank(color) && b.IsEmpty(two) {
			moves = append(moves, move.New(from, two, color))
		}
	}

	ep, hasEP := b.EnPassantTarget()
	for _, dx := range []int{-1, 1} {
		to := from.Offset(dx, dir)
		if !to.Inside() {
			continue
		}
		switch {
		case b.IsOpponent(to, color):
			moves = append(moves, move.New(from, to, color))
		case hasEP && to == ep && enPassantVictimOK(b, to, color):
			moves = append(moves, move.NewEnPassant(from, to, color))
		}
	}

	return moves
}

// enPassantVictimOK requires the square behind the target to hold an opponent pawn or be empty
func enPassantVictimOK(b *board.Board, target board.Square, color core.Color) bool {
	behind := target.Offset(0, -forward(color))
	return b.IsEmpty(behind) || b.At(behind).Is(board.Pawn, core.OppositeColor(color))
}
