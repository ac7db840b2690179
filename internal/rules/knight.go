package rules

import (
	"sensei/internal/board"
	"sensei/internal/core"
	"sensei/internal/move"
)

var knightOffsets = [8][2]int{
	{1, 2}, {2, 1}, {2, -1}, {1, -2},
	{-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
}

func knightMoves(b *board.Board, from board.Square, color core.Color) []move.Move {
	return stepMoves(b, from, color, knightOffsets[:])
}

// stepMoves tries each offset once: empty squares and captures are reachable
func stepMoves(b *board.Board, from board.Square, color core.Color, offsets [][2]int) []move.Move {
	var moves []move.Move
	for _, o := range offsets {
		to := from.Offset(o[0], o[1])
		if to.Inside() && b.IsEmptyOrOpponent(to, color) {
			moves = append(moves, move.New(from, to, color))
		}
	}
	return moves
}
