package rules

import (
	"sensei/internal/board"
	"sensei/internal/core"
	"sensei/internal/move"
)

var kingOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// kingMoves covers the one-square step only; castles are added by the engine
func kingMoves(b *board.Board, from board.Square, color core.Color) []move.Move {
	return stepMoves(b, from, color, kingOffsets[:])
}
