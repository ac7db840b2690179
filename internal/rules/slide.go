package rules

import (
	"sensei/internal/board"
	"sensei/internal/core"
	"sensei/internal/move"
)

var (
	orthogonals   = [][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	diagonals     = [][2]int{{1, -1}, {1, 1}, {-1, 1}, {-1, -1}}
	allDirections = append(append([][2]int{}, orthogonals...), diagonals...)
)

// slide walks each ray until the edge or the first occupied square, which is included only when it
// holds an opponent piece
func slide(b *board.Board, from board.Square, color core.Color, rays [][2]int) []move.Move {
	var moves []move.Move
	for _, r := range rays {
		for to := from.Offset(r[0], r[1]); to.Inside(); to = to.Offset(r[0], r[1]) {
			if b.IsEmpty(to) {
				moves = append(moves, move.New(from, to, color))
				continue
			}
			if b.IsOpponent(to, color) {
				moves = append(moves, move.New(from, to, color))
			}
			break
		}
	}
	return moves
}
