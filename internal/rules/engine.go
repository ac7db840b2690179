// Package rules generates legal moves, applies them to a board and decides when a game is over.
package rules

import (
	"errors"
	"fmt"

	"sensei/internal/board"
	"sensei/internal/core"
	"sensei/internal/move"
)

var ErrWrongActiveColor = errors.New("color is not the active color")

// Engine holds no state and is safe for concurrent use. Boards passed to it are owned by the caller.
type Engine struct{}

func New() *Engine {
	return &Engine{}
}

// LegalMoves returns the legal moves of the piece on from. A nil from means every piece of color.
// Castles are included for a nil from or when from is color's home king square with the king on it.
func (e *Engine) LegalMoves(b *board.Board, from *board.Square, color core.Color) ([]move.Move, error) {
	if b.Active != color {
		return nil, fmt.Errorf("%w: asked for %s, board has %s to move", ErrWrongActiveColor, color.Name(), b.Active.Name())
	}
	return legalMoves(b, from, color), nil
}

// AllLegalMoves is LegalMoves for every square of the active colour
func (e *Engine) AllLegalMoves(b *board.Board) []move.Move {
	return legalMoves(b, nil, b.Active)
}

// InCheck reports whether color's king is on a square the opponent can move to. A board without
// that king is never in check.
func (e *Engine) InCheck(b *board.Board, color core.Color) bool {
	return inCheck(b, color)
}

func legalMoves(b *board.Board, from *board.Square, color core.Color) []move.Move {
	var candidates []move.Move

	if from == nil || (*from == move.HomeKingSquare(color) && b.At(*from).Is(board.King, color)) {
		for _, side := range []board.CastleSide{board.Kingside, board.Queenside} {
			if canCastle(b, side, color) {
				candidates = append(candidates, move.NewCastle(side, color))
			}
		}
	}

	if from != nil {
		candidates = append(candidates, pseudoLegal(b, *from, color)...)
	} else {
		for _, sq := range b.Occupied(color) {
			candidates = append(candidates, pseudoLegal(b, sq, color)...)
		}
	}

	legal := candidates[:0]
	for _, m := range candidates {
		if leavesKingSafe(b, m) {
			legal = append(legal, m)
		}
	}
	return legal
}

// leavesKingSafe plays m on a scratch copy and checks the mover's king
func leavesKingSafe(b *board.Board, m move.Move) bool {
	scratch := *b
	execute(&scratch, m)
	return !inCheck(&scratch, m.Color)
}

func inCheck(b *board.Board, color core.Color) bool {
	king, ok := b.FindKing(color)
	if !ok {
		return false
	}
	return reachable(b, core.OppositeColor(color))[king.Y][king.X]
}

// reachable marks every destination of by's pseudo-legal moves
func reachable(b *board.Board, by core.Color) *[board.Size][board.Size]bool {
	var dest [board.Size][board.Size]bool
	for _, sq := range b.Occupied(by) {
		for _, m := range pseudoLegal(b, sq, by) {
			dest[m.To.Y][m.To.X] = true
		}
	}
	return &dest
}

// pseudoLegal obeys piece geometry and blocking but ignores king safety. It never produces castles.
func pseudoLegal(b *board.Board, from board.Square, color core.Color) []move.Move {
	p := b.At(from)
	if p.IsNone() || p.Color != color {
		return nil
	}

	switch p.Kind {
	case board.Pawn:
		return pawnMoves(b, from, color)
	case board.Knight:
		return knightMoves(b, from, color)
	case board.Bishop:
		return slide(b, from, color, diagonals)
	case board.Rook:
		return slide(b, from, color, orthogonals)
	case board.Queen:
		return slide(b, from, color, allDirections)
	case board.King:
		return kingMoves(b, from, color)
	default:
		return nil
	}
}

// isPseudoLegal reports whether the piece on m.From can make m by its movement rules alone
func isPseudoLegal(b *board.Board, m move.Move) bool {
	for _, c := range pseudoLegal(b, m.From, m.Color) {
		if c.SameIntent(m) {
			return true
		}
	}
	return false
}
