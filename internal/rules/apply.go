package rules

import (
	"fmt"

	"sensei/internal/board"
	"sensei/internal/core"
	"sensei/internal/move"
)

// Apply plays m if it matches one of the current legal moves, carrying over the caller's promotion
// choice. It returns false and leaves b untouched when m is not legal.
func (e *Engine) Apply(b *board.Board, m move.Move) (bool, error) {
	if b.Active != m.Color {
		return false, fmt.Errorf("%w: move for %s, board has %s to move", ErrWrongActiveColor, m.Color.Name(), b.Active.Name())
	}

	from := m.From
	if m.IsCastle() {
		from = move.HomeKingSquare(m.Color)
	} else if !isPseudoLegal(b, m) {
		return false, nil
	}

	for _, legal := range legalMoves(b, &from, m.Color) {
		if !legal.SameIntent(m) {
			continue
		}
		if isPromotion(b, legal) {
			legal.Promotion = m.Promotion
		}
		execute(b, legal)
		return true, nil
	}
	return false, nil
}

// FindMove resolves a from/to request for the active colour into a legal move. A king moving two
// files from its home square resolves to the castle.
func (e *Engine) FindMove(b *board.Board, from, to board.Square, promo move.Promotion) (move.Move, bool) {
	for _, legal := range legalMoves(b, &from, b.Active) {
		if legal.KingFrom() != from || legal.KingTo() != to {
			continue
		}
		if isPromotion(b, legal) {
			legal.Promotion = promo
		}
		return legal, true
	}
	return move.Move{}, false
}

// IsPromotion reports whether m takes a pawn to its far rank, in which case the caller should
// attach a promotion piece before applying it
func (e *Engine) IsPromotion(b *board.Board, m move.Move) bool {
	return isPromotion(b, m)
}

func isPromotion(b *board.Board, m move.Move) bool {
	if m.IsCastle() {
		return false
	}
	return b.At(m.From).Is(board.Pawn, m.Color) && m.To.Y == farRank(m.Color)
}

// execute mutates b without any legality check
func execute(b *board.Board, m move.Move) {
	b.ClearEnPassant()

	if m.IsCastle() {
		path := move.PathFor(m.Side, m.Color)
		b.Move(path.KingFrom, path.KingTo)
		b.Move(path.RookFrom, path.RookTo)
		b.Castling = b.Castling.Remove(board.RightFor(m.Side, m.Color))
		b.HalfMove++
		finishPly(b, m)
		return
	}

	piece := b.At(m.From)
	pawn := piece.Kind == board.Pawn
	capture := !b.IsEmpty(m.To)

	if m.EnPassant {
		b.Clear(m.To.Offset(0, -forward(m.Color)))
		capture = true
	} else if pawn && abs(m.To.Y-m.From.Y) == 2 {
		b.SetEnPassant(m.From.Offset(0, forward(m.Color)))
	}

	b.Move(m.From, m.To)

	if k := m.Promotion.Kind(); pawn && k != board.NoKind && m.To.Y == farRank(m.Color) {
		b.Set(m.To, board.NewPiece(k, m.Color))
	}

	if pawn || capture {
		b.HalfMove = 0
	} else {
		b.HalfMove++
	}
	finishPly(b, m)
}

func finishPly(b *board.Board, m move.Move) {
	if m.Color == core.ColorBlack {
		b.FullMove++
	}
	b.ToggleActive()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
