// Package move describes candidate transitions between positions.
package move

import (
	"errors"
	"fmt"
	"strings"

	"sensei/internal/board"
	"sensei/internal/core"
)

var ErrInvalidUCI = errors.New("invalid UCI move")

type Type uint8

const (
	Ordinary Type = iota
	Castle
)

// Promotion is the piece a pawn turns into on the far rank
type Promotion uint8

const (
	NoPromotion Promotion = iota
	PromoteQueen
	PromoteKnight
	PromoteRook
	PromoteBishop
)

// Kind returns the board piece kind for the promotion choice
func (p Promotion) Kind() board.Kind {
	switch p {
	case PromoteQueen:
		return board.Queen
	case PromoteKnight:
		return board.Knight
	case PromoteRook:
		return board.Rook
	case PromoteBishop:
		return board.Bishop
	default:
		return board.NoKind
	}
}

// ParsePromotion accepts q, n, r or b in either case
func ParsePromotion(c byte) (Promotion, bool) {
	switch board.KindFromLetter(c) {
	case board.Queen:
		return PromoteQueen, true
	case board.Knight:
		return PromoteKnight, true
	case board.Rook:
		return PromoteRook, true
	case board.Bishop:
		return PromoteBishop, true
	default:
		return NoPromotion, false
	}
}

// Move is an immutable description of one ply. Castles carry only Side and Color; the king and
// rook squares come from the fixed Path table.
type Move struct {
	Type      Type
	From      board.Square
	To        board.Square
	Color     core.Color
	EnPassant bool
	Side      board.CastleSide
	Promotion Promotion
}

func New(from, to board.Square, color core.Color) Move {
	return Move{Type: Ordinary, From: from, To: to, Color: color}
}

func NewEnPassant(from, to board.Square, color core.Color) Move {
	return Move{Type: Ordinary, From: from, To: to, Color: color, EnPassant: true}
}

func NewCastle(side board.CastleSide, color core.Color) Move {
	return Move{Type: Castle, Side: side, Color: color}
}

// WithPromotion returns a copy carrying the caller's promotion choice
func (m Move) WithPromotion(p Promotion) Move {
	m.Promotion = p
	return m
}

func (m Move) IsCastle() bool {
	return m.Type == Castle
}

// SameIntent matches a caller's request against an enumerated move: same origin, destination and
// colour for ordinary moves, same side and colour for castles. EnPassant and Promotion are ignored.
func (m Move) SameIntent(o Move) bool {
	if m.Type != o.Type || m.Color != o.Color {
		return false
	}
	if m.Type == Castle {
		return m.Side == o.Side
	}
	return m.From == o.From && m.To == o.To
}

// KingFrom and KingTo give the moving piece's squares; for castles they are the king's
func (m Move) KingFrom() board.Square {
	if m.Type == Castle {
		return PathFor(m.Side, m.Color).KingFrom
	}
	return m.From
}

func (m Move) KingTo() board.Square {
	if m.Type == Castle {
		return PathFor(m.Side, m.Color).KingTo
	}
	return m.To
}

// UCI encodes the move in long algebraic form; castles use the king's path (e1g1)
func (m Move) UCI() string {
	s := m.KingFrom().Lower() + m.KingTo().Lower()
	if k := m.Promotion.Kind(); k != board.NoKind {
		s += string(k.Letter())
	}
	return s
}

func (m Move) String() string {
	if m.Type == Castle {
		return m.Side.String()
	}
	s := m.From.String() + "-" + m.To.String()
	if m.EnPassant {
		s += " e.p."
	}
	if k := m.Promotion.Kind(); k != board.NoKind {
		s += "=" + strings.ToUpper(string(k.Letter()))
	}
	return s
}

// ParseUCI decodes "e2e4" or "a7a8q". The result is an ordinary move; the rule engine resolves king
// paths such as e1g1 into castles.
func ParseUCI(text string, color core.Color) (Move, error) {
	if len(text) != 4 && len(text) != 5 {
		return Move{}, fmt.Errorf("%w: %q must be 4 or 5 characters", ErrInvalidUCI, text)
	}

	from, err := board.ParseSquare(text[0:2])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %v", ErrInvalidUCI, err)
	}
	to, err := board.ParseSquare(text[2:4])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %v", ErrInvalidUCI, err)
	}

	m := New(from, to, color)
	if len(text) == 5 {
		promo, ok := ParsePromotion(text[4])
		if !ok {
			return Move{}, fmt.Errorf("%w: unknown promotion piece %q", ErrInvalidUCI, text[4])
		}
		m.Promotion = promo
	}
	return m, nil
}
