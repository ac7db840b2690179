package board

import (
	"strings"

	"sensei/internal/core"
)

type CastleSide uint8

const (
	Kingside CastleSide = iota + 1
	Queenside
)

func (s CastleSide) String() string {
	if s == Queenside {
		return "O-O-O"
	}
	return "O-O"
}

// CastleRight is a single castling permission
type CastleRight uint8

const (
	WhiteKingside CastleRight = 1 << iota
	WhiteQueenside
	BlackKingside
	BlackQueenside
)

// CastleRights is the set of castling permissions still available on a board
type CastleRights uint8

const (
	NoCastleRights  CastleRights = 0
	AllCastleRights CastleRights = CastleRights(WhiteKingside | WhiteQueenside | BlackKingside | BlackQueenside)
)

// RightFor returns the castling right for side and colour
func RightFor(side CastleSide, c core.Color) CastleRight {
	switch {
	case c == core.ColorWhite && side == Kingside:
		return WhiteKingside
	case c == core.ColorWhite:
		return WhiteQueenside
	case side == Kingside:
		return BlackKingside
	default:
		return BlackQueenside
	}
}

func (r CastleRights) Has(right CastleRight) bool {
	return r&CastleRights(right) != 0
}

func (r CastleRights) Add(right CastleRight) CastleRights {
	return r | CastleRights(right)
}

func (r CastleRights) Remove(right CastleRight) CastleRights {
	return r &^ CastleRights(right)
}

// String renders rights in FEN order, "-" when empty
func (r CastleRights) String() string {
	var sb strings.Builder
	if r.Has(WhiteKingside) {
		sb.WriteByte('K')
	}
	if r.Has(WhiteQueenside) {
		sb.WriteByte('Q')
	}
	if r.Has(BlackKingside) {
		sb.WriteByte('k')
	}
	if r.Has(BlackQueenside) {
		sb.WriteByte('q')
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

func castleRightFromCode(c byte) (CastleRight, bool) {
	switch c {
	case 'K':
		return WhiteKingside, true
	case 'Q':
		return WhiteQueenside, true
	case 'k':
		return BlackKingside, true
	case 'q':
		return BlackQueenside, true
	default:
		return 0, false
	}
}
