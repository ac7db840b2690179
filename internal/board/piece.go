package board

import "sensei/internal/core"

type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

func (k Kind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "none"
	}
}

// Letter returns the lowercase piece letter, 0 for NoKind
func (k Kind) Letter() byte {
	switch k {
	case Pawn:
		return 'p'
	case Knight:
		return 'n'
	case Bishop:
		return 'b'
	case Rook:
		return 'r'
	case Queen:
		return 'q'
	case King:
		return 'k'
	default:
		return 0
	}
}

// KindFromLetter is the inverse of Letter and ignores case
func KindFromLetter(c byte) Kind {
	if c >= 'A' && c <= 'Z' {
		c += 'a' - 'A'
	}
	switch c {
	case 'p':
		return Pawn
	case 'n':
		return Knight
	case 'b':
		return Bishop
	case 'r':
		return Rook
	case 'q':
		return Queen
	case 'k':
		return King
	default:
		return NoKind
	}
}

// Piece is a kind and colour pair. The zero value is an empty square.
type Piece struct {
	Kind  Kind
	Color core.Color
}

var NoPiece = Piece{}

func NewPiece(k Kind, c core.Color) Piece {
	return Piece{Kind: k, Color: c}
}

func (p Piece) IsNone() bool {
	return p.Kind == NoKind
}

func (p Piece) Is(k Kind, c core.Color) bool {
	return p.Kind == k && p.Color == c
}

// Code returns the FEN letter: uppercase for white, lowercase for black
func (p Piece) Code() byte {
	l := p.Kind.Letter()
	if l != 0 && p.Color == core.ColorWhite {
		l -= 'a' - 'A'
	}
	return l
}

func (p Piece) String() string {
	if p.IsNone() {
		return "."
	}
	return string(p.Code())
}

// PieceFromCode parses a FEN piece letter
func PieceFromCode(c byte) (Piece, bool) {
	k := KindFromLetter(c)
	if k == NoKind {
		return NoPiece, false
	}
	color := core.ColorBlack
	if c >= 'A' && c <= 'Z' {
		color = core.ColorWhite
	}
	return Piece{Kind: k, Color: color}, true
}
