package board

import (
	"fmt"
	"strings"

	"sensei/internal/core"
)

const (
	Size = 8

	StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// Board is the complete mutable position. It holds only arrays and scalars, so assigning a Board
// copies it fully; rule simulation relies on that.
type Board struct {
	squares      [Size][Size]Piece // [y][x]
	Active       core.Color
	Castling     CastleRights
	enPassant    Square
	hasEnPassant bool
	HalfMove     int
	FullMove     int
}

var backRank = [Size]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewStartingBoard returns the initial layout with all castling rights, no en passant target and zeroed clocks
func NewStartingBoard() *Board {
	b := &Board{
		Active:   core.ColorWhite,
		Castling: AllCastleRights,
	}
	for x := 0; x < Size; x++ {
		b.squares[0][x] = Piece{Kind: backRank[x], Color: core.ColorBlack}
		b.squares[1][x] = Piece{Kind: Pawn, Color: core.ColorBlack}
		b.squares[6][x] = Piece{Kind: Pawn, Color: core.ColorWhite}
		b.squares[7][x] = Piece{Kind: backRank[x], Color: core.ColorWhite}
	}
	return b
}

// Clone returns an independent copy
func (b *Board) Clone() *Board {
	cp := *b
	return &cp
}

// At returns the piece on sq, NoPiece for empty or off-board squares
func (b *Board) At(sq Square) Piece {
	if !sq.Inside() {
		return NoPiece
	}
	return b.squares[sq.Y][sq.X]
}

func (b *Board) Set(sq Square, p Piece) {
	if !sq.Inside() {
		return
	}
	b.squares[sq.Y][sq.X] = p
}

func (b *Board) Clear(sq Square) {
	b.Set(sq, NoPiece)
}

// Move relocates whatever stands on from to to, overwriting the destination
func (b *Board) Move(from, to Square) {
	p := b.At(from)
	b.Clear(from)
	b.Set(to, p)
}

func (b *Board) IsEmpty(sq Square) bool {
	return b.At(sq).IsNone()
}

// IsOpponent reports whether sq holds a piece of the colour opposing c
func (b *Board) IsOpponent(sq Square, c core.Color) bool {
	p := b.At(sq)
	return !p.IsNone() && p.Color != c
}

// IsEmptyOrOpponent reports whether a piece of colour c may land on sq
func (b *Board) IsEmptyOrOpponent(sq Square, c core.Color) bool {
	p := b.At(sq)
	return p.IsNone() || p.Color != c
}

// EnPassantTarget returns the square a pawn skipped over on the previous ply
func (b *Board) EnPassantTarget() (Square, bool) {
	return b.enPassant, b.hasEnPassant
}

func (b *Board) SetEnPassant(sq Square) {
	b.enPassant = sq
	b.hasEnPassant = true
}

func (b *Board) ClearEnPassant() {
	b.enPassant = Square{}
	b.hasEnPassant = false
}

// FindKing locates the king of colour c. Malformed positions may have none.
func (b *Board) FindKing(c core.Color) (Square, bool) {
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if b.squares[y][x].Is(King, c) {
				return Square{X: x, Y: y}, true
			}
		}
	}
	return Square{}, false
}

// Occupied returns the squares holding pieces of colour c
func (b *Board) Occupied(c core.Color) []Square {
	var squares []Square
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			p := b.squares[y][x]
			if !p.IsNone() && p.Color == c {
				squares = append(squares, Square{X: x, Y: y})
			}
		}
	}
	return squares
}

func (b *Board) ToggleActive() {
	b.Active = core.OppositeColor(b.Active)
}

// Equal compares placement and all metadata
func (b *Board) Equal(o *Board) bool {
	return *b == *o
}

// ToASCII creates an ASCII representation of the board
func (b *Board) ToASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for y := 0; y < Size; y++ {
		sb.WriteString(fmt.Sprintf("%d ", 8-y))
		for x := 0; x < Size; x++ {
			sb.WriteString(b.squares[y][x].String())
			sb.WriteByte(' ')
		}
		sb.WriteString(fmt.Sprintf(" %d\n", 8-y))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}

func (b *Board) String() string {
	return b.ToASCII()
}
