package board

import (
	"errors"
	"fmt"
)

// ErrInvalidNotation is returned for square text that is not a file letter followed by a rank digit
var ErrInvalidNotation = errors.New("invalid square notation")

// Square addresses one cell of the grid. X is the file (A=0), Y counts down from rank 8 (rank 8 = 0, rank 1 = 7).
type Square struct {
	X int
	Y int
}

// Sq builds a square from grid coordinates
func Sq(x, y int) Square {
	return Square{X: x, Y: y}
}

// ParseSquare converts algebraic text such as "e4" or "E4" into a Square
func ParseSquare(text string) (Square, error) {
	if len(text) != 2 {
		return Square{}, fmt.Errorf("%w: expected two characters e.g. A1, got %q", ErrInvalidNotation, text)
	}

	file := text[0]
	if file >= 'A' && file <= 'Z' {
		file += 'a' - 'A'
	}
	if file < 'a' || file > 'h' {
		return Square{}, fmt.Errorf("%w: illegal file %q", ErrInvalidNotation, text[0])
	}

	rank := text[1]
	if rank < '1' || rank > '8' {
		return Square{}, fmt.Errorf("%w: illegal rank %q", ErrInvalidNotation, rank)
	}

	return Square{X: int(file - 'a'), Y: int('8' - rank)}, nil
}

// MustSquare is ParseSquare for compile-time constants; it panics on bad input
func MustSquare(text string) Square {
	sq, err := ParseSquare(text)
	if err != nil {
		panic(err)
	}
	return sq
}

// String returns the uppercase algebraic form, e.g. "A1"
func (s Square) String() string {
	if !s.Inside() {
		return fmt.Sprintf("(%d,%d)", s.X, s.Y)
	}
	return string([]byte{byte('A' + s.X), byte('8' - s.Y)})
}

// Lower returns the lowercase algebraic form used by FEN and UCI, e.g. "a1"
func (s Square) Lower() string {
	if !s.Inside() {
		return s.String()
	}
	return string([]byte{byte('a' + s.X), byte('8' - s.Y)})
}

// Inside reports whether the square lies on the board
func (s Square) Inside() bool {
	return s.X >= 0 && s.X < Size && s.Y >= 0 && s.Y < Size
}

// Offset returns the square shifted by (dx, dy); the result may be outside the board
func (s Square) Offset(dx, dy int) Square {
	return Square{X: s.X + dx, Y: s.Y + dy}
}

// AllSquares returns every square, rank 8 first
func AllSquares() []Square {
	squares := make([]Square, 0, Size*Size)
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			squares = append(squares, Square{X: x, Y: y})
		}
	}
	return squares
}
