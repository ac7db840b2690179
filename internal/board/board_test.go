package board

import (
	"errors"
	"testing"

	"sensei/internal/core"
)

func TestSquareRoundTrip(t *testing.T) {
	for _, sq := range AllSquares() {
		got, err := ParseSquare(sq.String())
		if err != nil {
			t.Fatalf("ParseSquare(%q) error: %v", sq.String(), err)
		}
		if got != sq {
			t.Errorf("ParseSquare(%q) = %v, want %v", sq.String(), got, sq)
		}

		got, err = ParseSquare(sq.Lower())
		if err != nil || got != sq {
			t.Errorf("ParseSquare(%q) = %v, %v, want %v", sq.Lower(), got, err, sq)
		}
	}
}

func TestParseSquareCoordinates(t *testing.T) {
	tests := []struct {
		text string
		want Square
	}{
		{"A8", Sq(0, 0)},
		{"A1", Sq(0, 7)},
		{"H1", Sq(7, 7)},
		{"H8", Sq(7, 0)},
		{"e4", Sq(4, 4)},
		{"B2", Sq(1, 6)},
	}

	for _, tc := range tests {
		got, err := ParseSquare(tc.text)
		if err != nil {
			t.Fatalf("ParseSquare(%q) error: %v", tc.text, err)
		}
		if got != tc.want {
			t.Errorf("ParseSquare(%q) = %+v, want %+v", tc.text, got, tc.want)
		}
	}
}

func TestParseSquareInvalid(t *testing.T) {
	for _, text := range []string{"", "A", "A10", "I1", "A0", "A9", "11", "?3", "e 4"} {
		_, err := ParseSquare(text)
		if !errors.Is(err, ErrInvalidNotation) {
			t.Errorf("ParseSquare(%q) error = %v, want ErrInvalidNotation", text, err)
		}
	}
}

func TestStartingBoard(t *testing.T) {
	b := NewStartingBoard()

	if b.Active != core.ColorWhite {
		t.Errorf("Active = %v, want White", b.Active)
	}
	if b.Castling != AllCastleRights {
		t.Errorf("Castling = %v, want KQkq", b.Castling)
	}
	if _, ok := b.EnPassantTarget(); ok {
		t.Error("starting board has an en passant target")
	}
	if b.HalfMove != 0 || b.FullMove != 0 {
		t.Errorf("clocks = %d/%d, want 0/0", b.HalfMove, b.FullMove)
	}

	tests := []struct {
		sq   string
		want Piece
	}{
		{"a1", NewPiece(Rook, core.ColorWhite)},
		{"e1", NewPiece(King, core.ColorWhite)},
		{"d1", NewPiece(Queen, core.ColorWhite)},
		{"h2", NewPiece(Pawn, core.ColorWhite)},
		{"e8", NewPiece(King, core.ColorBlack)},
		{"g8", NewPiece(Knight, core.ColorBlack)},
		{"c7", NewPiece(Pawn, core.ColorBlack)},
		{"e4", NoPiece},
	}
	for _, tc := range tests {
		if got := b.At(MustSquare(tc.sq)); got != tc.want {
			t.Errorf("At(%s) = %v, want %v", tc.sq, got, tc.want)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := NewStartingBoard()
	cp := b.Clone()

	cp.Move(MustSquare("e2"), MustSquare("e4"))
	cp.SetEnPassant(MustSquare("e3"))
	cp.Castling = cp.Castling.Remove(WhiteKingside)
	cp.ToggleActive()

	if b.IsEmpty(MustSquare("e2")) || !b.IsEmpty(MustSquare("e4")) {
		t.Error("moving a piece on the clone changed the original")
	}
	if _, ok := b.EnPassantTarget(); ok {
		t.Error("clone en passant target leaked into original")
	}
	if !b.Castling.Has(WhiteKingside) || b.Active != core.ColorWhite {
		t.Error("clone metadata leaked into original")
	}
}

func TestFindKing(t *testing.T) {
	b := NewStartingBoard()
	if sq, ok := b.FindKing(core.ColorBlack); !ok || sq != MustSquare("e8") {
		t.Errorf("FindKing(black) = %v, %v, want E8", sq, ok)
	}

	empty, _ := ParseFEN("8/8/8/8/8/8/8/8 w - - 0 1")
	if _, ok := empty.FindKing(core.ColorWhite); ok {
		t.Error("FindKing found a king on an empty board")
	}
}

func TestCastleRightsString(t *testing.T) {
	tests := []struct {
		rights CastleRights
		want   string
	}{
		{AllCastleRights, "KQkq"},
		{NoCastleRights, "-"},
		{AllCastleRights.Remove(WhiteQueenside).Remove(BlackKingside), "Kq"},
		{NoCastleRights.Add(BlackQueenside), "q"},
	}
	for _, tc := range tests {
		if got := tc.rights.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
