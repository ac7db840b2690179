package move

import (
	"errors"
	"testing"

	"sensei/internal/board"
	"sensei/internal/core"
)

func sq(s string) board.Square {
	return board.MustSquare(s)
}

func TestSameIntent(t *testing.T) {
	e2e4 := New(sq("e2"), sq("e4"), core.ColorWhite)

	tests := []struct {
		name string
		a, b Move
		want bool
	}{
		{"identical", e2e4, e2e4, true},
		{"promotion ignored", e2e4, e2e4.WithPromotion(PromoteQueen), true},
		{"en passant ignored", NewEnPassant(sq("e5"), sq("d6"), core.ColorWhite), New(sq("e5"), sq("d6"), core.ColorWhite), true},
		{"different destination", e2e4, New(sq("e2"), sq("e3"), core.ColorWhite), false},
		{"different colour", e2e4, New(sq("e2"), sq("e4"), core.ColorBlack), false},
		{"same castle", NewCastle(board.Kingside, core.ColorBlack), NewCastle(board.Kingside, core.ColorBlack), true},
		{"castle side differs", NewCastle(board.Kingside, core.ColorWhite), NewCastle(board.Queenside, core.ColorWhite), false},
		{"castle vs ordinary", NewCastle(board.Kingside, core.ColorWhite), New(sq("e1"), sq("g1"), core.ColorWhite), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.SameIntent(tc.b); got != tc.want {
				t.Errorf("SameIntent = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPathFor(t *testing.T) {
	tests := []struct {
		side                               board.CastleSide
		color                              core.Color
		kingFrom, kingTo, rookFrom, rookTo string
	}{
		{board.Kingside, core.ColorWhite, "e1", "g1", "h1", "f1"},
		{board.Queenside, core.ColorWhite, "e1", "c1", "a1", "d1"},
		{board.Kingside, core.ColorBlack, "e8", "g8", "h8", "f8"},
		{board.Queenside, core.ColorBlack, "e8", "c8", "a8", "d8"},
	}

	for _, tc := range tests {
		p := PathFor(tc.side, tc.color)
		if p.KingFrom != sq(tc.kingFrom) || p.KingTo != sq(tc.kingTo) ||
			p.RookFrom != sq(tc.rookFrom) || p.RookTo != sq(tc.rookTo) {
			t.Errorf("PathFor(%v, %v) = %+v", tc.side, tc.color, p)
		}
	}

	if n := len(PathFor(board.Queenside, core.ColorWhite).Between); n != 3 {
		t.Errorf("queenside Between has %d squares, want 3", n)
	}
	if n := len(PathFor(board.Kingside, core.ColorBlack).Between); n != 2 {
		t.Errorf("kingside Between has %d squares, want 2", n)
	}
}

func TestUCI(t *testing.T) {
	tests := []struct {
		move Move
		want string
	}{
		{New(sq("e2"), sq("e4"), core.ColorWhite), "e2e4"},
		{New(sq("a7"), sq("a8"), core.ColorWhite).WithPromotion(PromoteKnight), "a7a8n"},
		{NewCastle(board.Kingside, core.ColorWhite), "e1g1"},
		{NewCastle(board.Queenside, core.ColorBlack), "e8c8"},
	}

	for _, tc := range tests {
		if got := tc.move.UCI(); got != tc.want {
			t.Errorf("UCI() = %q, want %q", got, tc.want)
		}
	}
}

func TestParseUCI(t *testing.T) {
	m, err := ParseUCI("b7b8Q", core.ColorWhite)
	if err != nil {
		t.Fatalf("ParseUCI error: %v", err)
	}
	if m.From != sq("b7") || m.To != sq("b8") || m.Promotion != PromoteQueen || m.Color != core.ColorWhite {
		t.Errorf("ParseUCI(b7b8Q) = %+v", m)
	}

	for _, text := range []string{"", "e2", "e2e", "e2e4e4", "z2e4", "e2e9", "e7e8k"} {
		if _, err := ParseUCI(text, core.ColorWhite); !errors.Is(err, ErrInvalidUCI) {
			t.Errorf("ParseUCI(%q) error = %v, want ErrInvalidUCI", text, err)
		}
	}
}
