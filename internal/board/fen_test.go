package board

import (
	"testing"

	"sensei/internal/core"
)

func TestParseFENStartingPosition(t *testing.T) {
	b, errs := ParseFEN(StartingFEN)
	if len(errs) != 0 {
		t.Fatalf("ParseFEN(StartingFEN) errors: %v", errs)
	}

	want := NewStartingBoard()
	want.FullMove = 1
	if !b.Equal(want) {
		t.Errorf("ParseFEN(StartingFEN) =\n%s\nwant\n%s", b, want)
	}
}

func TestParseFENRoundTrip(t *testing.T) {
	fens := []string{
		StartingFEN,
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		"rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 2",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
		"8/8/8/8/8/8/8/8 b - - 99 60",
	}

	for _, fen := range fens {
		b, errs := ParseFEN(fen)
		if len(errs) != 0 {
			t.Fatalf("ParseFEN(%q) errors: %v", fen, errs)
		}
		if got := b.FEN(); got != fen {
			t.Errorf("FEN() = %q, want %q", got, fen)
		}

		again, errs := ParseFEN(b.FEN())
		if len(errs) != 0 || !again.Equal(b) {
			t.Errorf("second parse of %q differs (errors: %v)", fen, errs)
		}
	}
}

func TestParseFENMetadata(t *testing.T) {
	b, errs := ParseFEN("8/8/8/8/8/8/8/P7 w Kq b2 42 17")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if got := b.At(MustSquare("a1")); got != NewPiece(Pawn, core.ColorWhite) {
		t.Errorf("At(a1) = %v, want P", got)
	}
	if ep, ok := b.EnPassantTarget(); !ok || ep != MustSquare("b2") {
		t.Errorf("EnPassantTarget() = %v, %v, want B2", ep, ok)
	}
	if !b.Castling.Has(WhiteKingside) || !b.Castling.Has(BlackQueenside) ||
		b.Castling.Has(WhiteQueenside) || b.Castling.Has(BlackKingside) {
		t.Errorf("Castling = %v, want Kq", b.Castling)
	}
	if b.HalfMove != 42 || b.FullMove != 17 {
		t.Errorf("clocks = %d/%d, want 42/17", b.HalfMove, b.FullMove)
	}
}

func TestParseFENCollectsErrors(t *testing.T) {
	tests := []struct {
		name       string
		fen        string
		wantFields []string
		check      func(t *testing.T, b *Board)
	}{
		{
			name:       "unknown piece letter is skipped",
			fen:        "rnbqkbnr/ppppXppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			wantFields: []string{FieldPlacement},
			check: func(t *testing.T, b *Board) {
				if !b.IsEmpty(MustSquare("e7")) {
					t.Errorf("e7 = %v, want empty", b.At(MustSquare("e7")))
				}
				if b.At(MustSquare("f7")) != NewPiece(Pawn, core.ColorBlack) {
					t.Errorf("f7 = %v, want p", b.At(MustSquare("f7")))
				}
			},
		},
		{
			name:       "missing trailing fields",
			fen:        "8/8/8/8/8/8/8/K7 w",
			wantFields: []string{FieldLayout, FieldCastling, FieldEnPassant, FieldHalfMove, FieldFullMove},
			check: func(t *testing.T, b *Board) {
				if b.Active != core.ColorWhite {
					t.Errorf("Active = %v, want White", b.Active)
				}
				if b.At(MustSquare("a1")) != NewPiece(King, core.ColorWhite) {
					t.Error("placement lost when trailing fields are missing")
				}
			},
		},
		{
			name:       "bad counters stay unset",
			fen:        "8/8/8/8/8/8/8/8 b - - x1 -3",
			wantFields: []string{FieldHalfMove, FieldFullMove},
			check: func(t *testing.T, b *Board) {
				if b.HalfMove != 0 || b.FullMove != 0 {
					t.Errorf("clocks = %d/%d, want 0/0", b.HalfMove, b.FullMove)
				}
				if b.Active != core.ColorBlack {
					t.Errorf("Active = %v, want Black", b.Active)
				}
			},
		},
		{
			name:       "bad active colour and castling",
			fen:        "8/8/8/8/8/8/8/8 x KZ - 0 1",
			wantFields: []string{FieldActive, FieldCastling},
			check: func(t *testing.T, b *Board) {
				if b.Castling != NoCastleRights.Add(WhiteKingside) {
					t.Errorf("Castling = %v, want K", b.Castling)
				}
				if b.Active != core.ColorWhite {
					t.Errorf("Active = %v, want White fallback", b.Active)
				}
			},
		},
		{
			name:       "bad en passant square",
			fen:        "8/8/8/8/8/8/8/8 w - z9 0 1",
			wantFields: []string{FieldEnPassant},
			check: func(t *testing.T, b *Board) {
				if _, ok := b.EnPassantTarget(); ok {
					t.Error("en passant target set from malformed square")
				}
			},
		},
		{
			name:       "wrong rank count",
			fen:        "8/8/8/8/8/8/8 w - - 0 1",
			wantFields: []string{FieldPlacement},
		},
		{
			name:       "empty input",
			fen:        "",
			wantFields: []string{FieldLayout, FieldPlacement, FieldActive, FieldCastling, FieldEnPassant, FieldHalfMove, FieldFullMove},
			check: func(t *testing.T, b *Board) {
				if b.Active != core.ColorWhite {
					t.Errorf("Active = %v, want White fallback", b.Active)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, errs := ParseFEN(tc.fen)
			if b == nil {
				t.Fatal("ParseFEN returned nil board")
			}

			got := make(map[string]bool)
			for _, e := range errs {
				got[e.Field] = true
				if e.Error() == "" {
					t.Error("empty error message")
				}
			}
			for _, f := range tc.wantFields {
				if !got[f] {
					t.Errorf("missing error for field %q, got %v", f, errs)
				}
			}
			if len(got) != len(tc.wantFields) {
				t.Errorf("error fields = %v, want %v", errs, tc.wantFields)
			}

			if tc.check != nil {
				tc.check(t, b)
			}
		})
	}
}
