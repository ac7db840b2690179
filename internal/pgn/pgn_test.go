package pgn

import (
	"strings"
	"testing"

	"sensei/internal/board"
	"sensei/internal/core"
)

func TestExport(t *testing.T) {
	tests := []struct {
		name    string
		fen     string
		moves   []string
		result  core.Result
		want    []string
		wantErr bool
	}{
		{
			name:   "opening from the start",
			fen:    board.StartingFEN,
			moves:  []string{"e2e4", "e7e5", "g1f3"},
			want:   []string{`[Result "*"]`, "e4", "e5", "Nf3"},
			result: 0,
		},
		{
			name:   "custom start",
			fen:    "4k3/8/8/8/8/8/8/R3K3 w Q - 0 1",
			moves:  []string{"e1c1"},
			result: core.ResultDraw,
			want:   []string{`[FEN "4k3/8/8/8/8/8/8/R3K3 w Q - 0 1"]`, `[Result "1/2-1/2"]`, "O-O-O"},
		},
		{
			name:    "illegal move",
			fen:     board.StartingFEN,
			moves:   []string{"e2e5"},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Export(tc.fen, tc.moves, tc.result)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Export = %q, want error", out)
				}
				return
			}
			if err != nil {
				t.Fatalf("Export error: %v", err)
			}
			for _, w := range tc.want {
				if !strings.Contains(out, w) {
					t.Errorf("Export output missing %q:\n%s", w, out)
				}
			}
		})
	}
}
