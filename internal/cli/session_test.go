package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"sensei/internal/core"
)

func newTestSession(answers ...string) (*Session, *bytes.Buffer) {
	var out bytes.Buffer
	ask := func(string) (string, error) {
		if len(answers) == 0 {
			return "", errors.New("no input")
		}
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}
	return NewSession(NewView(&out, ThemeOff), ask), &out
}

func run(s *Session, out *bytes.Buffer, lines ...string) string {
	out.Reset()
	for _, l := range lines {
		s.Execute(l)
	}
	return out.String()
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  CommandType
		args  int
	}{
		{"", CmdNone, 0},
		{"new", CmdNew, 0},
		{"resume 8/8/8/8/8/8/8/8 w - - 0 1", CmdResume, 6},
		{"e2e4", CmdMove, 1},
		{"moves e2", CmdMoves, 1},
		{"undo 2", CmdUndo, 1},
		{"FEN", CmdFEN, 0},
		{"?", CmdHelp, 0},
		{"exit", CmdQuit, 0},
	}

	for _, tc := range tests {
		cmd := ParseCommand(tc.input)
		if cmd.Type != tc.want || len(cmd.Args) != tc.args {
			t.Errorf("ParseCommand(%q) = %+v, want type %v with %d args", tc.input, cmd, tc.want, tc.args)
		}
	}

	if raw := ParseCommand("  resume  4k3/8/8/8/8/8/8/4K2R w K - 0 1").Raw; raw != "4k3/8/8/8/8/8/8/4K2R w K - 0 1" {
		t.Errorf("Raw = %q", raw)
	}
}

func TestPlayAndFEN(t *testing.T) {
	s, out := newTestSession()

	if got := run(s, out, "e2e4"); !strings.Contains(got, "No active game") {
		t.Errorf("move without game = %q", got)
	}

	run(s, out, "new", "e2e4")
	if got := run(s, out, "fen"); !strings.Contains(got, "4P3") || !strings.Contains(got, " b ") {
		t.Errorf("fen = %q", got)
	}
	if got := run(s, out, "e2e4"); !strings.Contains(got, "illegal move") {
		t.Errorf("illegal move output = %q", got)
	}
	if got := run(s, out, "hello"); !strings.Contains(got, "unknown command") {
		t.Errorf("unknown command output = %q", got)
	}
	if s.Prompt() != "chess [Black]" {
		t.Errorf("Prompt() = %q", s.Prompt())
	}
}

func TestPromotionPrompt(t *testing.T) {
	s, out := newTestSession("x", "n")
	run(s, out, "resume 4k3/P7/8/8/8/8/8/4K3 w - - 0 1")

	got := run(s, out, "a7a8", "fen")
	if !strings.Contains(got, "Choose q, r, b or n.") {
		t.Errorf("invalid answer not rejected: %q", got)
	}
	if !strings.Contains(got, "N3k3/8/") {
		t.Errorf("fen after knight promotion = %q", got)
	}
}

func TestResumeReportsErrors(t *testing.T) {
	s, out := newTestSession()

	got := run(s, out, "resume 8/8/8/8/8/8/8/K6k x")
	if !strings.Contains(got, "FEN active color") || !strings.Contains(got, "Defaulting to White") {
		t.Errorf("resume output = %q", got)
	}
	if got := run(s, out, "moves a1"); !strings.Contains(got, "a1b1") {
		t.Errorf("moves after partial resume = %q", got)
	}
}

func TestGameOverAndUndo(t *testing.T) {
	s, out := newTestSession()
	run(s, out, "new", "f2f3", "e7e5", "g2g4")

	if got := run(s, out, "d8h4"); !strings.Contains(got, "Game Over: "+core.StateBlackWins.String()) {
		t.Fatalf("mate output = %q", got)
	}
	if got := run(s, out, "a2a3"); !strings.Contains(got, "Game Over") {
		t.Errorf("move after mate = %q", got)
	}

	if got := run(s, out, "history"); !strings.Contains(got, "1. f2f3 | e7e5") || !strings.Contains(got, "2. g2g4 | d8h4") {
		t.Errorf("history = %q", got)
	}

	if got := run(s, out, "undo 9"); !strings.Contains(got, "cannot undo 9 moves") {
		t.Errorf("undo too many = %q", got)
	}
	run(s, out, "undo")
	if s.state != core.StateOngoing || len(s.moves) != 3 {
		t.Errorf("after undo state = %v, moves = %v", s.state, s.moves)
	}
}

func TestListMoves(t *testing.T) {
	s, out := newTestSession()
	run(s, out, "resume r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")

	got := run(s, out, "moves e1")
	for _, want := range []string{"e1g1 (O-O)", "e1c1 (O-O-O)", "e1f1"} {
		if !strings.Contains(got, want) {
			t.Errorf("moves e1 missing %q: %q", want, got)
		}
	}
	if got := run(s, out, "moves z9"); !strings.Contains(got, "Error") {
		t.Errorf("bad square output = %q", got)
	}
}

func TestColorTheme(t *testing.T) {
	s, out := newTestSession()
	run(s, out, "new")

	if got := run(s, out, "color purple"); !strings.Contains(got, "invalid theme") {
		t.Errorf("color purple = %q", got)
	}
	if got := run(s, out, "color green"); !strings.Contains(got, "\033[48;5;157m") {
		t.Errorf("green board not rendered: %q", got)
	}
	if s.Execute("quit") {
		t.Error("quit did not end the session")
	}
}
