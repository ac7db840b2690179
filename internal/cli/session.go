package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"sensei/internal/board"
	"sensei/internal/core"
	"sensei/internal/move"
	"sensei/internal/rules"
)

type CommandType int

const (
	CmdNone CommandType = iota
	CmdNew
	CmdResume
	CmdMove
	CmdMoves
	CmdUndo
	CmdFEN
	CmdColor
	CmdHistory
	CmdHelp
	CmdQuit
)

type Command struct {
	Type CommandType
	Args []string
	Raw  string
}

func ParseCommand(input string) Command {
	input = strings.TrimSpace(input)
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return Command{Type: CmdNone}
	}

	cmd := parts[0]
	args := parts[1:]

	switch strings.ToLower(cmd) {
	case "new":
		return Command{Type: CmdNew, Args: args}
	case "resume":
		return Command{Type: CmdResume, Args: args, Raw: strings.TrimSpace(input[len(cmd):])}
	case "moves":
		return Command{Type: CmdMoves, Args: args}
	case "undo":
		return Command{Type: CmdUndo, Args: args}
	case "fen":
		return Command{Type: CmdFEN}
	case "color":
		return Command{Type: CmdColor, Args: args}
	case "history":
		return Command{Type: CmdHistory}
	case "help", "?":
		return Command{Type: CmdHelp}
	case "quit", "exit":
		return Command{Type: CmdQuit}
	default:
		return Command{Type: CmdMove, Args: []string{cmd}}
	}
}

// Asker reads one answer for an interactive question
type Asker func(question string) (string, error)

// Session is a local game driven by typed commands. Positions are kept as a stack of boards so
// undo and history never replay moves.
type Session struct {
	view    *View
	engine  *rules.Engine
	ask     Asker
	history []board.Board
	moves   []string
	state   core.State
}

func NewSession(view *View, ask Asker) *Session {
	return &Session{
		view:   view,
		engine: rules.New(),
		ask:    ask,
	}
}

func (s *Session) active() bool {
	return len(s.history) > 0
}

func (s *Session) current() *board.Board {
	return &s.history[len(s.history)-1]
}

// Prompt shows whose turn it is
func (s *Session) Prompt() string {
	if !s.active() {
		return "chess"
	}
	if s.state.IsOver() {
		return fmt.Sprintf("chess [%s]", s.state)
	}
	return fmt.Sprintf("chess [%s]", s.current().Active.Name())
}

// Execute runs one command line and reports whether the session should continue
func (s *Session) Execute(line string) bool {
	cmd := ParseCommand(line)

	switch cmd.Type {
	case CmdQuit:
		return false
	case CmdNone:
	case CmdHelp:
		s.view.ShowHelp()
	case CmdNew:
		s.start(board.NewStartingBoard())
	case CmdResume:
		s.resume(cmd.Raw)
	case CmdColor:
		s.setColor(cmd.Args)
	case CmdMove:
		s.play(cmd.Args[0])
	case CmdMoves:
		s.listMoves(cmd.Args)
	case CmdUndo:
		s.undo(cmd.Args)
	case CmdFEN:
		if s.requireGame() {
			s.view.ShowMessage(s.current().FEN())
		}
	case CmdHistory:
		if s.requireGame() {
			s.view.ShowHistory(s.history[0].FEN(), s.history[0].Active, s.moves, s.current().FEN(), s.state)
		}
	}
	return true
}

func (s *Session) requireGame() bool {
	if !s.active() {
		s.view.ShowMessage("No active game. Use 'new' or 'resume <FEN>'.")
		return false
	}
	return true
}

func (s *Session) start(b *board.Board) {
	s.history = []board.Board{*b}
	s.moves = nil
	s.state = core.StateOngoing
	s.view.DisplayBoard(b)
	s.evaluate()
}

// resume loads a FEN; problems are reported and play continues on the best-effort board
func (s *Session) resume(fen string) {
	if fen == "" {
		s.view.ShowMessage("Usage: resume <FEN string>")
		return
	}

	b, errs := board.ParseFEN(fen)
	for _, e := range errs {
		s.view.ShowMessage(fmt.Sprintf("  FEN %v", e))
		if e.Field == board.FieldActive {
			s.view.ShowMessage("  Defaulting to White to move")
		}
	}
	s.start(b)
}

func (s *Session) setColor(args []string) {
	if len(args) != 1 {
		s.view.ShowMessage(fmt.Sprintf("Current theme: %s. Usage: color <off|brown|green|gray>", s.view.Theme()))
		return
	}
	if err := s.view.SetTheme(ColorTheme(strings.ToLower(args[0]))); err != nil {
		s.view.ShowError(err)
		return
	}
	if s.active() {
		s.view.DisplayBoard(s.current())
	}
}

func (s *Session) play(text string) {
	if !s.requireGame() {
		return
	}
	if s.state.IsOver() {
		s.view.ShowGameOver(s.state)
		return
	}

	b := s.current()
	req, err := move.ParseUCI(strings.ToLower(text), b.Active)
	if err != nil {
		s.view.ShowError(fmt.Errorf("unknown command or move %q (type 'help')", text))
		return
	}

	m, ok := s.engine.FindMove(b, req.From, req.To, req.Promotion)
	if !ok {
		s.view.ShowError(fmt.Errorf("illegal move: %s", text))
		return
	}

	if s.engine.IsPromotion(b, m) && m.Promotion == move.NoPromotion {
		promo, err := s.askPromotion()
		if err != nil {
			s.view.ShowError(err)
			return
		}
		m = m.WithPromotion(promo)
	}

	next := *b
	if applied, err := s.engine.Apply(&next, m); err != nil || !applied {
		s.view.ShowError(fmt.Errorf("illegal move: %s", text))
		return
	}

	s.history = append(s.history, next)
	s.moves = append(s.moves, m.UCI())
	s.view.DisplayBoard(&next)
	s.evaluate()
}

var errNoPromotion = errors.New("promotion cancelled")

func (s *Session) askPromotion() (move.Promotion, error) {
	if s.ask == nil {
		return move.PromoteQueen, nil
	}

	for {
		answer, err := s.ask("Promote to (q/r/b/n) [q]: ")
		if err != nil {
			return move.NoPromotion, errNoPromotion
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer == "" {
			return move.PromoteQueen, nil
		}
		if len(answer) == 1 {
			if p, ok := move.ParsePromotion(answer[0]); ok {
				return p, nil
			}
		}
		s.view.ShowMessage("Choose q, r, b or n.")
	}
}

// evaluate reports check and records a finished game
func (s *Session) evaluate() {
	b := s.current()
	if result, over := s.engine.Result(b); over {
		s.state = core.StateFromResult(result)
		s.view.ShowGameOver(s.state)
		return
	}
	s.state = core.StateOngoing
	if s.engine.InCheck(b, b.Active) {
		s.view.ShowMessage(fmt.Sprintf("%s is in check.", b.Active.Name()))
	}
}

func (s *Session) listMoves(args []string) {
	if !s.requireGame() {
		return
	}

	b := s.current()
	var from *board.Square
	if len(args) > 0 {
		sq, err := board.ParseSquare(args[0])
		if err != nil {
			s.view.ShowError(err)
			return
		}
		from = &sq
	}

	moves, err := s.engine.LegalMoves(b, from, b.Active)
	if err != nil {
		s.view.ShowError(err)
		return
	}
	if len(moves) == 0 {
		s.view.ShowMessage("No legal moves.")
		return
	}

	names := make([]string, len(moves))
	for i, m := range moves {
		names[i] = m.UCI()
		if m.IsCastle() {
			names[i] += " (" + m.Side.String() + ")"
		} else if s.engine.IsPromotion(b, m) {
			names[i] += "=?"
		}
	}
	s.view.ShowMessage(strings.Join(names, "  "))
}

func (s *Session) undo(args []string) {
	if !s.requireGame() {
		return
	}

	count := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			s.view.ShowError(fmt.Errorf("invalid undo count: %s", args[0]))
			return
		}
		count = n
	}

	if count > len(s.moves) {
		s.view.ShowError(fmt.Errorf("cannot undo %d moves: only %d moves available", count, len(s.moves)))
		return
	}

	s.history = s.history[:len(s.history)-count]
	s.moves = s.moves[:len(s.moves)-count]
	s.view.DisplayBoard(s.current())
	s.evaluate()
}
