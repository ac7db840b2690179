package processor

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"sensei/internal/board"
	"sensei/internal/core"
	"sensei/internal/game"
	"sensei/internal/move"
	"sensei/internal/pgn"
	"sensei/internal/rules"
	"sensei/internal/service"
)

const defaultUndoCount = 1

// FEN validation regex
var fenPattern = regexp.MustCompile(`^[rnbqkpRNBQKP1-8/]+ [wb] [KQkq-]+ [a-h1-8-]+ \d+ \d+$`)

// Processor handles command execution and coordinates between the service and the rule engine
type Processor struct {
	svc    *service.Service
	engine *rules.Engine
	mu     sync.Mutex // serializes commands that change a game's history
}

func New(svc *service.Service) *Processor {
	return &Processor{
		svc:    svc,
		engine: rules.New(),
	}
}

func (p *Processor) Execute(cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreateGame:
		return p.handleCreateGame(cmd)
	case CmdGetGame:
		return p.handleGetGame(cmd)
	case CmdListGames:
		return p.handleListGames()
	case CmdMakeMove:
		return p.handleMakeMove(cmd)
	case CmdUndoMove:
		return p.handleUndoMove(cmd)
	case CmdDeleteGame:
		return p.handleDeleteGame(cmd)
	case CmdGetBoard:
		return p.handleGetBoard(cmd)
	case CmdLegalMoves:
		return p.handleLegalMoves(cmd)
	case CmdExportPGN:
		return p.handleExportPGN(cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

// isFENSafe checks for control characters and matches the FEN pattern
func (p *Processor) isFENSafe(fen string) bool {
	for _, r := range fen {
		if unicode.IsControl(r) && r != ' ' {
			return false
		}
	}

	return fenPattern.MatchString(fen)
}

func (p *Processor) isMoveSafe(move string) bool {
	for _, r := range move {
		if unicode.IsControl(r) {
			return false
		}
	}

	// UCI moves: [a-h][1-8][a-h][1-8][qrbn]?
	if len(move) < 4 || len(move) > 5 {
		return false
	}

	if move[0] < 'a' || move[0] > 'h' ||
		move[1] < '1' || move[1] > '8' ||
		move[2] < 'a' || move[2] > 'h' ||
		move[3] < '1' || move[3] > '8' {
		return false
	}

	if len(move) == 5 {
		promotion := move[4]
		if promotion != 'q' && promotion != 'r' && promotion != 'b' && promotion != 'n' {
			return false
		}
	}

	return true
}

// handleCreateGame creates a game from the starting position or a caller-supplied FEN
func (p *Processor) handleCreateGame(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateGameRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	if args.Seat != "" && cmd.UserID == "" {
		return p.errorResponse("claiming a seat requires authentication", core.ErrUnauthorized)
	}

	initialFEN := board.StartingFEN
	if args.FEN != "" {
		initialFEN = strings.TrimSpace(args.FEN)
		if !p.isFENSafe(initialFEN) {
			return p.errorResponse("invalid FEN format or characters", core.ErrInvalidFEN)
		}
	}

	b, errs := board.ParseFEN(initialFEN)
	if len(errs) > 0 {
		return p.errorDetails("invalid FEN", core.ErrInvalidFEN, joinParseErrors(errs))
	}
	initialFEN = b.FEN()

	whitePlayer := core.NewPlayer(core.ColorWhite)
	blackPlayer := core.NewPlayer(core.ColorBlack)
	switch args.Seat {
	case "w":
		whitePlayer.UserID = cmd.UserID
	case "b":
		blackPlayer.UserID = cmd.UserID
	case "both":
		whitePlayer.UserID = cmd.UserID
		blackPlayer.UserID = cmd.UserID
	}

	gameID := p.svc.GenerateGameID()
	if err := p.svc.CreateGame(gameID, whitePlayer, blackPlayer, initialFEN, b.Active); err != nil {
		return p.errorResponse(fmt.Sprintf("failed to create game: %v", err), core.ErrInternalError)
	}

	// A supplied position may already be decided
	p.checkGameEnd(gameID, b)

	g, err := p.svc.GetGame(gameID)
	if err != nil {
		return p.errorResponse("game creation failed", core.ErrInternalError)
	}

	return ProcessorResponse{
		Success: true,
		Data:    p.buildGameResponse(gameID, g),
	}
}

func (p *Processor) handleGetGame(cmd Command) ProcessorResponse {
	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	return ProcessorResponse{
		Success: true,
		Data:    p.buildGameResponse(cmd.GameID, g),
	}
}

func (p *Processor) handleListGames() ProcessorResponse {
	return ProcessorResponse{
		Success: true,
		Data:    core.GameListResponse{Games: p.svc.ListGames()},
	}
}

// handleMakeMove validates a UCI move against the rule engine and records the resulting position
func (p *Processor) handleMakeMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	if state := g.State(); state.IsOver() {
		return p.errorResponse(fmt.Sprintf("game is over: %s", state), core.ErrGameOver)
	}

	if !g.NextPlayer().Owns(cmd.UserID) {
		return p.errorResponse(fmt.Sprintf("%s is played by another user", g.NextTurn().Name()), core.ErrNotYourTurn)
	}

	text := strings.ToLower(strings.TrimSpace(args.Move))
	if !p.isMoveSafe(text) {
		return p.errorResponse("invalid move format", core.ErrInvalidMove)
	}

	b, err := g.Board()
	if err != nil {
		return p.errorResponse(err.Error(), core.ErrInternalError)
	}

	req, err := move.ParseUCI(text, b.Active)
	if err != nil {
		return p.errorResponse(err.Error(), core.ErrInvalidMove)
	}

	m, ok := p.engine.FindMove(b, req.From, req.To, req.Promotion)
	if !ok {
		return p.errorResponse("illegal move", core.ErrInvalidMove)
	}
	if p.engine.IsPromotion(b, m) && m.Promotion == move.NoPromotion {
		return p.errorDetails("illegal move", core.ErrInvalidMove, "promotion piece required (q, r, b or n)")
	}

	mover := b.Active
	applied, err := p.engine.Apply(b, m)
	if err != nil {
		return p.errorResponse(err.Error(), core.ErrInternalError)
	}
	if !applied {
		return p.errorResponse("illegal move", core.ErrInvalidMove)
	}

	uci := m.UCI()
	if err = p.svc.ApplyMove(cmd.GameID, uci, b.FEN()); err != nil {
		return p.errorResponse(fmt.Sprintf("failed to apply move: %v", err), core.ErrInternalError)
	}

	state := p.checkGameEnd(cmd.GameID, b)
	p.svc.SetLastMoveResult(cmd.GameID, &game.MoveResult{
		Move:        uci,
		PlayerColor: mover,
		GameState:   state,
	})

	g, err = p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	return ProcessorResponse{
		Success: true,
		Data:    p.buildGameResponse(cmd.GameID, g),
	}
}

// handleUndoMove reverts moves and re-evaluates the restored position
func (p *Processor) handleUndoMove(cmd Command) ProcessorResponse {
	args := core.UndoRequest{Count: defaultUndoCount}
	if req, ok := cmd.Args.(core.UndoRequest); ok && req.Count > 0 {
		args = req
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}
	if !p.seated(g, cmd.UserID) {
		return p.errorResponse("not a player of this game", core.ErrUnauthorized)
	}

	if err = p.svc.UndoMoves(cmd.GameID, args.Count); err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			return p.errorResponse("game not found", core.ErrGameNotFound)
		}
		return p.errorResponse(err.Error(), core.ErrInvalidRequest)
	}

	g, err = p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}
	if b, err := g.Board(); err == nil {
		p.checkGameEnd(cmd.GameID, b)
	}

	return ProcessorResponse{
		Success: true,
		Data:    p.buildGameResponse(cmd.GameID, g),
	}
}

func (p *Processor) handleDeleteGame(cmd Command) ProcessorResponse {
	p.mu.Lock()
	defer p.mu.Unlock()

	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}
	if !p.seated(g, cmd.UserID) {
		return p.errorResponse("not a player of this game", core.ErrUnauthorized)
	}

	if err = p.svc.DeleteGame(cmd.GameID); err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	return ProcessorResponse{
		Success: true,
	}
}

// handleGetBoard returns board visualization
func (p *Processor) handleGetBoard(cmd Command) ProcessorResponse {
	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	b, err := g.Board()
	if err != nil {
		return p.errorResponse("error parsing FEN", core.ErrInvalidFEN)
	}

	return ProcessorResponse{
		Success: true,
		Data: core.BoardResponse{
			FEN:   b.FEN(),
			Board: b.ToASCII(),
		},
	}
}

// handleLegalMoves lists the side to move's legal moves, optionally restricted to one square
func (p *Processor) handleLegalMoves(cmd Command) ProcessorResponse {
	args, _ := cmd.Args.(core.LegalMovesRequest)

	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	b, err := g.Board()
	if err != nil {
		return p.errorResponse("error parsing FEN", core.ErrInvalidFEN)
	}

	var from *board.Square
	if args.From != "" {
		sq, err := board.ParseSquare(args.From)
		if err != nil {
			return p.errorResponse(err.Error(), core.ErrInvalidRequest)
		}
		from = &sq
	}

	resp := core.LegalMovesResponse{
		GameID: cmd.GameID,
		Turn:   b.Active.String(),
		Moves:  []core.LegalMove{},
	}
	if from != nil {
		resp.From = from.Lower()
	}

	if g.State().IsOver() {
		return ProcessorResponse{Success: true, Data: resp}
	}

	moves, err := p.engine.LegalMoves(b, from, b.Active)
	if err != nil {
		return p.errorResponse(err.Error(), core.ErrInternalError)
	}
	for _, m := range moves {
		resp.Moves = append(resp.Moves, p.describeMove(b, m))
	}

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

// describeMove annotates a legal move; promotions are played as queens to decide the check flag
func (p *Processor) describeMove(b *board.Board, m move.Move) core.LegalMove {
	lm := core.LegalMove{
		Move:      m.UCI(),
		From:      m.KingFrom().Lower(),
		To:        m.KingTo().Lower(),
		EnPassant: m.EnPassant,
		Promotion: p.engine.IsPromotion(b, m),
	}
	if m.IsCastle() {
		lm.Castle = m.Side.String()
	}

	if lm.Promotion {
		m = m.WithPromotion(move.PromoteQueen)
	}
	scratch := b.Clone()
	if ok, err := p.engine.Apply(scratch, m); err == nil && ok {
		lm.Check = p.engine.InCheck(scratch, scratch.Active)
	}
	return lm
}

// handleExportPGN renders the game history as PGN
func (p *Processor) handleExportPGN(cmd Command) ProcessorResponse {
	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	g = g.Clone()
	text, err := pgn.Export(g.InitialFEN(), g.Moves(), g.State().Result())
	if err != nil {
		return p.errorDetails("failed to export PGN", core.ErrInternalError, err.Error())
	}

	return ProcessorResponse{
		Success: true,
		Data: core.PGNResponse{
			GameID: cmd.GameID,
			PGN:    text,
		},
	}
}

// checkGameEnd evaluates the position and records a finished game
func (p *Processor) checkGameEnd(gameID string, b *board.Board) core.State {
	result, over := p.engine.Result(b)
	if !over {
		return core.StateOngoing
	}

	state := core.StateFromResult(result)
	p.svc.UpdateGameState(gameID, state)
	return state
}

// seated reports whether userID may manage the game. Games with an unclaimed seat are open to anyone.
func (p *Processor) seated(g *game.Game, userID string) bool {
	return g.GetPlayer(core.ColorWhite).Owns(userID) || g.GetPlayer(core.ColorBlack).Owns(userID)
}

// buildGameResponse constructs standard game response
func (p *Processor) buildGameResponse(gameID string, g *game.Game) core.GameResponse {
	g = g.Clone()
	resp := core.GameResponse{
		GameID: gameID,
		FEN:    g.CurrentFEN(),
		Turn:   g.NextTurn().String(),
		State:  g.State().String(),
		Moves:  g.Moves(),
		Players: core.PlayersResponse{
			White: g.GetPlayer(core.ColorWhite),
			Black: g.GetPlayer(core.ColorBlack),
		},
	}

	if b, err := g.Board(); err == nil {
		resp.Check = p.engine.InCheck(b, b.Active)
	}

	if result := g.LastResult(); result != nil {
		resp.LastMove = &core.MoveInfo{
			Move:        result.Move,
			PlayerColor: result.PlayerColor.String(),
		}
	}

	return resp
}

func joinParseErrors(errs []board.ParseError) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// errorResponse creates error response
func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return p.errorDetails(message, code, "")
}

func (p *Processor) errorDetails(message, code, details string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error:   message,
			Code:    code,
			Details: details,
		},
	}
}
