package processor

import (
	"sensei/internal/core"
)

// CommandType defines the type of command being executed
type CommandType int

const (
	CmdCreateGame CommandType = iota
	CmdGetGame
	CmdListGames
	CmdDeleteGame
	CmdMakeMove
	CmdUndoMove
	CmdGetBoard
	CmdLegalMoves
	CmdExportPGN
)

// Command is a unified structure for all processor operations
type Command struct {
	Type   CommandType
	UserID string
	GameID string // For game-specific commands
	Args   any    // Command-specific arguments
}

// ProcessorResponse wraps the response with metadata
type ProcessorResponse struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

func NewCreateGameCommand(userID string, req core.CreateGameRequest) Command {
	return Command{
		Type:   CmdCreateGame,
		UserID: userID,
		Args:   req,
	}
}

func NewGetGameCommand(gameID string) Command {
	return Command{
		Type:   CmdGetGame,
		GameID: gameID,
	}
}

func NewListGamesCommand() Command {
	return Command{Type: CmdListGames}
}

func NewMakeMoveCommand(gameID, userID string, req core.MoveRequest) Command {
	return Command{
		Type:   CmdMakeMove,
		UserID: userID,
		GameID: gameID,
		Args:   req,
	}
}

func NewUndoMoveCommand(gameID, userID string, req core.UndoRequest) Command {
	return Command{
		Type:   CmdUndoMove,
		UserID: userID,
		GameID: gameID,
		Args:   req,
	}
}

func NewDeleteGameCommand(gameID, userID string) Command {
	return Command{
		Type:   CmdDeleteGame,
		UserID: userID,
		GameID: gameID,
	}
}

func NewGetBoardCommand(gameID string) Command {
	return Command{
		Type:   CmdGetBoard,
		GameID: gameID,
	}
}

func NewLegalMovesCommand(gameID string, req core.LegalMovesRequest) Command {
	return Command{
		Type:   CmdLegalMoves,
		GameID: gameID,
		Args:   req,
	}
}

func NewExportPGNCommand(gameID string) Command {
	return Command{
		Type:   CmdExportPGN,
		GameID: gameID,
	}
}
