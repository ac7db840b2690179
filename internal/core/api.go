package core

// Request types

type CreateGameRequest struct {
	FEN string `json:"fen,omitempty" validate:"omitempty,max=100"`
	// Seat to claim for the authenticated caller: "w", "b", "both" or empty for none
	Seat string `json:"seat,omitempty" validate:"omitempty,oneof=w b both"`
}

type MoveRequest struct {
	Move string `json:"move" validate:"required,min=4,max=5"` // UCI: e2e4, e1g1 (castle), a7a8q (promotion)
}

type LegalMovesRequest struct {
	From string `json:"from,omitempty" validate:"omitempty,square"` // empty lists the whole side
}

type UndoRequest struct {
	Count int `json:"count" validate:"required,min=1,max=300"`
}

// Response types

type GameResponse struct {
	GameID   string          `json:"gameId"`
	FEN      string          `json:"fen"`
	Turn     string          `json:"turn"`  // "w" or "b"
	State    string          `json:"state"` // "ongoing", "white wins", etc
	Check    bool            `json:"check"`
	Moves    []string        `json:"moves"`
	Players  PlayersResponse `json:"players"`
	LastMove *MoveInfo       `json:"lastMove,omitempty"`
}

type MoveInfo struct {
	Move        string `json:"move"`
	PlayerColor string `json:"playerColor"` // "w" or "b"
}

type LegalMove struct {
	Move      string `json:"move"` // UCI
	From      string `json:"from"`
	To        string `json:"to"`
	Castle    string `json:"castle,omitempty"` // "O-O" or "O-O-O"
	EnPassant bool   `json:"enPassant,omitempty"`
	Promotion bool   `json:"promotion,omitempty"` // caller must attach a promotion piece
	Check     bool   `json:"check,omitempty"`     // leaves the opponent in check
}

type LegalMovesResponse struct {
	GameID string      `json:"gameId"`
	From   string      `json:"from,omitempty"`
	Turn   string      `json:"turn"`
	Moves  []LegalMove `json:"moves"`
}

type GameListResponse struct {
	Games []string `json:"games"`
}

type BoardResponse struct {
	FEN   string `json:"fen"`
	Board string `json:"board"` // ASCII representation
}

type PGNResponse struct {
	GameID string `json:"gameId"`
	PGN    string `json:"pgn"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
