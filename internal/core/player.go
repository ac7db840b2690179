package core

import (
	"github.com/google/uuid"
)

// Player occupies one seat of a game; UserID is set when the seat was claimed by an authenticated user
type Player struct {
	ID     string `json:"id"`
	Color  Color  `json:"color"`
	UserID string `json:"userId,omitempty"`
}

// PlayersResponse for API responses
type PlayersResponse struct {
	White *Player `json:"white"`
	Black *Player `json:"black"`
}

// NewPlayer creates an anonymous seat for color
func NewPlayer(color Color) *Player {
	return &Player{
		ID:    uuid.New().String(),
		Color: color,
	}
}

// Owns reports whether userID may move for this seat. Unclaimed seats accept anyone.
func (p *Player) Owns(userID string) bool {
	if p == nil || p.UserID == "" {
		return true
	}
	return p.UserID == userID
}
