package game

import (
	"fmt"
	"sync"

	"sensei/internal/board"
	"sensei/internal/core"
)

type Snapshot struct {
	FEN          string     // Board state at this point
	PreviousMove string     // UCI move that created this position (empty for initial)
	NextTurn     core.Color // Whose turn it is at this position
}

// MoveResult tracks the outcome of the last accepted move
type MoveResult struct {
	Move        string
	PlayerColor core.Color
	GameState   core.State
}

// Game is a linear history of positions. Boards are rebuilt from FEN on demand so callers never
// share a live board. All methods are safe for concurrent use; players are fixed at creation.
type Game struct {
	mu         sync.RWMutex
	snapshots  []Snapshot
	players    map[core.Color]*core.Player
	state      core.State
	lastResult *MoveResult
}

func New(initialFEN string, whitePlayer, blackPlayer *core.Player, startingTurn core.Color) *Game {
	return &Game{
		snapshots: []Snapshot{
			{
				FEN:      initialFEN,
				NextTurn: startingTurn,
			},
		},
		players: map[core.Color]*core.Player{
			core.ColorWhite: whitePlayer,
			core.ColorBlack: blackPlayer,
		},
		state: core.StateOngoing,
	}
}

// Restore rebuilds a game from persisted snapshots; snapshots[0] is the initial position
func Restore(snapshots []Snapshot, whitePlayer, blackPlayer *core.Player, state core.State) (*Game, error) {
	if len(snapshots) == 0 {
		return nil, fmt.Errorf("no snapshots to restore")
	}
	g := New(snapshots[0].FEN, whitePlayer, blackPlayer, snapshots[0].NextTurn)
	g.snapshots = append(g.snapshots[:0], snapshots...)
	g.state = state
	return g, nil
}

// Clone returns an independent copy taken under one read lock; reads of the copy are mutually
// consistent while moves keep landing on the original
func (g *Game) Clone() *Game {
	g.mu.RLock()
	defer g.mu.RUnlock()

	c := &Game{
		snapshots: make([]Snapshot, len(g.snapshots)),
		players:   g.players,
		state:     g.state,
	}
	copy(c.snapshots, g.snapshots)
	if g.lastResult != nil {
		r := *g.lastResult
		c.lastResult = &r
	}
	return c
}

func (g *Game) SetLastResult(result *MoveResult) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastResult = result
}

func (g *Game) LastResult() *MoveResult {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lastResult
}

func (g *Game) CurrentSnapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current()
}

func (g *Game) current() Snapshot {
	return g.snapshots[len(g.snapshots)-1]
}

// Snapshots returns a copy of the full history
func (g *Game) Snapshots() []Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Snapshot, len(g.snapshots))
	copy(out, g.snapshots)
	return out
}

func (g *Game) CurrentFEN() string {
	return g.CurrentSnapshot().FEN
}

// Board parses the current position into a fresh board owned by the caller
func (g *Game) Board() (*board.Board, error) {
	fen := g.CurrentFEN()
	b, errs := board.ParseFEN(fen)
	if len(errs) > 0 {
		return nil, fmt.Errorf("stored position %q is malformed: %v", fen, errs[0])
	}
	return b, nil
}

func (g *Game) NextTurn() core.Color {
	return g.CurrentSnapshot().NextTurn
}

func (g *Game) NextPlayer() *core.Player {
	return g.players[g.NextTurn()]
}

func (g *Game) GetPlayer(color core.Color) *core.Player {
	return g.players[color]
}

func (g *Game) AddSnapshot(fen string, move string, nextTurn core.Color) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.snapshots = append(g.snapshots, Snapshot{
		FEN:          fen,
		PreviousMove: move,
		NextTurn:     nextTurn,
	})
}

func (g *Game) UndoMoves(count int) error {
	if count < 1 {
		return fmt.Errorf("invalid undo count: %d", count)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	availableMoves := len(g.snapshots) - 1
	if availableMoves < count {
		return fmt.Errorf("cannot undo %d moves: only %d moves available", count, availableMoves)
	}

	g.snapshots = g.snapshots[:len(g.snapshots)-count]
	g.state = core.StateOngoing
	g.lastResult = nil
	return nil
}

func (g *Game) Moves() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	moves := []string{}
	for i := 1; i < len(g.snapshots); i++ {
		if g.snapshots[i].PreviousMove != "" {
			moves = append(moves, g.snapshots[i].PreviousMove)
		}
	}
	return moves
}

func (g *Game) State() core.State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

func (g *Game) SetState(s core.State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = s
}

func (g *Game) InitialFEN() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if len(g.snapshots) > 0 {
		return g.snapshots[0].FEN
	}
	return board.StartingFEN
}
