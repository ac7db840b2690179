package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/maps"

	"sensei/internal/cache"
	"sensei/internal/core"
	"sensei/internal/game"
	"sensei/internal/storage"
)

// CreateGame registers a new game with pre-constructed players
func (s *Service) CreateGame(id string, whitePlayer, blackPlayer *core.Player, initialFEN string, startingTurn core.Color) error {
	s.mu.Lock()
	if _, exists := s.games[id]; exists {
		s.mu.Unlock()
		return fmt.Errorf("game %s already exists", id)
	}
	g := game.New(initialFEN, whitePlayer, blackPlayer, startingTurn)
	s.games[id] = g
	entry := cache.EntryFor(g)
	s.mu.Unlock()

	if s.store != nil {
		s.store.RecordNewGame(storage.GameRecord{
			GameID:        id,
			InitialFEN:    initialFEN,
			WhitePlayerID: whitePlayer.ID,
			WhiteUserID:   whitePlayer.UserID,
			BlackPlayerID: blackPlayer.ID,
			BlackUserID:   blackPlayer.UserID,
			StartTimeUTC:  time.Now().UTC(),
		})
	}
	s.saveToCache(id, entry)

	return nil
}

// GetGame retrieves a game by ID
func (s *Service) GetGame(gameID string) (*game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return g, nil
}

// ListGames returns the ids of all games in memory, sorted
func (s *Service) ListGames() []string {
	s.mu.RLock()
	ids := maps.Keys(s.games)
	s.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// GenerateGameID creates a new unique game ID
func (s *Service) GenerateGameID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for {
		id := uuid.New().String()
		if _, exists := s.games[id]; !exists {
			return id
		}
	}
}

// ApplyMove appends a validated move to the game history and wakes waiting clients
func (s *Service) ApplyMove(gameID, moveUCI, newFEN string) error {
	s.mu.Lock()
	g, ok := s.games[gameID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	mover := g.NextTurn()
	g.AddSnapshot(newFEN, moveUCI, core.OppositeColor(mover))
	moveNumber := len(g.Moves())
	s.waiter.NotifyGame(gameID, moveNumber)
	entry := cache.EntryFor(g)
	s.mu.Unlock()

	if s.store != nil {
		s.store.RecordMove(storage.MoveRecord{
			GameID:       gameID,
			MoveNumber:   moveNumber,
			MoveUCI:      moveUCI,
			FENAfterMove: newFEN,
			PlayerColor:  mover.String(),
			MoveTimeUTC:  time.Now().UTC(),
		})
	}
	s.saveToCache(gameID, entry)

	return nil
}

// UpdateGameState sets the game's state; a finished game is recorded with its result
func (s *Service) UpdateGameState(gameID string, state core.State) error {
	s.mu.Lock()
	g, ok := s.games[gameID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	previous := g.State()
	g.SetState(state)
	if state.IsOver() {
		s.waiter.NotifyGame(gameID, -1)
	}
	entry := cache.EntryFor(g)
	s.mu.Unlock()

	if previous == state {
		return nil
	}
	if s.store != nil {
		s.store.RecordResult(gameID, state.Result().String())
	}
	s.saveToCache(gameID, entry)

	return nil
}

// SetLastMoveResult stores metadata about the last move
func (s *Service) SetLastMoveResult(gameID string, result *game.MoveResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	g.SetLastResult(result)
	return nil
}

// UndoMoves removes count moves from the end of the history and reopens a finished game
func (s *Service) UndoMoves(gameID string, count int) error {
	s.mu.Lock()
	g, ok := s.games[gameID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	wasOver := g.State().IsOver()
	if err := g.UndoMoves(count); err != nil {
		s.mu.Unlock()
		return err
	}
	remaining := len(g.Moves())
	s.waiter.NotifyGame(gameID, remaining)
	entry := cache.EntryFor(g)
	s.mu.Unlock()

	if s.store != nil {
		s.store.DeleteUndoneMoves(gameID, remaining)
		if wasOver {
			s.store.RecordResult(gameID, core.Result(0).String())
		}
	}
	s.saveToCache(gameID, entry)

	return nil
}

// DeleteGame removes a game from memory and the cache; stored history is kept
func (s *Service) DeleteGame(gameID string) error {
	s.mu.Lock()
	if _, ok := s.games[gameID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	s.waiter.RemoveGame(gameID)
	delete(s.games, gameID)
	s.mu.Unlock()

	s.deleteFromCache(gameID)
	return nil
}

// WaitForChange blocks until the game's move count differs from moveCount, the game ends or is
// deleted, ctx is done or WaitTimeout passes. It returns at once if the count already differs.
func (s *Service) WaitForChange(ctx context.Context, gameID string, moveCount int) {
	s.mu.RLock()
	g, ok := s.games[gameID]
	if !ok || len(g.Moves()) != moveCount || g.State().IsOver() {
		s.mu.RUnlock()
		return
	}
	// registered under the read lock so no move can slip in between
	notify := s.waiter.RegisterWait(ctx, gameID, moveCount)
	s.mu.RUnlock()

	select {
	case <-notify:
	case <-ctx.Done():
	}
}
