package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"sensei/internal/cache"
	"sensei/internal/game"
	"sensei/internal/storage"
)

const cacheTimeout = 2 * time.Second

var (
	ErrGameNotFound       = errors.New("game not found")
	ErrStorageDisabled    = errors.New("storage disabled")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// GameCache is the live-game cache; *cache.Cache satisfies it
type GameCache interface {
	SaveGame(ctx context.Context, gameID string, e cache.Entry)
	LoadGames(ctx context.Context) map[string]cache.Entry
	DeleteGame(ctx context.Context, gameID string)
}

// Service is the in-memory game registry with optional persistence, cache and user accounts
type Service struct {
	games     map[string]*game.Game
	mu        sync.RWMutex
	store     *storage.Store // nil if persistence disabled
	cache     GameCache      // nil if caching disabled
	jwtSecret []byte
	tokenTTL  time.Duration
	waiter    *WaitRegistry
}

// New creates a service; store and gameCache may be nil
func New(store *storage.Store, gameCache GameCache, jwtSecret []byte, tokenTTL time.Duration) *Service {
	return &Service{
		games:     make(map[string]*game.Game),
		store:     store,
		cache:     gameCache,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		waiter:    NewWaitRegistry(),
	}
}

// GetStorageHealth returns "disabled", "ok" or "degraded"
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// PendingWrites is the storage queue depth, zero without storage
func (s *Service) PendingWrites() int64 {
	if s.store == nil {
		return 0
	}
	return s.store.Pending()
}

func (s *Service) CacheEnabled() bool {
	return s.cache != nil
}

// RestoreFromCache loads cached games that are not already in memory and returns how many were added
func (s *Service) RestoreFromCache(ctx context.Context) int {
	if s.cache == nil {
		return 0
	}

	entries := s.cache.LoadGames(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	restored := 0
	for id, e := range entries {
		if _, exists := s.games[id]; exists {
			continue
		}
		g, err := e.Game()
		if err != nil {
			log.Printf("Skipping cached game %s: %v", id, err)
			continue
		}
		s.games[id] = g
		restored++
	}
	return restored
}

func (s *Service) saveToCache(gameID string, e cache.Entry) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()
	s.cache.SaveGame(ctx, gameID, e)
}

func (s *Service) deleteFromCache(gameID string) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()
	s.cache.DeleteGame(ctx, gameID)
}

// Shutdown releases waiters and closes storage
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error
	if err := s.waiter.Shutdown(timeout); err != nil {
		errs = append(errs, err)
	}

	s.mu.Lock()
	s.games = make(map[string]*game.Game)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
