// Package cache keeps live games in redis so a restarted server can pick them up again.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"sensei/internal/core"
	"sensei/internal/game"
)

const keyPrefix = "sensei:game:"

// Entry is the cached form of one game
type Entry struct {
	Snapshots []game.Snapshot `json:"snapshots"`
	White     *core.Player    `json:"white"`
	Black     *core.Player    `json:"black"`
	State     core.State      `json:"state"`
}

// EntryFor captures g for caching
func EntryFor(g *game.Game) Entry {
	return Entry{
		Snapshots: g.Snapshots(),
		White:     g.GetPlayer(core.ColorWhite),
		Black:     g.GetPlayer(core.ColorBlack),
		State:     g.State(),
	}
}

// Game rebuilds the cached game
func (e Entry) Game() (*game.Game, error) {
	return game.Restore(e.Snapshots, e.White, e.Black, e.State)
}

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to redisURL and pings it. Entries expire ttl after their last write; zero keeps them forever.
func New(redisURL string, ttl time.Duration) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Cache{client: client, ttl: ttl}, nil
}

func key(gameID string) string {
	return keyPrefix + gameID
}

// SaveGame overwrites the cached entry and refreshes its expiry. Failures are logged only.
func (c *Cache) SaveGame(ctx context.Context, gameID string, e Entry) {
	data, err := json.Marshal(e)
	if err != nil {
		log.Printf("Cache: failed to encode game %s: %v", gameID, err)
		return
	}
	if err := c.client.Set(ctx, key(gameID), data, c.ttl).Err(); err != nil {
		log.Printf("Cache: failed to save game %s: %v", gameID, err)
	}
}

// LoadGames returns every cached game that still decodes
func (c *Cache) LoadGames(ctx context.Context) map[string]Entry {
	keys, err := c.client.Keys(ctx, keyPrefix+"*").Result()
	if err != nil {
		log.Printf("Cache: failed to list games: %v", err)
		return nil
	}

	results := make(map[string]Entry, len(keys))
	for _, k := range keys {
		data, err := c.client.Get(ctx, k).Bytes()
		if err != nil {
			log.Printf("Cache: failed to read %s: %v", k, err)
			continue
		}
		var e Entry
		if err := json.Unmarshal(data, &e); err != nil {
			log.Printf("Cache: dropping undecodable %s: %v", k, err)
			continue
		}
		results[strings.TrimPrefix(k, keyPrefix)] = e
	}
	return results
}

func (c *Cache) DeleteGame(ctx context.Context, gameID string) {
	if err := c.client.Del(ctx, key(gameID)).Err(); err != nil {
		log.Printf("Cache: failed to delete game %s: %v", gameID, err)
	}
}

func (c *Cache) Close() error {
	return c.client.Close()
}
