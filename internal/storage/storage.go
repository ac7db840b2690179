package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const writeQueueSize = 1000

var ErrUserExists = errors.New("username or email already exists")

// writeOp is one queued history write; what names it in logs
type writeOp struct {
	what string
	fn   func(*sql.Tx) error
}

// Store persists game history and users in SQLite. Game history is written asynchronously by a
// single writer goroutine so request handlers never wait on disk; user writes are synchronous.
// The first failed history write marks the store degraded and later history writes are skipped.
type Store struct {
	db      *sql.DB
	path    string
	writes  chan writeOp
	healthy atomic.Bool
	pending atomic.Int64
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// dsn builds the go-sqlite3 connection string; dev mode adds WAL so the file can be inspected
// while the server runs
func dsn(path string, devMode bool) string {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", "5000")
	if devMode {
		params.Set("_journal_mode", "WAL")
	}
	return path + "?" + params.Encode()
}

// NewStore opens the database at path and starts the history writer
func NewStore(path string, devMode bool) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(path, devMode))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite has a single writer and connection parameters are per connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		db:     db,
		path:   path,
		writes: make(chan writeOp, writeQueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	s.healthy.Store(true)

	s.wg.Add(1)
	go s.writerLoop()

	return s, nil
}

// IsHealthy returns false once any history write has failed
func (s *Store) IsHealthy() bool {
	return s.healthy.Load()
}

// Pending is the number of queued history writes not yet committed
func (s *Store) Pending() int64 {
	return s.pending.Load()
}

func (s *Store) writerLoop() {
	defer s.wg.Done()

	for {
		select {
		case op := <-s.writes:
			s.run(op)
		case <-s.ctx.Done():
			s.drain()
			return
		}
	}
}

// drain commits what was queued before shutdown
func (s *Store) drain() {
	for {
		select {
		case op := <-s.writes:
			s.run(op)
		default:
			return
		}
	}
}

func (s *Store) run(op writeOp) {
	defer s.pending.Add(-1)
	if !s.healthy.Load() {
		return
	}
	if err := s.commit(op.fn); err != nil {
		log.Printf("Storage degraded: %s failed: %v", op.what, err)
		s.healthy.Store(false)
	}
}

func (s *Store) commit(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// enqueue hands a write to the writer. It is dropped when the store is degraded or the queue is full.
func (s *Store) enqueue(what string, fn func(*sql.Tx) error) {
	if !s.healthy.Load() {
		return
	}

	s.pending.Add(1)
	select {
	case s.writes <- writeOp{what: what, fn: fn}:
	default:
		s.pending.Add(-1)
		log.Printf("Storage write queue full, dropping %s", what)
	}
}

// Flush waits until every queued write has been committed or skipped
func (s *Store) Flush(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for s.pending.Load() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Close stops the writer, letting it drain, then closes the database
func (s *Store) Close() error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		log.Printf("Warning: storage writer shutdown timeout, some writes may be lost")
	}

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitDB creates the schema
func (s *Store) InitDB() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return tx.Commit()
}

// DeleteDB closes the store and removes the database file
func (s *Store) DeleteDB() error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete database file: %w", err)
	}

	return nil
}
