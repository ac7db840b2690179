package service

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// WaitTimeout is the longest a long-poll request is held open
const WaitTimeout = 25 * time.Second

// WaitRegistry tracks long-polling clients per game
type WaitRegistry struct {
	mu       sync.Mutex
	waiters  map[string][]*waitRequest
	shutdown chan struct{}
	closed   bool
	wg       sync.WaitGroup
}

type waitRequest struct {
	moveCount int
	notify    chan struct{} // buffered, receives one wake-up
	done      chan struct{}
	once      sync.Once
	timer     *time.Timer
}

// fire wakes the client once
func (r *waitRequest) fire() {
	r.once.Do(func() {
		r.notify <- struct{}{}
		close(r.done)
	})
}

func (r *waitRequest) release() {
	r.once.Do(func() {
		close(r.notify)
		close(r.done)
	})
}

func NewWaitRegistry() *WaitRegistry {
	return &WaitRegistry{
		waiters:  make(map[string][]*waitRequest),
		shutdown: make(chan struct{}),
	}
}

// RegisterWait returns a channel that receives once the game moves away from moveCount or the wait
// times out. It is closed instead when the registry shuts down.
func (w *WaitRegistry) RegisterWait(ctx context.Context, gameID string, moveCount int) <-chan struct{} {
	req := &waitRequest{
		moveCount: moveCount,
		notify:    make(chan struct{}, 1),
		done:      make(chan struct{}),
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		req.release()
		return req.notify
	}

	req.timer = time.AfterFunc(WaitTimeout, req.fire)
	w.waiters[gameID] = append(w.waiters[gameID], req)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		select {
		case <-ctx.Done():
		case <-req.done:
		case <-w.shutdown:
			req.release()
		}
		req.timer.Stop()
		w.remove(gameID, req)
	}()

	return req.notify
}

// NotifyGame wakes waiters whose last known move count differs from currentMoveCount. A negative
// count wakes everyone.
func (w *WaitRegistry) NotifyGame(gameID string, currentMoveCount int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, req := range w.waiters[gameID] {
		if currentMoveCount < 0 || req.moveCount != currentMoveCount {
			req.fire()
		}
	}
}

// RemoveGame wakes every waiter on a game
func (w *WaitRegistry) RemoveGame(gameID string) {
	w.NotifyGame(gameID, -1)
}

// Waiting returns the number of clients waiting on a game
func (w *WaitRegistry) Waiting(gameID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.waiters[gameID])
}

// Shutdown releases every waiter and waits for the watcher goroutines
func (w *WaitRegistry) Shutdown(timeout time.Duration) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.shutdown)
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("wait registry shutdown timed out")
	}
}

func (w *WaitRegistry) remove(gameID string, req *waitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	list := w.waiters[gameID]
	for i, r := range list {
		if r == req {
			list = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(w.waiters, gameID)
		return
	}
	w.waiters[gameID] = list
}
