package store

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

// ErrClosed is the cause of a LockError returned once the store is closed.
var ErrClosed = errors.New("store is closed")

// LockError means the shared connection could not be handed out.
type LockError struct {
	Cause error
}

func (e *LockError) Error() string {
	return fmt.Sprintf("failed to acquire database connection: %v", e.Cause)
}

func (e *LockError) Unwrap() error { return e.Cause }

func IsLockError(err error) bool {
	var lockErr *LockError
	return errors.As(err, &lockErr)
}

// Guard hands out the single shared connection to one caller at a time.
// A caller that panics while holding it poisons the guard.
type Guard struct {
	mu       sync.Mutex
	conn     *sql.DB
	poisoned error
	closed   bool
}

func NewGuard(conn *sql.DB) *Guard {
	return &Guard{conn: conn}
}

// WithConnection runs fn while holding the guard. The lock is released on
// every exit path. A panic in fn is returned as a *LockError and leaves the
// guard poisoned.
func WithConnection[T any](g *Guard, fn func(conn *sql.DB) (T, error)) (result T, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return result, &LockError{Cause: ErrClosed}
	}
	if g.poisoned != nil {
		return result, &LockError{Cause: g.poisoned}
	}

	defer func() {
		if r := recover(); r != nil {
			g.poisoned = errors.Errorf("connection holder panicked: %v", r)
			var zero T
			result, err = zero, &LockError{Cause: g.poisoned}
		}
	}()

	return fn(g.conn)
}

// Poisoned returns the cause of the poisoning, or nil.
func (g *Guard) Poisoned() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.poisoned
}

// ClearPoison makes a poisoned guard usable again.
func (g *Guard) ClearPoison() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.poisoned = nil
}

// close waits for the current holder, then refuses every later caller.
func (g *Guard) close(fn func(conn *sql.DB) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true
	return fn(g.conn)
}
