package store // import "github.com/Xunop/e-editor/internal/store"

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/Xunop/e-editor/internal/log"
	"github.com/Xunop/e-editor/internal/store/db"
)

type Store struct {
	db    *db.DB
	guard *Guard
	// now is replaced in tests
	now func() time.Time
}

// Open opens the database at path and creates the schema. The returned
// store is the only way to reach the repositories, so the schema is in place
// before any of them run.
func Open(ctx context.Context, path string, opts ...db.Option) (*Store, error) {
	d, err := db.NewDB(path, opts...)
	if err != nil {
		return nil, err
	}
	if err := d.Migrate(ctx); err != nil {
		d.Close()
		return nil, errors.Wrap(err, "failed to migrate database")
	}
	return NewStore(d), nil
}

// NewStore wraps an already migrated database.
func NewStore(d *db.DB) *Store {
	return &Store{
		db:    d,
		guard: NewGuard(d.DB),
		now:   time.Now,
	}
}

func (s *Store) Guard() *Guard {
	return s.guard
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := WithConnection(s.guard, func(conn *sql.DB) (struct{}, error) {
		return struct{}{}, conn.PingContext(stmtContext(ctx))
	})
	return err
}

// Checkpoint truncates the write-ahead log.
func (s *Store) Checkpoint(ctx context.Context) error {
	_, err := WithConnection(s.guard, func(_ *sql.DB) (struct{}, error) {
		return struct{}{}, s.db.Checkpoint(stmtContext(ctx))
	})
	return err
}

// Close waits for the running statement and closes the database. Calls made
// afterwards fail with a *LockError.
func (s *Store) Close() error {
	return s.guard.close(func(_ *sql.DB) error {
		return s.db.Close()
	})
}

// timestamp renders the current time as unix seconds.
func (s *Store) timestamp() string {
	return strconv.FormatInt(s.now().Unix(), 10)
}

// stmtContext detaches ctx from cancellation, a statement that started
// always runs to completion.
func stmtContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}

func logQuery(query string, args []any) {
	log.Debug("SQL query and args:")
	log.Debug(fmt.Sprintf("query: %s\nargs: %v", query, args))
}
