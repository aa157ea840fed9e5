package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Xunop/e-editor/internal/log"
)

const (
	driverName           = "sqlite"
	memoryPath           = ":memory:"
	latestSchemaFileName = "LATEST_SCHEMA.sql"
	defaultBusyTimeout   = 5000
)

//go:embed migration
var migrationFS embed.FS

// IOError reports that the database directory or file could not be
// created or opened.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("database %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

type DB struct {
	*sql.DB
	path string
}

type Option func(*options)

type options struct {
	busyTimeout int
}

// WithBusyTimeout sets how long sqlite waits on a locked file, in milliseconds.
func WithBusyTimeout(ms int) Option {
	return func(o *options) {
		if ms > 0 {
			o.busyTimeout = ms
		}
	}
}

// NewDB opens (or creates) the database file at path. The directory holding
// it is created first. The pool is capped to a single connection, every
// caller shares it.
func NewDB(path string, opts ...Option) (*DB, error) {
	if path == "" {
		return nil, &IOError{Path: path, Err: errors.New("database path is required")}
	}
	o := &options{busyTimeout: defaultBusyTimeout}
	for _, opt := range opts {
		opt(o)
	}

	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, &IOError{Path: path, Err: errors.Wrap(err, "failed to create database directory")}
		}
	}

	d, err := sql.Open(driverName, dsn(path, o))
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	d.SetMaxOpenConns(1)
	d.SetMaxIdleConns(1)
	d.SetConnMaxLifetime(0)

	if err := d.Ping(); err != nil {
		d.Close()
		return nil, &IOError{Path: path, Err: errors.Wrap(err, "failed to open database")}
	}

	return &DB{DB: d, path: path}, nil
}

func dsn(path string, o *options) string {
	if path == memoryPath {
		return path
	}
	// The path goes into a URI, so '?', '#' and '%' must be escaped.
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", (&url.URL{Path: path}).EscapedPath(), o.busyTimeout)
}

func (d *DB) Path() string {
	return d.path
}

func (d *DB) Close() error {
	return d.DB.Close()
}

// Migrate switches the journal to WAL and creates the tables that are not
// there yet. Running it against an initialized file changes nothing.
func (d *DB) Migrate(ctx context.Context) error {
	if err := d.enableWAL(ctx); err != nil {
		// The connection stays usable with the default rollback journal.
		log.Warn("Failed to enable WAL journal mode", zap.String("path", d.path), zap.Error(err))
	}
	if err := d.applyLatestSchema(ctx); err != nil {
		return errors.Wrap(err, "failed to apply latest schema")
	}
	return nil
}

// JournalMode reports the journal mode of the connection.
func (d *DB) JournalMode(ctx context.Context) (string, error) {
	var mode string
	if err := d.DB.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
		return "", err
	}
	return strings.ToLower(mode), nil
}

func (d *DB) enableWAL(ctx context.Context) error {
	var mode string
	if err := d.DB.QueryRowContext(ctx, "PRAGMA journal_mode=WAL").Scan(&mode); err != nil {
		return errors.Wrap(err, "failed to set journal_mode")
	}
	if !strings.EqualFold(mode, "wal") {
		return errors.Errorf("journal_mode is %q", mode)
	}
	log.Debug("WAL journal mode enabled", zap.String("path", d.path))
	return nil
}

func (d *DB) applyLatestSchema(ctx context.Context) error {
	latestSchemaPath := fmt.Sprintf("migration/%s", latestSchemaFileName)
	buf, err := migrationFS.ReadFile(latestSchemaPath)
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema file: %q", latestSchemaPath)
	}

	stmt := string(buf)
	if err := d.execute(ctx, stmt); err != nil {
		return errors.Wrapf(err, "failed to apply latest schema: %s", stmt)
	}
	return nil
}

// execute runs a single SQL statement within a transaction.
func (d *DB) execute(ctx context.Context, stmt string) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "failed to execute statement")
	}

	return tx.Commit()
}

// CheckTableExists reports whether tableName is present in the schema.
func (d *DB) CheckTableExists(ctx context.Context, tableName string) (bool, error) {
	query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
	var name string
	if err := d.DB.QueryRowContext(ctx, query, tableName).Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// Checkpoint copies the WAL back into the database file and truncates it.
func (d *DB) Checkpoint(ctx context.Context) error {
	var busy, logFrames, checkpointed int
	if err := d.DB.QueryRowContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)").Scan(&busy, &logFrames, &checkpointed); err != nil {
		return errors.Wrap(err, "failed to checkpoint wal")
	}
	log.Debug("WAL checkpoint",
		zap.Int("busy", busy),
		zap.Int("log_frames", logFrames),
		zap.Int("checkpointed", checkpointed))
	return nil
}
