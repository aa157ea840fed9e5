package store

import (
	"fmt"

	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DBError is a statement that failed inside the engine.
type DBError struct {
	Op         string
	Constraint bool
	Err        error
}

func (e *DBError) Error() string {
	if e.Constraint {
		return fmt.Sprintf("%s: constraint violation: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DBError) Unwrap() error { return e.Err }

// IsConstraint reports whether err is a constraint violation.
func IsConstraint(err error) bool {
	var dbErr *DBError
	return errors.As(err, &dbErr) && dbErr.Constraint
}

func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	var dbErr *DBError
	if errors.As(err, &dbErr) {
		return err
	}
	return &DBError{Op: op, Constraint: isConstraintCode(err), Err: err}
}

func isConstraintCode(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	// Extended result codes keep the primary code in the low byte.
	return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
