// Package catalog persists artists, albums, tracks and the files they were
// imported from in a SQLite database.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/llehouerou/crate/internal/db"
	"github.com/llehouerou/crate/internal/errmsg"
)

// ErrStaleRow is returned when an update or delete that must affect exactly
// one row did not. It means the caller holds a row that no longer matches the
// catalog, which is a bug rather than a user error.
var ErrStaleRow = errors.New("stale row")

// ErrNotFound is returned by the ByID and ByUUID getters.
var ErrNotFound = errors.New("not found")

// executor is satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// Store runs catalog statements against a database or a transaction.
type Store struct {
	ex executor
}

// Catalog is an open catalog database. Methods of the embedded Store run in
// autocommit mode; Update groups statements in one transaction.
type Catalog struct {
	*Store
	db   *sql.DB
	lock *flock.Flock
}

// Open opens the catalog at path, creating it if needed. The catalog is
// locked for the lifetime of the returned value.
func Open(path string) (*Catalog, error) {
	return open(path, false)
}

// Init deletes the catalog at path, if any, and opens a new empty one.
func Init(path string) (*Catalog, error) {
	return open(path, true)
}

func open(path string, reset bool) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock catalog: %w", err)
	}
	if !locked {
		return nil, errmsg.Reportable("Catalog %s is in use by another process", path)
	}

	if reset {
		for _, p := range []string{path, path + "-wal", path + "-shm"} {
			if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
				_ = lock.Unlock()
				return nil, fmt.Errorf("remove catalog: %w", err)
			}
		}
	}

	sqlDB, err := db.Open(path)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	c, err := New(sqlDB)
	if err != nil {
		sqlDB.Close()
		_ = lock.Unlock()
		return nil, err
	}
	c.lock = lock
	return c, nil
}

// New wraps an open database and creates the schema. The database should
// come from db.Open so foreign keys are enforced.
func New(sqlDB *sql.DB) (*Catalog, error) {
	if err := initSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Catalog{Store: &Store{ex: sqlDB}, db: sqlDB}, nil
}

// Update runs fn in a transaction. The transaction is rolled back if fn
// returns an error.
func (c *Catalog) Update(fn func(s *Store) error) error {
	return db.WithTx(c.db, func(tx *sql.Tx) error {
		return fn(&Store{ex: tx})
	})
}

// DB returns the underlying database.
func (c *Catalog) DB() *sql.DB {
	return c.db
}

// Close closes the database and releases the lock.
func (c *Catalog) Close() error {
	err := c.db.Close()
	if c.lock != nil {
		err = errors.Join(err, c.lock.Unlock())
	}
	return err
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint error.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// expectOne checks that a statement affected exactly one row.
func expectOne(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("%s with ID %d (%d rows affected): %w", what, id, n, ErrStaleRow)
	}
	return nil
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
