package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/diarydek/diarydek/internal/domain"
)

//go:embed schema.sql
var schema string

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store handles database operations. It owns the tag dictionary and the
// entries with their tag associations.
type Store struct {
	db      *sql.DB
	log     *slog.Logger
	tags    map[string]string // tag text -> tag id
	entropy io.Reader
}

// New opens (creating if needed) the database at dbPath
func New(ctx context.Context, dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	dsn, err := fileDSN(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w: %w", domain.ErrStorage, err)
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w: %w", domain.ErrStorage, err)
	}
	// One invocation, one connection; the pragmas in schema.sql are per connection.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	// Initialize schema
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w: %w", domain.ErrStorage, err)
	}

	s := &Store{
		db:      db,
		log:     logger,
		tags:    make(map[string]string),
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	if err := s.loadTagIndex(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("opened database", "path", dbPath, "tags", len(s.tags))
	return s, nil
}

// fileDSN turns a filesystem path into a file: URI, so characters such as
// '?' stay part of the file name instead of starting driver parameters.
func fileDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// inTx runs fn in a transaction, committing only if fn succeeds
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w: %w", domain.ErrStorage, err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w: %w", domain.ErrStorage, err)
	}
	return nil
}

func (s *Store) newEntryID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), s.entropy)
	if err != nil {
		return "", fmt.Errorf("entry id: %w", err)
	}
	return id.String(), nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}
