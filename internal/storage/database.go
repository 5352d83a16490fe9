package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Registers the sqlite driver

	"github.com/conorfennell/testdeck/internal/fsrs"
)

// timeLayout matches what SQLite's CURRENT_TIMESTAMP produces, so caller
// supplied timestamps and engine stamped ones compare and DATE() alike.
const timeLayout = "2006-01-02 15:04:05"

const defaultBusyTimeout = 5000

// Store persists cards, sessions and attempts in a single SQLite file.
// It holds no open handle: every operation connects, ensures the schema,
// runs its statements and disconnects.
type Store struct {
	path        string
	busyTimeout int
	scheduler   fsrs.Scheduler
	log         *zap.Logger
}

// Option customises a Store.
type Option func(*Store)

// WithBusyTimeout sets how long, in milliseconds, a statement waits on a locked database.
func WithBusyTimeout(ms int) Option {
	return func(s *Store) {
		if ms > 0 {
			s.busyTimeout = ms
		}
	}
}

// WithScheduler sets the scheduler DueCards replays attempts through. The default is SM-2.
func WithScheduler(scheduler fsrs.Scheduler) Option {
	return func(s *Store) {
		if scheduler != nil {
			s.scheduler = scheduler
		}
	}
}

// Open prepares the database file at path, creating its directory and the
// schema when missing. Failures here are KindSetup.
func Open(ctx context.Context, path string, log *zap.Logger, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, setupErr("open database", errors.New("empty database path"))
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Store{path: path, busyTimeout: defaultBusyTimeout, scheduler: fsrs.DefaultSM2(), log: log}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, setupErr("create database directory", err)
	}

	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	s.log.Debug("database ready", zap.String("path", path))
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// EnsureSchema creates any missing tables and indexes. It is safe to call repeatedly.
func (s *Store) EnsureSchema(ctx context.Context) error {
	db, err := s.connect(ctx)
	if err != nil {
		return err
	}
	return db.Close()
}

func (s *Store) dsn() string {
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)", s.path, s.busyTimeout)
}

// connect opens a short-lived handle and applies the schema.
// Callers must Close the returned handle.
func (s *Store) connect(ctx context.Context) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", s.dsn())
	if err != nil {
		return nil, setupErr("open database", err)
	}
	// One connection keeps transactions and pragmas on the same handle.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, setupErr("connect to database", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, setupErr("apply schema", err)
	}
	return db, nil
}

// withTx runs fn inside a transaction, committing only if fn succeeds.
func withTx(ctx context.Context, db *sqlx.DB, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return statementErr(op, fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback() // No-op once committed

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return statementErr(op, fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
