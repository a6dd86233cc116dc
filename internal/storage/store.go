package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"ledger/internal/core"

	_ "modernc.org/sqlite"
)

// Options tunes store initialization.
type Options struct {
	// SeedExamples adds example transactions to the first-boot seed.
	SeedExamples bool
	Logger       *slog.Logger
}

// Store owns the SQLite database. All access goes through View and Update
// scopes: Update scopes are serialized and atomic, and View scopes never
// observe a partial Update.
type Store struct {
	db     *sql.DB
	path   string
	mu     sync.RWMutex
	logger *slog.Logger
}

func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Open opens (or creates) the database at dbPath, migrates it, and seeds it
// on first use.
func Open(ctx context.Context, dbPath string, opts Options) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Single connection: one logical writer, and scopes never interleave.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{db: db, path: dbPath, logger: logger}
	if err := s.seedIfEmpty(ctx, opts.SeedExamples); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Generation increases on every committed write scope, including those of
// other processes sharing the database file. Derived data keyed by it is
// invalidated the moment a write commits.
func (s *Store) Generation(ctx context.Context) (uint64, error) {
	var gen uint64
	err := s.View(ctx, func(tx *Tx) error {
		var err error
		gen, err = tx.Generation(ctx)
		return err
	})
	return gen, err
}

// Generation reads the persisted write counter as seen by this scope.
func (t *Tx) Generation(ctx context.Context) (uint64, error) {
	var gen int64
	if err := t.tx.QueryRowContext(ctx, `SELECT generation FROM store_meta WHERE id = 1`).Scan(&gen); err != nil {
		return 0, core.NewStorageError("read generation", err)
	}
	return uint64(gen), nil
}

// SchemaVersion returns the applied schema version.
func (s *Store) SchemaVersion() (uint, error) {
	v, dirty, err := SchemaVersion(s.path)
	if err != nil {
		return 0, core.NewStorageError("schema version", err)
	}
	if dirty {
		return v, core.NewStorageError("schema version", fmt.Errorf("schema version %d is dirty", v))
	}
	return v, nil
}

// Tx is an open scope. Table operations on it see a consistent snapshot and,
// for writable scopes, either all persist on Commit or none do.
type Tx struct {
	tx       *sql.Tx
	writable bool
	release  func()
	done     bool
}

// Begin opens a scope. A writable scope holds the writer lock until Commit
// or Rollback; a read scope holds a shared lock.
func (s *Store) Begin(ctx context.Context, writable bool) (*Tx, error) {
	release := s.mu.RUnlock
	if writable {
		s.mu.Lock()
		release = s.mu.Unlock
	} else {
		s.mu.RLock()
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		release()
		return nil, core.NewStorageError("begin", err)
	}

	return &Tx{tx: sqlTx, writable: writable, release: release}, nil
}

// Commit persists a writable scope, bumping the generation in the same
// transaction, and releases its lock.
func (t *Tx) Commit() error {
	if t.done {
		return core.NewStorageError("commit", sql.ErrTxDone)
	}
	if t.writable {
		if _, err := t.tx.Exec(`UPDATE store_meta SET generation = generation + 1 WHERE id = 1`); err != nil {
			t.Rollback()
			return core.NewStorageError("bump generation", err)
		}
	}
	t.done = true
	if err := t.tx.Commit(); err != nil {
		t.release()
		return core.NewStorageError("commit", err)
	}
	t.release()
	return nil
}

// Rollback discards the scope. It is a no-op after Commit.
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	err := t.tx.Rollback()
	t.release()
	if err != nil {
		return core.NewStorageError("rollback", err)
	}
	return nil
}

// View runs fn in a read scope.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := s.Begin(ctx, false)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	return fn(tx)
}

// Update runs fn in an atomic write scope. Any error or panic from fn rolls
// back every write it made.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) (err error) {
	tx, err := s.Begin(ctx, true)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.ErrorContext(ctx, "Rollback failed", "error", rbErr)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) seedIfEmpty(ctx context.Context, withExamples bool) error {
	return s.Update(ctx, func(tx *Tx) error {
		_, found, err := tx.GetUserConfig(ctx)
		if err != nil {
			return err
		}
		if found {
			return nil
		}
		if _, err := tx.ReplaceAll(ctx, SeedDocument(withExamples)); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "Seeded empty database", "examples", withExamples)
		return nil
	})
}
