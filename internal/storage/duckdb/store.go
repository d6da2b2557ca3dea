// Package duckdb is the storage backend: one embedded database file per
// category, written by exactly one connection at a time.
package duckdb

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/jmoiron/sqlx"

	"marketsync/internal/catalog"
	"marketsync/internal/domain"
)

// Store owns the connection to one category database file.
type Store struct {
	db     *sqlx.DB
	path   string
	logger *slog.Logger
}

// Open opens (creating if needed) the database file at path. The connection
// pool is capped at one: the engine's single-writer discipline is enforced
// here, not left to callers.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	return &Store{
		db:     db,
		path:   path,
		logger: logger.With("db", filepath.Base(path)),
	}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// DB exposes the underlying handle for read-only consumers.
func (s *Store) DB() *sqlx.DB { return s.db }

// Close releases the connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureTable creates the table and its primary-key index if absent.
func (s *Store) EnsureTable(ctx context.Context, spec catalog.TableSpec) error {
	ex := GetExecutor(ctx, s.db)
	if _, err := ex.ExecContext(ctx, spec.CreateTableSQL()); err != nil {
		return domain.StorageErr(fmt.Errorf("create table %s: %w", spec.Name, err))
	}
	if _, err := ex.ExecContext(ctx, spec.CreateIndexSQL()); err != nil {
		return domain.StorageErr(fmt.Errorf("create index for %s: %w", spec.Name, err))
	}
	return nil
}

// TableExists reports whether name exists in the database.
func (s *Store) TableExists(ctx context.Context, name string) (bool, error) {
	var one int
	err := s.db.GetContext(ctx, &one,
		`SELECT 1 FROM information_schema.tables WHERE table_schema = 'main' AND table_name = ? LIMIT 1`, name)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, domain.StorageErr(err)
	}
	return true, nil
}
