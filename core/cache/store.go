// Package cache persists completion answers keyed by a content-addressed
// fingerprint. The durable layer is a single SQLite file; a ristretto
// in-process layer absorbs repeated reads within a run. Concurrent pipelines
// share one store; duplicate computation of the same fingerprint is
// tolerated (idempotent overwrite).
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/ristretto"
	_ "github.com/mattn/go-sqlite3"
)

// Entry is one cached completion with its cost metadata. Costs record what
// the answer cost when first generated; cache hits report them without
// re-billing.
type Entry struct {
	Model      string
	Language   string
	InputCost  float64
	OutputCost float64
	Answer     string
}

// Store is the persistence contract the orchestrator depends on.
type Store interface {
	Get(fingerprint string) (Entry, bool)
	Put(fingerprint string, entry Entry) error
	Delete(fingerprints []string) error
	Close() error
}

const schema = `
CREATE TABLE IF NOT EXISTS completions (
	fingerprint TEXT PRIMARY KEY,
	model       TEXT NOT NULL,
	language    TEXT NOT NULL,
	input_cost  REAL NOT NULL,
	output_cost REAL NOT NULL,
	answer      TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL
);
`

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	memory *ristretto.Cache
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the store at path. A corrupt database
// file is moved aside and recreated: losing cached completions is cheaper
// than failing every assessment request.
func NewSQLiteStore(path string, memoryEntries int64, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if memoryEntries <= 0 {
		memoryEntries = 4096
	}

	db, err := openDatabase(path)
	if err != nil {
		logger.Warn("completion cache unreadable, recreating", "path", path, "error", err)
		if rerr := os.Rename(path, path+".corrupt"); rerr != nil && !os.IsNotExist(rerr) {
			return nil, fmt.Errorf("move corrupt cache aside: %w", rerr)
		}
		db, err = openDatabase(path)
		if err != nil {
			return nil, fmt.Errorf("recreate completion cache: %w", err)
		}
	}

	memory, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: memoryEntries * 10,
		MaxCost:     memoryEntries,
		BufferItems: 64,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("memory cache: %w", err)
	}

	return &SQLiteStore{db: db, memory: memory, logger: logger}, nil
}

func openDatabase(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Get looks up an entry. Read errors count as misses: the caller re-invokes
// the provider and the subsequent Put repairs the row.
func (s *SQLiteStore) Get(fingerprint string) (Entry, bool) {
	if cached, ok := s.memory.Get(fingerprint); ok {
		if entry, ok := cached.(Entry); ok {
			return entry, true
		}
	}

	var entry Entry
	row := s.db.QueryRow(
		`SELECT model, language, input_cost, output_cost, answer FROM completions WHERE fingerprint = ?`,
		fingerprint,
	)
	err := row.Scan(&entry.Model, &entry.Language, &entry.InputCost, &entry.OutputCost, &entry.Answer)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Entry{}, false
	case err != nil:
		s.logger.Warn("cache read failed, treating as miss", "fingerprint", fingerprint, "error", err)
		return Entry{}, false
	}

	s.memory.Set(fingerprint, entry, 1)
	return entry, true
}

// Put upserts an entry; re-saving a fingerprint overwrites.
func (s *SQLiteStore) Put(fingerprint string, entry Entry) error {
	_, err := s.db.Exec(
		`INSERT INTO completions (fingerprint, model, language, input_cost, output_cost, answer, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(fingerprint) DO UPDATE SET
			model = excluded.model,
			language = excluded.language,
			input_cost = excluded.input_cost,
			output_cost = excluded.output_cost,
			answer = excluded.answer,
			created_at = excluded.created_at`,
		fingerprint, entry.Model, entry.Language, entry.InputCost, entry.OutputCost, entry.Answer, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}

	s.memory.Set(fingerprint, entry, 1)
	return nil
}

// Delete removes the listed fingerprints, used to roll back a step's cache
// writes when a later stage of the same step fails.
func (s *SQLiteStore) Delete(fingerprints []string) error {
	for _, fp := range fingerprints {
		if _, err := s.db.Exec(`DELETE FROM completions WHERE fingerprint = ?`, fp); err != nil {
			return fmt.Errorf("cache delete %s: %w", fp, err)
		}
		s.memory.Del(fp)
	}
	return nil
}

// Purge removes every cached completion and returns how many rows were
// dropped. The memory layer is cleared with it.
func (s *SQLiteStore) Purge() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM completions`)
	if err != nil {
		return 0, fmt.Errorf("cache purge: %w", err)
	}
	removed, _ := res.RowsAffected()
	s.memory.Clear()
	return removed, nil
}

// Count reports the number of persisted completions.
func (s *SQLiteStore) Count() (int64, error) {
	var count int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM completions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("cache count: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) Close() error {
	s.memory.Close()
	return s.db.Close()
}
