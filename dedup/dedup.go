package dedup

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Record describes the first time a document was seen.
type Record struct {
	Hash      string    `json:"hash"`
	FilePath  string    `json:"file_path"`
	FirstSeen time.Time `json:"first_seen"`
}

const schema = `CREATE TABLE IF NOT EXISTS documents (
	hash       TEXT PRIMARY KEY,
	file_path  TEXT NOT NULL,
	first_seen INTEGER NOT NULL
)`

// Store is a SQLite-backed document registry.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the registry at dsn. ":memory:" gives a private
// in-memory registry.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open dedup database: %w", err)
	}
	// one connection keeps an in-memory database alive and serialises writers
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create dedup schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// HashFile returns the hex SHA-256 of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// CheckAndRegister hashes path and records it. isNew is false when a
// document with the same content was registered before.
func (s *Store) CheckAndRegister(path string) (hash string, isNew bool, err error) {
	hash, err = HashFile(path)
	if err != nil {
		return "", false, err
	}
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO documents (hash, file_path, first_seen) VALUES (?, ?, ?)`,
		hash, path, s.now().UnixNano())
	if err != nil {
		return hash, false, fmt.Errorf("register %s: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return hash, false, fmt.Errorf("register %s: %w", path, err)
	}
	return hash, n == 1, nil
}

// DuplicateInfo returns the record for hash, or nil when it is unknown.
func (s *Store) DuplicateInfo(hash string) (*Record, error) {
	var (
		r    Record
		nano int64
	)
	err := s.db.QueryRow(
		`SELECT hash, file_path, first_seen FROM documents WHERE hash = ?`, hash,
	).Scan(&r.Hash, &r.FilePath, &nano)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", hash, err)
	}
	r.FirstSeen = time.Unix(0, nano).UTC()
	return &r, nil
}

// Forget removes hash so that the document is treated as new again.
func (s *Store) Forget(hash string) error {
	if _, err := s.db.Exec(`DELETE FROM documents WHERE hash = ?`, hash); err != nil {
		return fmt.Errorf("forget %s: %w", hash, err)
	}
	return nil
}

// Count returns the number of registered documents.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}
