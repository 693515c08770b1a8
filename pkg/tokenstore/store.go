package tokenstore

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"mdsexport/pkg/namegen"
)

// maxNameAttempts bounds random name generation. The word lists give roughly
// 8000 combinations, so hitting this limit means the namespace is effectively
// full rather than unlucky.
const maxNameAttempts = 64

var (
	// ErrDuplicateName is returned when adding a token under a name that
	// already exists. The store is left unchanged.
	ErrDuplicateName = errors.New("token name already exists")

	// ErrNotFound is returned when looking up a token name that is not stored.
	ErrNotFound = errors.New("token not found")

	// ErrInvalidVariant is returned for a "name:variant" spec whose variant
	// is not one of base, last, or latest.
	ErrInvalidVariant = errors.New("invalid token variant (use base, last, or latest)")

	// ErrNameSpaceExhausted is returned when no free generated name could be
	// found within the attempt budget.
	ErrNameSpaceExhausted = errors.New("could not generate a unique token name")
)

// Token is a stored resumption token with its cursor variants.
type Token struct {
	Name           string
	Base           string
	Last           string
	Latest         string
	LeastRemaining float64
}

// Store is a SQLite-backed token store.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the token database at the given path.
// The parent directory is created if it does not exist.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("token database path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening token database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tokens (
			name TEXT PRIMARY KEY,
			base TEXT NOT NULL,
			last TEXT NOT NULL,
			latest TEXT NOT NULL,
			least_remaining REAL NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tokens table: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Create inserts a new token. If name is empty a unique "adjective-noun"
// name is generated. The assigned name is returned. A caller-supplied name
// that already exists fails with ErrDuplicateName and leaves the store
// unchanged.
func (s *Store) Create(rawToken, name string) (string, error) {
	if name == "" {
		generated, err := s.generateFreeName()
		if err != nil {
			return "", err
		}
		name = generated
	} else {
		exists, err := s.exists(name)
		if err != nil {
			return "", err
		}
		if exists {
			return "", fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
	}

	_, err := s.db.Exec(
		"INSERT INTO tokens (name, base, last, latest, least_remaining) VALUES (?, ?, ?, ?, ?)",
		name, rawToken, rawToken, rawToken, math.Inf(1),
	)
	if err != nil {
		return "", fmt.Errorf("inserting token %q: %w", name, err)
	}

	return name, nil
}

// List returns all stored tokens ordered by name.
func (s *Store) List() ([]Token, error) {
	rows, err := s.db.Query(
		"SELECT name, base, last, latest, least_remaining FROM tokens ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("listing tokens: %w", err)
	}
	defer rows.Close()

	var tokens []Token
	for rows.Next() {
		var t Token
		if err := rows.Scan(&t.Name, &t.Base, &t.Last, &t.Latest, &t.LeastRemaining); err != nil {
			return nil, fmt.Errorf("scanning token row: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading token rows: %w", err)
	}

	return tokens, nil
}

// Remove deletes the named token. It reports whether a token existed.
func (s *Store) Remove(name string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM tokens WHERE name = ?", name)
	if err != nil {
		return false, fmt.Errorf("removing token %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("removing token %q: %w", name, err)
	}
	return n > 0, nil
}

// Resolve looks up a token value by name spec. A bare name resolves to the
// "last" cursor; "name:variant" selects one of base, last, or latest.
func (s *Store) Resolve(nameSpec string) (string, error) {
	name := nameSpec
	column := "last"

	if i := strings.Index(nameSpec, ":"); i >= 0 {
		name = nameSpec[:i]
		variant := nameSpec[i+1:]
		switch variant {
		case "base", "last", "latest":
			column = variant
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidVariant, variant)
		}
	}

	// column is restricted to the three known names above.
	var value string
	err := s.db.QueryRow("SELECT "+column+" FROM tokens WHERE name = ?", name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("resolving token %q: %w", nameSpec, err)
	}

	return value, nil
}

// Update records a newly observed cursor for the named token. The "last"
// cursor is replaced unconditionally. The "latest" cursor and its watermark
// only move when remaining is strictly below the stored least_remaining.
// Updating an unknown name is a no-op so the export loop can run against a
// raw token with no stored entry.
func (s *Store) Update(name, newToken string, remaining int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("updating token %q: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE tokens SET last = ? WHERE name = ?", newToken, name); err != nil {
		return fmt.Errorf("updating last cursor for %q: %w", name, err)
	}

	var least float64
	err = tx.QueryRow("SELECT least_remaining FROM tokens WHERE name = ?", name).Scan(&least)
	if errors.Is(err, sql.ErrNoRows) {
		return tx.Commit()
	}
	if err != nil {
		return fmt.Errorf("reading watermark for %q: %w", name, err)
	}

	if float64(remaining) < least {
		if _, err := tx.Exec(
			"UPDATE tokens SET latest = ?, least_remaining = ? WHERE name = ?",
			newToken, float64(remaining), name,
		); err != nil {
			return fmt.Errorf("updating latest cursor for %q: %w", name, err)
		}
	}

	return tx.Commit()
}

// generateFreeName picks random names until one is not already stored.
func (s *Store) generateFreeName() (string, error) {
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		candidate := namegen.Generate(nil)
		exists, err := s.exists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", ErrNameSpaceExhausted
}

func (s *Store) exists(name string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM tokens WHERE name = ?", name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking token name %q: %w", name, err)
	}
	return true, nil
}
