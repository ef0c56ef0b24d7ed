package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ammiranda/notetree/migrations"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteRepository implements Repository using SQLite
type SQLiteRepository struct {
	db     *sql.DB
	dbPath string
}

// DefaultSQLitePath returns ~/.notetree/notetree.db, falling back to the working directory
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	dataDir := filepath.Join(homeDir, ".notetree")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		dataDir = "."
	}
	return filepath.Join(dataDir, "notetree.db")
}

// NewSQLiteRepository creates a new SQLite repository instance.
// An empty path selects DefaultSQLitePath; ":memory:" keeps everything in memory.
func NewSQLiteRepository(path string) *SQLiteRepository {
	if path == "" {
		path = DefaultSQLitePath()
	}
	return &SQLiteRepository{dbPath: path}
}

// Initialize opens the database and applies migrations
func (r *SQLiteRepository) Initialize(ctx context.Context) error {
	db, err := sql.Open("sqlite3", r.dbPath)
	if err != nil {
		return fmt.Errorf("error opening sqlite database: %w", err)
	}
	// a single connection keeps ":memory:" databases alive and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("error pinging sqlite database: %w", err)
	}

	if err := migrations.Up(db, migrations.SQLite); err != nil {
		db.Close()
		return err
	}

	r.db = db
	return nil
}

// Cleanup closes the database connection
func (r *SQLiteRepository) Cleanup(ctx context.Context) error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Get retrieves the value stored under key
func (r *SQLiteRepository) Get(ctx context.Context, key string) (*Entry, error) {
	var entry Entry
	err := r.db.QueryRowContext(ctx, "SELECT key, value, updated_at FROM kv WHERE key = ?", key).
		Scan(&entry.Key, &entry.Value, &entry.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("error getting key %s: %w", key, err)
	}
	return &entry, nil
}

// Set stores value under key
func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidInput
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("error setting key %s: %w", key, err)
	}
	return nil
}

// Remove deletes key
func (r *SQLiteRepository) Remove(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("error removing key %s: %w", key, err)
	}
	return nil
}

// List returns entries whose key starts with prefix
func (r *SQLiteRepository) List(ctx context.Context, prefix string) ([]*Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, value, updated_at FROM kv WHERE key LIKE ? ESCAPE '\' ORDER BY key`,
		escapeLike(prefix)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("error listing keys: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.Key, &entry.Value, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
