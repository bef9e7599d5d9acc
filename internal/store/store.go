// Package store persists tracked package records, curation state history,
// and processing logs in a SQLite database under the data directory.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"spat/internal/logging"
)

// DBFile is the database filename inside the data directory.
const DBFile = "packages.db"

const schemaVersion = 1

// Store provides persistence for package records in a SQLite database.
type Store struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

// Open opens or creates the package database at <dataDir>/packages.db.
func Open(dataDir string, logger *logging.Logger) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFile)
	dbExists := fileExists(dbPath)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open package database: %w", err)
	}

	// Set pragmas for performance
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA cache_size=-16000", // 16MB cache
	}

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	store := &Store{
		conn:   conn,
		logger: logger,
		dbPath: dbPath,
	}

	if !dbExists {
		logger.Info("Creating package database", map[string]interface{}{
			"path": dbPath,
		})
	}
	if err := store.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// initializeSchema creates the tables. Statements are idempotent so the
// schema can be applied on every open.
func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS repositories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			url TEXT NOT NULL UNIQUE,
			owner TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			language TEXT,
			license TEXT,
			default_branch TEXT,
			stars INTEGER NOT NULL DEFAULT 0,
			forks INTEGER NOT NULL DEFAULT 0,
			watchers INTEGER NOT NULL DEFAULT 0,
			open_issues INTEGER NOT NULL DEFAULT 0,
			created_at TEXT,
			updated_at TEXT,
			pushed_at TEXT,
			last_synced TEXT,
			sync_error TEXT,
			has_manifest INTEGER NOT NULL DEFAULT 0,
			manifest_zstd BLOB,
			tools_version TEXT,
			dependencies_count INTEGER NOT NULL DEFAULT 0,
			linux_compatible INTEGER NOT NULL DEFAULT 0,
			android_compatible INTEGER NOT NULL DEFAULT 0,
			state TEXT NOT NULL DEFAULT 'tracking',
			processing_status TEXT NOT NULL DEFAULT 'pending'
		);
		CREATE INDEX IF NOT EXISTS idx_repositories_owner_name ON repositories(owner, name);
		CREATE INDEX IF NOT EXISTS idx_repositories_state ON repositories(state);
		CREATE INDEX IF NOT EXISTS idx_repositories_stars ON repositories(stars DESC);

		CREATE TABLE IF NOT EXISTS state_transitions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			url TEXT NOT NULL,
			from_state TEXT NOT NULL,
			to_state TEXT NOT NULL,
			reason TEXT,
			changed_by TEXT,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_transitions_url ON state_transitions(url);

		CREATE TABLE IF NOT EXISTS processing_logs (
			id TEXT PRIMARY KEY,
			action TEXT NOT NULL,
			status TEXT NOT NULL,
			message TEXT,
			items_processed INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_logs_created_at ON processing_logs(created_at DESC);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`

	_, err := s.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// SchemaVersion reports the applied schema version.
func (s *Store) SchemaVersion() (int, error) {
	var version int
	err := s.conn.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// Revision fingerprints the dataset. Any import, manifest attach, or state
// change produces a new value, so callers can cache derived structures
// keyed on it.
func (s *Store) Revision() (string, error) {
	var count, sumStars, sumDeps int64
	var maxSynced string
	err := s.conn.QueryRow(`
		SELECT COUNT(*), COALESCE(MAX(last_synced), ''), COALESCE(SUM(stars), 0), COALESCE(SUM(dependencies_count), 0)
		FROM repositories
	`).Scan(&count, &maxSynced, &sumStars, &sumDeps)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint repositories: %w", err)
	}

	var transitions int64
	if err := s.conn.QueryRow("SELECT COUNT(*) FROM state_transitions").Scan(&transitions); err != nil {
		return "", fmt.Errorf("failed to fingerprint transitions: %w", err)
	}

	return fmt.Sprintf("%d:%s:%d:%d:%d", count, maxSynced, sumStars, sumDeps, transitions), nil
}

// Helper functions for nullable fields
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339), Valid: true}
}

func parseTime(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, ns.String); err == nil {
		return &t
	}
	return nil
}
