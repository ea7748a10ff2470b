package metadata

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"discd/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; old databases are rejected rather than migrated.
const schemaVersion = 1

var (
	// ErrNotFound indicates the library has no record for a fingerprint.
	ErrNotFound = errors.New("disc not found in library")

	// ErrSchemaMismatch indicates the database was created by an
	// incompatible version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
)

// Store persists disc names backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the disc library database under the
// configured state directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.StateDir, "library.db"))
}

// OpenPath opens the library database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Lookup returns the stored names for a fingerprint, or ErrNotFound.
func (s *Store) Lookup(ctx context.Context, fingerprint string) (*Names, error) {
	names := &Names{Fingerprint: fingerprint, Tracks: make(map[int]string)}

	err := s.db.QueryRowContext(ctx,
		"SELECT artist, title FROM discs WHERE fingerprint = ?",
		fingerprint,
	).Scan(&names.Artist, &names.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, fingerprint)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup disc: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT track_number, title FROM disc_tracks WHERE fingerprint = ? ORDER BY track_number",
		fingerprint,
	)
	if err != nil {
		return nil, fmt.Errorf("lookup tracks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var number int
		var title string
		if err := rows.Scan(&number, &title); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		names.Tracks[number] = title
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracks: %w", err)
	}
	return names, nil
}

// Save upserts the naming record for a disc. Track titles present in the
// record replace the stored set for that fingerprint.
func (s *Store) Save(ctx context.Context, names *Names) error {
	if names == nil || names.Fingerprint == "" {
		return errors.New("save: missing fingerprint")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO discs (fingerprint, artist, title, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(fingerprint) DO UPDATE SET
             artist = excluded.artist,
             title = excluded.title,
             updated_at = excluded.updated_at`,
		names.Fingerprint, names.Artist, names.Title, now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert disc: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM disc_tracks WHERE fingerprint = ?", names.Fingerprint,
	); err != nil {
		return fmt.Errorf("clear tracks: %w", err)
	}
	for number, title := range names.Tracks {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO disc_tracks (fingerprint, track_number, title) VALUES (?, ?, ?)",
			names.Fingerprint, number, title,
		); err != nil {
			return fmt.Errorf("insert track %d: %w", number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}
