package garden

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/canrau/garden/ogimage"
)

// ErrNotFound is returned when a requested artifact is not indexed.
var ErrNotFound = sql.ErrNoRows

// Store wraps a SQLite database indexing the rendered images on disk.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and applies the embedded migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("garden: create data dir: %w", err)
	}
	if err := migrateUp(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("garden: open store: %w", err)
	}
	// WAL with a busy timeout: writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("garden: configure store: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	return &Store{db: db}, nil
}

// newMigrator builds the migrator; tests replace it.
var newMigrator = migrate.NewWithInstance

// migrateUp runs on its own connection.
func migrateUp(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("garden: open store for migration: %w", err)
	}
	return migrateDB(db)
}

// migrateDB applies the embedded migrations and closes db on every path.
func migrateDB(db *sql.DB) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		db.Close()
		return fmt.Errorf("garden: migration source: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{DatabaseName: "main"})
	if err != nil {
		src.Close()
		db.Close()
		return fmt.Errorf("garden: migration driver: %w", err)
	}
	m, err := newMigrator("iofs", src, "sqlite", driver)
	if err != nil {
		src.Close()
		driver.Close()
		return fmt.Errorf("garden: migrator: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("garden: apply migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

const artifactColumns = `slug, lang, size, version, revision, path, bytes, created_at`

// SaveArtifact upserts an index entry.
func (s *Store) SaveArtifact(a Artifact) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO artifacts (`+artifactColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID.Slug, string(a.ID.Lang), string(a.ID.Size), a.ID.Version, a.ID.Revision,
		a.Path, a.Bytes, a.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

// GetArtifact returns the index entry for id.
func (s *Store) GetArtifact(id ArtifactID) (Artifact, error) {
	row := s.db.QueryRow(`SELECT `+artifactColumns+` FROM artifacts
		WHERE slug = ? AND lang = ? AND size = ? AND version = ? AND revision = ?`,
		id.Slug, string(id.Lang), string(id.Size), id.Version, id.Revision)
	return scanArtifact(row)
}

// ListArtifacts returns every entry, or those of one slug when slug is
// non-empty, newest first.
func (s *Store) ListArtifacts(slug string) ([]Artifact, error) {
	if slug == "" {
		return s.query(`SELECT ` + artifactColumns + ` FROM artifacts ORDER BY created_at DESC`)
	}
	return s.query(`SELECT `+artifactColumns+` FROM artifacts WHERE slug = ? ORDER BY created_at DESC`, slug)
}

// ListForPost returns every entry of a post in one language.
func (s *Store) ListForPost(slug string, lang ogimage.Lang) ([]Artifact, error) {
	return s.query(`SELECT `+artifactColumns+` FROM artifacts WHERE slug = ? AND lang = ?`, slug, string(lang))
}

// ListSuperseded returns the entries id replaces: same post, language
// and size with another revision or version.
func (s *Store) ListSuperseded(id ArtifactID) ([]Artifact, error) {
	return s.query(`SELECT `+artifactColumns+` FROM artifacts
		WHERE slug = ? AND lang = ? AND size = ? AND NOT (version = ? AND revision = ?)`,
		id.Slug, string(id.Lang), string(id.Size), id.Version, id.Revision)
}

// ListOutdated returns entries rendered by any pipeline version but version.
func (s *Store) ListOutdated(version int) ([]Artifact, error) {
	return s.query(`SELECT `+artifactColumns+` FROM artifacts WHERE version <> ?`, version)
}

// DeleteArtifact removes an index entry.
func (s *Store) DeleteArtifact(id ArtifactID) error {
	_, err := s.db.Exec(`DELETE FROM artifacts
		WHERE slug = ? AND lang = ? AND size = ? AND version = ? AND revision = ?`,
		id.Slug, string(id.Lang), string(id.Size), id.Version, id.Revision)
	return err
}

// CountArtifacts returns the number of indexed artifacts.
func (s *Store) CountArtifacts() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM artifacts`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArtifact(r rowScanner) (Artifact, error) {
	var (
		a                 Artifact
		lang, size, stamp string
	)
	if err := r.Scan(&a.ID.Slug, &lang, &size, &a.ID.Version, &a.ID.Revision, &a.Path, &a.Bytes, &stamp); err != nil {
		return Artifact{}, err
	}
	a.ID.Lang, a.ID.Size = ogimage.Lang(lang), ogimage.Size(size)
	a.CreatedAt, _ = time.Parse(time.RFC3339Nano, stamp)
	return a, nil
}

func (s *Store) query(q string, args ...any) ([]Artifact, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
