package garden

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source"

	"github.com/canrau/garden/ogimage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test_garden.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testArtifact(slug string, size ogimage.Size, rev string, version int) Artifact {
	id := ArtifactID{Slug: slug, Lang: ogimage.LangEn, Size: size, Revision: rev, Version: version}
	return Artifact{ID: id, Path: id.RelPath(), Bytes: 42, CreatedAt: time.Now()}
}

func TestNewStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garden.db")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
	s.Close()

	// migrations are idempotent
	s, err = NewStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	s.Close()
}

func TestSaveAndGetArtifact(t *testing.T) {
	s := setupTestStore(t)
	a := testArtifact("hello-world", ogimage.SizeDefault, "abc", ogimage.Version)

	if err := s.SaveArtifact(a); err != nil {
		t.Fatalf("SaveArtifact failed: %v", err)
	}
	got, err := s.GetArtifact(a.ID)
	if err != nil {
		t.Fatalf("GetArtifact failed: %v", err)
	}
	if got.ID != a.ID {
		t.Errorf("ID = %+v, want %+v", got.ID, a.ID)
	}
	if got.Path != a.Path || got.Bytes != a.Bytes {
		t.Errorf("Path/Bytes = %q/%d, want %q/%d", got.Path, got.Bytes, a.Path, a.Bytes)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should round-trip")
	}

	// upsert keeps one row
	a.Bytes = 99
	if err := s.SaveArtifact(a); err != nil {
		t.Fatalf("SaveArtifact failed: %v", err)
	}
	if n, _ := s.CountArtifacts(); n != 1 {
		t.Errorf("CountArtifacts = %d, want 1", n)
	}
}

func TestGetArtifactNotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.GetArtifact(ArtifactID{Slug: "nope", Lang: ogimage.LangEn, Size: ogimage.SizeDefault})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListSupersededAndOutdated(t *testing.T) {
	s := setupTestStore(t)
	current := testArtifact("post", ogimage.SizeDefault, "new", ogimage.Version)
	for _, a := range []Artifact{
		current,
		testArtifact("post", ogimage.SizeDefault, "old", ogimage.Version),
		testArtifact("post", ogimage.SizeDefault, "new", ogimage.Version-1),
		testArtifact("post", ogimage.SizeSmall, "old", ogimage.Version),
		testArtifact("other", ogimage.SizeDefault, "old", ogimage.Version),
	} {
		if err := s.SaveArtifact(a); err != nil {
			t.Fatalf("SaveArtifact failed: %v", err)
		}
	}

	superseded, err := s.ListSuperseded(current.ID)
	if err != nil {
		t.Fatalf("ListSuperseded failed: %v", err)
	}
	if len(superseded) != 2 {
		t.Errorf("superseded = %d, want 2", len(superseded))
	}
	for _, a := range superseded {
		if a.ID == current.ID || a.ID.Size != ogimage.SizeDefault || a.ID.Slug != "post" {
			t.Errorf("unexpected superseded artifact %+v", a.ID)
		}
	}

	outdated, err := s.ListOutdated(ogimage.Version)
	if err != nil {
		t.Fatalf("ListOutdated failed: %v", err)
	}
	if len(outdated) != 1 || outdated[0].ID.Version != ogimage.Version-1 {
		t.Errorf("outdated = %+v", outdated)
	}

	forPost, err := s.ListForPost("post", ogimage.LangEn)
	if err != nil {
		t.Fatalf("ListForPost failed: %v", err)
	}
	if len(forPost) != 4 {
		t.Errorf("ListForPost = %d, want 4", len(forPost))
	}

	all, err := s.ListArtifacts("")
	if err != nil {
		t.Fatalf("ListArtifacts failed: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("ListArtifacts = %d, want 5", len(all))
	}
}

func TestDeleteArtifact(t *testing.T) {
	s := setupTestStore(t)
	a := testArtifact("gone", ogimage.SizeSmall, "r", ogimage.Version)
	if err := s.SaveArtifact(a); err != nil {
		t.Fatalf("SaveArtifact failed: %v", err)
	}
	if err := s.DeleteArtifact(a.ID); err != nil {
		t.Fatalf("DeleteArtifact failed: %v", err)
	}
	if _, err := s.GetArtifact(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMigrateDBClosesConnectionOnFailure(t *testing.T) {
	boom := errors.New("boom")
	orig := newMigrator
	newMigrator = func(string, source.Driver, string, database.Driver) (*migrate.Migrate, error) {
		return nil, boom
	}
	t.Cleanup(func() { newMigrator = orig })

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "garden.db"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := migrateDB(db); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if err := db.Ping(); err == nil {
		t.Error("db should be closed after a failed migration")
	}
}

func TestMigrateDBClosesConnectionOnSuccess(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "garden.db"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := migrateDB(db); err != nil {
		t.Fatalf("migrateDB failed: %v", err)
	}
	if err := db.Ping(); err == nil {
		t.Error("db should be closed after migrating")
	}
}
