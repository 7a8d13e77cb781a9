package store

import (
	"errors"
	"path/filepath"
	"testing"

	"segment-leader/internal/auth"
)

// setupTestDB creates an in-memory database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestLoadEmpty(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.Load()
	if !errors.Is(err, auth.ErrNoToken) {
		t.Errorf("Load() error = %v, want ErrNoToken", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	db := setupTestDB(t)

	first := auth.Token{AccessToken: "a1", RefreshToken: "r1", ExpiresAt: 1700000000}
	if err := db.Save(first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := db.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != first {
		t.Errorf("Load() = %+v, want %+v", got, first)
	}

	// Saving again replaces the singleton row
	second := auth.Token{AccessToken: "a2", RefreshToken: "r2", ExpiresAt: 1700021600}
	if err := db.Save(second); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err = db.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != second {
		t.Errorf("Load() = %+v, want %+v", got, second)
	}

	var rows int
	if err := db.QueryRow(`SELECT COUNT(*) FROM auth`).Scan(&rows); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if rows != 1 {
		t.Errorf("auth rows = %d, want 1", rows)
	}
}

func TestOpenFilePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	tok := auth.Token{AccessToken: "a", RefreshToken: "r", ExpiresAt: 42}
	if err := db.Save(tok); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	db.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open() again error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != tok {
		t.Errorf("Load() = %+v, want %+v", got, tok)
	}
}
