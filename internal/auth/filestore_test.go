package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "strava_tokens.json")
	fs := NewFileStore(path)

	if _, err := fs.Load(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("Load() on missing file error = %v, want ErrNoToken", err)
	}

	first := Token{AccessToken: "a1", ExpiresAt: 1700000000, RefreshToken: "r1"}
	if err := fs.Save(first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	second := Token{AccessToken: "a2", ExpiresAt: 1700021600, RefreshToken: "r2"}
	if err := fs.Save(second); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := fs.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != second {
		t.Errorf("Load() = %+v, want %+v", got, second)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		t.Errorf("file mode = %o, want 600", mode)
	}

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}

func TestFileStoreReadsExistingFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	data := `{"access_token": "abc", "expires_at": 1612345678, "refresh_token": "def"}`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	got, err := NewFileStore(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Token{AccessToken: "abc", ExpiresAt: 1612345678, RefreshToken: "def"}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestFileStoreRejectsIncompleteToken(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"missing refresh token", `{"access_token": "abc", "expires_at": 1}`},
		{"missing access token", `{"refresh_token": "def", "expires_at": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tokens.json")
			if err := os.WriteFile(path, []byte(tt.data), 0600); err != nil {
				t.Fatal(err)
			}
			_, err := NewFileStore(path).Load()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if errors.Is(err, ErrNoToken) {
				t.Error("corrupt file should not be reported as ErrNoToken")
			}
		})
	}
}
