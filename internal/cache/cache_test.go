package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenMissingFileIsColdStart(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "nope.cache"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := s.Lookup("a.vx", []byte("x")); ok {
		t.Fatal("expected miss on an empty store")
	}
}

func TestPutLookupRoundTrip(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "nope.cache"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	src := []byte("&^main() -> #i32 { 0 }")
	sum := Summary{Path: "a.vx", SourceHash: Hash(src), HadErrors: false}
	s.Put(sum)

	got, ok := s.Lookup("a.vx", src)
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if got.Path != sum.Path {
		t.Fatalf("Path = %q, want %q", got.Path, sum.Path)
	}

	if _, ok := s.Lookup("a.vx", []byte("different source")); ok {
		t.Fatal("expected miss when source hash changed")
	}
}

func TestSaveThenOpenRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.cache")
	src := []byte("&^main() -> #i32 { 0 }")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.Put(Summary{Path: "a.vx", SourceHash: Hash(src), WarningText: []string{"unused import"}})
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, ok := reopened.Lookup("a.vx", src)
	if !ok {
		t.Fatal("expected hit after reopening a saved store")
	}
	if len(got.WarningText) != 1 || got.WarningText[0] != "unused import" {
		t.Fatalf("WarningText = %v, want [unused import]", got.WarningText)
	}
}

func TestOpenCorruptFileIsColdStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.cache")
	if err := os.WriteFile(path, []byte("not a gob stream"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open on corrupt file should not error: %v", err)
	}
	if _, ok := s.Lookup("a.vx", []byte("x")); ok {
		t.Fatal("expected miss on a corrupt store")
	}
}
