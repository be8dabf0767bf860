package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile %s: %v", path, err)
	}
}

func TestRunWithoutParserFailsCleanly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.vx"), "&^main() -> #i32 { 0 }")
	writeFile(t, filepath.Join(dir, "vexel.yaml"), "entry: main.vx\nbackend: c\n")

	code := run([]string{"-manifest", filepath.Join(dir, "vexel.yaml")})
	if code != 1 {
		t.Fatalf("run() = %d, want 1 (no parser linked into this build)", code)
	}
}

func TestRunMissingManifestFails(t *testing.T) {
	dir := t.TempDir()
	code := run([]string{"-manifest", filepath.Join(dir, "vexel.yaml")})
	if code != 1 {
		t.Fatalf("run() = %d, want 1 for a missing manifest", code)
	}
}

func TestRunVersionFlag(t *testing.T) {
	if code := run([]string{"-version"}); code != 0 {
		t.Fatalf("run(-version) = %d, want 0", code)
	}
}
