// Package cache implements an on-disk build cache keyed by a module's
// path and source hash: if neither has changed since the previous run,
// the frontend reports that module as unchanged rather than silently
// skipping it — the cache only ever holds a pass/fail digest, never
// the module's AST or symbols, so every run still fully reloads,
// resolves, and checks it.
//
// Grounded on the teacher's internal/modules.Loader path-keyed cache
// map (funvibe-funxy/internal/modules/loader.go), persisted to disk
// instead of kept only in the lifetime of one process. No third-party
// key-value store is used: the corpus's only embedded-database
// dependency (modernc.org/sqlite) backs the teacher's runtime `db`
// virtual package, which is reachable only by executing a Vexel
// program (out of scope here, see DESIGN.md) — pulling in a full
// cgo-free SQLite driver for a single path-hash-facts cache is not
// proportionate, so this stays stdlib: encoding/gob for the on-disk
// format, crypto/sha256 for the content hash.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"fmt"
	"os"
)

// Summary is the per-module fact digest worth remembering across runs:
// enough to decide whether re-running the full pipeline on this module
// is unnecessary, not the full Program/Facts state itself (those hold
// raw AST pointers, which gob cannot usefully round-trip across
// process boundaries, per spec §5 "Ownership").
type Summary struct {
	Path        string
	SourceHash  [32]byte
	HadErrors   bool
	WarningText []string
}

// Store is a gob-encoded flat file mapping a module path to its last
// known Summary.
type Store struct {
	Path    string
	entries map[string]Summary
}

// Open loads an existing cache file, or returns an empty Store if none
// exists yet — a missing cache is not an error, the same "no cache
// means cold start" convention the teacher's in-memory map has simply
// by being freshly allocated.
func Open(path string) (*Store, error) {
	s := &Store{Path: path, entries: map[string]Summary{}}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading cache %s: %w", path, err)
	}
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&s.entries); err != nil {
		// A corrupt or foreign-format cache is treated as cold start
		// rather than a fatal error; the next Save rewrites it cleanly.
		return &Store{Path: path, entries: map[string]Summary{}}, nil
	}
	return s, nil
}

// Hash computes the content key Lookup/Put compare against.
func Hash(src []byte) [32]byte {
	return sha256.Sum256(src)
}

// Lookup returns the cached Summary for path if its recorded hash
// matches src's current hash.
func (s *Store) Lookup(path string, src []byte) (Summary, bool) {
	sum, ok := s.entries[path]
	if !ok {
		return Summary{}, false
	}
	if sum.SourceHash != Hash(src) {
		return Summary{}, false
	}
	return sum, true
}

// Put records or replaces path's Summary.
func (s *Store) Put(sum Summary) {
	s.entries[sum.Path] = sum
}

// Save writes the store back to Path.
func (s *Store) Save() error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s.entries); err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	return os.WriteFile(s.Path, buf.Bytes(), 0o644)
}
