// Package ledger persists the hashes of enhanced class files between runs
// so files that have not changed since their last enhancement can be
// skipped without parsing.
//
// The ledger lives at .weft/ledger.cbor in canonical CBOR. It is advisory:
// a missing or unreadable ledger degrades to a full run, never an error.
package ledger

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// DefaultPath is the ledger location relative to the project directory.
const DefaultPath = ".weft/ledger.cbor"

const formatVersion = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("ledger: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// ledgerFile is the on-disk shape.
type ledgerFile struct {
	Version uint16  `cbor:"1,keyasint"`
	Entries []entry `cbor:"2,keyasint,omitempty"`
}

type entry struct {
	Path    string   `cbor:"1,keyasint"`
	Context string   `cbor:"2,keyasint"`
	Hash    [32]byte `cbor:"3,keyasint"`
}

type key struct {
	path    string
	context string
}

// Ledger records, per (path, context) pair, the SHA-256 of the bytes the
// last successful run wrote there. Safe for concurrent use.
type Ledger struct {
	mu      sync.RWMutex
	entries map[key][32]byte
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{entries: make(map[key][32]byte)}
}

// Load reads the ledger at path. A missing, corrupt, or out-of-date file
// yields an empty ledger so the next run simply covers everything.
func Load(path string) *Ledger {
	l := New()
	data, err := os.ReadFile(path)
	if err != nil {
		return l
	}

	var f ledgerFile
	if err := cbor.Unmarshal(data, &f); err != nil || f.Version != formatVersion {
		return l
	}
	for _, e := range f.Entries {
		l.entries[key{e.Path, e.Context}] = e.Hash
	}
	return l
}

// Save writes the ledger to path, creating the parent directory if needed.
// Entries are sorted so the same state always produces the same bytes.
func (l *Ledger) Save(path string) error {
	l.mu.RLock()
	f := ledgerFile{
		Version: formatVersion,
		Entries: make([]entry, 0, len(l.entries)),
	}
	for k, h := range l.entries {
		f.Entries = append(f.Entries, entry{Path: k.path, Context: k.context, Hash: h})
	}
	l.mu.RUnlock()

	sort.Slice(f.Entries, func(i, j int) bool {
		if f.Entries[i].Path != f.Entries[j].Path {
			return f.Entries[i].Path < f.Entries[j].Path
		}
		return f.Entries[i].Context < f.Entries[j].Context
	})

	data, err := cborEncMode.Marshal(&f)
	if err != nil {
		return fmt.Errorf("ledger: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	return nil
}

// UpToDate reports whether data already matches the hash recorded for
// (path, context).
func (l *Ledger) UpToDate(path, context string, data []byte) bool {
	sum := sha256.Sum256(data)

	l.mu.RLock()
	defer l.mu.RUnlock()
	h, ok := l.entries[key{path, context}]
	return ok && h == sum
}

// Record stores the hash of the bytes just written for (path, context).
func (l *Ledger) Record(path, context string, data []byte) {
	sum := sha256.Sum256(data)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[key{path, context}] = sum
}

// Len returns the number of recorded entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
