// Package manifest handles weft.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/weft/enhance"
)

// Manifest represents a weft.toml project configuration.
type Manifest struct {
	Project Project         `toml:"project"`
	Scan    Scan            `toml:"scan"`
	Context []ContextConfig `toml:"context"`
	Run     Run             `toml:"run"`

	// Dir is the directory containing the weft.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name string `toml:"name"`
}

// Scan configures class file discovery.
type Scan struct {
	Root     string   `toml:"root"`
	Suffix   string   `toml:"suffix"`
	Excludes []string `toml:"excludes"`
}

// ContextConfig declares one enhancement context. Booleans that default to
// true are pointers so an absent key and an explicit false stay apart.
type ContextConfig struct {
	Name                string `toml:"name"`
	Strategy            string `toml:"strategy"`
	Marker              string `toml:"marker"`
	TransientMarker     string `toml:"transient-marker"`
	Runtime             string `toml:"runtime"`
	DirtyTracking       *bool  `toml:"dirty-tracking"`
	LazyReads           *bool  `toml:"lazy-reads"`
	ConstructorTracking bool   `toml:"constructor-tracking"`
}

// Run configures pipeline execution.
type Run struct {
	Workers int  `toml:"workers"`
	DryRun  bool `toml:"dry-run"`
	Ledger  bool `toml:"ledger"`
}

// Load parses a weft.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	file := filepath.Join(dir, "weft.toml")
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", file, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", file, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if m.Scan.Root == "" {
		m.Scan.Root = "classes"
	}
	if m.Scan.Suffix == "" {
		m.Scan.Suffix = ".class"
	}
	if len(m.Context) == 0 {
		m.Context = []ContextConfig{{Strategy: enhance.StrategyAccessor}}
	}

	for _, pat := range m.Scan.Excludes {
		if _, err := path.Match(pat, ""); err != nil {
			return nil, fmt.Errorf("bad exclude pattern %q in %s: %w", pat, file, err)
		}
	}
	if _, err := m.Contexts(); err != nil {
		return nil, fmt.Errorf("invalid context in %s: %w", file, err)
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a weft.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		file := filepath.Join(dir, "weft.toml")
		if _, err := os.Stat(file); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Contexts materializes the configured enhancement contexts in manifest
// order.
func (m *Manifest) Contexts() ([]enhance.Context, error) {
	out := make([]enhance.Context, 0, len(m.Context))
	for i, cc := range m.Context {
		ctx, err := cc.context()
		if err != nil {
			return nil, fmt.Errorf("context %d: %w", i+1, err)
		}
		out = append(out, ctx)
	}
	return out, nil
}

// ScanRoot returns the absolute path of the configured scan root.
func (m *Manifest) ScanRoot() string {
	if filepath.IsAbs(m.Scan.Root) {
		return m.Scan.Root
	}
	return filepath.Join(m.Dir, m.Scan.Root)
}

// LedgerPath returns the path to .weft/ledger.cbor.
func (m *Manifest) LedgerPath() string {
	return filepath.Join(m.Dir, ".weft", "ledger.cbor")
}

// Excluded reports whether a path, relative to the scan root, matches any
// exclude pattern. Patterns use path.Match syntax and are tried against the
// forward-slash relative path and against the bare file name.
func (s Scan) Excluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pat := range s.Excludes {
		if ok, _ := path.Match(pat, rel); ok {
			return true
		}
		if ok, _ := path.Match(pat, path.Base(rel)); ok {
			return true
		}
	}
	return false
}

func (c ContextConfig) context() (enhance.Context, error) {
	name := c.Strategy
	if name == "" {
		name = enhance.StrategyAccessor
	}
	strat, err := enhance.NewStrategy(name, enhance.Options{
		TransientMarker:            c.TransientMarker,
		Runtime:                    c.Runtime,
		DirtyTracking:              boolOr(c.DirtyTracking, true),
		LazyReads:                  boolOr(c.LazyReads, true),
		RequireConstructorTracking: c.ConstructorTracking,
	})
	if err != nil {
		return enhance.Context{}, err
	}

	label := c.Name
	if label == "" {
		label = strat.Name()
	}
	return enhance.Context{Name: label, Marker: c.Marker, Strategy: strat}, nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
