package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/weft/enhance"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "weft.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadManifest(t *testing.T) {
	dir := writeManifest(t, `
[project]
name = "shop"

[scan]
root = "build/classes"
suffix = ".class"
excludes = ["*Test.class", "generated/*"]

[[context]]
name = "jpa"
strategy = "accessor"
marker = "jakarta.persistence.Entity"
transient-marker = "jakarta.persistence.Transient"
constructor-tracking = true

[[context]]
strategy = "intercept"
runtime = "com/acme/rt"
lazy-reads = false

[run]
workers = 4
dry-run = true
ledger = true
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "shop" {
		t.Errorf("project name = %q, want shop", m.Project.Name)
	}
	if m.Scan.Root != "build/classes" {
		t.Errorf("scan root = %q, want build/classes", m.Scan.Root)
	}
	if m.Scan.Suffix != ".class" {
		t.Errorf("scan suffix = %q, want .class", m.Scan.Suffix)
	}
	if len(m.Scan.Excludes) != 2 {
		t.Errorf("excludes count = %d, want 2", len(m.Scan.Excludes))
	}
	if len(m.Context) != 2 {
		t.Fatalf("context count = %d, want 2", len(m.Context))
	}
	if !m.Context[0].ConstructorTracking {
		t.Error("context 1 constructor-tracking = false, want true")
	}
	if m.Run.Workers != 4 {
		t.Errorf("workers = %d, want 4", m.Run.Workers)
	}
	if !m.Run.DryRun {
		t.Error("dry-run = false, want true")
	}
	if !m.Run.Ledger {
		t.Error("ledger = false, want true")
	}

	ctxs, err := m.Contexts()
	if err != nil {
		t.Fatalf("Contexts failed: %v", err)
	}
	if len(ctxs) != 2 {
		t.Fatalf("materialized %d contexts, want 2", len(ctxs))
	}
	if ctxs[0].Name != "jpa" {
		t.Errorf("context 1 name = %q, want jpa", ctxs[0].Name)
	}
	acc, ok := ctxs[0].Strategy.(*enhance.AccessorStrategy)
	if !ok {
		t.Fatalf("context 1 strategy = %T, want *AccessorStrategy", ctxs[0].Strategy)
	}
	if !acc.RequireConstructorTracking {
		t.Error("context 1 strategy lost constructor-tracking")
	}

	// Unnamed contexts report under the strategy name.
	if ctxs[1].Name != "intercept" {
		t.Errorf("context 2 name = %q, want intercept", ctxs[1].Name)
	}
	ic, ok := ctxs[1].Strategy.(*enhance.InterceptStrategy)
	if !ok {
		t.Fatalf("context 2 strategy = %T, want *InterceptStrategy", ctxs[1].Strategy)
	}
	if ic.Runtime != "com/acme/rt" {
		t.Errorf("context 2 runtime = %q, want com/acme/rt", ic.Runtime)
	}
	if !ic.DirtyTracking {
		t.Error("context 2 dirty-tracking defaulted to false, want true")
	}
	if ic.LazyReads {
		t.Error("context 2 lazy-reads = true, want explicit false")
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := writeManifest(t, `
[project]
name = "minimal"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Scan.Root != "classes" {
		t.Errorf("default scan root = %q, want classes", m.Scan.Root)
	}
	if m.Scan.Suffix != ".class" {
		t.Errorf("default scan suffix = %q, want .class", m.Scan.Suffix)
	}

	ctxs, err := m.Contexts()
	if err != nil {
		t.Fatalf("Contexts failed: %v", err)
	}
	if len(ctxs) != 1 {
		t.Fatalf("materialized %d contexts, want 1 default", len(ctxs))
	}
	if ctxs[0].Name != "accessor" {
		t.Errorf("default context name = %q, want accessor", ctxs[0].Name)
	}
	if _, ok := ctxs[0].Strategy.(*enhance.AccessorStrategy); !ok {
		t.Errorf("default strategy = %T, want *AccessorStrategy", ctxs[0].Strategy)
	}
}

func TestLoadManifestUnknownStrategy(t *testing.T) {
	dir := writeManifest(t, `
[[context]]
strategy = "bytebuddy"
`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("Load accepted an unknown strategy")
	}
	if !errors.Is(err, enhance.ErrUnknownStrategy) {
		t.Errorf("error = %v, want ErrUnknownStrategy", err)
	}
}

func TestLoadManifestBadExclude(t *testing.T) {
	dir := writeManifest(t, `
[scan]
excludes = ["[bad"]
`)

	if _, err := Load(dir); err == nil {
		t.Fatal("Load accepted a malformed exclude pattern")
	}
}

func TestLoadManifestBadTOML(t *testing.T) {
	dir := writeManifest(t, `[project`)

	if _, err := Load(dir); err == nil {
		t.Fatal("Load accepted malformed TOML")
	}
}

func TestFindAndLoad(t *testing.T) {
	dir := t.TempDir()
	subDir := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}

	content := `[project]
name = "found-project"
`
	if err := os.WriteFile(filepath.Join(dir, "weft.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	// Should find the manifest when starting from a deep subdirectory.
	m, err := FindAndLoad(subDir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if m.Project.Name != "found-project" {
		t.Errorf("project name = %q, want found-project", m.Project.Name)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	m, err := FindAndLoad(dir)
	if err != nil {
		t.Fatalf("FindAndLoad error: %v", err)
	}
	if m != nil {
		t.Error("expected nil manifest when no weft.toml exists")
	}
}

func TestScanRoot(t *testing.T) {
	m := &Manifest{Dir: "/app", Scan: Scan{Root: "build/classes"}}
	if got := m.ScanRoot(); got != "/app/build/classes" {
		t.Errorf("ScanRoot = %q, want /app/build/classes", got)
	}

	m.Scan.Root = "/opt/classes"
	if got := m.ScanRoot(); got != "/opt/classes" {
		t.Errorf("absolute ScanRoot = %q, want /opt/classes", got)
	}
}

func TestLedgerPath(t *testing.T) {
	m := &Manifest{Dir: "/app"}
	if got := m.LedgerPath(); got != "/app/.weft/ledger.cbor" {
		t.Errorf("LedgerPath = %q, want /app/.weft/ledger.cbor", got)
	}
}

func TestExcluded(t *testing.T) {
	s := Scan{Excludes: []string{"*Test.class", "generated/*"}}

	tests := []struct {
		rel  string
		want bool
	}{
		{"OrderTest.class", true},
		{"sub/OrderTest.class", true}, // matched by bare file name
		{"generated/Order.class", true},
		{"Order.class", false},
		{"sub/Order.class", false},
	}
	for _, tt := range tests {
		if got := s.Excluded(tt.rel); got != tt.want {
			t.Errorf("Excluded(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}

	if (Scan{}).Excluded("anything.class") {
		t.Error("empty exclude list excluded a path")
	}
}
