package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/weft/enhance"
	"github.com/chazu/weft/manifest"
)

func TestScanConfig(t *testing.T) {
	m := &manifest.Manifest{
		Dir:  "/app",
		Scan: manifest.Scan{Root: "build/classes", Suffix: ".klass"},
	}

	root, suffix := scanConfig(m, "")
	if root != "/app/build/classes" || suffix != ".klass" {
		t.Errorf("manifest config = %q %q, want /app/build/classes .klass", root, suffix)
	}

	root, _ = scanConfig(m, "elsewhere")
	if root != "elsewhere" {
		t.Errorf("flag override = %q, want elsewhere", root)
	}

	root, suffix = scanConfig(nil, "")
	if root != "classes" || suffix != ".class" {
		t.Errorf("bare defaults = %q %q, want classes .class", root, suffix)
	}
}

func TestSelectContexts(t *testing.T) {
	ctxs := []enhance.Context{
		{Name: "first", Strategy: &enhance.AccessorStrategy{}},
		{Name: "second", Strategy: &enhance.InterceptStrategy{}},
		{Name: "third", Strategy: &enhance.AccessorStrategy{}},
	}

	got := selectContexts(ctxs, nil)
	if len(got) != 3 {
		t.Errorf("no filter kept %d contexts, want 3", len(got))
	}

	got = selectContexts(ctxs, stringList{"third", "first"})
	if len(got) != 2 {
		t.Fatalf("filter kept %d contexts, want 2", len(got))
	}
	// Manifest order wins over flag order.
	if got[0].Name != "first" || got[1].Name != "third" {
		t.Errorf("filtered order = %s, %s, want first, third", got[0].Name, got[1].Name)
	}
}

func TestEnumerateExcludes(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"Order.class", "OrderTest.class", "gen/Stub.class"} {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte{0xCA}, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	m := &manifest.Manifest{
		Scan: manifest.Scan{Excludes: []string{"*Test.class", "gen/*"}},
	}
	paths, err := enumerate(m, root, ".class")
	if err != nil {
		t.Fatalf("enumerate failed: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "Order.class" {
		t.Errorf("kept %v, want only Order.class", paths)
	}
}

func TestRelPath(t *testing.T) {
	if got := relPath("/app/classes", "/app/classes/com/shop/Order.class"); got != filepath.FromSlash("com/shop/Order.class") {
		t.Errorf("relPath = %q", got)
	}
}
