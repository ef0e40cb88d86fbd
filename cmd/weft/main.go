// Weft CLI - build-time bytecode enhancement for JVM entity classes
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"

	"github.com/chazu/weft/manifest"
	"github.com/chazu/weft/pipeline"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("weft")

func main() {
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: weft [options] <command> [command options]\n\n")
		fmt.Fprintf(os.Stderr, "Rewrites compiled entity classes in place so field access runs through\n")
		fmt.Fprintf(os.Stderr, "synthesized accessor methods.\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  enhance    Enhance entity classes under the class root\n")
		fmt.Fprintf(os.Stderr, "  verify     Parse every class file and report malformed ones\n")
		fmt.Fprintf(os.Stderr, "  catalog    Build or refresh the annotation catalog\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  weft enhance                     # per ./weft.toml\n")
		fmt.Fprintf(os.Stderr, "  weft enhance -root build/classes -dry-run\n")
		fmt.Fprintf(os.Stderr, "  weft verify -root build/classes\n")
		fmt.Fprintf(os.Stderr, "  weft catalog -entities\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	switch args[0] {
	case "enhance":
		handleEnhanceCommand(args[1:])
	case "verify":
		handleVerifyCommand(args[1:])
	case "catalog":
		handleCatalogCommand(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		flag.Usage()
		os.Exit(2)
	}
}

// loadManifest finds the project manifest by walking up from the working
// directory. A missing manifest is not an error; commands fall back to
// flags and defaults.
func loadManifest() *manifest.Manifest {
	m, err := manifest.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading manifest: %v\n", err)
		os.Exit(1)
	}
	if m != nil {
		log.Infof("using manifest %s", filepath.Join(m.Dir, "weft.toml"))
	}
	return m
}

// scanConfig resolves the scan root and suffix from the flag and manifest,
// flag first.
func scanConfig(m *manifest.Manifest, rootFlag string) (root, suffix string) {
	root = rootFlag
	suffix = ".class"
	if m != nil {
		if root == "" {
			root = m.ScanRoot()
		}
		suffix = m.Scan.Suffix
	}
	if root == "" {
		root = "classes"
	}
	return root, suffix
}

// enumerate lists the class files under root, dropping paths matched by the
// manifest's exclude patterns.
func enumerate(m *manifest.Manifest, root, suffix string) ([]string, error) {
	paths, err := pipeline.Enumerate(root, suffix)
	if err != nil || m == nil || len(m.Scan.Excludes) == 0 {
		return paths, err
	}

	kept := paths[:0]
	for _, p := range paths {
		rel := relPath(root, p)
		if m.Scan.Excluded(rel) {
			log.Debugf("excluded %s", rel)
			continue
		}
		kept = append(kept, p)
	}
	return kept, nil
}

func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
