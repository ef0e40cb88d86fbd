package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chazu/weft/catalog"
)

// handleCatalogCommand processes the `weft catalog` subcommand.
// Usage:
//
//	weft catalog                  # build/refresh .weft/catalog.db
//	weft catalog -entities        # then list entity classes
//	weft catalog -root dir -db path
func handleCatalogCommand(args []string) {
	fs := flag.NewFlagSet("catalog", flag.ExitOnError)
	rootFlag := fs.String("root", "", "Class root to scan (overrides manifest)")
	dbFlag := fs.String("db", "", "Catalog database path (default .weft/catalog.db)")
	listEntities := fs.Bool("entities", false, "List entity classes after building")
	listEnhanced := fs.Bool("enhanced", false, "List enhanced classes after building")
	fs.Parse(args)

	m := loadManifest()
	root, suffix := scanConfig(m, *rootFlag)

	dbPath := *dbFlag
	if dbPath == "" {
		dbPath = filepath.Join(".weft", "catalog.db")
		if m != nil {
			dbPath = filepath.Join(m.Dir, ".weft", "catalog.db")
		}
	}

	var opts catalog.BuildOptions
	if m != nil && len(m.Context) > 0 {
		opts.Marker = m.Context[0].Marker
		opts.TransientMarker = m.Context[0].TransientMarker
	}

	paths, err := enumerate(m, root, suffix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cat, err := catalog.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cat.Close()

	stats, err := cat.BuildFiles(paths, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("indexed %d classes (%d entities, %d failed) into %s\n",
		stats.Classes, stats.Entities, stats.Failed, dbPath)

	if *listEntities {
		listClasses(cat.Entities, "entities")
	}
	if *listEnhanced {
		listClasses(cat.Enhanced, "enhanced")
	}
}

func listClasses(query func() ([]catalog.ClassRow, error), what string) {
	rows, err := query()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing %s: %v\n", what, err)
		os.Exit(1)
	}
	for _, r := range rows {
		fmt.Println(r.Name)
	}
}
