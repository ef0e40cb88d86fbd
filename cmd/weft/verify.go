package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chazu/weft/classfile"
)

// handleVerifyCommand processes the `weft verify` subcommand.
// Usage:
//
//	weft verify
//	weft verify -root build/classes
func handleVerifyCommand(args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	rootFlag := fs.String("root", "", "Class root to scan (overrides manifest)")
	fs.Parse(args)

	m := loadManifest()
	root, suffix := scanConfig(m, *rootFlag)

	paths, err := enumerate(m, root, suffix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	malformed := 0
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err == nil {
			_, err = classfile.Parse(data)
		}
		if err != nil {
			malformed++
			fmt.Printf("malformed %s: %v\n", relPath(root, path), err)
			continue
		}
		log.Debugf("ok %s", path)
	}

	fmt.Printf("%d files verified, %d malformed\n", len(paths)-malformed, malformed)
	if malformed > 0 {
		os.Exit(1)
	}
}
