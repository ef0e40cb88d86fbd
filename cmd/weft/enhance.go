package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chazu/weft/enhance"
	"github.com/chazu/weft/ledger"
	"github.com/chazu/weft/pipeline"
)

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// handleEnhanceCommand processes the `weft enhance` subcommand.
// Usage:
//
//	weft enhance                        # per weft.toml
//	weft enhance -root build/classes    # no manifest needed
//	weft enhance -context jpa -dry-run
func handleEnhanceCommand(args []string) {
	fs := flag.NewFlagSet("enhance", flag.ExitOnError)
	rootFlag := fs.String("root", "", "Class root to scan (overrides manifest)")
	workersFlag := fs.Int("workers", 0, "Parallel workers (overrides manifest)")
	dryRunFlag := fs.Bool("dry-run", false, "Report what would change without writing")
	var only stringList
	fs.Var(&only, "context", "Context name to run (repeatable; default all)")
	fs.Parse(args)

	m := loadManifest()
	root, suffix := scanConfig(m, *rootFlag)

	var ctxs []enhance.Context
	if m != nil {
		var err error
		ctxs, err = m.Contexts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		ctxs = []enhance.Context{{Name: "accessor", Strategy: &enhance.AccessorStrategy{}}}
	}
	ctxs = selectContexts(ctxs, only)

	workers := *workersFlag
	if workers == 0 && m != nil {
		workers = m.Run.Workers
	}
	dryRun := *dryRunFlag
	if m != nil && m.Run.DryRun {
		dryRun = true
	}

	p := &pipeline.Pipeline{Contexts: ctxs, DryRun: dryRun, Workers: workers}

	var led *ledger.Ledger
	if m != nil && m.Run.Ledger {
		led = ledger.Load(m.LedgerPath())
		p.Ledger = led
		log.Infof("ledger %s has %d entries", m.LedgerPath(), led.Len())
	}

	paths, err := enumerate(m, root, suffix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Infof("scanning %d class files under %s", len(paths), root)

	outcomes := p.RunFiles(paths)

	var enhanced, skipped, failed int
	for _, oc := range outcomes {
		rel := relPath(root, oc.Path)
		switch oc.State {
		case pipeline.StateEnhanced:
			enhanced++
			fmt.Printf("enhanced  %s [%s]\n", rel, oc.Context)
		case pipeline.StateSkipped:
			skipped++
			log.Infof("skipped %s [%s]: %s", rel, oc.Context, oc.Reason)
		case pipeline.StateFailed:
			failed++
			fmt.Printf("failed    %s [%s] (%s): %v\n", rel, oc.Context, pipeline.Classify(oc.Err), oc.Err)
		}
	}

	if led != nil && !dryRun {
		if err := led.Save(m.LedgerPath()); err != nil {
			log.Errorf("%v", err)
		}
	}

	fmt.Printf("%d enhanced, %d skipped, %d failed\n", enhanced, skipped, failed)
	if dryRun {
		fmt.Println("dry run: no files were written")
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// selectContexts filters contexts down to the requested names, keeping
// manifest order. An unknown name is fatal.
func selectContexts(ctxs []enhance.Context, only stringList) []enhance.Context {
	if len(only) == 0 {
		return ctxs
	}

	want := make(map[string]bool, len(only))
	for _, name := range only {
		want[name] = true
	}

	kept := make([]enhance.Context, 0, len(only))
	for _, ctx := range ctxs {
		if want[ctx.Label()] {
			kept = append(kept, ctx)
			delete(want, ctx.Label())
		}
	}
	for name := range want {
		fmt.Fprintf(os.Stderr, "Error: unknown context %q\n", name)
		os.Exit(1)
	}
	return kept
}
