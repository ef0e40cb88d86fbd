package pipeline

import (
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/weft/classfile"
	"github.com/chazu/weft/enhance"
)

// ---------------------------------------------------------------------------
// Pipeline
// ---------------------------------------------------------------------------

// Ledger is the optional incremental-skip hook. UpToDate is consulted with
// a file's current bytes before any parsing; Record is called with the
// bytes a successful commit wrote. Implementations must be safe for
// concurrent use when the pipeline runs parallel.
type Ledger interface {
	UpToDate(path, context string, data []byte) bool
	Record(path, context string, data []byte)
}

// Pipeline applies a sequence of enhancement contexts to class files. Every
// context must carry a strategy. The zero knobs mean: sequential, writes to
// disk, no incremental ledger.
type Pipeline struct {
	Contexts []enhance.Context

	// DryRun performs the full transform but never touches the disk.
	DryRun bool

	// Workers bounds parallel file processing; values below two run
	// sequentially. Each file's read-transform-write is one unit of work,
	// so no file is ever processed by two workers.
	Workers int

	// Ledger, when set, short-circuits files whose bytes match the last
	// successful run.
	Ledger Ledger
}

// Run enumerates root for files ending in suffix (DefaultSuffix when
// empty) and processes each. It returns one outcome per file per context;
// the only error is a root that cannot be enumerated.
func (p *Pipeline) Run(root, suffix string) ([]Outcome, error) {
	paths, err := Enumerate(root, suffix)
	if err != nil {
		return nil, err
	}
	return p.RunFiles(paths), nil
}

// RunFiles processes an explicit list of files. Outcomes are ordered by
// file, then by context, regardless of worker count.
func (p *Pipeline) RunFiles(paths []string) []Outcome {
	if p.Workers > 1 {
		return p.runParallel(paths)
	}
	var out []Outcome
	for _, path := range paths {
		out = append(out, p.processFile(path)...)
	}
	return out
}

// runParallel fans files out to a bounded worker group. Results land in
// per-file slots, so collection is race-free and the flattened order
// matches the sequential one.
func (p *Pipeline) runParallel(paths []string) []Outcome {
	slots := make([][]Outcome, len(paths))
	g := new(errgroup.Group)
	g.SetLimit(p.Workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			slots[i] = p.processFile(path)
			return nil
		})
	}
	// Workers never return errors; every failure is already an outcome.
	_ = g.Wait()

	out := make([]Outcome, 0, len(paths)*len(p.Contexts))
	for _, s := range slots {
		out = append(out, s...)
	}
	return out
}

// processFile runs every context against one file, in order. A context
// that commits new bytes hands them to the next context, so later contexts
// always see earlier output; in a dry run the handoff happens in memory
// only.
func (p *Pipeline) processFile(path string) []Outcome {
	outcomes := make([]Outcome, 0, len(p.Contexts))

	data, err := os.ReadFile(path)
	if err != nil {
		for _, ctx := range p.Contexts {
			outcomes = append(outcomes, Outcome{
				Path: path, Context: ctx.Label(), State: StateFailed, Err: err,
			})
		}
		return outcomes
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	for _, ctx := range p.Contexts {
		oc, newData := p.applyContext(path, ctx, data, mode)
		outcomes = append(outcomes, oc)
		if newData != nil {
			data = newData
		}
	}
	return outcomes
}

// applyContext runs one context over the current bytes of one file,
// returning the outcome and, on enhancement, the new bytes.
func (p *Pipeline) applyContext(path string, ctx enhance.Context, data []byte, mode fs.FileMode) (Outcome, []byte) {
	oc := Outcome{Path: path, Context: ctx.Label()}

	if ctx.Strategy == nil {
		oc.State = StateFailed
		oc.Err = fmt.Errorf("context %q has no strategy", oc.Context)
		return oc, nil
	}

	if p.Ledger != nil && p.Ledger.UpToDate(path, oc.Context, data) {
		oc.State = StateSkipped
		oc.Reason = ReasonUpToDate
		return oc, nil
	}

	c, err := classfile.Parse(data)
	if err != nil {
		oc.State = StateFailed
		oc.Err = err
		return oc, nil
	}

	if !enhance.IsEntity(c, ctx.EntityMarker()) {
		oc.State = StateSkipped
		oc.Reason = ReasonNotEntity
		return oc, nil
	}

	changed, err := ctx.Strategy.TryEnhance(c)
	if err != nil {
		oc.State = StateFailed
		oc.Err = err
		return oc, nil
	}
	if !changed {
		oc.State = StateSkipped
		oc.Reason = ReasonAlreadyEnhanced
		return oc, nil
	}

	newData := classfile.Serialize(c)
	if !p.DryRun {
		if err := commit(path, newData, mode); err != nil {
			oc.State = StateFailed
			oc.Err = err
			return oc, nil
		}
		if p.Ledger != nil {
			p.Ledger.Record(path, oc.Context, newData)
		}
	}
	oc.State = StateEnhanced
	return oc, newData
}
