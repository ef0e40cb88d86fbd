package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// ---------------------------------------------------------------------------
// Candidate enumeration
// ---------------------------------------------------------------------------

// DefaultSuffix selects compiled class files when no suffix is configured.
const DefaultSuffix = ".class"

// ErrRootScan wraps a failure to enumerate the root itself, the pipeline's
// only top-level error.
var ErrRootScan = errors.New("cannot scan root")

// Enumerate returns every regular file under root whose name ends in
// suffix, in the walk's lexical order. Per-file problems are not visible
// here; they surface later as per-file outcomes. A root that cannot be
// walked returns ErrRootScan.
func Enumerate(root, suffix string) ([]string, error) {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.HasSuffix(d.Name(), suffix) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRootScan, err)
	}
	return paths, nil
}
