package enhance

import (
	"fmt"

	"github.com/chazu/weft/classfile"
)

// ---------------------------------------------------------------------------
// Strategy interface and registry
// ---------------------------------------------------------------------------

// Registered strategy names.
const (
	StrategyAccessor  = "accessor"
	StrategyIntercept = "intercept"
)

// Strategy is the pluggable enhancement capability. TryEnhance mutates the
// class in place and reports whether it changed anything: (false, nil) means
// not applicable (typically already enhanced), (true, nil) means the class
// was mutated and must be re-serialized. Errors wrap ErrCannotEnhance for
// enhancement-domain failures and classfile.ErrMalformed for structural
// corruption discovered along the way.
type Strategy interface {
	Name() string
	TryEnhance(c *classfile.Class) (bool, error)
}

// Options carries the per-context knobs a strategy is built from. The zero
// value yields library defaults everywhere a default exists.
type Options struct {
	// TransientMarker is the dotted annotation name excluding a field from
	// enhancement. DefaultTransientMarker when empty.
	TransientMarker string

	// Runtime is the internal-form package prefix of the hook owner classes,
	// e.g. "weft/runtime". DefaultRuntime when empty. Only the intercept
	// strategy reads it.
	Runtime string

	// DirtyTracking and LazyReads enable the two intercept hook families.
	DirtyTracking bool
	LazyReads     bool

	// RequireConstructorTracking turns a persistent-field write inside a
	// constructor into an enhancement failure instead of leaving the write
	// untracked.
	RequireConstructorTracking bool
}

// NewStrategy builds the named strategy. Unknown names return
// ErrUnknownStrategy.
func NewStrategy(name string, opts Options) (Strategy, error) {
	switch name {
	case StrategyAccessor:
		return &AccessorStrategy{
			Transient:                  opts.TransientMarker,
			RequireConstructorTracking: opts.RequireConstructorTracking,
		}, nil
	case StrategyIntercept:
		return &InterceptStrategy{
			Transient:                  opts.TransientMarker,
			Runtime:                    opts.Runtime,
			DirtyTracking:              opts.DirtyTracking,
			LazyReads:                  opts.LazyReads,
			RequireConstructorTracking: opts.RequireConstructorTracking,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
