package enhance

import "github.com/chazu/weft/classfile"

// ---------------------------------------------------------------------------
// Intercept strategy
// ---------------------------------------------------------------------------

// DefaultRuntime is the internal-form package prefix of the hook owner
// classes when a context does not override it.
const DefaultRuntime = "weft/runtime"

// Hook owner classes and the shared hook shape. Every hook is a static void
// method taking the owning object and the field name.
const (
	dirtyTrackerClass  = "DirtyTracker"
	dirtyTrackerMethod = "fieldWritten"
	lazyLoaderClass    = "LazyLoader"
	lazyLoaderMethod   = "fieldRead"
	hookDescriptor     = "(Ljava/lang/Object;Ljava/lang/String;)V"
)

// InterceptStrategy is the accessor strategy with persistence-runtime hooks
// woven into the accessor bodies: write accessors report dirty state, read
// accessors of reference-typed fields trigger lazy loading. The owner
// classes are referenced purely through the constant pool and need not
// exist at enhancement time.
type InterceptStrategy struct {
	// Transient overrides the transience marker annotation.
	// DefaultTransientMarker when empty.
	Transient string

	// Runtime is the internal-form package prefix of the hook owner
	// classes. DefaultRuntime when empty.
	Runtime string

	// DirtyTracking weaves DirtyTracker.fieldWritten into write accessors.
	DirtyTracking bool

	// LazyReads weaves LazyLoader.fieldRead into reference-typed read
	// accessors. Primitive reads never hook: there is nothing lazy to load.
	LazyReads bool

	// RequireConstructorTracking fails enhancement when a constructor
	// writes a persistent field, instead of leaving the write untracked.
	RequireConstructorTracking bool
}

// Name implements Strategy.
func (s *InterceptStrategy) Name() string { return StrategyIntercept }

// TryEnhance implements Strategy.
func (s *InterceptStrategy) TryEnhance(c *classfile.Class) (bool, error) {
	return enhance(c, config{
		strategy:    s.Name(),
		transient:   defaulted(s.Transient, DefaultTransientMarker),
		strictCtors: s.RequireConstructorTracking,
		hooks: &hooks{
			runtime: defaulted(s.Runtime, DefaultRuntime),
			dirty:   s.DirtyTracking,
			lazy:    s.LazyReads,
		},
	})
}

// hooks configures the runtime calls woven into accessor bodies.
type hooks struct {
	runtime string // internal-form package prefix, already defaulted
	dirty   bool
	lazy    bool
}

// hookCall assembles the instructions that pass (this, fieldName) to a
// static runtime hook: aload_0, ldc of the field name, invokestatic. The
// narrow ldc form is used while the string index still fits a byte.
func hookCall(pool *classfile.ConstPool, owner, method, fieldName string) ([]byte, error) {
	strIdx, err := pool.AddString(fieldName)
	if err != nil {
		return nil, err
	}
	ref, err := pool.AddMethodref(owner, method, hookDescriptor)
	if err != nil {
		return nil, err
	}

	code := []byte{classfile.OpAload0}
	if strIdx <= 0xFF {
		code = append(code, classfile.OpLdc, byte(strIdx))
	} else {
		code = append(code, classfile.OpLdcW, byte(strIdx>>8), byte(strIdx))
	}
	return append(code, classfile.OpInvokestatic, byte(ref>>8), byte(ref)), nil
}
