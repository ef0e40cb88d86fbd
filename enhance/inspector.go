package enhance

import "github.com/chazu/weft/classfile"

// ---------------------------------------------------------------------------
// Entity classification
// ---------------------------------------------------------------------------

// Default marker annotations, overridable per context.
const (
	DefaultMarker          = "jakarta.persistence.Entity"
	DefaultTransientMarker = "jakarta.persistence.Transient"
)

// IsEntity reports whether the class carries the marker annotation, matched
// case-sensitively against the fully qualified dotted names of its runtime
// visible and invisible annotations. A class whose annotation attributes
// cannot be decoded is not an entity: classification must never claim a
// class it cannot fully read.
func IsEntity(c *classfile.Class, marker string) bool {
	anns, err := c.AnnotationTypes()
	if err != nil {
		return false
	}
	for _, a := range anns {
		if a == marker {
			return true
		}
	}
	return false
}
