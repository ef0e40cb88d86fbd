package enhance

import (
	"fmt"

	"github.com/chazu/weft/classfile"
)

// ---------------------------------------------------------------------------
// Persistent field selection
// ---------------------------------------------------------------------------

// fieldKey identifies a declared field. The JVM permits two fields of the
// same name with different descriptors, so both parts participate.
type fieldKey struct {
	name string
	desc string
}

// PersistentFields returns the fields eligible for enhancement, in
// declaration order: instance fields not flagged static, synthetic or
// transient and not carrying the transience marker annotation
// (DefaultTransientMarker when empty). A field whose annotations cannot be
// decoded fails the class: guessing at transience risks instrumenting a
// field the author excluded.
func PersistentFields(c *classfile.Class, transientMarker string) ([]*classfile.Field, error) {
	if transientMarker == "" {
		transientMarker = DefaultTransientMarker
	}
	var out []*classfile.Field
	for _, f := range c.Fields {
		if f.IsStatic() || f.IsSynthetic() || f.IsTransient() {
			continue
		}
		anns, err := f.AnnotationTypes(c.Pool)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q has unreadable annotations", ErrCannotEnhance, f.Name(c.Pool))
		}
		if containsString(anns, transientMarker) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
