package classfile

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Annotation scanning
// ---------------------------------------------------------------------------
//
// The enhancer only needs annotation type names, so element values are
// skipped structurally rather than decoded.

// AnnotationTypes decodes the annotation type names from a
// RuntimeVisibleAnnotations or RuntimeInvisibleAnnotations payload,
// returning them in dotted form.
func AnnotationTypes(pool *ConstPool, payload []byte) ([]string, error) {
	r := &reader{data: payload}

	count, err := r.u16()
	if err != nil {
		return nil, annErr(err)
	}
	names := make([]string, 0, count)
	for i := 0; i < int(count); i++ {
		name, err := readAnnotation(r, pool)
		if err != nil {
			return nil, annErr(err)
		}
		names = append(names, name)
	}
	return names, nil
}

func annErr(err error) error {
	return fmt.Errorf("%w: annotations: %v", ErrBadAttribute, err)
}

// readAnnotation consumes one annotation structure and returns its type
// name in dotted form.
func readAnnotation(r *reader, pool *ConstPool) (string, error) {
	typeIdx, err := r.u16()
	if err != nil {
		return "", err
	}
	desc, err := pool.Utf8(typeIdx)
	if err != nil {
		return "", err
	}
	name, err := descriptorToDotted(desc)
	if err != nil {
		return "", err
	}

	pairs, err := r.u16()
	if err != nil {
		return "", err
	}
	for i := 0; i < int(pairs); i++ {
		if _, err := r.u16(); err != nil { // element_name_index
			return "", err
		}
		if err := skipElementValue(r, pool); err != nil {
			return "", err
		}
	}
	return name, nil
}

// skipElementValue consumes one element_value using the tag grammar.
func skipElementValue(r *reader, pool *ConstPool) error {
	tag, err := r.u8()
	if err != nil {
		return err
	}
	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's', 'c':
		_, err := r.u16()
		return err
	case 'e':
		if _, err := r.u16(); err != nil {
			return err
		}
		_, err := r.u16()
		return err
	case '@':
		_, err := readAnnotation(r, pool)
		return err
	case '[':
		n, err := r.u16()
		if err != nil {
			return err
		}
		for i := 0; i < int(n); i++ {
			if err := skipElementValue(r, pool); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("element value tag %q", tag)
	}
}

// descriptorToDotted converts a class-type descriptor like
// "Ljakarta/persistence/Entity;" to "jakarta.persistence.Entity".
func descriptorToDotted(desc string) (string, error) {
	if len(desc) < 3 || desc[0] != 'L' || desc[len(desc)-1] != ';' {
		return "", fmt.Errorf("%w: annotation type %q", ErrBadDescriptor, desc)
	}
	return strings.ReplaceAll(desc[1:len(desc)-1], "/", "."), nil
}

// ---------------------------------------------------------------------------
// Model helpers
// ---------------------------------------------------------------------------

// annotationAttrNames are the two attributes that carry type annotations.
var annotationAttrNames = [2]string{AttrRuntimeVisibleAnns, AttrRuntimeInvisibleAnns}

func collectAnnotations(pool *ConstPool, attrs []*Attribute) ([]string, error) {
	var names []string
	for _, want := range annotationAttrNames {
		a := findAttr(attrs, pool, want)
		if a == nil {
			continue
		}
		got, err := AnnotationTypes(pool, a.Payload)
		if err != nil {
			return nil, err
		}
		names = append(names, got...)
	}
	return names, nil
}

// AnnotationTypes returns the dotted type names of all class-level
// annotations, visible and invisible.
func (c *Class) AnnotationTypes() ([]string, error) {
	return collectAnnotations(c.Pool, c.Attrs)
}

// AnnotationTypes returns the dotted type names of the field's annotations.
func (f *Field) AnnotationTypes(pool *ConstPool) ([]string, error) {
	return collectAnnotations(pool, f.Attrs)
}
