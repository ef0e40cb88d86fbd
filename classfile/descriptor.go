package classfile

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Field descriptors
// ---------------------------------------------------------------------------

// FieldType classifies a field descriptor into the handful of shapes the
// instruction set distinguishes. Kind is one of:
//
//	'I'  int family (B, C, S, Z, I)
//	'J'  long
//	'F'  float
//	'D'  double
//	'A'  reference (L...; or array)
type FieldType struct {
	Desc string
	Kind byte
}

// ParseFieldType validates a field descriptor and classifies it.
func ParseFieldType(desc string) (FieldType, error) {
	rest := desc
	for len(rest) > 0 && rest[0] == '[' {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return FieldType{}, fmt.Errorf("%w: %q", ErrBadDescriptor, desc)
	}
	if rest != desc {
		// Array dimensions consumed; whatever the component is, the field
		// itself is a reference.
		if _, err := ParseFieldType(rest); err != nil {
			return FieldType{}, fmt.Errorf("%w: %q", ErrBadDescriptor, desc)
		}
		return FieldType{Desc: desc, Kind: 'A'}, nil
	}

	switch rest[0] {
	case 'B', 'C', 'S', 'Z', 'I':
		if len(rest) != 1 {
			return FieldType{}, fmt.Errorf("%w: %q", ErrBadDescriptor, desc)
		}
		return FieldType{Desc: desc, Kind: 'I'}, nil
	case 'J', 'F', 'D':
		if len(rest) != 1 {
			return FieldType{}, fmt.Errorf("%w: %q", ErrBadDescriptor, desc)
		}
		return FieldType{Desc: desc, Kind: rest[0]}, nil
	case 'L':
		if !strings.HasSuffix(rest, ";") || len(rest) < 3 {
			return FieldType{}, fmt.Errorf("%w: %q", ErrBadDescriptor, desc)
		}
		return FieldType{Desc: desc, Kind: 'A'}, nil
	default:
		return FieldType{}, fmt.Errorf("%w: %q", ErrBadDescriptor, desc)
	}
}

// Width returns the operand-stack slot count of a value of this type.
func (t FieldType) Width() int {
	if t.Kind == 'J' || t.Kind == 'D' {
		return 2
	}
	return 1
}

// IsReference reports whether the type is an object or array reference.
func (t FieldType) IsReference() bool {
	return t.Kind == 'A'
}

// LoadSlot1 returns the opcode that loads local slot 1 as this type.
func (t FieldType) LoadSlot1() byte {
	switch t.Kind {
	case 'J':
		return OpLload1
	case 'F':
		return OpFload1
	case 'D':
		return OpDload1
	case 'A':
		return OpAload1
	default:
		return OpIload1
	}
}

// ReturnOp returns the opcode that returns this type from a method.
func (t FieldType) ReturnOp() byte {
	switch t.Kind {
	case 'J':
		return OpLreturn
	case 'F':
		return OpFreturn
	case 'D':
		return OpDreturn
	case 'A':
		return OpAreturn
	default:
		return OpIreturn
	}
}
