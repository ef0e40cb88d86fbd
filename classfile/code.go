package classfile

import (
	"encoding/binary"
	"fmt"
)

// ---------------------------------------------------------------------------
// Code attribute view
// ---------------------------------------------------------------------------

// codeHeaderSize is the fixed prefix of a Code payload:
// max_stack(2) + max_locals(2) + code_length(4).
const codeHeaderSize = 8

// Code is a structured view over a Code attribute payload. Bytecode returns
// a subslice of the payload, so length-preserving patches write straight
// through to the attribute and survive serialization with no re-encoding.
type Code struct {
	attr    *Attribute
	codeLen int
}

// OpenCode validates a Code attribute's framing and returns a view over it.
// The exception table and nested attributes are checked for bounds but left
// opaque.
func OpenCode(a *Attribute) (*Code, error) {
	p := a.Payload
	if len(p) < codeHeaderSize {
		return nil, fmt.Errorf("%w: Code header", ErrBadAttribute)
	}
	codeLen := int(binary.BigEndian.Uint32(p[4:]))
	off := codeHeaderSize + codeLen
	if codeLen == 0 || off+2 > len(p) {
		return nil, fmt.Errorf("%w: Code body length %d", ErrBadAttribute, codeLen)
	}

	excCount := int(binary.BigEndian.Uint16(p[off:]))
	off += 2 + 8*excCount
	if off+2 > len(p) {
		return nil, fmt.Errorf("%w: Code exception table", ErrBadAttribute)
	}

	attrCount := int(binary.BigEndian.Uint16(p[off:]))
	off += 2
	for i := 0; i < attrCount; i++ {
		if off+6 > len(p) {
			return nil, fmt.Errorf("%w: Code nested attribute %d", ErrBadAttribute, i)
		}
		nested := int(binary.BigEndian.Uint32(p[off+2:]))
		off += 6 + nested
		if off > len(p) {
			return nil, fmt.Errorf("%w: Code nested attribute %d", ErrBadAttribute, i)
		}
	}
	if off != len(p) {
		return nil, fmt.Errorf("%w: Code trailing bytes", ErrBadAttribute)
	}

	return &Code{attr: a, codeLen: codeLen}, nil
}

// MaxStack returns the declared operand stack depth.
func (c *Code) MaxStack() uint16 {
	return binary.BigEndian.Uint16(c.attr.Payload)
}

// MaxLocals returns the declared local variable count.
func (c *Code) MaxLocals() uint16 {
	return binary.BigEndian.Uint16(c.attr.Payload[2:])
}

// Bytecode returns the method body. The slice aliases the attribute payload:
// writes to it mutate the attribute in place.
func (c *Code) Bytecode() []byte {
	return c.attr.Payload[codeHeaderSize : codeHeaderSize+c.codeLen]
}

// ---------------------------------------------------------------------------
// Code construction
// ---------------------------------------------------------------------------

// BuildCode assembles a Code payload for a freshly synthesized method body
// with no exception table and no nested attributes.
func BuildCode(maxStack, maxLocals uint16, bytecode []byte) []byte {
	p := make([]byte, 0, codeHeaderSize+len(bytecode)+4)
	var b [4]byte

	binary.BigEndian.PutUint16(b[:], maxStack)
	p = append(p, b[:2]...)
	binary.BigEndian.PutUint16(b[:], maxLocals)
	p = append(p, b[:2]...)
	binary.BigEndian.PutUint32(b[:], uint32(len(bytecode)))
	p = append(p, b[:4]...)
	p = append(p, bytecode...)
	p = append(p, 0, 0) // exception_table_length
	p = append(p, 0, 0) // attributes_count
	return p
}
