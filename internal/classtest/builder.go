// Package classtest assembles small synthetic class files for tests.
//
// The builder writes the binary container directly, with no dependency on
// the production model, so tests exercise real parsing rather than a
// round-trip through the code under test.
package classtest

import (
	"bytes"
	"encoding/binary"
)

type poolEntry struct {
	tag  byte
	data []byte
}

// Attr is an attribute to attach to a class, field or method. The name is
// interned into the constant pool when the class is assembled.
type Attr struct {
	Name    string
	Payload []byte
}

type member struct {
	access  uint16
	nameIdx uint16
	descIdx uint16
	attrs   []Attr
}

// Builder accumulates the pieces of one class file. The zero value is not
// usable; start with New.
type Builder struct {
	Minor  uint16
	Major  uint16
	Access uint16

	pool       []poolEntry // slot i+1 holds pool[i]; phantom slots have tag 0
	utf8Idx    map[string]uint16
	thisClass  uint16
	superClass uint16
	interfaces []uint16
	fields     []member
	methods    []member
	attrs      []Attr
}

// New starts a public class with the given internal name extending
// java/lang/Object, at a recent format version.
func New(internalName string) *Builder {
	b := &Builder{
		Major:   61,
		Access:  0x0021, // public, super
		utf8Idx: make(map[string]uint16),
	}
	b.thisClass = b.Class(internalName)
	b.superClass = b.Class("java/lang/Object")
	return b
}

func (b *Builder) add(tag byte, data []byte) uint16 {
	idx := uint16(len(b.pool) + 1)
	b.pool = append(b.pool, poolEntry{tag: tag, data: data})
	if tag == 5 || tag == 6 { // Long, Double
		b.pool = append(b.pool, poolEntry{})
	}
	return idx
}

func (b *Builder) find(tag byte, data []byte) uint16 {
	for i, e := range b.pool {
		if e.tag == tag && bytes.Equal(e.data, data) {
			return uint16(i + 1)
		}
	}
	return 0
}

func u16be(vals ...uint16) []byte {
	out := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint16(out[2*i:], v)
	}
	return out
}

// Utf8 interns a Utf8 constant and returns its index.
func (b *Builder) Utf8(s string) uint16 {
	if idx, ok := b.utf8Idx[s]; ok {
		return idx
	}
	data := make([]byte, 2+len(s))
	binary.BigEndian.PutUint16(data, uint16(len(s)))
	copy(data[2:], s)
	idx := b.add(1, data)
	b.utf8Idx[s] = idx
	return idx
}

// Class interns a Class constant for an internal name.
func (b *Builder) Class(internalName string) uint16 {
	data := u16be(b.Utf8(internalName))
	if idx := b.find(7, data); idx != 0 {
		return idx
	}
	return b.add(7, data)
}

// NameAndType interns a NameAndType constant.
func (b *Builder) NameAndType(name, desc string) uint16 {
	data := u16be(b.Utf8(name), b.Utf8(desc))
	if idx := b.find(12, data); idx != 0 {
		return idx
	}
	return b.add(12, data)
}

// Fieldref interns a Fieldref constant.
func (b *Builder) Fieldref(class, name, desc string) uint16 {
	data := u16be(b.Class(class), b.NameAndType(name, desc))
	if idx := b.find(9, data); idx != 0 {
		return idx
	}
	return b.add(9, data)
}

// Methodref interns a Methodref constant.
func (b *Builder) Methodref(class, name, desc string) uint16 {
	data := u16be(b.Class(class), b.NameAndType(name, desc))
	if idx := b.find(10, data); idx != 0 {
		return idx
	}
	return b.add(10, data)
}

// Long adds a Long constant, occupying two pool slots.
func (b *Builder) Long(v uint64) uint16 {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, v)
	return b.add(5, data)
}

// AddInterface appends a direct superinterface.
func (b *Builder) AddInterface(internalName string) {
	b.interfaces = append(b.interfaces, b.Class(internalName))
}

// AddField appends a field with the given attributes.
func (b *Builder) AddField(access uint16, name, desc string, attrs ...Attr) {
	b.fields = append(b.fields, member{
		access:  access,
		nameIdx: b.Utf8(name),
		descIdx: b.Utf8(desc),
		attrs:   attrs,
	})
}

// AddMethod appends a method with the given attributes.
func (b *Builder) AddMethod(access uint16, name, desc string, attrs ...Attr) {
	b.methods = append(b.methods, member{
		access:  access,
		nameIdx: b.Utf8(name),
		descIdx: b.Utf8(desc),
		attrs:   attrs,
	})
}

// AddClassAttr appends a class-level attribute.
func (b *Builder) AddClassAttr(a Attr) {
	b.attrs = append(b.attrs, a)
}

// CodeAttr builds a Code attribute with no exception table and no nested
// attributes.
func (b *Builder) CodeAttr(maxStack, maxLocals uint16, code []byte) Attr {
	var p bytes.Buffer
	p.Write(u16be(maxStack, maxLocals))
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(code)))
	p.Write(n[:])
	p.Write(code)
	p.Write(u16be(0, 0)) // exception_table_length, attributes_count
	return Attr{Name: "Code", Payload: p.Bytes()}
}

// AnnotationsAttr builds a RuntimeVisibleAnnotations (or invisible) payload
// carrying the given class-type descriptors with no element values.
func (b *Builder) AnnotationsAttr(visible bool, descriptors ...string) Attr {
	var p bytes.Buffer
	p.Write(u16be(uint16(len(descriptors))))
	for _, d := range descriptors {
		p.Write(u16be(b.Utf8(d), 0)) // type_index, num_element_value_pairs
	}
	name := "RuntimeVisibleAnnotations"
	if !visible {
		name = "RuntimeInvisibleAnnotations"
	}
	return Attr{Name: name, Payload: p.Bytes()}
}

// Bytes assembles the class file.
func (b *Builder) Bytes() []byte {
	// Intern attribute names first so the pool is final before writing.
	intern := func(attrs []Attr) {
		for _, a := range attrs {
			b.Utf8(a.Name)
		}
	}
	intern(b.attrs)
	for _, f := range b.fields {
		intern(f.attrs)
	}
	for _, m := range b.methods {
		intern(m.attrs)
	}

	var out bytes.Buffer
	w16 := func(v uint16) { out.Write(u16be(v)) }
	w32 := func(v uint32) {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], v)
		out.Write(n[:])
	}
	writeAttrs := func(attrs []Attr) {
		w16(uint16(len(attrs)))
		for _, a := range attrs {
			w16(b.utf8Idx[a.Name])
			w32(uint32(len(a.Payload)))
			out.Write(a.Payload)
		}
	}

	out.Write([]byte{0xCA, 0xFE, 0xBA, 0xBE})
	w16(b.Minor)
	w16(b.Major)

	w16(uint16(len(b.pool) + 1))
	for _, e := range b.pool {
		if e.tag == 0 {
			continue
		}
		out.WriteByte(e.tag)
		out.Write(e.data)
	}

	w16(b.Access)
	w16(b.thisClass)
	w16(b.superClass)

	w16(uint16(len(b.interfaces)))
	for _, idx := range b.interfaces {
		w16(idx)
	}

	w16(uint16(len(b.fields)))
	for _, f := range b.fields {
		w16(f.access)
		w16(f.nameIdx)
		w16(f.descIdx)
		writeAttrs(f.attrs)
	}

	w16(uint16(len(b.methods)))
	for _, m := range b.methods {
		w16(m.access)
		w16(m.nameIdx)
		w16(m.descIdx)
		writeAttrs(m.attrs)
	}

	writeAttrs(b.attrs)
	return out.Bytes()
}
