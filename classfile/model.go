package classfile

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Class: structural model of one parsed class file
// ---------------------------------------------------------------------------

// Class is the mutable structural graph for a single class file. It is owned
// by one enhancement run: created by Parse, mutated at most once, then
// serialized and discarded. Nothing here is safe for concurrent mutation.
type Class struct {
	Minor uint16
	Major uint16

	Pool *ConstPool

	AccessFlags uint16
	ThisClass   uint16 // pool index of a Class entry
	SuperClass  uint16 // pool index of a Class entry, 0 for java/lang/Object
	Interfaces  []uint16

	Fields  []*Field
	Methods []*Method
	Attrs   []*Attribute
}

// Field is one field_info entry. Fields are never added, removed or renamed
// by any mutation this model permits.
type Field struct {
	AccessFlags uint16
	NameIndex   uint16
	DescIndex   uint16
	Attrs       []*Attribute
}

// Method is one method_info entry.
type Method struct {
	AccessFlags uint16
	NameIndex   uint16
	DescIndex   uint16
	Attrs       []*Attribute
}

// Attribute is a named attribute with its payload kept verbatim. Attributes
// the model understands (Code, runtime annotations) are decoded on demand
// from the same bytes; everything else round-trips untouched.
type Attribute struct {
	NameIndex uint16
	Payload   []byte
}

// ---------------------------------------------------------------------------
// Name resolution helpers
// ---------------------------------------------------------------------------

// Name returns the fully qualified dotted name of the class, e.g.
// "com.acme.Order".
func (c *Class) Name() string {
	n, err := c.Pool.ClassName(c.ThisClass)
	if err != nil {
		return ""
	}
	return strings.ReplaceAll(n, "/", ".")
}

// InternalName returns the JVM internal form of the class name, e.g.
// "com/acme/Order".
func (c *Class) InternalName() string {
	n, err := c.Pool.ClassName(c.ThisClass)
	if err != nil {
		return ""
	}
	return n
}

// SuperName returns the dotted name of the superclass, or "" for
// java.lang.Object itself.
func (c *Class) SuperName() string {
	if c.SuperClass == 0 {
		return ""
	}
	n, err := c.Pool.ClassName(c.SuperClass)
	if err != nil {
		return ""
	}
	return strings.ReplaceAll(n, "/", ".")
}

// Name resolves the field's name through the pool.
func (f *Field) Name(pool *ConstPool) string {
	s, _ := pool.Utf8(f.NameIndex)
	return s
}

// Descriptor resolves the field's type descriptor through the pool.
func (f *Field) Descriptor(pool *ConstPool) string {
	s, _ := pool.Utf8(f.DescIndex)
	return s
}

// IsStatic reports whether the field carries ACC_STATIC.
func (f *Field) IsStatic() bool { return f.AccessFlags&AccStatic != 0 }

// IsTransient reports whether the field carries ACC_TRANSIENT.
func (f *Field) IsTransient() bool { return f.AccessFlags&AccTransient != 0 }

// IsSynthetic reports whether the field carries ACC_SYNTHETIC.
func (f *Field) IsSynthetic() bool { return f.AccessFlags&AccSynthetic != 0 }

// Name resolves the method's name through the pool.
func (m *Method) Name(pool *ConstPool) string {
	s, _ := pool.Utf8(m.NameIndex)
	return s
}

// Descriptor resolves the method's descriptor through the pool.
func (m *Method) Descriptor(pool *ConstPool) string {
	s, _ := pool.Utf8(m.DescIndex)
	return s
}

// IsConstructor reports whether the method is <init> or <clinit>.
func (m *Method) IsConstructor(pool *ConstPool) bool {
	n := m.Name(pool)
	return n == "<init>" || n == "<clinit>"
}

// ---------------------------------------------------------------------------
// Attribute lookup
// ---------------------------------------------------------------------------

// Name resolves the attribute's name through the pool.
func (a *Attribute) Name(pool *ConstPool) string {
	s, _ := pool.Utf8(a.NameIndex)
	return s
}

func findAttr(attrs []*Attribute, pool *ConstPool, name string) *Attribute {
	for _, a := range attrs {
		if a.Name(pool) == name {
			return a
		}
	}
	return nil
}

// Attr returns the first class-level attribute with the given name, or nil.
func (c *Class) Attr(name string) *Attribute {
	return findAttr(c.Attrs, c.Pool, name)
}

// Attr returns the first field attribute with the given name, or nil.
func (f *Field) Attr(pool *ConstPool, name string) *Attribute {
	return findAttr(f.Attrs, pool, name)
}

// Attr returns the first method attribute with the given name, or nil.
func (m *Method) Attr(pool *ConstPool, name string) *Attribute {
	return findAttr(m.Attrs, pool, name)
}

// ---------------------------------------------------------------------------
// Method lookup and append
// ---------------------------------------------------------------------------

// FindMethod returns the method with the given name and descriptor, or nil.
func (c *Class) FindMethod(name, desc string) *Method {
	for _, m := range c.Methods {
		if m.Name(c.Pool) == name && m.Descriptor(c.Pool) == desc {
			return m
		}
	}
	return nil
}

// HasMethodNamed reports whether any method has the given name, regardless
// of descriptor.
func (c *Class) HasMethodNamed(name string) bool {
	for _, m := range c.Methods {
		if m.Name(c.Pool) == name {
			return true
		}
	}
	return false
}

// AddMethod appends a method to the class. Appending never disturbs existing
// method order, so serialized output stays deterministic.
func (c *Class) AddMethod(m *Method) error {
	if len(c.Methods) >= 0xFFFF {
		return fmt.Errorf("%w: cannot add %q", ErrMethodsOverflow, m.Name(c.Pool))
	}
	c.Methods = append(c.Methods, m)
	return nil
}

// AddAttr appends a class-level attribute.
func (c *Class) AddAttr(a *Attribute) {
	c.Attrs = append(c.Attrs, a)
}

// FindField returns the declared field with the given name and descriptor,
// or nil. Inherited fields are invisible here: the model covers exactly one
// class file.
func (c *Class) FindField(name, desc string) *Field {
	for _, f := range c.Fields {
		if f.Name(c.Pool) == name && f.Descriptor(c.Pool) == desc {
			return f
		}
	}
	return nil
}
