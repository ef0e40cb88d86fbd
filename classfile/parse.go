package classfile

import (
	"encoding/binary"
	"fmt"
)

// ---------------------------------------------------------------------------
// Parser
// ---------------------------------------------------------------------------

// reader is a bounds-checked cursor over the raw class bytes. Every read
// validates length before advancing so corrupt input surfaces as
// ErrTruncated instead of a panic.
type reader struct {
	data []byte
	off  int
}

func (r *reader) remaining() int {
	return len(r.data) - r.off
}

func (r *reader) u8() (byte, error) {
	if r.remaining() < 1 {
		return 0, ErrTruncated
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

func (r *reader) u16() (uint16, error) {
	if r.remaining() < 2 {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, ErrTruncated
	}
	v := r.data[r.off : r.off+n]
	r.off += n
	return v, nil
}

// Parse decodes a class file into its structural model. The input slice is
// not retained: pool entry payloads and attribute payloads are copied, so
// the caller may reuse the buffer.
func Parse(data []byte) (*Class, error) {
	r := &reader{data: data}

	magic, err := r.bytes(4)
	if err != nil {
		return nil, err
	}
	if magic[0] != Magic[0] || magic[1] != Magic[1] || magic[2] != Magic[2] || magic[3] != Magic[3] {
		return nil, fmt.Errorf("%w: got %02x%02x%02x%02x", ErrBadMagic, magic[0], magic[1], magic[2], magic[3])
	}

	c := &Class{}
	if c.Minor, err = r.u16(); err != nil {
		return nil, err
	}
	if c.Major, err = r.u16(); err != nil {
		return nil, err
	}
	if c.Major < MinMajorVersion || c.Major > MaxMajorVersion {
		return nil, fmt.Errorf("%w: major %d", ErrBadVersion, c.Major)
	}

	if c.Pool, err = parsePool(r); err != nil {
		return nil, err
	}

	if c.AccessFlags, err = r.u16(); err != nil {
		return nil, err
	}
	if c.ThisClass, err = r.u16(); err != nil {
		return nil, err
	}
	if c.SuperClass, err = r.u16(); err != nil {
		return nil, err
	}

	ifaceCount, err := r.u16()
	if err != nil {
		return nil, err
	}
	c.Interfaces = make([]uint16, ifaceCount)
	for i := range c.Interfaces {
		if c.Interfaces[i], err = r.u16(); err != nil {
			return nil, err
		}
	}

	fieldCount, err := r.u16()
	if err != nil {
		return nil, err
	}
	c.Fields = make([]*Field, 0, fieldCount)
	for i := 0; i < int(fieldCount); i++ {
		f := &Field{}
		if f.AccessFlags, f.NameIndex, f.DescIndex, f.Attrs, err = parseMember(r); err != nil {
			return nil, err
		}
		c.Fields = append(c.Fields, f)
	}

	methodCount, err := r.u16()
	if err != nil {
		return nil, err
	}
	c.Methods = make([]*Method, 0, methodCount)
	for i := 0; i < int(methodCount); i++ {
		m := &Method{}
		if m.AccessFlags, m.NameIndex, m.DescIndex, m.Attrs, err = parseMember(r); err != nil {
			return nil, err
		}
		c.Methods = append(c.Methods, m)
	}

	if c.Attrs, err = parseAttrs(r); err != nil {
		return nil, err
	}

	if r.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingBytes, r.remaining())
	}

	// The class-level indices must resolve or every later lookup would
	// have to re-validate them.
	if _, err := c.Pool.ClassName(c.ThisClass); err != nil {
		return nil, fmt.Errorf("%w: this_class: %v", ErrMalformed, err)
	}
	if c.SuperClass != 0 {
		if _, err := c.Pool.ClassName(c.SuperClass); err != nil {
			return nil, fmt.Errorf("%w: super_class: %v", ErrMalformed, err)
		}
	}

	return c, nil
}

// parsePool reads constant_pool_count entries, honoring the two-slot rule
// for Long and Double.
func parsePool(r *reader) (*ConstPool, error) {
	count, err := r.u16()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: constant pool count 0", ErrMalformed)
	}

	p := newConstPool()
	for len(p.entries) < int(count) {
		tagByte, err := r.u8()
		if err != nil {
			return nil, err
		}
		tag := Tag(tagByte)

		var size int
		switch tag {
		case TagUtf8:
			n, err := r.u16()
			if err != nil {
				return nil, err
			}
			r.off -= 2
			size = 2 + int(n)
		case TagInteger, TagFloat, TagFieldref, TagMethodref, TagInterfaceMethodref,
			TagNameAndType, TagDynamic, TagInvokeDynamic:
			size = 4
		case TagLong, TagDouble:
			size = 8
		case TagClass, TagString, TagMethodType, TagModule, TagPackage:
			size = 2
		case TagMethodHandle:
			size = 3
		default:
			return nil, fmt.Errorf("%w: tag %d at slot %d", ErrBadPoolTag, tagByte, len(p.entries))
		}

		raw, err := r.bytes(size)
		if err != nil {
			return nil, err
		}
		data := make([]byte, size)
		copy(data, raw)
		p.entries = append(p.entries, poolEntry{tag: tag, data: data})
		if tag == TagUtf8 {
			p.utf8Index[string(data[2:])] = uint16(len(p.entries) - 1)
		}
		if tag == TagLong || tag == TagDouble {
			p.entries = append(p.entries, poolEntry{})
		}
	}
	if len(p.entries) != int(count) {
		// A Long/Double in the final slot overran the declared count.
		return nil, fmt.Errorf("%w: pool slot overrun", ErrMalformed)
	}
	return p, nil
}

// parseMember reads the shared field_info / method_info layout.
func parseMember(r *reader) (access, nameIdx, descIdx uint16, attrs []*Attribute, err error) {
	if access, err = r.u16(); err != nil {
		return
	}
	if nameIdx, err = r.u16(); err != nil {
		return
	}
	if descIdx, err = r.u16(); err != nil {
		return
	}
	attrs, err = parseAttrs(r)
	return
}

func parseAttrs(r *reader) ([]*Attribute, error) {
	count, err := r.u16()
	if err != nil {
		return nil, err
	}
	attrs := make([]*Attribute, 0, count)
	for i := 0; i < int(count); i++ {
		nameIdx, err := r.u16()
		if err != nil {
			return nil, err
		}
		length, err := r.u32()
		if err != nil {
			return nil, err
		}
		raw, err := r.bytes(int(length))
		if err != nil {
			return nil, fmt.Errorf("%w: attribute %d: %v", ErrBadAttribute, i, err)
		}
		payload := make([]byte, length)
		copy(payload, raw)
		attrs = append(attrs, &Attribute{NameIndex: nameIdx, Payload: payload})
	}
	return attrs, nil
}
