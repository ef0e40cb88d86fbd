package classfile

import (
	"bytes"
	"encoding/binary"
)

// ---------------------------------------------------------------------------
// Serializer
// ---------------------------------------------------------------------------

// writer wraps a bytes.Buffer with big-endian helpers. Buffer writes cannot
// fail, so the helpers return nothing.
type writer struct {
	buf bytes.Buffer
}

func (w *writer) u16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) u32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// Serialize encodes the class back into class-file bytes. The encoding is a
// pure function of the model: tables are written in stored order and
// attribute payloads verbatim, so parse followed by serialize reproduces
// the input byte for byte, and repeated serialization of a mutated class is
// stable.
func Serialize(c *Class) []byte {
	w := &writer{}

	w.buf.Write(Magic[:])
	w.u16(c.Minor)
	w.u16(c.Major)

	w.u16(uint16(c.Pool.Count()))
	for i := 1; i < len(c.Pool.entries); i++ {
		e := c.Pool.entries[i]
		if e.tag == 0 {
			// Phantom second slot of a Long/Double.
			continue
		}
		w.buf.WriteByte(byte(e.tag))
		w.buf.Write(e.data)
	}

	w.u16(c.AccessFlags)
	w.u16(c.ThisClass)
	w.u16(c.SuperClass)

	w.u16(uint16(len(c.Interfaces)))
	for _, idx := range c.Interfaces {
		w.u16(idx)
	}

	w.u16(uint16(len(c.Fields)))
	for _, f := range c.Fields {
		w.u16(f.AccessFlags)
		w.u16(f.NameIndex)
		w.u16(f.DescIndex)
		writeAttrs(w, f.Attrs)
	}

	w.u16(uint16(len(c.Methods)))
	for _, m := range c.Methods {
		w.u16(m.AccessFlags)
		w.u16(m.NameIndex)
		w.u16(m.DescIndex)
		writeAttrs(w, m.Attrs)
	}

	writeAttrs(w, c.Attrs)

	return w.buf.Bytes()
}

func writeAttrs(w *writer, attrs []*Attribute) {
	w.u16(uint16(len(attrs)))
	for _, a := range attrs {
		w.u16(a.NameIndex)
		w.u32(uint32(len(a.Payload)))
		w.buf.Write(a.Payload)
	}
}
