package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ---------------------------------------------------------------------------
// ConstPool: append-only constant pool arena
// ---------------------------------------------------------------------------

// poolEntry is one constant pool slot: the tag plus the payload bytes that
// follow it in the file, verbatim. Long and Double entries are followed by a
// phantom slot (tag 0) per the container format's two-slot rule.
type poolEntry struct {
	tag  Tag
	data []byte
}

// ConstPool holds the constant pool as an arena addressed by the same u16
// indices the file uses (slot 0 is unused). Entries are only ever appended,
// so indices recorded anywhere else in the class stay stable across
// mutation.
type ConstPool struct {
	entries []poolEntry

	// utf8Index accelerates interning; it mirrors entries and is rebuilt
	// on parse, updated on append.
	utf8Index map[string]uint16
}

// newConstPool creates a pool with the unused slot 0 in place.
func newConstPool() *ConstPool {
	return &ConstPool{
		entries:   []poolEntry{{}},
		utf8Index: make(map[string]uint16),
	}
}

// Count returns the constant_pool_count value for serialization: number of
// slots including slot 0.
func (p *ConstPool) Count() int {
	return len(p.entries)
}

func (p *ConstPool) entryAt(idx uint16) (poolEntry, error) {
	if idx == 0 || int(idx) >= len(p.entries) {
		return poolEntry{}, fmt.Errorf("%w: %d", ErrBadPoolIndex, idx)
	}
	e := p.entries[idx]
	if e.tag == 0 {
		return poolEntry{}, fmt.Errorf("%w: %d is the second slot of a wide constant", ErrBadPoolIndex, idx)
	}
	return e, nil
}

// Tag returns the tag of the entry at idx.
func (p *ConstPool) Tag(idx uint16) (Tag, error) {
	e, err := p.entryAt(idx)
	if err != nil {
		return 0, err
	}
	return e.tag, nil
}

// ---------------------------------------------------------------------------
// Typed readers
// ---------------------------------------------------------------------------

// Utf8 returns the string stored in a Utf8 entry. Modified UTF-8 is treated
// as raw bytes; for the ASCII identifiers this engine touches the two
// encodings coincide.
func (p *ConstPool) Utf8(idx uint16) (string, error) {
	e, err := p.entryAt(idx)
	if err != nil {
		return "", err
	}
	if e.tag != TagUtf8 {
		return "", fmt.Errorf("%w: %d is %s, want Utf8", ErrBadPoolIndex, idx, e.tag)
	}
	if len(e.data) < 2 {
		return "", ErrTruncated
	}
	return string(e.data[2:]), nil
}

// ClassName returns the internal-form name referenced by a Class entry.
func (p *ConstPool) ClassName(idx uint16) (string, error) {
	e, err := p.entryAt(idx)
	if err != nil {
		return "", err
	}
	if e.tag != TagClass {
		return "", fmt.Errorf("%w: %d is %s, want Class", ErrBadPoolIndex, idx, e.tag)
	}
	if len(e.data) < 2 {
		return "", ErrTruncated
	}
	return p.Utf8(binary.BigEndian.Uint16(e.data))
}

// StringValue returns the Utf8 contents referenced by a String entry.
func (p *ConstPool) StringValue(idx uint16) (string, error) {
	e, err := p.entryAt(idx)
	if err != nil {
		return "", err
	}
	if e.tag != TagString {
		return "", fmt.Errorf("%w: %d is %s, want String", ErrBadPoolIndex, idx, e.tag)
	}
	if len(e.data) < 2 {
		return "", ErrTruncated
	}
	return p.Utf8(binary.BigEndian.Uint16(e.data))
}

// refParts returns (className, name, descriptor) for a Fieldref, Methodref
// or InterfaceMethodref entry.
func (p *ConstPool) refParts(idx uint16) (string, string, string, error) {
	e, err := p.entryAt(idx)
	if err != nil {
		return "", "", "", err
	}
	switch e.tag {
	case TagFieldref, TagMethodref, TagInterfaceMethodref:
	default:
		return "", "", "", fmt.Errorf("%w: %d is %s, want a ref", ErrBadPoolIndex, idx, e.tag)
	}
	if len(e.data) < 4 {
		return "", "", "", ErrTruncated
	}
	className, err := p.ClassName(binary.BigEndian.Uint16(e.data))
	if err != nil {
		return "", "", "", err
	}
	natIdx := binary.BigEndian.Uint16(e.data[2:])
	nat, err := p.entryAt(natIdx)
	if err != nil {
		return "", "", "", err
	}
	if nat.tag != TagNameAndType || len(nat.data) < 4 {
		return "", "", "", fmt.Errorf("%w: %d is not a NameAndType", ErrBadPoolIndex, natIdx)
	}
	name, err := p.Utf8(binary.BigEndian.Uint16(nat.data))
	if err != nil {
		return "", "", "", err
	}
	desc, err := p.Utf8(binary.BigEndian.Uint16(nat.data[2:]))
	if err != nil {
		return "", "", "", err
	}
	return className, name, desc, nil
}

// FieldrefParts resolves a Fieldref entry into its class internal name,
// field name and field descriptor.
func (p *ConstPool) FieldrefParts(idx uint16) (class, name, desc string, err error) {
	e, err := p.entryAt(idx)
	if err != nil {
		return "", "", "", err
	}
	if e.tag != TagFieldref {
		return "", "", "", fmt.Errorf("%w: %d is %s, want Fieldref", ErrBadPoolIndex, idx, e.tag)
	}
	return p.refParts(idx)
}

// MethodrefParts resolves a Methodref entry into its class internal name,
// method name and method descriptor.
func (p *ConstPool) MethodrefParts(idx uint16) (class, name, desc string, err error) {
	e, err := p.entryAt(idx)
	if err != nil {
		return "", "", "", err
	}
	if e.tag != TagMethodref {
		return "", "", "", fmt.Errorf("%w: %d is %s, want Methodref", ErrBadPoolIndex, idx, e.tag)
	}
	return p.refParts(idx)
}

// ---------------------------------------------------------------------------
// Appenders (interning)
// ---------------------------------------------------------------------------
//
// All appenders dedupe against existing entries, so enhancing the same input
// always yields the same pool — a requirement for deterministic output.

func (p *ConstPool) append(tag Tag, data []byte) (uint16, error) {
	// Long/Double would need a phantom slot too; the enhancer never adds
	// them, but keep the arithmetic honest.
	slots := 1
	if tag == TagLong || tag == TagDouble {
		slots = 2
	}
	if len(p.entries)+slots > 0xFFFF {
		return 0, ErrPoolOverflow
	}
	idx := uint16(len(p.entries))
	p.entries = append(p.entries, poolEntry{tag: tag, data: data})
	if slots == 2 {
		p.entries = append(p.entries, poolEntry{})
	}
	return idx, nil
}

// findRaw returns the index of an existing entry with the same tag and
// payload, or 0.
func (p *ConstPool) findRaw(tag Tag, data []byte) uint16 {
	for i := 1; i < len(p.entries); i++ {
		if p.entries[i].tag == tag && bytes.Equal(p.entries[i].data, data) {
			return uint16(i)
		}
	}
	return 0
}

// AddUtf8 interns a Utf8 entry and returns its index.
func (p *ConstPool) AddUtf8(s string) (uint16, error) {
	if idx, ok := p.utf8Index[s]; ok {
		return idx, nil
	}
	if len(s) > 0xFFFF {
		return 0, fmt.Errorf("%w: utf8 constant too long", ErrPoolOverflow)
	}
	data := make([]byte, 2+len(s))
	binary.BigEndian.PutUint16(data, uint16(len(s)))
	copy(data[2:], s)
	idx, err := p.append(TagUtf8, data)
	if err != nil {
		return 0, err
	}
	p.utf8Index[s] = idx
	return idx, nil
}

func u16s(vals ...uint16) []byte {
	data := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint16(data[2*i:], v)
	}
	return data
}

// AddClass interns a Class entry for an internal-form name.
func (p *ConstPool) AddClass(internalName string) (uint16, error) {
	nameIdx, err := p.AddUtf8(internalName)
	if err != nil {
		return 0, err
	}
	data := u16s(nameIdx)
	if idx := p.findRaw(TagClass, data); idx != 0 {
		return idx, nil
	}
	return p.append(TagClass, data)
}

// AddString interns a String entry (for ldc of a literal).
func (p *ConstPool) AddString(s string) (uint16, error) {
	utfIdx, err := p.AddUtf8(s)
	if err != nil {
		return 0, err
	}
	data := u16s(utfIdx)
	if idx := p.findRaw(TagString, data); idx != 0 {
		return idx, nil
	}
	return p.append(TagString, data)
}

// AddNameAndType interns a NameAndType entry.
func (p *ConstPool) AddNameAndType(name, desc string) (uint16, error) {
	nameIdx, err := p.AddUtf8(name)
	if err != nil {
		return 0, err
	}
	descIdx, err := p.AddUtf8(desc)
	if err != nil {
		return 0, err
	}
	data := u16s(nameIdx, descIdx)
	if idx := p.findRaw(TagNameAndType, data); idx != 0 {
		return idx, nil
	}
	return p.append(TagNameAndType, data)
}

// AddFieldref interns a Fieldref for class/name/descriptor.
func (p *ConstPool) AddFieldref(classInternalName, name, desc string) (uint16, error) {
	classIdx, err := p.AddClass(classInternalName)
	if err != nil {
		return 0, err
	}
	natIdx, err := p.AddNameAndType(name, desc)
	if err != nil {
		return 0, err
	}
	data := u16s(classIdx, natIdx)
	if idx := p.findRaw(TagFieldref, data); idx != 0 {
		return idx, nil
	}
	return p.append(TagFieldref, data)
}

// AddMethodref interns a Methodref for class/name/descriptor.
func (p *ConstPool) AddMethodref(classInternalName, name, desc string) (uint16, error) {
	classIdx, err := p.AddClass(classInternalName)
	if err != nil {
		return 0, err
	}
	natIdx, err := p.AddNameAndType(name, desc)
	if err != nil {
		return 0, err
	}
	data := u16s(classIdx, natIdx)
	if idx := p.findRaw(TagMethodref, data); idx != 0 {
		return idx, nil
	}
	return p.append(TagMethodref, data)
}
