package enhance

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/weft/classfile"
)

// ---------------------------------------------------------------------------
// Accessor strategy and the shared enhancement core
// ---------------------------------------------------------------------------

// Accessor method name prefixes. The doubled dollar keeps the names out of
// every sane identifier namespace a compiler would emit.
const (
	accessorPrefix = "$$_weft_"
	readPrefix     = accessorPrefix + "read_"
	writePrefix    = accessorPrefix + "write_"
)

// AccessorStrategy synthesizes a read and a write accessor per persistent
// field and reroutes the class's own field access instructions through them,
// with no runtime hooks. Cross-class access sites are untouched.
type AccessorStrategy struct {
	// Transient overrides the transience marker annotation.
	// DefaultTransientMarker when empty.
	Transient string

	// RequireConstructorTracking fails enhancement when a constructor
	// writes a persistent field, instead of leaving the write direct.
	RequireConstructorTracking bool
}

// Name implements Strategy.
func (s *AccessorStrategy) Name() string { return StrategyAccessor }

// TryEnhance implements Strategy.
func (s *AccessorStrategy) TryEnhance(c *classfile.Class) (bool, error) {
	return enhance(c, config{
		strategy:    s.Name(),
		transient:   defaulted(s.Transient, DefaultTransientMarker),
		strictCtors: s.RequireConstructorTracking,
	})
}

// config is the strategy-independent bundle the shared core runs from.
type config struct {
	strategy    string // name recorded in the sentinel
	transient   string // dotted transience annotation, already defaulted
	strictCtors bool
	hooks       *hooks // nil for plain accessors
}

// accessorPair holds the Methodref indices access sites are redirected to.
type accessorPair struct {
	read  uint16
	write uint16
}

// enhance is the core every strategy shares: select persistent fields,
// synthesize their accessors, rewrite class-local access sites, stamp the
// sentinel. A class that reaches the end is mutated even when it has no
// persistent fields, since the stamp itself is the mutation that makes the
// next run skip it.
func enhance(c *classfile.Class, cfg config) (bool, error) {
	if IsEnhanced(c) {
		return false, nil
	}
	if name := residentAccessor(c); name != "" {
		return false, fmt.Errorf("%w: %s without sentinel", ErrAccessorCollision, name)
	}

	fields, err := PersistentFields(c, cfg.transient)
	if err != nil {
		return false, err
	}

	// Sites are rewritten only in the methods that existed before accessor
	// synthesis; the accessors themselves keep their direct field access.
	original := c.Methods

	wrapped := make(map[fieldKey]accessorPair, len(fields))
	for _, f := range fields {
		key, pair, err := synthesizeAccessors(c, f, cfg.hooks)
		if err != nil {
			return false, wrapEnhance(err)
		}
		wrapped[key] = pair
	}

	for _, m := range original {
		if err := rewriteMethod(c, m, wrapped, cfg.strictCtors); err != nil {
			return false, err
		}
	}

	if err := stampSentinel(c, cfg.strategy); err != nil {
		return false, wrapEnhance(err)
	}
	return true, nil
}

// wrapEnhance folds append-side failures (pool or method table full) into
// the enhancement taxonomy. Errors already carrying ErrCannotEnhance pass
// through untouched.
func wrapEnhance(err error) error {
	if errors.Is(err, ErrCannotEnhance) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrCannotEnhance, err)
}

// residentAccessor returns the name of any method already carrying the
// accessor prefix, or "". Such a method on an unstamped class means another
// tool or a broken prior run got here first; enhancing on top of it would
// double-instrument.
func residentAccessor(c *classfile.Class) string {
	for _, m := range c.Methods {
		if name := m.Name(c.Pool); strings.HasPrefix(name, accessorPrefix) {
			return name
		}
	}
	return ""
}

// synthesizeAccessors appends the read and write accessor for one field and
// returns the Methodref indices its access sites are redirected to.
func synthesizeAccessors(c *classfile.Class, f *classfile.Field, hk *hooks) (fieldKey, accessorPair, error) {
	name := f.Name(c.Pool)
	desc := f.Descriptor(c.Pool)
	key := fieldKey{name: name, desc: desc}

	ft, err := classfile.ParseFieldType(desc)
	if err != nil {
		return key, accessorPair{}, fmt.Errorf("%w: field %q has unsupported descriptor %q", ErrCannotEnhance, name, desc)
	}

	fieldRef, err := c.Pool.AddFieldref(c.InternalName(), name, desc)
	if err != nil {
		return key, accessorPair{}, err
	}

	readName := readPrefix + name
	readDesc := "()" + desc
	body, maxStack, err := readBody(c, fieldRef, ft, name, hk)
	if err != nil {
		return key, accessorPair{}, err
	}
	if err := appendAccessor(c, readName, readDesc, maxStack, 1, body); err != nil {
		return key, accessorPair{}, err
	}

	writeName := writePrefix + name
	writeDesc := "(" + desc + ")V"
	body, maxStack, err = writeBody(c, fieldRef, ft, name, hk)
	if err != nil {
		return key, accessorPair{}, err
	}
	if err := appendAccessor(c, writeName, writeDesc, maxStack, uint16(1+ft.Width()), body); err != nil {
		return key, accessorPair{}, err
	}

	readRef, err := c.Pool.AddMethodref(c.InternalName(), readName, readDesc)
	if err != nil {
		return key, accessorPair{}, err
	}
	writeRef, err := c.Pool.AddMethodref(c.InternalName(), writeName, writeDesc)
	if err != nil {
		return key, accessorPair{}, err
	}
	return key, accessorPair{read: readRef, write: writeRef}, nil
}

// appendAccessor adds one public synthetic method with a straight-line body.
// Straight-line bodies carry no StackMapTable: there are no branch targets
// to describe.
func appendAccessor(c *classfile.Class, name, desc string, maxStack, maxLocals uint16, body []byte) error {
	nameIdx, err := c.Pool.AddUtf8(name)
	if err != nil {
		return err
	}
	descIdx, err := c.Pool.AddUtf8(desc)
	if err != nil {
		return err
	}
	codeIdx, err := c.Pool.AddUtf8(classfile.AttrCode)
	if err != nil {
		return err
	}
	m := &classfile.Method{
		AccessFlags: classfile.AccPublic | classfile.AccSynthetic,
		NameIndex:   nameIdx,
		DescIndex:   descIdx,
		Attrs: []*classfile.Attribute{{
			NameIndex: codeIdx,
			Payload:   classfile.BuildCode(maxStack, maxLocals, body),
		}},
	}
	return c.AddMethod(m)
}

// readBody assembles the read accessor body: load this, read the field,
// return it. With lazy reads on, reference-typed fields first report the
// read to the runtime.
func readBody(c *classfile.Class, fieldRef uint16, ft classfile.FieldType, fieldName string, hk *hooks) (code []byte, maxStack uint16, err error) {
	if hk != nil && hk.lazy && ft.IsReference() {
		code, err = hookCall(c.Pool, hk.runtime+"/"+lazyLoaderClass, lazyLoaderMethod, fieldName)
		if err != nil {
			return nil, 0, err
		}
		maxStack = 2
	} else {
		maxStack = uint16(ft.Width())
	}
	code = append(code,
		classfile.OpAload0,
		classfile.OpGetfield, byte(fieldRef>>8), byte(fieldRef),
		ft.ReturnOp())
	return code, maxStack, nil
}

// writeBody assembles the write accessor body: load this and the argument,
// store the field, return. With dirty tracking on, the store is preceded by
// a report to the runtime; the stack peak of that call never exceeds the
// store's own 1+width.
func writeBody(c *classfile.Class, fieldRef uint16, ft classfile.FieldType, fieldName string, hk *hooks) (code []byte, maxStack uint16, err error) {
	if hk != nil && hk.dirty {
		code, err = hookCall(c.Pool, hk.runtime+"/"+dirtyTrackerClass, dirtyTrackerMethod, fieldName)
		if err != nil {
			return nil, 0, err
		}
	}
	code = append(code,
		classfile.OpAload0,
		ft.LoadSlot1(),
		classfile.OpPutfield, byte(fieldRef>>8), byte(fieldRef),
		classfile.OpReturn)
	return code, uint16(1 + ft.Width()), nil
}

// rewriteMethod redirects getfield/putfield instructions on wrapped fields
// of this class to the matching accessor. Both forms are three bytes with
// the same stack shape as the replacement invokevirtual, so the patch never
// moves an offset and existing StackMapTables stay valid.
func rewriteMethod(c *classfile.Class, m *classfile.Method, wrapped map[fieldKey]accessorPair, strictCtors bool) error {
	attr := m.Attr(c.Pool, classfile.AttrCode)
	if attr == nil {
		return nil // abstract or native
	}
	code, err := classfile.OpenCode(attr)
	if err != nil {
		return err
	}

	ctor := m.IsConstructor(c.Pool)
	this := c.InternalName()
	body := code.Bytecode()

	sc := classfile.NewInsnScanner(body)
	for sc.Scan() {
		op := sc.Op()
		if op != classfile.OpGetfield && op != classfile.OpPutfield {
			continue
		}
		owner, name, desc, err := c.Pool.FieldrefParts(sc.Operand16())
		if err != nil {
			return err
		}
		if owner != this {
			continue // cross-class site, deliberately untouched
		}
		pair, ok := wrapped[fieldKey{name: name, desc: desc}]
		if !ok {
			continue
		}
		if ctor {
			if strictCtors && op == classfile.OpPutfield {
				return fmt.Errorf("%w: %s.%s in %s", ErrConstructorWrite, owner, name, m.Name(c.Pool))
			}
			continue
		}
		ref := pair.read
		if op == classfile.OpPutfield {
			ref = pair.write
		}
		off := sc.Offset()
		body[off] = classfile.OpInvokevirtual
		binary.BigEndian.PutUint16(body[off+1:], ref)
	}
	return sc.Err()
}

func defaulted(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
