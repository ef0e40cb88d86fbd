package classfile

import (
	"encoding/binary"
	"fmt"
)

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------
//
// Only the opcodes the enhancer emits or patches get named constants; the
// width table below covers the whole instruction set so the scanner can walk
// any verified method body.

// Loads and stores
const (
	OpLdc    = 0x12
	OpLdcW   = 0x13
	OpIload1 = 0x1B
	OpLload1 = 0x1F
	OpFload1 = 0x23
	OpDload1 = 0x27
	OpAload0 = 0x2A
	OpAload1 = 0x2B
)

// Returns
const (
	OpIreturn = 0xAC
	OpLreturn = 0xAD
	OpFreturn = 0xAE
	OpDreturn = 0xAF
	OpAreturn = 0xB0
	OpReturn  = 0xB1
)

// Field access and invocation
const (
	OpGetstatic     = 0xB2
	OpPutstatic     = 0xB3
	OpGetfield      = 0xB4
	OpPutfield      = 0xB5
	OpInvokevirtual = 0xB6
	OpInvokespecial = 0xB7
	OpInvokestatic  = 0xB8
)

// Variable-length forms
const (
	OpTableswitch  = 0xAA
	OpLookupswitch = 0xAB
	OpWide         = 0xC4
)

// ---------------------------------------------------------------------------
// Operand width table
// ---------------------------------------------------------------------------

const (
	widthSpecial = -1 // wide, tableswitch, lookupswitch
	widthInvalid = -2 // reserved or unassigned opcode
)

// opWidths maps each opcode to its fixed operand byte count, or to one of
// the sentinels above.
var opWidths [256]int8

func init() {
	for i := range opWidths {
		opWidths[i] = widthInvalid
	}
	set := func(lo, hi int, w int8) {
		for op := lo; op <= hi; op++ {
			opWidths[op] = w
		}
	}

	set(0x00, 0x0F, 0)      // nop, aconst_null, iconst/lconst/fconst/dconst
	opWidths[0x10] = 1      // bipush
	opWidths[0x11] = 2      // sipush
	opWidths[OpLdc] = 1     // ldc
	opWidths[OpLdcW] = 2    // ldc_w
	opWidths[0x14] = 2      // ldc2_w
	set(0x15, 0x19, 1)      // iload..aload
	set(0x1A, 0x35, 0)      // iload_0..aload_3, array loads
	set(0x36, 0x3A, 1)      // istore..astore
	set(0x3B, 0x5F, 0)      // istore_0..astore_3, array stores, stack ops
	set(0x60, 0x83, 0)      // arithmetic and logic
	opWidths[0x84] = 2      // iinc
	set(0x85, 0x98, 0)      // conversions, comparisons
	set(0x99, 0xA8, 2)      // ifeq..if_acmpne, goto, jsr
	opWidths[0xA9] = 1      // ret
	opWidths[OpTableswitch] = widthSpecial
	opWidths[OpLookupswitch] = widthSpecial
	set(OpIreturn, OpReturn, 0)
	set(OpGetstatic, OpInvokestatic, 2)
	opWidths[0xB9] = 4 // invokeinterface
	opWidths[0xBA] = 4 // invokedynamic
	opWidths[0xBB] = 2 // new
	opWidths[0xBC] = 1 // newarray
	opWidths[0xBD] = 2 // anewarray
	set(0xBE, 0xBF, 0) // arraylength, athrow
	opWidths[0xC0] = 2 // checkcast
	opWidths[0xC1] = 2 // instanceof
	set(0xC2, 0xC3, 0) // monitorenter, monitorexit
	opWidths[OpWide] = widthSpecial
	opWidths[0xC5] = 3 // multianewarray
	opWidths[0xC6] = 2 // ifnull
	opWidths[0xC7] = 2 // ifnonnull
	opWidths[0xC8] = 4 // goto_w
	opWidths[0xC9] = 4 // jsr_w
}

// InsnLen returns the encoded length of the instruction starting at off,
// opcode byte included. The switch forms pad relative to the start of the
// code slice, so off must be an offset into the full method body.
func InsnLen(code []byte, off int) (int, error) {
	if off < 0 || off >= len(code) {
		return 0, fmt.Errorf("%w: offset %d out of range", ErrBadInstruction, off)
	}
	op := code[off]

	switch w := opWidths[op]; w {
	case widthInvalid:
		return 0, fmt.Errorf("%w: opcode 0x%02X at %d", ErrBadInstruction, op, off)
	case widthSpecial:
	default:
		return 1 + int(w), nil
	}

	switch op {
	case OpWide:
		if off+1 >= len(code) {
			return 0, fmt.Errorf("%w: truncated wide at %d", ErrBadInstruction, off)
		}
		switch widened := code[off+1]; {
		case widened == 0x84: // iinc
			return 6, nil
		case widened >= 0x15 && widened <= 0x19, // iload..aload
			widened >= 0x36 && widened <= 0x3A, // istore..astore
			widened == 0xA9:                    // ret
			return 4, nil
		default:
			return 0, fmt.Errorf("%w: wide 0x%02X at %d", ErrBadInstruction, code[off+1], off)
		}

	case OpTableswitch:
		pad := (4 - (off+1)%4) % 4
		base := off + 1 + pad
		if base+12 > len(code) {
			return 0, fmt.Errorf("%w: truncated tableswitch at %d", ErrBadInstruction, off)
		}
		low := int32(binary.BigEndian.Uint32(code[base+4:]))
		high := int32(binary.BigEndian.Uint32(code[base+8:]))
		if low > high {
			return 0, fmt.Errorf("%w: tableswitch bounds %d..%d at %d", ErrBadInstruction, low, high, off)
		}
		total := int64(1+pad+12) + 4*(int64(high)-int64(low)+1)
		if total > int64(len(code)-off) {
			return 0, fmt.Errorf("%w: truncated tableswitch at %d", ErrBadInstruction, off)
		}
		return int(total), nil

	case OpLookupswitch:
		pad := (4 - (off+1)%4) % 4
		base := off + 1 + pad
		if base+8 > len(code) {
			return 0, fmt.Errorf("%w: truncated lookupswitch at %d", ErrBadInstruction, off)
		}
		npairs := int32(binary.BigEndian.Uint32(code[base+4:]))
		if npairs < 0 {
			return 0, fmt.Errorf("%w: lookupswitch pair count %d at %d", ErrBadInstruction, npairs, off)
		}
		total := int64(1+pad+8) + 8*int64(npairs)
		if total > int64(len(code)-off) {
			return 0, fmt.Errorf("%w: truncated lookupswitch at %d", ErrBadInstruction, off)
		}
		return int(total), nil
	}

	// Unreachable: every special opcode is handled above.
	return 0, fmt.Errorf("%w: opcode 0x%02X at %d", ErrBadInstruction, op, off)
}

// ---------------------------------------------------------------------------
// Instruction scanner
// ---------------------------------------------------------------------------

// InsnScanner walks a method body one instruction at a time:
//
//	sc := NewInsnScanner(code)
//	for sc.Scan() {
//	    use sc.Offset(), sc.Op()
//	}
//	if err := sc.Err(); err != nil { ... }
//
// A corrupt stream stops the scan with a non-nil Err; the scanner never
// reads past the slice.
type InsnScanner struct {
	code []byte
	off  int
	next int
	err  error
}

// NewInsnScanner creates a scanner over a method body.
func NewInsnScanner(code []byte) *InsnScanner {
	return &InsnScanner{code: code}
}

// Scan advances to the next instruction. It returns false at the end of the
// stream or on a malformed instruction.
func (s *InsnScanner) Scan() bool {
	if s.err != nil || s.next >= len(s.code) {
		return false
	}
	s.off = s.next
	n, err := InsnLen(s.code, s.off)
	if err != nil {
		s.err = err
		return false
	}
	if s.off+n > len(s.code) {
		s.err = fmt.Errorf("%w: instruction at %d overruns body", ErrBadInstruction, s.off)
		return false
	}
	s.next = s.off + n
	return true
}

// Offset returns the offset of the current instruction.
func (s *InsnScanner) Offset() int {
	return s.off
}

// Op returns the opcode of the current instruction.
func (s *InsnScanner) Op() byte {
	return s.code[s.off]
}

// Operand16 returns the big-endian u16 operand of the current instruction.
// Valid only for fixed three-byte forms.
func (s *InsnScanner) Operand16() uint16 {
	return binary.BigEndian.Uint16(s.code[s.off+1:])
}

// Err returns the first malformed-stream error, if any.
func (s *InsnScanner) Err() error {
	return s.err
}
