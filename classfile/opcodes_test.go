package classfile

import (
	"errors"
	"testing"
)

func TestInsnLenFixedForms(t *testing.T) {
	cases := []struct {
		name string
		code []byte
		want int
	}{
		{"nop", []byte{0x00}, 1},
		{"aload_0", []byte{OpAload0}, 1},
		{"bipush", []byte{0x10, 42}, 2},
		{"sipush", []byte{0x11, 0x01, 0x02}, 3},
		{"ldc", []byte{OpLdc, 7}, 2},
		{"ldc2_w", []byte{0x14, 0x00, 0x05}, 3},
		{"iinc", []byte{0x84, 1, 0xFF}, 3},
		{"getfield", []byte{OpGetfield, 0x00, 0x09}, 3},
		{"putfield", []byte{OpPutfield, 0x00, 0x09}, 3},
		{"invokevirtual", []byte{OpInvokevirtual, 0x00, 0x0A}, 3},
		{"invokeinterface", []byte{0xB9, 0x00, 0x0B, 0x02, 0x00}, 5},
		{"invokedynamic", []byte{0xBA, 0x00, 0x0C, 0x00, 0x00}, 5},
		{"arraylength", []byte{0xBE}, 1},
		{"checkcast", []byte{0xC0, 0x00, 0xCB}, 3},
		{"instanceof", []byte{0xC1, 0x00, 0xB4}, 3},
		{"monitorenter", []byte{0xC2}, 1},
		{"multianewarray", []byte{0xC5, 0x00, 0x07, 0x02}, 4},
		{"goto_w", []byte{0xC8, 0x00, 0x00, 0x00, 0x05}, 5},
		{"ireturn", []byte{OpIreturn}, 1},
	}
	for _, tc := range cases {
		got, err := InsnLen(tc.code, 0)
		if err != nil {
			t.Errorf("%s: InsnLen failed: %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: InsnLen = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestInsnLenWide(t *testing.T) {
	if n, err := InsnLen([]byte{OpWide, 0x84, 0, 1, 0, 2}, 0); err != nil || n != 6 {
		t.Errorf("wide iinc = %d, %v, want 6, nil", n, err)
	}
	if n, err := InsnLen([]byte{OpWide, 0x15, 0, 1}, 0); err != nil || n != 4 {
		t.Errorf("wide iload = %d, %v, want 4, nil", n, err)
	}
	if _, err := InsnLen([]byte{OpWide, OpInvokevirtual, 0, 1}, 0); !errors.Is(err, ErrBadInstruction) {
		t.Errorf("wide invokevirtual err = %v, want ErrBadInstruction", err)
	}
	if _, err := InsnLen([]byte{OpWide}, 0); !errors.Is(err, ErrBadInstruction) {
		t.Errorf("truncated wide err = %v, want ErrBadInstruction", err)
	}
}

// tableswitchAt builds a code slice with the switch at the given offset,
// preceded by nops, covering keys low..high.
func tableswitchAt(off int, low, high int32) []byte {
	code := make([]byte, off)
	code = append(code, OpTableswitch)
	pad := (4 - (off+1)%4) % 4
	code = append(code, make([]byte, pad)...)
	put32 := func(v int32) {
		code = append(code, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
	put32(0) // default
	put32(low)
	put32(high)
	for i := low; i <= high; i++ {
		put32(0)
	}
	return code
}

func TestInsnLenTableswitch(t *testing.T) {
	for _, off := range []int{0, 1, 2, 3, 4} {
		code := tableswitchAt(off, 0, 2)
		want := len(code) - off
		got, err := InsnLen(code, off)
		if err != nil {
			t.Errorf("offset %d: InsnLen failed: %v", off, err)
			continue
		}
		if got != want {
			t.Errorf("offset %d: InsnLen = %d, want %d", off, got, want)
		}
	}
}

func TestInsnLenTableswitchBadBounds(t *testing.T) {
	code := tableswitchAt(0, 0, 2)
	// Swap low and high.
	copy(code[8:12], []byte{0, 0, 0, 2})
	copy(code[12:16], []byte{0, 0, 0, 0})
	if _, err := InsnLen(code, 0); !errors.Is(err, ErrBadInstruction) {
		t.Errorf("low > high err = %v, want ErrBadInstruction", err)
	}
}

func TestInsnLenLookupswitch(t *testing.T) {
	// At offset 0: 1 opcode + 3 pad + default(4) + npairs(4) + 2 pairs of 8.
	code := []byte{OpLookupswitch, 0, 0, 0}
	code = append(code,
		0, 0, 0, 0, // default
		0, 0, 0, 2, // npairs
		0, 0, 0, 1, 0, 0, 0, 8, // pair 1
		0, 0, 0, 5, 0, 0, 0, 16, // pair 2
	)
	got, err := InsnLen(code, 0)
	if err != nil {
		t.Fatalf("InsnLen failed: %v", err)
	}
	if got != len(code) {
		t.Errorf("InsnLen = %d, want %d", got, len(code))
	}
}

func TestInsnScannerWalk(t *testing.T) {
	code := []byte{
		OpAload0,             // 0
		OpGetfield, 0, 9,     // 1
		0x10, 42,             // 4: bipush
		0x60,                 // 6: iadd
		OpIreturn,            // 7
	}
	sc := NewInsnScanner(code)

	var offs []int
	var ops []byte
	for sc.Scan() {
		offs = append(offs, sc.Offset())
		ops = append(ops, sc.Op())
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	wantOffs := []int{0, 1, 4, 6, 7}
	wantOps := []byte{OpAload0, OpGetfield, 0x10, 0x60, OpIreturn}
	if len(offs) != len(wantOffs) {
		t.Fatalf("scanned %d instructions, want %d", len(offs), len(wantOffs))
	}
	for i := range offs {
		if offs[i] != wantOffs[i] || ops[i] != wantOps[i] {
			t.Errorf("insn %d = (0x%02X at %d), want (0x%02X at %d)",
				i, ops[i], offs[i], wantOps[i], wantOffs[i])
		}
	}
}

func TestInsnScannerCastOperands(t *testing.T) {
	// Cast and instanceof operands are pool indices whose bytes can look
	// like opcodes (0xCB is unassigned, 0xB4 is getfield). The scan must
	// consume them as operands and land on the following instruction.
	cases := []struct {
		name     string
		code     []byte
		wantOffs []int
	}{
		{
			"checkcast before getfield",
			[]byte{
				OpAload0,
				0xC0, 0x00, 0xCB, // checkcast
				OpGetfield, 0x00, 0x09,
				OpAreturn,
			},
			[]int{0, 1, 4, 7},
		},
		{
			"instanceof operand shadows getfield",
			[]byte{
				OpAload0,
				0xC1, 0x00, OpGetfield, // instanceof
				OpIreturn,
			},
			[]int{0, 1, 4},
		},
	}
	for _, tc := range cases {
		sc := NewInsnScanner(tc.code)
		var offs []int
		for sc.Scan() {
			offs = append(offs, sc.Offset())
		}
		if err := sc.Err(); err != nil {
			t.Errorf("%s: scan failed: %v", tc.name, err)
			continue
		}
		if len(offs) != len(tc.wantOffs) {
			t.Errorf("%s: scanned offsets %v, want %v", tc.name, offs, tc.wantOffs)
			continue
		}
		for i := range offs {
			if offs[i] != tc.wantOffs[i] {
				t.Errorf("%s: scanned offsets %v, want %v", tc.name, offs, tc.wantOffs)
				break
			}
		}
	}
}

func TestInsnScannerOperand16(t *testing.T) {
	code := []byte{OpAload0, OpPutfield, 0x01, 0x2C, OpReturn}
	sc := NewInsnScanner(code)
	for sc.Scan() {
		if sc.Op() == OpPutfield {
			if got := sc.Operand16(); got != 0x012C {
				t.Errorf("Operand16 = 0x%04X, want 0x012C", got)
			}
		}
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
}

func TestInsnScannerCorruptStream(t *testing.T) {
	sc := NewInsnScanner([]byte{OpAload0, 0xFF})
	if !sc.Scan() {
		t.Fatal("first instruction should scan")
	}
	if sc.Scan() {
		t.Fatal("invalid opcode should stop the scan")
	}
	if !errors.Is(sc.Err(), ErrBadInstruction) {
		t.Errorf("Err = %v, want ErrBadInstruction", sc.Err())
	}
}

func TestInsnScannerTruncatedOperand(t *testing.T) {
	sc := NewInsnScanner([]byte{OpGetfield, 0})
	if sc.Scan() {
		t.Fatal("truncated getfield should not scan")
	}
	if !errors.Is(sc.Err(), ErrBadInstruction) {
		t.Errorf("Err = %v, want ErrBadInstruction", sc.Err())
	}
}

func TestInsnScannerEmpty(t *testing.T) {
	sc := NewInsnScanner(nil)
	if sc.Scan() {
		t.Fatal("empty body should not scan")
	}
	if sc.Err() != nil {
		t.Errorf("Err = %v, want nil", sc.Err())
	}
}
