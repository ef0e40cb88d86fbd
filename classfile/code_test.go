package classfile

import (
	"errors"
	"testing"

	"github.com/chazu/weft/internal/classtest"
)

func parseRich(t *testing.T) *Class {
	t.Helper()
	c, err := Parse(buildRichClass())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return c
}

func TestOpenCode(t *testing.T) {
	c := parseRich(t)
	m := c.FindMethod("getTotal", "()J")

	code, err := OpenCode(m.Attr(c.Pool, AttrCode))
	if err != nil {
		t.Fatalf("OpenCode failed: %v", err)
	}
	if code.MaxStack() != 2 {
		t.Errorf("MaxStack = %d, want 2", code.MaxStack())
	}
	if code.MaxLocals() != 1 {
		t.Errorf("MaxLocals = %d, want 1", code.MaxLocals())
	}
	body := code.Bytecode()
	if len(body) != 5 || body[0] != OpAload0 || body[4] != OpLreturn {
		t.Errorf("Bytecode = % X, want aload_0 getfield .. lreturn", body)
	}
}

func TestBytecodeWritesThrough(t *testing.T) {
	c := parseRich(t)
	m := c.FindMethod("getTotal", "()J")

	code, err := OpenCode(m.Attr(c.Pool, AttrCode))
	if err != nil {
		t.Fatalf("OpenCode failed: %v", err)
	}
	body := code.Bytecode()
	body[1] = OpInvokevirtual

	c2, err := Parse(Serialize(c))
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	code2, err := OpenCode(c2.FindMethod("getTotal", "()J").Attr(c2.Pool, AttrCode))
	if err != nil {
		t.Fatalf("OpenCode after reparse failed: %v", err)
	}
	if got := code2.Bytecode()[1]; got != OpInvokevirtual {
		t.Errorf("patched opcode = 0x%02X, want invokevirtual", got)
	}
}

func TestOpenCodeRejectsCorrupt(t *testing.T) {
	cases := []struct {
		name    string
		payload []byte
	}{
		{"empty", nil},
		{"short header", []byte{0, 1, 0, 1}},
		{"zero code length", classtest.New("A").CodeAttr(1, 1, nil).Payload},
		{"code overruns", []byte{0, 1, 0, 1, 0, 0, 0, 99, OpReturn, 0, 0, 0, 0}},
		{"missing attr count", []byte{0, 1, 0, 1, 0, 0, 0, 1, OpReturn, 0, 0}},
	}
	for _, tc := range cases {
		if _, err := OpenCode(&Attribute{Payload: tc.payload}); !errors.Is(err, ErrBadAttribute) {
			t.Errorf("%s: err = %v, want ErrBadAttribute", tc.name, err)
		}
	}
}

func TestOpenCodeNestedAttributeBounds(t *testing.T) {
	// One nested attribute claiming more bytes than remain.
	payload := []byte{
		0, 1, 0, 1, // max_stack, max_locals
		0, 0, 0, 1, OpReturn, // code
		0, 0, // exception_table_length
		0, 1, // attributes_count
		0, 3, 0, 0, 0, 50, // nested attr, length 50 but no payload
	}
	if _, err := OpenCode(&Attribute{Payload: payload}); !errors.Is(err, ErrBadAttribute) {
		t.Errorf("err = %v, want ErrBadAttribute", err)
	}
}

func TestBuildCode(t *testing.T) {
	body := []byte{OpAload0, OpGetfield, 0, 9, OpIreturn}
	a := &Attribute{Payload: BuildCode(1, 1, body)}

	code, err := OpenCode(a)
	if err != nil {
		t.Fatalf("OpenCode on built payload failed: %v", err)
	}
	if code.MaxStack() != 1 || code.MaxLocals() != 1 {
		t.Errorf("header = (%d, %d), want (1, 1)", code.MaxStack(), code.MaxLocals())
	}
	got := code.Bytecode()
	if len(got) != len(body) {
		t.Fatalf("body length = %d, want %d", len(got), len(body))
	}
	for i := range body {
		if got[i] != body[i] {
			t.Errorf("body[%d] = 0x%02X, want 0x%02X", i, got[i], body[i])
		}
	}
}
